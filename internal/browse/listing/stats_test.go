package listing

import (
	"testing"

	"probrowse/internal/catalog/model"
	"probrowse/pkg/testutil"
)

const daySeconds = 86400

func TestComputeStats(t *testing.T) {
	problems := []model.Problem{
		{ID: "abc001_a", Point: floatPtr(100)},
		{ID: "abc001_b", Point: floatPtr(300)},
		{ID: "old001_1"},
	}
	submissions := []model.Submission{
		{ID: 1, ProblemID: "abc001_a", Result: "AC", EpochSecond: 10 * daySeconds},
		{ID: 2, ProblemID: "abc001_a", Result: "AC", EpochSecond: 11 * daySeconds},
		{ID: 3, ProblemID: "abc001_b", Result: "WA", EpochSecond: 11 * daySeconds},
		{ID: 4, ProblemID: "old001_1", Result: "AC", EpochSecond: 12 * daySeconds},
	}

	stats := ComputeStats("tourist", intPtr(3800), submissions, problems)

	testutil.AssertEqual(t, stats.UserID, "tourist")
	testutil.AssertEqual(t, *stats.Rating, 3800)
	testutil.AssertEqual(t, stats.SolvedCount, 2)
	testutil.AssertEqual(t, stats.AttemptedCount, 1)
	testutil.AssertEqual(t, stats.SubmissionCount, 4)
	// Unrated old001_1 adds nothing, abc001_a counts once.
	testutil.AssertEqual(t, stats.RatedPointSum, float64(100))
	testutil.AssertEqual(t, stats.LongestStreak, 3)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats("newbie", nil, nil, nil)

	testutil.AssertNil(t, stats.Rating)
	testutil.AssertEqual(t, stats.SolvedCount, 0)
	testutil.AssertEqual(t, stats.AttemptedCount, 0)
	testutil.AssertEqual(t, stats.SubmissionCount, 0)
	testutil.AssertEqual(t, stats.RatedPointSum, float64(0))
	testutil.AssertEqual(t, stats.LongestStreak, 0)
}

func TestLongestStreakGaps(t *testing.T) {
	submissions := []model.Submission{
		{ID: 1, ProblemID: "a", Result: "AC", EpochSecond: 1 * daySeconds},
		{ID: 2, ProblemID: "b", Result: "AC", EpochSecond: 2 * daySeconds},
		{ID: 3, ProblemID: "c", Result: "WA", EpochSecond: 3 * daySeconds},
		{ID: 4, ProblemID: "d", Result: "AC", EpochSecond: 5 * daySeconds},
	}
	stats := ComputeStats("gapped", nil, submissions, nil)
	testutil.AssertEqual(t, stats.LongestStreak, 2)
}
