package recommend

import (
	"testing"
	"time"

	"probrowse/internal/catalog/model"
	"probrowse/pkg/testutil"
)

func TestNewSolveHistory(t *testing.T) {
	subs := []model.Submission{
		{ID: 1, ProblemID: "abc001_a", Result: "WA", EpochSecond: 100},
		{ID: 2, ProblemID: "abc001_a", Result: "AC", EpochSecond: 200},
		{ID: 3, ProblemID: "abc001_a", Result: "AC", EpochSecond: 150},
		{ID: 4, ProblemID: "abc001_b", Result: "TLE", EpochSecond: 300},
	}
	h := NewSolveHistory(subs)

	testutil.AssertEqual(t, h.LastAccepted["abc001_a"], int64(200))
	_, solved := h.LastAccepted["abc001_b"]
	testutil.AssertFalse(t, solved, "rejected-only problem should not count as solved")
	_, attempted := h.Submitted["abc001_b"]
	testutil.AssertTrue(t, attempted, "rejected problem should count as submitted")
}

func TestIncludedWindowBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lastAC := now.Add(-8 * 24 * time.Hour).Unix()
	h := SolveHistory{
		LastAccepted: map[string]int64{"abc001_a": lastAC},
		Submitted:    map[string]struct{}{"abc001_a": {}},
	}

	testutil.AssertTrue(t, Included(ExcludeOneWeek, h, "abc001_a", now),
		"solve 8 days ago is outside the one week window")
	testutil.AssertFalse(t, Included(ExcludeTwoWeeks, h, "abc001_a", now),
		"solve 8 days ago is inside the two week window")
	testutil.AssertFalse(t, Included(ExcludeFourWeeks, h, "abc001_a", now),
		"solve 8 days ago is inside the four week window")
	testutil.AssertFalse(t, Included(ExcludeSixMonths, h, "abc001_a", now),
		"solve 8 days ago is inside the six month window")
}

func TestIncludedSolvedAndSubmitted(t *testing.T) {
	now := time.Now()
	h := SolveHistory{
		LastAccepted: map[string]int64{"abc001_a": now.Add(-365 * 24 * time.Hour).Unix()},
		Submitted: map[string]struct{}{
			"abc001_a": {},
			"abc001_b": {},
		},
	}

	testutil.AssertTrue(t, Included(DoNotExclude, h, "abc001_a", now),
		"no exclusion keeps solved problems")
	testutil.AssertFalse(t, Included(ExcludeSolved, h, "abc001_a", now),
		"solved problems are always dropped by solved exclusion")
	testutil.AssertFalse(t, Included(ExcludeSubmitted, h, "abc001_a", now),
		"solved problems are dropped by submitted exclusion")

	// Attempted but never solved.
	testutil.AssertTrue(t, Included(ExcludeSolved, h, "abc001_b", now),
		"unsolved attempts survive solved exclusion")
	testutil.AssertFalse(t, Included(ExcludeSubmitted, h, "abc001_b", now),
		"attempts are dropped by submitted exclusion")

	// Never seen at all.
	testutil.AssertTrue(t, Included(ExcludeSubmitted, h, "abc999_z", now),
		"untouched problems survive every exclusion")
}

func TestIncludedOldSolveOutsideAllWindows(t *testing.T) {
	now := time.Now()
	h := SolveHistory{
		LastAccepted: map[string]int64{"abc001_a": now.Add(-200 * 24 * time.Hour).Unix()},
		Submitted:    map[string]struct{}{"abc001_a": {}},
	}
	for _, opt := range []ExcludeOption{ExcludeOneWeek, ExcludeTwoWeeks, ExcludeFourWeeks, ExcludeSixMonths} {
		testutil.AssertTrue(t, Included(opt, h, "abc001_a", now),
			"solve 200 days ago is outside the "+opt.String()+" window")
	}
}
