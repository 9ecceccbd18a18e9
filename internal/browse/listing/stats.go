package listing

import (
	"probrowse/internal/catalog/model"
	"probrowse/internal/recommend"
)

// UserStats summarizes a user's progress over the catalog.
type UserStats struct {
	UserID          string  `json:"user_id"`
	Rating          *int    `json:"rating,omitempty"`
	SolvedCount     int     `json:"solved_count"`
	AttemptedCount  int     `json:"attempted_count"`
	SubmissionCount int     `json:"submission_count"`
	RatedPointSum   float64 `json:"rated_point_sum"`
	LongestStreak   int     `json:"longest_streak_days"`
}

// ComputeStats derives solve statistics from a user's submissions and
// the problem catalog. AttemptedCount counts problems submitted to but
// never solved. RatedPointSum adds each solved rated problem's point
// once.
func ComputeStats(userID string, rating *int, submissions []model.Submission, problems []model.Problem) UserStats {
	history := recommend.NewSolveHistory(submissions)

	pointByID := make(map[string]float64, len(problems))
	for _, p := range problems {
		if p.HasPoint() {
			pointByID[p.ID] = *p.Point
		}
	}

	stats := UserStats{
		UserID:          userID,
		Rating:          rating,
		SolvedCount:     len(history.LastAccepted),
		SubmissionCount: len(submissions),
	}
	for id := range history.Submitted {
		if _, solved := history.LastAccepted[id]; !solved {
			stats.AttemptedCount++
		}
	}
	for id := range history.LastAccepted {
		stats.RatedPointSum += pointByID[id]
	}
	stats.LongestStreak = longestStreak(submissions)
	return stats
}

// longestStreak counts the longest run of consecutive UTC days with at
// least one accepted submission.
func longestStreak(submissions []model.Submission) int {
	days := make(map[int64]struct{})
	for _, s := range submissions {
		if s.IsAccepted() {
			days[s.EpochSecond/86400] = struct{}{}
		}
	}
	best := 0
	for day := range days {
		if _, prev := days[day-1]; prev {
			continue
		}
		length := 1
		for next := day + 1; ; next++ {
			if _, ok := days[next]; !ok {
				break
			}
			length++
		}
		if length > best {
			best = length
		}
	}
	return best
}
