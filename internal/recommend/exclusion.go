package recommend

import (
	"time"

	"probrowse/internal/catalog/model"
)

const day = 24 * time.Hour

// SolveHistory is the per-user digest the exclusion rules operate on:
// the last accepted-submission epoch for each solved problem, plus the
// set of every problem the user ever submitted to.
type SolveHistory struct {
	LastAccepted map[string]int64
	Submitted    map[string]struct{}
}

// NewSolveHistory folds raw submissions into a SolveHistory.
func NewSolveHistory(submissions []model.Submission) SolveHistory {
	h := SolveHistory{
		LastAccepted: make(map[string]int64),
		Submitted:    make(map[string]struct{}),
	}
	for _, s := range submissions {
		h.Submitted[s.ProblemID] = struct{}{}
		if !s.IsAccepted() {
			continue
		}
		if last, ok := h.LastAccepted[s.ProblemID]; !ok || s.EpochSecond > last {
			h.LastAccepted[s.ProblemID] = s.EpochSecond
		}
	}
	return h
}

// window returns the recency window for time-based options, or zero
// when the option is not window-based.
func (o ExcludeOption) window() time.Duration {
	switch o {
	case ExcludeOneWeek:
		return 7 * day
	case ExcludeTwoWeeks:
		return 14 * day
	case ExcludeFourWeeks:
		return 28 * day
	case ExcludeSixMonths:
		return 180 * day
	}
	return 0
}

// Included reports whether a problem stays in the candidate set under
// the given exclusion option.
//
// A problem the user never solved is always kept, except under
// ExcludeSubmitted when the user has attempted it. A solved problem is
// dropped by ExcludeSolved and ExcludeSubmitted, kept by DoNotExclude,
// and kept by a window option only when the last accepted submission
// is older than the window.
func Included(opt ExcludeOption, history SolveHistory, problemID string, now time.Time) bool {
	lastAC, solved := history.LastAccepted[problemID]
	if !solved {
		if opt == ExcludeSubmitted {
			_, attempted := history.Submitted[problemID]
			return !attempted
		}
		return true
	}

	switch opt {
	case DoNotExclude:
		return true
	case ExcludeSolved, ExcludeSubmitted:
		return false
	}

	window := opt.window()
	if window <= 0 {
		return true
	}
	return now.Sub(time.Unix(lastAC, 0)) > window
}
