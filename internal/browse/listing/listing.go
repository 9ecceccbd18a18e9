package listing

import (
	"fmt"
	"sort"
	"strings"

	"probrowse/internal/catalog/model"
	"probrowse/internal/recommend"
)

// Status is a user's standing on one problem.
type Status int

const (
	StatusAll Status = iota
	StatusSolved
	StatusAttempted
	StatusUntouched
)

var statusNames = map[Status]string{
	StatusAll:       "all",
	StatusSolved:    "solved",
	StatusAttempted: "attempted",
	StatusUntouched: "untouched",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus maps the API status name to a Status filter.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case "solved":
		return StatusSolved, nil
	case "attempted", "trying":
		return StatusAttempted, nil
	case "untouched":
		return StatusUntouched, nil
	}
	return StatusAll, fmt.Errorf("unknown status %q", s)
}

// SortKey selects the listing sort column.
type SortKey int

const (
	SortByID SortKey = iota
	SortByTitle
	SortByContest
	SortByPoint
	SortByDifficulty
)

// ParseSortKey maps the API sort name to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return SortByID, nil
	case "title":
		return SortByTitle, nil
	case "contest":
		return SortByContest, nil
	case "point":
		return SortByPoint, nil
	case "difficulty":
		return SortByDifficulty, nil
	}
	return SortByID, fmt.Errorf("unknown sort key %q", s)
}

// Options filters and orders one listing request. Nil range bounds
// mean unbounded.
type Options struct {
	PointFrom   *float64
	PointTo     *float64
	RatedOnly   bool
	UnratedOnly bool

	Status Status

	DifficultyFrom *float64
	DifficultyTo   *float64

	IncludeExperimental bool

	Sort SortKey
	Desc bool
}

// Entry is one listed problem joined with its model and the requesting
// user's standing. Prediction fields are nil without a rating or a
// capable model.
type Entry struct {
	Problem          model.Problem `json:"problem"`
	Difficulty       *float64      `json:"difficulty,omitempty"`
	IsExperimental   bool          `json:"is_experimental"`
	Status           Status        `json:"-"`
	StatusName       string        `json:"status"`
	SolveProbability *float64      `json:"solve_probability,omitempty"`
	SolveTimeSeconds *float64      `json:"solve_time_seconds,omitempty"`
}

// Apply runs the full listing pipeline over a catalog snapshot. It
// never mutates its inputs and is deterministic for identical inputs.
func Apply(
	problems []model.Problem,
	models map[string]model.DifficultyModel,
	history recommend.SolveHistory,
	rating *int,
	opts Options,
) []Entry {
	entries := make([]Entry, 0, len(problems))
	for _, p := range problems {
		if !pointInRange(p, opts) {
			continue
		}

		m, hasModel := models[p.ID]
		if !difficultyInRange(m, hasModel, opts) {
			continue
		}
		if hasModel && m.IsExperimental && !opts.IncludeExperimental {
			continue
		}

		status := userStatus(history, p.ID)
		if opts.Status != StatusAll && status != opts.Status {
			continue
		}

		entry := Entry{
			Problem:    p,
			Status:     status,
			StatusName: status.String(),
		}
		if hasModel {
			entry.Difficulty = m.Difficulty
			entry.IsExperimental = m.IsExperimental
			if rating != nil {
				if prob, ok := recommend.SolveProbability(m, *rating); ok {
					entry.SolveProbability = &prob
				}
				if secs, ok := recommend.SolveTime(m, *rating); ok {
					entry.SolveTimeSeconds = &secs
				}
			}
		}
		entries = append(entries, entry)
	}

	sortEntries(entries, opts)
	return entries
}

func pointInRange(p model.Problem, opts Options) bool {
	if opts.UnratedOnly {
		return !p.HasPoint()
	}
	hasBound := opts.PointFrom != nil || opts.PointTo != nil
	if opts.RatedOnly || hasBound {
		if !p.HasPoint() {
			return false
		}
	}
	if opts.PointFrom != nil && *p.Point < *opts.PointFrom {
		return false
	}
	if opts.PointTo != nil && *p.Point > *opts.PointTo {
		return false
	}
	return true
}

// difficultyInRange keeps modelless problems unless a difficulty bound
// is set.
func difficultyInRange(m model.DifficultyModel, hasModel bool, opts Options) bool {
	hasBound := opts.DifficultyFrom != nil || opts.DifficultyTo != nil
	if !hasBound {
		return true
	}
	if !hasModel || m.Difficulty == nil {
		return false
	}
	if opts.DifficultyFrom != nil && *m.Difficulty < *opts.DifficultyFrom {
		return false
	}
	if opts.DifficultyTo != nil && *m.Difficulty > *opts.DifficultyTo {
		return false
	}
	return true
}

func userStatus(history recommend.SolveHistory, problemID string) Status {
	if _, ok := history.LastAccepted[problemID]; ok {
		return StatusSolved
	}
	if _, ok := history.Submitted[problemID]; ok {
		return StatusAttempted
	}
	return StatusUntouched
}

func sortEntries(entries []Entry, opts Options) {
	less := func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch opts.Sort {
		case SortByTitle:
			if a.Problem.Title != b.Problem.Title {
				return a.Problem.Title < b.Problem.Title
			}
		case SortByContest:
			if a.Problem.ContestID != b.Problem.ContestID {
				return a.Problem.ContestID < b.Problem.ContestID
			}
		case SortByPoint:
			ap, bp := pointOrder(a.Problem), pointOrder(b.Problem)
			if ap != bp {
				return ap < bp
			}
		case SortByDifficulty:
			ad, bd := difficultyOrder(a), difficultyOrder(b)
			if ad != bd {
				return ad < bd
			}
		}
		return a.Problem.ID < b.Problem.ID
	}

	if opts.Desc {
		sort.SliceStable(entries, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(entries, less)
}

// pointOrder sorts unrated problems before every rated one.
func pointOrder(p model.Problem) float64 {
	if !p.HasPoint() {
		return -1
	}
	return *p.Point
}

// difficultyOrder sorts modelless entries before every rated one.
func difficultyOrder(e Entry) float64 {
	if e.Difficulty == nil {
		return -1 << 30
	}
	return *e.Difficulty
}
