package recommend

import (
	"math"
	"sort"

	"probrowse/internal/catalog/model"
)

// RecommendedProblem is one selector result. The prediction fields are
// nil when the user's rating is unknown or the model cannot produce
// the prediction.
type RecommendedProblem struct {
	Problem          model.Problem `json:"problem"`
	Difficulty       *float64      `json:"difficulty,omitempty"`
	SolveProbability *float64      `json:"solve_probability,omitempty"`
	SolveTimeSeconds *float64      `json:"solve_time_seconds,omitempty"`
}

// Inputs parameterizes one selector run. IsIncluded and Model are
// snapshots of user history and the fitted models; the selector never
// mutates what they close over.
type Inputs struct {
	// IsIncluded reports whether a problem survives the exclusion
	// policy. A nil func keeps everything.
	IsIncluded func(problemID string) bool

	// Model returns the fitted model for a problem. Problems without a
	// model are never recommended.
	Model func(problemID string) (model.DifficultyModel, bool)

	// IncludeExperimental keeps problems whose model is experimental.
	IncludeExperimental bool

	// UserRating is nil when the user has no rated history.
	UserRating *int

	Band  Band
	Count int
}

type candidate struct {
	problem    model.Problem
	model      model.DifficultyModel
	difficulty float64
	distance   float64
}

// Select ranks the candidate problems closest to the band's target
// difficulty and attaches per-user predictions. The result is sorted
// by ascending distance with problem id as tiebreak, truncated to
// in.Count. It is deterministic for identical inputs and never nil.
func Select(problems []model.Problem, in Inputs) []RecommendedProblem {
	if in.Count <= 0 || len(problems) == 0 {
		return []RecommendedProblem{}
	}

	rating := DefaultRatingCenter
	if in.UserRating != nil {
		rating = *in.UserRating
	}
	target := in.Band.TargetDifficulty(rating)

	candidates := make([]candidate, 0, len(problems))
	for _, p := range problems {
		if in.IsIncluded != nil && !in.IsIncluded(p.ID) {
			continue
		}
		if in.Model == nil {
			continue
		}
		m, ok := in.Model(p.ID)
		if !ok {
			continue
		}
		if m.IsExperimental && !in.IncludeExperimental {
			continue
		}
		if m.Difficulty == nil {
			continue
		}
		candidates = append(candidates, candidate{
			problem:    p,
			model:      m,
			difficulty: *m.Difficulty,
			distance:   math.Abs(*m.Difficulty - target),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].problem.ID < candidates[j].problem.ID
	})

	if len(candidates) > in.Count {
		candidates = candidates[:in.Count]
	}

	results := make([]RecommendedProblem, 0, len(candidates))
	for _, c := range candidates {
		rec := RecommendedProblem{
			Problem:    c.problem,
			Difficulty: &c.difficulty,
		}
		if in.UserRating != nil {
			if p, ok := SolveProbability(c.model, *in.UserRating); ok {
				rec.SolveProbability = &p
			}
			if t, ok := SolveTime(c.model, *in.UserRating); ok {
				rec.SolveTimeSeconds = &t
			}
		}
		results = append(results, rec)
	}
	return results
}
