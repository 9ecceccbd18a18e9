package recommend

import (
	"math"

	"probrowse/internal/catalog/model"
)

// IsDifficultyCapable reports whether the model can predict a solve
// probability.
func IsDifficultyCapable(m model.DifficultyModel) bool {
	return m.Discrimination != nil && m.RawDifficulty != nil
}

// IsTimeCapable reports whether the model can predict a solve time.
func IsTimeCapable(m model.DifficultyModel) bool {
	return m.Slope != nil && m.Intercept != nil
}

// SolveProbability predicts the chance that a user with the given
// rating solves the problem during a contest. The second return value
// is false when the model lacks the required parameters.
func SolveProbability(m model.DifficultyModel, rating int) (float64, bool) {
	if !IsDifficultyCapable(m) {
		return 0, false
	}
	p := 1.0 / (1.0 + math.Exp(-*m.Discrimination*(float64(rating)-*m.RawDifficulty)))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, true
}

// SolveTime predicts how many seconds a user with the given rating
// needs to solve the problem. The second return value is false when
// the model lacks the required parameters.
func SolveTime(m model.DifficultyModel, rating int) (float64, bool) {
	if !IsTimeCapable(m) {
		return 0, false
	}
	return math.Exp(*m.Slope*float64(rating) + *m.Intercept), true
}
