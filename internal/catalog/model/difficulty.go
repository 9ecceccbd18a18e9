package model

// DifficultyModel holds the fitted per-problem parameters. Every
// parameter is nullable: a fit may produce the difficulty estimate, the
// time regression, both, or neither. A problem without a row has no
// model at all.
type DifficultyModel struct {
	ProblemID      string   `json:"problem_id"`
	Slope          *float64 `json:"slope,omitempty"`
	Intercept      *float64 `json:"intercept,omitempty"`
	Variance       *float64 `json:"variance,omitempty"`
	Difficulty     *float64 `json:"difficulty,omitempty"`
	Discrimination *float64 `json:"discrimination,omitempty"`
	RawDifficulty  *float64 `json:"raw_difficulty,omitempty"`
	IsExperimental bool     `json:"is_experimental"`
}
