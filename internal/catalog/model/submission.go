package model

// ResultAccepted is the judge verdict for a fully accepted submission.
const ResultAccepted = "AC"

// Submission is one judged attempt by a user on a problem.
type Submission struct {
	ID          int64   `json:"id"`
	ProblemID   string  `json:"problem_id"`
	UserID      string  `json:"user_id"`
	Result      string  `json:"result"`
	EpochSecond int64   `json:"epoch_second"`
	Language    string  `json:"language"`
	Point       float64 `json:"point"`
}

// IsAccepted reports whether the submission solved the problem.
func (s Submission) IsAccepted() bool {
	return s.Result == ResultAccepted
}
