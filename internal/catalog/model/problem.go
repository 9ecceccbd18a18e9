package model

// Problem is one catalog entry mirrored from the upstream archive.
// Point is nil for problems whose score is unknown; a zero point also
// means the problem is unrated.
type Problem struct {
	ID        string   `json:"id"`
	ContestID string   `json:"contest_id"`
	Title     string   `json:"title"`
	Point     *float64 `json:"point,omitempty"`
}

// HasPoint reports whether the problem carries a usable score.
func (p Problem) HasPoint() bool {
	return p.Point != nil && *p.Point > 0
}
