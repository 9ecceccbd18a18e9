package model

// Contest groups problems and determines their rated bound.
type Contest struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	StartEpochSecond int64  `json:"start_epoch_second"`
	DurationSecond   int64  `json:"duration_second"`
	RateChange       string `json:"rate_change"`
}
