package model

// Preference holds a user's persisted browse and recommendation
// options.
type Preference struct {
	UserID              string `json:"user_id"`
	Band                string `json:"band"`
	Exclude             string `json:"exclude"`
	IncludeExperimental bool   `json:"include_experimental"`
	Count               int    `json:"count"`
}

// DefaultPreference is what a user gets before saving anything.
func DefaultPreference(userID string) Preference {
	return Preference{
		UserID:              userID,
		Band:                "moderate",
		Exclude:             "solved",
		IncludeExperimental: false,
		Count:               10,
	}
}
