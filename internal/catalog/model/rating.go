package model

// UserRating is the latest known contest rating for a user.
type UserRating struct {
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
}
