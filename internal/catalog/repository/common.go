package repository

import (
	"encoding/json"
	"errors"
	"time"

	"probrowse/internal/catalog/model"
)

var (
	ErrProblemNotFound = errors.New("problem not found")
	ErrContestNotFound = errors.New("contest not found")
	ErrModelNotFound   = errors.New("difficulty model not found")
	ErrRatingNotFound  = errors.New("user rating not found")
)

const (
	problemsCacheKey = "catalog:problems:all"
	contestsCacheKey = "catalog:contests:all"
	modelsCacheKey   = "catalog:models:all"

	submissionsKeyPrefix = "catalog:submissions:"
	ratingKeyPrefix      = "catalog:rating:"

	defaultCatalogCacheTTL      = 30 * time.Minute
	defaultCatalogCacheEmptyTTL = 5 * time.Minute
	defaultUserCacheTTL         = 5 * time.Minute
	defaultUserCacheEmptyTTL    = time.Minute

	// replaceChunkSize bounds the number of rows per bulk INSERT so the
	// statement stays under MySQL's packet limit.
	replaceChunkSize = 500
)

func submissionsKey(userID string) string {
	return submissionsKeyPrefix + userID
}

func ratingKey(userID string) string {
	return ratingKeyPrefix + userID
}

func marshalJSON[T any](value T) string {
	payload, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(payload)
}

func unmarshalSlice[T any](data string) ([]T, error) {
	if data == "" {
		return nil, nil
	}
	var values []T
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func unmarshalRating(data string) (*model.UserRating, error) {
	if data == "" {
		return nil, nil
	}
	var rating model.UserRating
	if err := json.Unmarshal([]byte(data), &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}
