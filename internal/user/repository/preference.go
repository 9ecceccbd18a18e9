package repository

import (
	"context"
	"errors"
	"strconv"

	"probrowse/internal/common/cache"
	"probrowse/internal/user/model"
)

const preferenceKeyPrefix = "user:preference:"

const (
	fieldBand                = "band"
	fieldExclude             = "exclude"
	fieldIncludeExperimental = "include_experimental"
	fieldCount               = "count"
)

var ErrPreferenceNotFound = errors.New("preference not found")

type PreferenceRepository interface {
	Get(ctx context.Context, userID string) (*model.Preference, error)
	Save(ctx context.Context, pref *model.Preference) error
	Delete(ctx context.Context, userID string) error
}

// RedisPreferenceRepository stores each user's options in a Redis hash,
// one field per option. Preferences have no database backing; losing
// them only reverts a user to defaults.
type RedisPreferenceRepository struct {
	cache cache.Cache
}

func NewPreferenceRepository(cacheClient cache.Cache) PreferenceRepository {
	return &RedisPreferenceRepository{cache: cacheClient}
}

func (r *RedisPreferenceRepository) Get(ctx context.Context, userID string) (*model.Preference, error) {
	if r.cache == nil {
		return nil, errors.New("cache is nil")
	}
	fields, err := r.cache.HGetAll(ctx, preferenceKey(userID))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrPreferenceNotFound
	}

	pref := model.DefaultPreference(userID)
	if band, ok := fields[fieldBand]; ok && band != "" {
		pref.Band = band
	}
	if exclude, ok := fields[fieldExclude]; ok && exclude != "" {
		pref.Exclude = exclude
	}
	if raw, ok := fields[fieldIncludeExperimental]; ok {
		if include, err := strconv.ParseBool(raw); err == nil {
			pref.IncludeExperimental = include
		}
	}
	if raw, ok := fields[fieldCount]; ok {
		if count, err := strconv.Atoi(raw); err == nil && count > 0 {
			pref.Count = count
		}
	}
	return &pref, nil
}

func (r *RedisPreferenceRepository) Save(ctx context.Context, pref *model.Preference) error {
	if r.cache == nil {
		return errors.New("cache is nil")
	}
	if pref == nil {
		return errors.New("preference is nil")
	}
	if pref.UserID == "" {
		return errors.New("preference user id is empty")
	}
	return r.cache.HMSet(ctx, preferenceKey(pref.UserID), map[string]interface{}{
		fieldBand:                pref.Band,
		fieldExclude:             pref.Exclude,
		fieldIncludeExperimental: strconv.FormatBool(pref.IncludeExperimental),
		fieldCount:               strconv.Itoa(pref.Count),
	})
}

func (r *RedisPreferenceRepository) Delete(ctx context.Context, userID string) error {
	if r.cache == nil {
		return errors.New("cache is nil")
	}
	return r.cache.Del(ctx, preferenceKey(userID))
}

func preferenceKey(userID string) string {
	return preferenceKeyPrefix + userID
}
