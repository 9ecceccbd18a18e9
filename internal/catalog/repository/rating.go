package repository

import (
	"context"
	"errors"
	"time"

	"probrowse/internal/catalog/model"
	"probrowse/internal/common/cache"
	"probrowse/internal/common/db"
)

type RatingRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.UserRating, error)
	Upsert(ctx context.Context, rating *model.UserRating) error
	InvalidateCache(ctx context.Context, userID string) error
}

type MySQLRatingRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewRatingRepository(provider db.Provider, cacheClient cache.Cache) RatingRepository {
	return &MySQLRatingRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        defaultUserCacheTTL,
		emptyTTL:   defaultUserCacheEmptyTTL,
	}
}

func (r *MySQLRatingRepository) GetByUser(ctx context.Context, userID string) (*model.UserRating, error) {
	if r.cache != nil {
		rating, err := cache.GetWithCached[*model.UserRating](
			ctx,
			r.cache,
			ratingKey(userID),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(rating *model.UserRating) bool { return rating == nil },
			marshalJSON[*model.UserRating],
			unmarshalRating,
			func(ctx context.Context) (*model.UserRating, error) {
				rating, err := r.getByUserFromDB(ctx, userID)
				if err != nil {
					if errors.Is(err, ErrRatingNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return rating, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if rating == nil {
			return nil, ErrRatingNotFound
		}
		return rating, nil
	}
	return r.getByUserFromDB(ctx, userID)
}

func (r *MySQLRatingRepository) getByUserFromDB(ctx context.Context, userID string) (*model.UserRating, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	row := database.QueryRow(ctx, "SELECT user_id, rating FROM user_rating WHERE user_id = ?", userID)
	var rating model.UserRating
	if err := row.Scan(&rating.UserID, &rating.Rating); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *MySQLRatingRepository) Upsert(ctx context.Context, rating *model.UserRating) error {
	if rating == nil {
		return errors.New("rating is nil")
	}
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return err
	}
	query := "INSERT INTO user_rating (user_id, rating) VALUES (?, ?) ON DUPLICATE KEY UPDATE rating = VALUES(rating)"
	if _, err := database.Exec(ctx, query, rating.UserID, rating.Rating); err != nil {
		return err
	}
	return r.InvalidateCache(ctx, rating.UserID)
}

func (r *MySQLRatingRepository) InvalidateCache(ctx context.Context, userID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, ratingKey(userID))
}
