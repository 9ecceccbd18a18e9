package repository

import (
	"context"
	"time"

	"probrowse/internal/catalog/model"
	"probrowse/internal/common/cache"
	"probrowse/internal/common/db"
)

type ContestRepository interface {
	All(ctx context.Context) ([]model.Contest, error)
	GetByID(ctx context.Context, id string) (*model.Contest, error)
	ReplaceAll(ctx context.Context, contests []model.Contest) error
	InvalidateCache(ctx context.Context) error
}

type MySQLContestRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewContestRepository(provider db.Provider, cacheClient cache.Cache) ContestRepository {
	return &MySQLContestRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        defaultCatalogCacheTTL,
		emptyTTL:   defaultCatalogCacheEmptyTTL,
	}
}

const contestColumns = "id, title, start_epoch_second, duration_second, rate_change"

func (r *MySQLContestRepository) All(ctx context.Context) ([]model.Contest, error) {
	if r.cache != nil {
		return cache.GetWithCached[[]model.Contest](
			ctx,
			r.cache,
			contestsCacheKey,
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(contests []model.Contest) bool { return len(contests) == 0 },
			marshalJSON[[]model.Contest],
			unmarshalSlice[model.Contest],
			r.allFromDB,
		)
	}
	return r.allFromDB(ctx)
}

func (r *MySQLContestRepository) allFromDB(ctx context.Context) ([]model.Contest, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	rows, err := database.Query(ctx, "SELECT "+contestColumns+" FROM contest ORDER BY start_epoch_second DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contests []model.Contest
	for rows.Next() {
		var contest model.Contest
		if err := rows.Scan(&contest.ID, &contest.Title, &contest.StartEpochSecond, &contest.DurationSecond, &contest.RateChange); err != nil {
			return nil, err
		}
		contests = append(contests, contest)
	}
	return contests, rows.Err()
}

func (r *MySQLContestRepository) GetByID(ctx context.Context, id string) (*model.Contest, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	row := database.QueryRow(ctx, "SELECT "+contestColumns+" FROM contest WHERE id = ?", id)
	var contest model.Contest
	if err := row.Scan(&contest.ID, &contest.Title, &contest.StartEpochSecond, &contest.DurationSecond, &contest.RateChange); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrContestNotFound
		}
		return nil, err
	}
	return &contest, nil
}

func (r *MySQLContestRepository) ReplaceAll(ctx context.Context, contests []model.Contest) error {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return err
	}
	err = database.Transaction(ctx, func(tx db.Transaction) error {
		if _, err := tx.Exec(ctx, "DELETE FROM contest"); err != nil {
			return err
		}
		for start := 0; start < len(contests); start += replaceChunkSize {
			end := start + replaceChunkSize
			if end > len(contests) {
				end = len(contests)
			}
			chunk := contests[start:end]

			query := "INSERT INTO contest (id, title, start_epoch_second, duration_second, rate_change) VALUES "
			args := make([]interface{}, 0, len(chunk)*5)
			for i, c := range chunk {
				if i > 0 {
					query += ", "
				}
				query += "(?, ?, ?, ?, ?)"
				args = append(args, c.ID, c.Title, c.StartEpochSecond, c.DurationSecond, c.RateChange)
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.InvalidateCache(ctx)
}

func (r *MySQLContestRepository) InvalidateCache(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, contestsCacheKey)
}
