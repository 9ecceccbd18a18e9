package repository

import (
	"context"
	"time"

	"probrowse/internal/catalog/model"
	"probrowse/internal/common/cache"
	"probrowse/internal/common/db"
)

type SubmissionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.Submission, error)
	ReplaceForUser(ctx context.Context, userID string, submissions []model.Submission) error
	InvalidateCache(ctx context.Context, userID string) error
}

type MySQLSubmissionRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewSubmissionRepository(provider db.Provider, cacheClient cache.Cache) SubmissionRepository {
	return &MySQLSubmissionRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        defaultUserCacheTTL,
		emptyTTL:   defaultUserCacheEmptyTTL,
	}
}

const submissionColumns = "id, problem_id, user_id, result, epoch_second, language, point"

func (r *MySQLSubmissionRepository) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	if r.cache != nil {
		return cache.GetWithCached[[]model.Submission](
			ctx,
			r.cache,
			submissionsKey(userID),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(submissions []model.Submission) bool { return len(submissions) == 0 },
			marshalJSON[[]model.Submission],
			unmarshalSlice[model.Submission],
			func(ctx context.Context) ([]model.Submission, error) {
				return r.listByUserFromDB(ctx, userID)
			},
		)
	}
	return r.listByUserFromDB(ctx, userID)
}

func (r *MySQLSubmissionRepository) listByUserFromDB(ctx context.Context, userID string) ([]model.Submission, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	rows, err := database.Query(ctx, "SELECT "+submissionColumns+" FROM submission WHERE user_id = ? ORDER BY epoch_second", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.ProblemID, &s.UserID, &s.Result, &s.EpochSecond, &s.Language, &s.Point); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *MySQLSubmissionRepository) ReplaceForUser(ctx context.Context, userID string, submissions []model.Submission) error {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return err
	}
	err = database.Transaction(ctx, func(tx db.Transaction) error {
		if _, err := tx.Exec(ctx, "DELETE FROM submission WHERE user_id = ?", userID); err != nil {
			return err
		}
		for start := 0; start < len(submissions); start += replaceChunkSize {
			end := start + replaceChunkSize
			if end > len(submissions) {
				end = len(submissions)
			}
			chunk := submissions[start:end]

			query := "INSERT INTO submission (" + submissionColumns + ") VALUES "
			args := make([]interface{}, 0, len(chunk)*7)
			for i, s := range chunk {
				if i > 0 {
					query += ", "
				}
				query += "(?, ?, ?, ?, ?, ?, ?)"
				args = append(args, s.ID, s.ProblemID, s.UserID, s.Result, s.EpochSecond, s.Language, s.Point)
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
	return r.InvalidateCache(ctx, userID)
}

func (r *MySQLSubmissionRepository) InvalidateCache(ctx context.Context, userID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, submissionsKey(userID))
}
