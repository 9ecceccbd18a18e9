package repository

import (
	"context"
	"database/sql"
	"time"

	"probrowse/internal/catalog/model"
	"probrowse/internal/common/cache"
	"probrowse/internal/common/db"
)

type ProblemRepository interface {
	All(ctx context.Context) ([]model.Problem, error)
	GetByID(ctx context.Context, id string) (*model.Problem, error)
	ReplaceAll(ctx context.Context, problems []model.Problem) error
	InvalidateCache(ctx context.Context) error
}

type MySQLProblemRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewProblemRepository(provider db.Provider, cacheClient cache.Cache) ProblemRepository {
	return &MySQLProblemRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        defaultCatalogCacheTTL,
		emptyTTL:   defaultCatalogCacheEmptyTTL,
	}
}

const problemColumns = "id, contest_id, title, point"

func (r *MySQLProblemRepository) All(ctx context.Context) ([]model.Problem, error) {
	if r.cache != nil {
		return cache.GetWithCached[[]model.Problem](
			ctx,
			r.cache,
			problemsCacheKey,
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(problems []model.Problem) bool { return len(problems) == 0 },
			marshalJSON[[]model.Problem],
			unmarshalSlice[model.Problem],
			r.allFromDB,
		)
	}
	return r.allFromDB(ctx)
}

func (r *MySQLProblemRepository) allFromDB(ctx context.Context) ([]model.Problem, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	rows, err := database.Query(ctx, "SELECT "+problemColumns+" FROM problem ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		problems = append(problems, problem)
	}
	return problems, rows.Err()
}

func (r *MySQLProblemRepository) GetByID(ctx context.Context, id string) (*model.Problem, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	row := database.QueryRow(ctx, "SELECT "+problemColumns+" FROM problem WHERE id = ?", id)
	problem, err := scanProblem(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrProblemNotFound
		}
		return nil, err
	}
	return &problem, nil
}

func (r *MySQLProblemRepository) ReplaceAll(ctx context.Context, problems []model.Problem) error {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return err
	}
	err = database.Transaction(ctx, func(tx db.Transaction) error {
		if _, err := tx.Exec(ctx, "DELETE FROM problem"); err != nil {
			return err
		}
		for start := 0; start < len(problems); start += replaceChunkSize {
			end := start + replaceChunkSize
			if end > len(problems) {
				end = len(problems)
			}
			chunk := problems[start:end]

			query := "INSERT INTO problem (id, contest_id, title, point) VALUES "
			args := make([]interface{}, 0, len(chunk)*4)
			for i, p := range chunk {
				if i > 0 {
					query += ", "
				}
				query += "(?, ?, ?, ?)"
				point := sql.NullFloat64{}
				if p.Point != nil {
					point = sql.NullFloat64{Float64: *p.Point, Valid: true}
				}
				args = append(args, p.ID, p.ContestID, p.Title, point)
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

func (r *MySQLProblemRepository) InvalidateCache(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, problemsCacheKey)
}

func scanProblem(scanner db.Scanner) (model.Problem, error) {
	var problem model.Problem
	var point sql.NullFloat64
	if err := scanner.Scan(&problem.ID, &problem.ContestID, &problem.Title, &point); err != nil {
		return model.Problem{}, err
	}
	if point.Valid {
		problem.Point = &point.Float64
	}
	return problem, nil
}
