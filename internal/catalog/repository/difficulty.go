package repository

import (
	"context"
	"database/sql"
	"time"

	"probrowse/internal/catalog/model"
	"probrowse/internal/common/cache"
	"probrowse/internal/common/db"
)

type DifficultyModelRepository interface {
	All(ctx context.Context) ([]model.DifficultyModel, error)
	GetByProblemID(ctx context.Context, problemID string) (*model.DifficultyModel, error)
	ReplaceAll(ctx context.Context, models []model.DifficultyModel) error
	InvalidateCache(ctx context.Context) error
}

type MySQLDifficultyModelRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewDifficultyModelRepository(provider db.Provider, cacheClient cache.Cache) DifficultyModelRepository {
	return &MySQLDifficultyModelRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        defaultCatalogCacheTTL,
		emptyTTL:   defaultCatalogCacheEmptyTTL,
	}
}

const modelColumns = "problem_id, slope, intercept, variance, difficulty, discrimination, raw_difficulty, is_experimental"

func (r *MySQLDifficultyModelRepository) All(ctx context.Context) ([]model.DifficultyModel, error) {
	if r.cache != nil {
		return cache.GetWithCached[[]model.DifficultyModel](
			ctx,
			r.cache,
			modelsCacheKey,
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(models []model.DifficultyModel) bool { return len(models) == 0 },
			marshalJSON[[]model.DifficultyModel],
			unmarshalSlice[model.DifficultyModel],
			r.allFromDB,
		)
	}
	return r.allFromDB(ctx)
}

func (r *MySQLDifficultyModelRepository) allFromDB(ctx context.Context) ([]model.DifficultyModel, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	rows, err := database.Query(ctx, "SELECT "+modelColumns+" FROM difficulty_model ORDER BY problem_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []model.DifficultyModel
	for rows.Next() {
		m, err := scanDifficultyModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

func (r *MySQLDifficultyModelRepository) GetByProblemID(ctx context.Context, problemID string) (*model.DifficultyModel, error) {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return nil, err
	}
	row := database.QueryRow(ctx, "SELECT "+modelColumns+" FROM difficulty_model WHERE problem_id = ?", problemID)
	m, err := scanDifficultyModel(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MySQLDifficultyModelRepository) ReplaceAll(ctx context.Context, models []model.DifficultyModel) error {
	database, err := db.CurrentDatabase(r.dbProvider)
	if err != nil {
		return err
	}
	err = database.Transaction(ctx, func(tx db.Transaction) error {
		if _, err := tx.Exec(ctx, "DELETE FROM difficulty_model"); err != nil {
			return err
		}
		for start := 0; start < len(models); start += replaceChunkSize {
			end := start + replaceChunkSize
			if end > len(models) {
				end = len(models)
			}
			chunk := models[start:end]

			query := "INSERT INTO difficulty_model (" + modelColumns + ") VALUES "
			args := make([]interface{}, 0, len(chunk)*8)
			for i, m := range chunk {
				if i > 0 {
					query += ", "
				}
				query += "(?, ?, ?, ?, ?, ?, ?, ?)"
				args = append(args,
					m.ProblemID,
					nullFloat(m.Slope),
					nullFloat(m.Intercept),
					nullFloat(m.Variance),
					nullFloat(m.Difficulty),
					nullFloat(m.Discrimination),
					nullFloat(m.RawDifficulty),
					m.IsExperimental,
				)
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

func (r *MySQLDifficultyModelRepository) InvalidateCache(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, modelsCacheKey)
}

func scanDifficultyModel(scanner db.Scanner) (model.DifficultyModel, error) {
	var m model.DifficultyModel
	var slope, intercept, variance, difficulty, discrimination, rawDifficulty sql.NullFloat64
	if err := scanner.Scan(&m.ProblemID, &slope, &intercept, &variance, &difficulty, &discrimination, &rawDifficulty, &m.IsExperimental); err != nil {
		return model.DifficultyModel{}, err
	}
	m.Slope = floatPtr(slope)
	m.Intercept = floatPtr(intercept)
	m.Variance = floatPtr(variance)
	m.Difficulty = floatPtr(difficulty)
	m.Discrimination = floatPtr(discrimination)
	m.RawDifficulty = floatPtr(rawDifficulty)
	return m, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	f := value.Float64
	return &f
}
