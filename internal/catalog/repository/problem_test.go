package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"probrowse/internal/catalog/model"
	"probrowse/internal/common/cache"
	"probrowse/internal/common/db"
	"probrowse/pkg/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// fakeDatabase serves canned problem rows and records executed
// statements so cache-aside behavior can be observed without MySQL.
type fakeDatabase struct {
	problems []model.Problem
	queries  int
	execs    []string
}

type fakeRows struct {
	problems []model.Problem
	index    int
}

func (r *fakeRows) Next() bool {
	if r.index >= len(r.problems) {
		return false
	}
	r.index++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	p := r.problems[r.index-1]
	if len(dest) != 4 {
		return fmt.Errorf("expected 4 scan targets, got %d", len(dest))
	}
	*dest[0].(*string) = p.ID
	*dest[1].(*string) = p.ContestID
	*dest[2].(*string) = p.Title
	point := dest[3].(*sql.NullFloat64)
	if p.Point != nil {
		*point = sql.NullFloat64{Float64: *p.Point, Valid: true}
	} else {
		*point = sql.NullFloat64{}
	}
	return nil
}

func (r *fakeRows) Close() error               { return nil }
func (r *fakeRows) Err() error                 { return nil }
func (r *fakeRows) Columns() ([]string, error) { return nil, nil }

type fakeRow struct {
	rows *fakeRows
}

func (r *fakeRow) Scan(dest ...interface{}) error {
	if !r.rows.Next() {
		return sql.ErrNoRows
	}
	return r.rows.Scan(dest...)
}

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 0, nil }

type fakeTx struct {
	db *fakeDatabase
}

func (t *fakeTx) Query(ctx context.Context, query string, args ...interface{}) (db.Rows, error) {
	return t.db.Query(ctx, query, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, query string, args ...interface{}) db.Row {
	return t.db.QueryRow(ctx, query, args...)
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...interface{}) (db.Result, error) {
	return t.db.Exec(ctx, query, args...)
}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

func (f *fakeDatabase) Query(ctx context.Context, query string, args ...interface{}) (db.Rows, error) {
	f.queries++
	return &fakeRows{problems: f.problems}, nil
}

func (f *fakeDatabase) QueryRow(ctx context.Context, query string, args ...interface{}) db.Row {
	var matched []model.Problem
	if len(args) == 1 {
		for _, p := range f.problems {
			if p.ID == args[0] {
				matched = append(matched, p)
			}
		}
	}
	return &fakeRow{rows: &fakeRows{problems: matched}}
}

func (f *fakeDatabase) Exec(ctx context.Context, query string, args ...interface{}) (db.Result, error) {
	f.execs = append(f.execs, query)
	return fakeResult{}, nil
}

func (f *fakeDatabase) Transaction(ctx context.Context, fn func(tx db.Transaction) error) error {
	return fn(&fakeTx{db: f})
}

func (f *fakeDatabase) BeginTx(ctx context.Context, opts *db.TxOptions) (db.Transaction, error) {
	return &fakeTx{db: f}, nil
}

func (f *fakeDatabase) Ping(ctx context.Context) error { return nil }
func (f *fakeDatabase) Close() error                   { return nil }
func (f *fakeDatabase) Stats() db.Stats                { return db.Stats{} }

var _ db.Database = (*fakeDatabase)(nil)

func f64Ptr(v float64) *float64 { return &v }

func newRepoCache(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisCache, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache failed: %v", err)
	}
	t.Cleanup(func() { _ = redisCache.Close() })
	return redisCache
}

func TestProblemAllCachesResult(t *testing.T) {
	database := &fakeDatabase{problems: []model.Problem{
		{ID: "abc001_a", ContestID: "abc001", Title: "A. Snow", Point: f64Ptr(100)},
		{ID: "old001_1", ContestID: "old001", Title: "1. Ice"},
	}}
	repo := NewProblemRepository(db.NewStaticProvider(database), newRepoCache(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		problems, err := repo.All(ctx)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, len(problems), 2)
		testutil.AssertEqual(t, problems[0].ID, "abc001_a")
		testutil.AssertEqual(t, *problems[0].Point, float64(100))
		testutil.AssertNil(t, problems[1].Point)
	}
	testutil.AssertEqual(t, database.queries, 1)
}

func TestProblemAllWithoutCache(t *testing.T) {
	database := &fakeDatabase{problems: []model.Problem{{ID: "abc001_a"}}}
	repo := NewProblemRepository(db.NewStaticProvider(database), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		problems, err := repo.All(ctx)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, len(problems), 1)
	}
	testutil.AssertEqual(t, database.queries, 2)
}

func TestProblemEmptyCatalogNullCached(t *testing.T) {
	database := &fakeDatabase{}
	repo := NewProblemRepository(db.NewStaticProvider(database), newRepoCache(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		problems, err := repo.All(ctx)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, len(problems), 0)
	}
	testutil.AssertEqual(t, database.queries, 1)
}

func TestProblemGetByID(t *testing.T) {
	database := &fakeDatabase{problems: []model.Problem{
		{ID: "abc001_a", ContestID: "abc001", Title: "A. Snow"},
	}}
	repo := NewProblemRepository(db.NewStaticProvider(database), nil)
	ctx := context.Background()

	problem, err := repo.GetByID(ctx, "abc001_a")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, problem.Title, "A. Snow")

	_, err = repo.GetByID(ctx, "missing")
	if !errors.Is(err, ErrProblemNotFound) {
		t.Fatalf("got %v, want ErrProblemNotFound", err)
	}
}

func TestProblemReplaceAllInvalidatesCache(t *testing.T) {
	database := &fakeDatabase{problems: []model.Problem{{ID: "abc001_a", ContestID: "abc001", Title: "A. Snow"}}}
	repo := NewProblemRepository(db.NewStaticProvider(database), newRepoCache(t))
	ctx := context.Background()

	// Warm the cache, then replace.
	_, err := repo.All(ctx)
	testutil.AssertNil(t, err)

	next := []model.Problem{
		{ID: "abc002_a", ContestID: "abc002", Title: "A. Fog", Point: f64Ptr(100)},
	}
	testutil.AssertNil(t, repo.ReplaceAll(ctx, next))

	testutil.AssertEqual(t, database.execs[0], "DELETE FROM problem")
	testutil.AssertTrue(t, strings.HasPrefix(database.execs[1], "INSERT INTO problem"),
		"replace should bulk insert the new rows")

	// Cache was dropped; the next read goes back to the database.
	database.problems = next
	_, err = repo.All(ctx)
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, database.queries, 2)
}

func TestProblemReplaceAllChunksInserts(t *testing.T) {
	database := &fakeDatabase{}
	repo := NewProblemRepository(db.NewStaticProvider(database), nil)

	problems := make([]model.Problem, replaceChunkSize+1)
	for i := range problems {
		problems[i] = model.Problem{ID: fmt.Sprintf("gen%04d", i), ContestID: "gen", Title: "Generated"}
	}
	testutil.AssertNil(t, repo.ReplaceAll(context.Background(), problems))

	inserts := 0
	for _, q := range database.execs {
		if strings.HasPrefix(q, "INSERT INTO problem") {
			inserts++
		}
	}
	testutil.AssertEqual(t, inserts, 2)
}
