package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"probrowse/internal/browse/listing"
	catalogmodel "probrowse/internal/catalog/model"
	catalogrepo "probrowse/internal/catalog/repository"
	usermodel "probrowse/internal/user/model"
	userrepo "probrowse/internal/user/repository"
	pkgerrors "probrowse/pkg/errors"
	"probrowse/pkg/testutil"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

type fakeCatalog struct {
	problems    []catalogmodel.Problem
	contests    []catalogmodel.Contest
	models      []catalogmodel.DifficultyModel
	submissions map[string][]catalogmodel.Submission
	ratings     map[string]int

	invalidated []string
}

func (f *fakeCatalog) All(ctx context.Context) ([]catalogmodel.Problem, error) {
	return f.problems, nil
}

func (f *fakeCatalog) GetByID(ctx context.Context, id string) (*catalogmodel.Problem, error) {
	return nil, catalogrepo.ErrProblemNotFound
}

func (f *fakeCatalog) ReplaceAll(ctx context.Context, problems []catalogmodel.Problem) error {
	f.problems = problems
	return nil
}

func (f *fakeCatalog) InvalidateCache(ctx context.Context) error {
	f.invalidated = append(f.invalidated, "problems")
	return nil
}

type fakeContests struct {
	catalog *fakeCatalog
}

func (f *fakeContests) All(ctx context.Context) ([]catalogmodel.Contest, error) {
	return f.catalog.contests, nil
}

func (f *fakeContests) GetByID(ctx context.Context, id string) (*catalogmodel.Contest, error) {
	return nil, catalogrepo.ErrContestNotFound
}

func (f *fakeContests) ReplaceAll(ctx context.Context, contests []catalogmodel.Contest) error {
	f.catalog.contests = contests
	return nil
}

func (f *fakeContests) InvalidateCache(ctx context.Context) error {
	f.catalog.invalidated = append(f.catalog.invalidated, "contests")
	return nil
}

type fakeModels struct {
	catalog *fakeCatalog
}

func (f *fakeModels) All(ctx context.Context) ([]catalogmodel.DifficultyModel, error) {
	return f.catalog.models, nil
}

func (f *fakeModels) GetByProblemID(ctx context.Context, problemID string) (*catalogmodel.DifficultyModel, error) {
	return nil, catalogrepo.ErrModelNotFound
}

func (f *fakeModels) ReplaceAll(ctx context.Context, models []catalogmodel.DifficultyModel) error {
	f.catalog.models = models
	return nil
}

func (f *fakeModels) InvalidateCache(ctx context.Context) error {
	f.catalog.invalidated = append(f.catalog.invalidated, "models")
	return nil
}

type fakeSubmissions struct {
	catalog *fakeCatalog
}

func (f *fakeSubmissions) ListByUser(ctx context.Context, userID string) ([]catalogmodel.Submission, error) {
	return f.catalog.submissions[userID], nil
}

func (f *fakeSubmissions) ReplaceForUser(ctx context.Context, userID string, submissions []catalogmodel.Submission) error {
	if f.catalog.submissions == nil {
		f.catalog.submissions = make(map[string][]catalogmodel.Submission)
	}
	f.catalog.submissions[userID] = submissions
	return nil
}

func (f *fakeSubmissions) InvalidateCache(ctx context.Context, userID string) error { return nil }

type fakeRatings struct {
	catalog *fakeCatalog
}

func (f *fakeRatings) GetByUser(ctx context.Context, userID string) (*catalogmodel.UserRating, error) {
	rating, ok := f.catalog.ratings[userID]
	if !ok {
		return nil, catalogrepo.ErrRatingNotFound
	}
	return &catalogmodel.UserRating{UserID: userID, Rating: rating}, nil
}

func (f *fakeRatings) Upsert(ctx context.Context, rating *catalogmodel.UserRating) error {
	if f.catalog.ratings == nil {
		f.catalog.ratings = make(map[string]int)
	}
	f.catalog.ratings[rating.UserID] = rating.Rating
	return nil
}

func (f *fakeRatings) InvalidateCache(ctx context.Context, userID string) error { return nil }

type fakePreferences struct {
	stored map[string]usermodel.Preference
	err    error
}

func (f *fakePreferences) Get(ctx context.Context, userID string) (*usermodel.Preference, error) {
	if f.err != nil {
		return nil, f.err
	}
	pref, ok := f.stored[userID]
	if !ok {
		return nil, userrepo.ErrPreferenceNotFound
	}
	return &pref, nil
}

func (f *fakePreferences) Save(ctx context.Context, pref *usermodel.Preference) error {
	if f.err != nil {
		return f.err
	}
	if f.stored == nil {
		f.stored = make(map[string]usermodel.Preference)
	}
	f.stored[pref.UserID] = *pref
	return nil
}

func (f *fakePreferences) Delete(ctx context.Context, userID string) error {
	delete(f.stored, userID)
	return nil
}

func newBrowseFixture() (*BrowseService, *fakeCatalog, *fakePreferences) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		problems: []catalogmodel.Problem{
			{ID: "abc001_a", ContestID: "abc001", Title: "A. Snow", Point: floatPtr(100)},
			{ID: "abc001_b", ContestID: "abc001", Title: "B. Rain", Point: floatPtr(300)},
			{ID: "abc002_a", ContestID: "abc002", Title: "A. Fog", Point: floatPtr(100)},
		},
		contests: []catalogmodel.Contest{
			{ID: "abc002", Title: "Beginner Contest 002", StartEpochSecond: 2000},
			{ID: "abc001", Title: "Beginner Contest 001", StartEpochSecond: 1000},
		},
		models: []catalogmodel.DifficultyModel{
			{ProblemID: "abc001_a", Difficulty: floatPtr(800)},
			{ProblemID: "abc001_b", Difficulty: floatPtr(1500)},
			{ProblemID: "abc002_a", Difficulty: floatPtr(1200)},
		},
		submissions: map[string][]catalogmodel.Submission{
			"tourist": {
				{ID: 1, ProblemID: "abc001_a", UserID: "tourist", Result: "AC", EpochSecond: now.Add(-time.Hour).Unix()},
			},
		},
		ratings: map[string]int{"tourist": 1500},
	}
	prefs := &fakePreferences{}
	svc := NewBrowseService(
		catalog,
		&fakeContests{catalog: catalog},
		&fakeModels{catalog: catalog},
		&fakeSubmissions{catalog: catalog},
		&fakeRatings{catalog: catalog},
		prefs,
	)
	svc.now = func() time.Time { return now }
	return svc, catalog, prefs
}

func TestListContests(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	contests, err := svc.ListContests(context.Background())
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, len(contests), 2)
}

func TestListProblemsAnonymous(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	entries, err := svc.ListProblems(context.Background(), "", listing.Options{})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, len(entries), 3)
	for _, e := range entries {
		testutil.AssertEqual(t, e.StatusName, "untouched")
		testutil.AssertNil(t, e.SolveProbability)
	}
}

func TestListProblemsWithUser(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	entries, err := svc.ListProblems(context.Background(), "tourist", listing.Options{Status: listing.StatusSolved})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, len(entries), 1)
	testutil.AssertEqual(t, entries[0].Problem.ID, "abc001_a")
	testutil.AssertNotNil(t, entries[0].Difficulty)
}

func TestUserStatsEndToEnd(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	stats, err := svc.UserStats(context.Background(), "tourist")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, stats.SolvedCount, 1)
	testutil.AssertEqual(t, stats.RatedPointSum, float64(100))
	testutil.AssertEqual(t, *stats.Rating, 1500)

	_, err = svc.UserStats(context.Background(), "")
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.InvalidParams), "empty user id should be rejected")
}

func TestRecommendDefaultsExcludeSolved(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	results, err := svc.Recommend(context.Background(), "tourist", RecommendInput{})
	testutil.AssertNil(t, err)

	// Rating 1500, moderate band: abc001_b (1500) then abc002_a
	// (1200). The solved abc001_a is excluded by the default policy.
	testutil.AssertEqual(t, len(results), 2)
	testutil.AssertEqual(t, results[0].Problem.ID, "abc001_b")
	testutil.AssertEqual(t, results[1].Problem.ID, "abc002_a")
	testutil.AssertNotNil(t, results[0].Difficulty)
}

func TestRecommendRequestOverridesPreference(t *testing.T) {
	svc, _, prefs := newBrowseFixture()
	prefs.stored = map[string]usermodel.Preference{
		"tourist": {UserID: "tourist", Band: "easy", Exclude: "none", Count: 1},
	}

	// Stored preference alone: easy band targets 1300, nothing
	// excluded, one result.
	results, err := svc.Recommend(context.Background(), "tourist", RecommendInput{})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, len(results), 1)
	testutil.AssertEqual(t, results[0].Problem.ID, "abc002_a")

	// Request parameters override the stored preference.
	results, err = svc.Recommend(context.Background(), "tourist", RecommendInput{
		Band:    strPtr("difficult"),
		Exclude: strPtr("solved"),
		Count:   intPtr(2),
	})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, len(results), 2)
	testutil.AssertEqual(t, results[0].Problem.ID, "abc001_b")
}

func TestRecommendInvalidOptions(t *testing.T) {
	svc, _, _ := newBrowseFixture()
	ctx := context.Background()

	_, err := svc.Recommend(ctx, "tourist", RecommendInput{Band: strPtr("legendary")})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.InvalidRecommendOption), "unknown band should be rejected")

	_, err = svc.Recommend(ctx, "tourist", RecommendInput{Exclude: strPtr("tomorrow")})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.InvalidExcludeOption), "unknown exclude option should be rejected")

	_, err = svc.Recommend(ctx, "", RecommendInput{})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.InvalidParams), "empty user id should be rejected")
}

func TestRecommendCapsCount(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	results, err := svc.Recommend(context.Background(), "tourist", RecommendInput{
		Exclude: strPtr("none"),
		Count:   intPtr(100000),
	})
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, len(results) <= maxRecommendCount, "count must be capped")
}

func TestRecommendUnratedUser(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	results, err := svc.Recommend(context.Background(), "newbie", RecommendInput{Count: intPtr(1)})
	testutil.AssertNil(t, err)
	// Default center 1200 picks the 1200 problem; no rating means no
	// predictions.
	testutil.AssertEqual(t, results[0].Problem.ID, "abc002_a")
	testutil.AssertNil(t, results[0].SolveProbability)
}

func TestGetPreferenceFallsBackToDefaults(t *testing.T) {
	svc, _, _ := newBrowseFixture()

	pref, err := svc.GetPreference(context.Background(), "newbie")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, pref, usermodel.DefaultPreference("newbie"))
}

func TestSavePreferenceValidation(t *testing.T) {
	svc, _, prefs := newBrowseFixture()
	ctx := context.Background()

	valid := usermodel.Preference{UserID: "tourist", Band: "difficult", Exclude: "2weeks", Count: 20}
	testutil.AssertNil(t, svc.SavePreference(ctx, valid))
	testutil.AssertEqual(t, prefs.stored["tourist"], valid)

	err := svc.SavePreference(ctx, usermodel.Preference{UserID: "tourist", Band: "legendary", Exclude: "solved", Count: 10})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.InvalidRecommendOption), "unknown band should be rejected")

	err = svc.SavePreference(ctx, usermodel.Preference{UserID: "tourist", Band: "easy", Exclude: "solved", Count: 0})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ValidationFailed), "zero count should be rejected")

	err = svc.SavePreference(ctx, usermodel.Preference{UserID: "tourist", Band: "easy", Exclude: "solved", Count: maxRecommendCount + 1})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ValidationFailed), "oversized count should be rejected")
}

func TestSavePreferenceStorageFailure(t *testing.T) {
	svc, _, prefs := newBrowseFixture()
	prefs.err = errors.New("redis down")

	err := svc.SavePreference(context.Background(), usermodel.DefaultPreference("tourist"))
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.PreferenceSaveFailed), "storage failure should map to save error")
}

func TestInvalidateCatalogCaches(t *testing.T) {
	svc, catalog, _ := newBrowseFixture()

	svc.InvalidateCatalogCaches(context.Background())
	testutil.AssertEqual(t, catalog.invalidated, []string{"problems", "contests", "models"})
}
