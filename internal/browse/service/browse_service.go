package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"probrowse/internal/browse/listing"
	catalogmodel "probrowse/internal/catalog/model"
	catalogrepo "probrowse/internal/catalog/repository"
	"probrowse/internal/recommend"
	usermodel "probrowse/internal/user/model"
	userrepo "probrowse/internal/user/repository"
	pkgerrors "probrowse/pkg/errors"
	"probrowse/pkg/utils/logger"

	"go.uber.org/zap"
)

// maxRecommendCount caps one recommendation response.
const maxRecommendCount = 200

// BrowseService serves listings, statistics and recommendations over
// the synced catalog snapshot.
type BrowseService struct {
	problems    catalogrepo.ProblemRepository
	contests    catalogrepo.ContestRepository
	models      catalogrepo.DifficultyModelRepository
	submissions catalogrepo.SubmissionRepository
	ratings     catalogrepo.RatingRepository
	preferences userrepo.PreferenceRepository
	now         func() time.Time
}

// NewBrowseService creates a new BrowseService.
func NewBrowseService(
	problems catalogrepo.ProblemRepository,
	contests catalogrepo.ContestRepository,
	models catalogrepo.DifficultyModelRepository,
	submissions catalogrepo.SubmissionRepository,
	ratings catalogrepo.RatingRepository,
	preferences userrepo.PreferenceRepository,
) *BrowseService {
	return &BrowseService{
		problems:    problems,
		contests:    contests,
		models:      models,
		submissions: submissions,
		ratings:     ratings,
		preferences: preferences,
		now:         time.Now,
	}
}

// ListContests returns all synced contests, newest first.
func (s *BrowseService) ListContests(ctx context.Context) ([]catalogmodel.Contest, error) {
	contests, err := s.contests.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("load contests failed: %w", err), pkgerrors.ListingFailed)
	}
	return contests, nil
}

// ListProblems returns the filtered, sorted catalog. When userID is
// empty the user-relative fields are zero valued.
func (s *BrowseService) ListProblems(ctx context.Context, userID string, opts listing.Options) ([]listing.Entry, error) {
	problems, err := s.problems.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("load problems failed: %w", err), pkgerrors.ListingFailed)
	}
	models, err := s.modelsByID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("load models failed: %w", err), pkgerrors.ListingFailed)
	}

	history := recommend.SolveHistory{}
	var rating *int
	if userID != "" {
		history, rating, err = s.userContext(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	return listing.Apply(problems, models, history, rating, opts), nil
}

// UserStats returns derived solve statistics for one user.
func (s *BrowseService) UserStats(ctx context.Context, userID string) (listing.UserStats, error) {
	if userID == "" {
		return listing.UserStats{}, pkgerrors.New(pkgerrors.InvalidParams)
	}
	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return listing.UserStats{}, pkgerrors.Wrap(fmt.Errorf("load submissions failed: %w", err), pkgerrors.SubmissionQueryFailed)
	}
	problems, err := s.problems.All(ctx)
	if err != nil {
		return listing.UserStats{}, pkgerrors.Wrap(fmt.Errorf("load problems failed: %w", err), pkgerrors.ListingFailed)
	}
	rating, err := s.userRating(ctx, userID)
	if err != nil {
		return listing.UserStats{}, err
	}
	return listing.ComputeStats(userID, rating, submissions, problems), nil
}

// RecommendInput carries per-request overrides. A nil field falls back
// to the user's stored preference.
type RecommendInput struct {
	Band                *string
	Exclude             *string
	IncludeExperimental *bool
	Count               *int
}

// Recommend selects problems near the user's band target. Request
// parameters override stored preferences; unset values fall back to
// preference, then defaults.
func (s *BrowseService) Recommend(ctx context.Context, userID string, input RecommendInput) ([]recommend.RecommendedProblem, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.InvalidParams)
	}

	pref, err := s.preference(ctx, userID)
	if err != nil {
		return nil, err
	}

	bandName := pref.Band
	if input.Band != nil {
		bandName = *input.Band
	}
	band, err := recommend.ParseBand(bandName)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.InvalidRecommendOption).WithMessage(err.Error())
	}

	excludeName := pref.Exclude
	if input.Exclude != nil {
		excludeName = *input.Exclude
	}
	exclude, err := recommend.ParseExcludeOption(excludeName)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.InvalidExcludeOption).WithMessage(err.Error())
	}

	includeExperimental := pref.IncludeExperimental
	if input.IncludeExperimental != nil {
		includeExperimental = *input.IncludeExperimental
	}

	count := pref.Count
	if input.Count != nil {
		count = *input.Count
	}
	if count > maxRecommendCount {
		count = maxRecommendCount
	}

	problems, err := s.problems.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("load problems failed: %w", err), pkgerrors.RecommendFailed)
	}
	models, err := s.modelsByID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("load models failed: %w", err), pkgerrors.RecommendFailed)
	}
	history, rating, err := s.userContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return recommend.Select(problems, recommend.Inputs{
		IsIncluded: func(problemID string) bool {
			return recommend.Included(exclude, history, problemID, now)
		},
		Model: func(problemID string) (catalogmodel.DifficultyModel, bool) {
			m, ok := models[problemID]
			return m, ok
		},
		IncludeExperimental: includeExperimental,
		UserRating:          rating,
		Band:                band,
		Count:               count,
	}), nil
}

// GetPreference returns the user's stored options, or defaults when
// nothing was saved yet.
func (s *BrowseService) GetPreference(ctx context.Context, userID string) (usermodel.Preference, error) {
	if userID == "" {
		return usermodel.Preference{}, pkgerrors.New(pkgerrors.InvalidParams)
	}
	return s.preference(ctx, userID)
}

// SavePreference validates and persists the user's options.
func (s *BrowseService) SavePreference(ctx context.Context, pref usermodel.Preference) error {
	if pref.UserID == "" {
		return pkgerrors.New(pkgerrors.InvalidParams)
	}
	if _, err := recommend.ParseBand(pref.Band); err != nil {
		return pkgerrors.New(pkgerrors.InvalidRecommendOption).WithMessage(err.Error())
	}
	if _, err := recommend.ParseExcludeOption(pref.Exclude); err != nil {
		return pkgerrors.New(pkgerrors.InvalidExcludeOption).WithMessage(err.Error())
	}
	if pref.Count <= 0 || pref.Count > maxRecommendCount {
		return pkgerrors.Newf(pkgerrors.ValidationFailed, "count must be in 1..%d", maxRecommendCount)
	}
	if err := s.preferences.Save(ctx, &pref); err != nil {
		return pkgerrors.Wrap(fmt.Errorf("save preference failed: %w", err), pkgerrors.PreferenceSaveFailed)
	}
	return nil
}

// InvalidateCatalogCaches drops the shared listing caches. Called when
// a catalog refresh event arrives.
func (s *BrowseService) InvalidateCatalogCaches(ctx context.Context) {
	if err := s.problems.InvalidateCache(ctx); err != nil {
		logger.Warn(ctx, "invalidate problem cache failed", zap.Error(err))
	}
	if err := s.contests.InvalidateCache(ctx); err != nil {
		logger.Warn(ctx, "invalidate contest cache failed", zap.Error(err))
	}
	if err := s.models.InvalidateCache(ctx); err != nil {
		logger.Warn(ctx, "invalidate model cache failed", zap.Error(err))
	}
}

func (s *BrowseService) modelsByID(ctx context.Context) (map[string]catalogmodel.DifficultyModel, error) {
	models, err := s.models.All(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalogmodel.DifficultyModel, len(models))
	for _, m := range models {
		byID[m.ProblemID] = m
	}
	return byID, nil
}

func (s *BrowseService) userContext(ctx context.Context, userID string) (recommend.SolveHistory, *int, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return recommend.SolveHistory{}, nil, pkgerrors.Wrap(fmt.Errorf("load submissions failed: %w", err), pkgerrors.SubmissionQueryFailed)
	}
	rating, err := s.userRating(ctx, userID)
	if err != nil {
		return recommend.SolveHistory{}, nil, err
	}
	return recommend.NewSolveHistory(submissions), rating, nil
}

// userRating treats a missing rating as nil, not an error.
func (s *BrowseService) userRating(ctx context.Context, userID string) (*int, error) {
	rating, err := s.ratings.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrRatingNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(fmt.Errorf("load rating failed: %w", err), pkgerrors.DatabaseError)
	}
	value := rating.Rating
	return &value, nil
}

func (s *BrowseService) preference(ctx context.Context, userID string) (usermodel.Preference, error) {
	pref, err := s.preferences.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrPreferenceNotFound) {
			return usermodel.DefaultPreference(userID), nil
		}
		return usermodel.Preference{}, pkgerrors.Wrap(fmt.Errorf("load preference failed: %w", err), pkgerrors.CacheError)
	}
	return *pref, nil
}
