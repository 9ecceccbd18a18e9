package service

import (
	"context"
	"fmt"
	"time"

	catalogrepo "probrowse/internal/catalog/repository"
	"probrowse/internal/catalog/upstream"
	"probrowse/internal/common/cache"
	pkgerrors "probrowse/pkg/errors"
	"probrowse/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	syncLockKey = "sync:catalog:lock"
	syncLockTTL = 10 * time.Minute

	resourceProblems = "problems"
	resourceContests = "contests"
	resourceModels   = "problem-models"
)

// SyncService mirrors the upstream archive into MySQL, archives the
// raw payloads and announces finished refreshes.
type SyncService struct {
	client      *upstream.Client
	problems    catalogrepo.ProblemRepository
	contests    catalogrepo.ContestRepository
	models      catalogrepo.DifficultyModelRepository
	submissions catalogrepo.SubmissionRepository
	ratings     catalogrepo.RatingRepository
	lock        cache.LockOps
	archiver    *SnapshotArchiver
	publisher   *CatalogRefreshPublisher
	now         func() time.Time
}

// NewSyncService creates a new SyncService. archiver, publisher and
// lock may be nil; the corresponding step is then skipped.
func NewSyncService(
	client *upstream.Client,
	problems catalogrepo.ProblemRepository,
	contests catalogrepo.ContestRepository,
	models catalogrepo.DifficultyModelRepository,
	submissions catalogrepo.SubmissionRepository,
	ratings catalogrepo.RatingRepository,
	lock cache.LockOps,
	archiver *SnapshotArchiver,
	publisher *CatalogRefreshPublisher,
) *SyncService {
	return &SyncService{
		client:      client,
		problems:    problems,
		contests:    contests,
		models:      models,
		submissions: submissions,
		ratings:     ratings,
		lock:        lock,
		archiver:    archiver,
		publisher:   publisher,
		now:         time.Now,
	}
}

// SyncCatalog replaces the full problem, contest and model snapshot.
// Only one catalog sync runs at a time across all instances; a second
// caller gets SyncInProgress. Archive and publish failures are logged
// and never fail the sync.
func (s *SyncService) SyncCatalog(ctx context.Context) error {
	if s.lock != nil {
		acquired, err := s.lock.TryLock(ctx, syncLockKey, syncLockTTL)
		if err != nil {
			return pkgerrors.Wrap(fmt.Errorf("acquire sync lock failed: %w", err), pkgerrors.SyncFailed)
		}
		if !acquired {
			return pkgerrors.New(pkgerrors.SyncInProgress)
		}
		defer func() {
			if err := s.lock.Unlock(ctx, syncLockKey); err != nil {
				logger.Warn(ctx, "release sync lock failed", zap.Error(err))
			}
		}()
	}

	problems, rawProblems, err := s.client.Problems(ctx)
	if err != nil {
		return pkgerrors.Wrap(fmt.Errorf("fetch problems failed: %w", err), pkgerrors.SyncFailed)
	}
	contests, rawContests, err := s.client.Contests(ctx)
	if err != nil {
		return pkgerrors.Wrap(fmt.Errorf("fetch contests failed: %w", err), pkgerrors.SyncFailed)
	}
	models, rawModels, err := s.client.DifficultyModels(ctx)
	if err != nil {
		return pkgerrors.Wrap(fmt.Errorf("fetch models failed: %w", err), pkgerrors.SyncFailed)
	}

	if err := s.problems.ReplaceAll(ctx, problems); err != nil {
		return pkgerrors.Wrap(fmt.Errorf("replace problems failed: %w", err), pkgerrors.SyncFailed)
	}
	if err := s.contests.ReplaceAll(ctx, contests); err != nil {
		return pkgerrors.Wrap(fmt.Errorf("replace contests failed: %w", err), pkgerrors.SyncFailed)
	}
	if err := s.models.ReplaceAll(ctx, models); err != nil {
		return pkgerrors.Wrap(fmt.Errorf("replace models failed: %w", err), pkgerrors.SyncFailed)
	}

	logger.Info(ctx, "catalog replaced",
		zap.Int("problems", len(problems)),
		zap.Int("contests", len(contests)),
		zap.Int("models", len(models)),
	)

	now := s.now()
	s.archive(ctx, resourceProblems, rawProblems, now)
	s.archive(ctx, resourceContests, rawContests, now)
	s.archive(ctx, resourceModels, rawModels, now)

	if s.publisher != nil {
		resources := []string{resourceProblems, resourceContests, resourceModels}
		if err := s.publisher.PublishRefreshed(ctx, resources, now); err != nil {
			logger.Warn(ctx, "publish refresh event failed", zap.Error(err))
		}
	}
	return nil
}

// SyncUser refreshes one user's submissions and rating.
func (s *SyncService) SyncUser(ctx context.Context, userID string) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.InvalidParams)
	}

	submissions, err := s.client.UserSubmissions(ctx, userID, 0)
	if err != nil {
		return pkgerrors.Wrap(fmt.Errorf("fetch submissions failed: %w", err), pkgerrors.SyncFailed)
	}
	if err := s.submissions.ReplaceForUser(ctx, userID, submissions); err != nil {
		return pkgerrors.Wrap(fmt.Errorf("replace submissions failed: %w", err), pkgerrors.SyncFailed)
	}

	rating, err := s.client.UserRating(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(fmt.Errorf("fetch rating failed: %w", err), pkgerrors.SyncFailed)
	}
	if rating != nil {
		rating.UserID = userID
		if err := s.ratings.Upsert(ctx, rating); err != nil {
			return pkgerrors.Wrap(fmt.Errorf("store rating failed: %w", err), pkgerrors.SyncFailed)
		}
	}

	logger.Info(ctx, "user synced",
		zap.String("user_id", userID),
		zap.Int("submissions", len(submissions)),
		zap.Bool("rated", rating != nil),
	)
	return nil
}

func (s *SyncService) archive(ctx context.Context, resource string, raw []byte, now time.Time) {
	if s.archiver == nil {
		return
	}
	key, err := s.archiver.Archive(ctx, resource, raw, now)
	if err != nil {
		logger.Warn(ctx, "archive snapshot failed", zap.String("resource", resource), zap.Error(err))
		return
	}
	logger.Info(ctx, "snapshot archived", zap.String("resource", resource), zap.String("key", key))
}
