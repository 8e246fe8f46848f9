package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/models"
)

const (
	// DefaultPageSize is used when a request does not name a limit.
	DefaultPageSize = 4
	// MaxPageSize bounds a single page.
	MaxPageSize = 100
	// MaxBatchSize bounds a by-id lookup.
	MaxBatchSize = 100
)

// TutorRepository reads the tutor catalogue.
type TutorRepository interface {
	FetchPage(ctx context.Context, limit int, after string) (models.PageResult, error)
	FetchByIDs(ctx context.Context, ids []string) ([]models.Tutor, error)
}

// TutorService serves key-ordered pages and by-id batches of tutors.
type TutorService struct {
	repo   TutorRepository
	logger *zap.Logger
}

// NewTutorService creates a TutorService.
func NewTutorService(repo TutorRepository, logger *zap.Logger) *TutorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TutorService{repo: repo, logger: logger}
}

// Page returns up to limit tutors after the cursor. A zero limit means DefaultPageSize.
func (s *TutorService) Page(ctx context.Context, limit int, after string) (models.PageResult, error) {
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 0 || limit > MaxPageSize {
		return models.PageResult{}, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("limit must be between 1 and %d", MaxPageSize))
	}

	page, err := s.repo.FetchPage(ctx, limit, after)
	if err != nil {
		s.logger.Error("fetch page failed", zap.String("after", after), zap.Error(err))
		return models.PageResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch tutors")
	}
	return page, nil
}

// ByIDs returns the tutors with the given keys in request order, omitting unknown keys.
func (s *TutorService) ByIDs(ctx context.Context, ids []string) ([]models.Tutor, error) {
	if len(ids) > MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("at most %d ids per request", MaxBatchSize))
	}

	items, err := s.repo.FetchByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("fetch by ids failed", zap.Int("count", len(ids)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch tutors")
	}
	return items, nil
}
