package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
)

// FavoriteRepository stores per-user favorite tutor keys.
type FavoriteRepository interface {
	SetFavorite(ctx context.Context, userID, tutorID string) error
	RemoveFavorite(ctx context.Context, userID, tutorID string) error
	ListFavorites(ctx context.Context, userID string) ([]string, error)
}

// FavoriteService writes favorites and announces every change through a Notifier.
type FavoriteService struct {
	repo     FavoriteRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewFavoriteService creates a FavoriteService.
func NewFavoriteService(repo FavoriteRepository, notifier Notifier, logger *zap.Logger) *FavoriteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteService{repo: repo, notifier: notifier, logger: logger}
}

// Set marks tutorID as a favorite of userID. It is idempotent.
func (s *FavoriteService) Set(ctx context.Context, userID, tutorID string) error {
	if err := validKey(tutorID); err != nil {
		return err
	}
	if err := s.repo.SetFavorite(ctx, userID, tutorID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set favorite")
	}
	s.announce(ctx, userID)
	return nil
}

// Remove unmarks tutorID. Removing a missing key succeeds.
func (s *FavoriteService) Remove(ctx context.Context, userID, tutorID string) error {
	if err := validKey(tutorID); err != nil {
		return err
	}
	if err := s.repo.RemoveFavorite(ctx, userID, tutorID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove favorite")
	}
	s.announce(ctx, userID)
	return nil
}

// Snapshot returns the current favorite keys of userID.
func (s *FavoriteService) Snapshot(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read favorites")
	}
	return ids, nil
}

// Watch subscribes to change signals for userID.
func (s *FavoriteService) Watch(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	ch, cancel, err := s.notifier.Subscribe(ctx, userID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to watch favorites")
	}
	return ch, cancel, nil
}

// announce never fails the write: the change is durable, and subscribers
// resynchronize on their next snapshot.
func (s *FavoriteService) announce(ctx context.Context, userID string) {
	if err := s.notifier.Publish(ctx, userID); err != nil {
		s.logger.Warn("failed to publish favorites change", zap.String("user_id", userID), zap.Error(err))
	}
}

func validKey(tutorID string) error {
	if strings.TrimSpace(tutorID) == "" || strings.ContainsAny(tutorID, "/.#$[]") {
		return appErrors.Clone(appErrors.ErrValidation, "invalid tutor key")
	}
	return nil
}
