package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/atinyakov/LearnLingo/internal/repository"
)

// BookingRepository stores trial-lesson bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b *models.TrialBooking) error
}

// BookingService validates and records trial-lesson requests.
type BookingService struct {
	repo      BookingRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a BookingService.
func NewBookingService(repo BookingRepository, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, validator: validator.New(), logger: logger, now: time.Now}
}

var bookingFieldMessages = map[string]string{
	"Reason":   "Please choose a reason",
	"FullName": "Full name must be at least 2 characters",
	"Email":    "Invalid email",
	"Phone":    "Phone number must be at least 6 characters",
}

// Book validates b and stores it for tutorID. userID is empty for anonymous requests.
func (s *BookingService) Book(ctx context.Context, tutorID, userID string, b models.TrialBooking) (*models.TrialBooking, error) {
	b.FullName = strings.TrimSpace(b.FullName)
	b.Email = strings.TrimSpace(b.Email)
	b.Phone = strings.TrimSpace(b.Phone)

	if err := s.validator.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if msg, ok := bookingFieldMessages[verrs[0].Field()]; ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, msg)
			}
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid booking")
	}

	b.ID = uuid.NewString()
	b.TutorID = tutorID
	b.UserID = userID
	b.CreatedAt = s.now().UTC()

	if err := s.repo.CreateBooking(ctx, &b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to book trial lesson")
	}

	s.logger.Info("trial lesson booked", zap.String("booking_id", b.ID), zap.String("tutor_id", tutorID))
	return &b, nil
}
