package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/LearnLingo/internal/middleware"
	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/atinyakov/LearnLingo/internal/response"
)

// BookingService records trial-lesson requests.
type BookingService interface {
	Book(ctx context.Context, tutorID, userID string, b models.TrialBooking) (*models.TrialBooking, error)
}

// BookingHandler handles trial-lesson bookings.
type BookingHandler struct {
	BookingService BookingService
}

// BookTrial handles POST /api/tutors/{tutorID}/trial. Signed-in users get
// the booking linked to their account.
func (h *BookingHandler) BookTrial(w http.ResponseWriter, r *http.Request) {
	var req models.TrialBooking
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, errBadBody)
		return
	}

	uid, _ := middleware.GetUserIDFromContext(r.Context())
	booking, err := h.BookingService.Book(r.Context(), chi.URLParam(r, "tutorID"), uid, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, booking)
}
