package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/atinyakov/LearnLingo/internal/response"
)

// TutorService serves the tutor catalogue.
type TutorService interface {
	Page(ctx context.Context, limit int, after string) (models.PageResult, error)
	ByIDs(ctx context.Context, ids []string) ([]models.Tutor, error)
}

// TutorHandler serves tutor pages and by-id batches.
type TutorHandler struct {
	TutorService TutorService
}

// BatchRequest is the body of POST /api/tutors/batch.
type BatchRequest struct {
	IDs []string `json:"ids"`
}

// BatchResponse is the answer to a BatchRequest.
type BatchResponse struct {
	Items []models.Tutor `json:"items"`
}

// List handles GET /api/tutors?limit=&after=.
func (h *TutorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, appErrors.Clone(appErrors.ErrValidation, "limit must be a number"))
			return
		}
		limit = n
	}

	page, err := h.TutorService.Page(r.Context(), limit, q.Get("after"))
	if err != nil {
		response.Error(w, err)
		return
	}
	if page.Items == nil {
		page.Items = []models.Tutor{}
	}
	response.JSON(w, http.StatusOK, page)
}

// Batch handles POST /api/tutors/batch.
func (h *TutorHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, errBadBody)
		return
	}

	items, err := h.TutorService.ByIDs(r.Context(), req.IDs)
	if err != nil {
		response.Error(w, err)
		return
	}
	if items == nil {
		items = []models.Tutor{}
	}
	response.JSON(w, http.StatusOK, BatchResponse{Items: items})
}
