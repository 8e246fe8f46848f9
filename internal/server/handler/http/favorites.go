package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/atinyakov/LearnLingo/internal/middleware"
	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/atinyakov/LearnLingo/internal/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// FavoriteService writes and observes a user's favorites.
type FavoriteService interface {
	Set(ctx context.Context, userID, tutorID string) error
	Remove(ctx context.Context, userID, tutorID string) error
	Snapshot(ctx context.Context, userID string) ([]string, error)
	Watch(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}

// FavoritesHandler serves /api/users/{uid}/favorites. Ownership is checked
// by middleware.RequireOwner before any method runs.
type FavoritesHandler struct {
	FavoriteService FavoriteService
	Logger          *zap.Logger
	Metrics         *middleware.Metrics
	Upgrader        websocket.Upgrader
}

// Put handles PUT /api/users/{uid}/favorites/{tutorID}.
func (h *FavoritesHandler) Put(w http.ResponseWriter, r *http.Request) {
	if err := h.FavoriteService.Set(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "tutorID")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// Delete handles DELETE /api/users/{uid}/favorites/{tutorID}.
func (h *FavoritesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.FavoriteService.Remove(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "tutorID")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

// List handles GET /api/users/{uid}/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.FavoriteService.Snapshot(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, models.FavoritesSnapshot{IDs: nonNil(ids)})
}

// Stream handles GET /api/users/{uid}/favorites/stream. It upgrades to a
// websocket, sends the current snapshot and then a fresh snapshot after
// every change until either side closes.
func (h *FavoritesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")
	log := h.logger().With(zap.String("user_id", uid))

	// Subscribe before the first read so that no change falls in between.
	signals, cancel, err := h.FavoriteService.Watch(ctx, uid)
	if err != nil {
		response.Error(w, err)
		return
	}
	defer cancel()

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.Metrics.StreamOpened()
	defer h.Metrics.StreamClosed()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		ids, err := h.FavoriteService.Snapshot(ctx, uid)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(models.FavoritesSnapshot{IDs: nonNil(ids)})
	}

	if err := send(); err != nil {
		log.Warn("failed to send favorites snapshot", zap.Error(err))
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			if err := send(); err != nil {
				log.Warn("failed to send favorites snapshot", zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *FavoritesHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
