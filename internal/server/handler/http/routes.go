package http

import (
	"net/http"

	"github.com/atinyakov/LearnLingo/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Tutors    *TutorHandler
	Favorites *FavoritesHandler
	Bookings  *BookingHandler
}

// NewRouter constructs the HTTP handler that serves the API.
//
// Routes:
//
//	POST   /api/register                           → Auth.Register
//	POST   /api/login                              → Auth.Login
//	POST   /api/logout                             → Auth.Logout (bearer)
//	GET    /api/tutors?limit=&after=               → Tutors.List
//	POST   /api/tutors/batch                       → Tutors.Batch
//	POST   /api/tutors/{tutorID}/trial             → Bookings.BookTrial (optional bearer)
//	GET    /api/users/{uid}/favorites              → Favorites.List (owner)
//	GET    /api/users/{uid}/favorites/stream       → Favorites.Stream (owner, websocket)
//	PUT    /api/users/{uid}/favorites/{tutorID}    → Favorites.Put (owner)
//	DELETE /api/users/{uid}/favorites/{tutorID}    → Favorites.Delete (owner)
//	GET    /metrics                                → Prometheus
func NewRouter(
	h Handlers,
	tokens middleware.TokenValidator,
	metrics *middleware.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	if metrics != nil {
		r.Use(metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Bodies, when present, must be JSON.
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.With(middleware.Auth(tokens)).Post("/logout", h.Auth.Logout)

		r.Route("/tutors", func(r chi.Router) {
			r.Get("/", h.Tutors.List)
			r.Post("/batch", h.Tutors.Batch)
			r.With(middleware.OptionalAuth(tokens)).Post("/{tutorID}/trial", h.Bookings.BookTrial)
		})

		r.Route("/users/{uid}/favorites", func(r chi.Router) {
			r.Use(middleware.Auth(tokens), middleware.RequireOwner("uid"))
			r.Get("/", h.Favorites.List)
			r.Get("/stream", h.Favorites.Stream)
			r.Put("/{tutorID}", h.Favorites.Put)
			r.Delete("/{tutorID}", h.Favorites.Delete)
		})
	})

	return r
}
