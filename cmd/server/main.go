// Package main initializes and starts the LearnLingo API server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and the favorites notifier.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/LearnLingo/internal/config"
	"github.com/atinyakov/LearnLingo/internal/db"
	"github.com/atinyakov/LearnLingo/internal/logger"
	"github.com/atinyakov/LearnLingo/internal/middleware"
	"github.com/atinyakov/LearnLingo/internal/repository"
	"github.com/atinyakov/LearnLingo/internal/server/handler/http"
	"github.com/atinyakov/LearnLingo/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Purge expired and revoked sessions in the background.
	db.StartSessionCleaner(ctx, postgresDB, options.CleanInterval, zapLogger)

	// Initialize repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	tutorRepo := repository.NewPostgresTutorRepository(postgresDB)
	favoriteRepo := repository.NewPostgresFavoriteRepository(postgresDB)
	bookingRepo := repository.NewPostgresBookingRepository(postgresDB)

	// Favorites change notifications: Redis when several instances share
	// the store, in-process otherwise.
	var notifier service.Notifier
	if options.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: options.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			zapLogger.Fatal("cannot reach redis", zap.String("addr", options.RedisAddr), zap.Error(err))
		}
		notifier = service.NewRedisNotifier(rdb, zapLogger)
		zapLogger.Info("favorites notifications via redis", zap.String("addr", options.RedisAddr))
	} else {
		notifier = service.NewHub()
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, zapLogger, service.AuthConfig{
		Secret:   options.JWTSecret,
		TokenTTL: options.TokenTTL,
	})
	tutorService := service.NewTutorService(tutorRepo, zapLogger)
	favoriteService := service.NewFavoriteService(favoriteRepo, notifier, zapLogger)
	bookingService := service.NewBookingService(bookingRepo, zapLogger)

	metrics := middleware.NewMetrics()

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth:   &http.AuthHandler{AuthService: authService},
		Tutors: &http.TutorHandler{TutorService: tutorService},
		Favorites: &http.FavoritesHandler{
			FavoriteService: favoriteService,
			Logger:          zapLogger,
			Metrics:         metrics,
		},
		Bookings: &http.BookingHandler{BookingService: bookingService},
	}, authService, metrics, zapLogger)

	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", addr))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", addr))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
