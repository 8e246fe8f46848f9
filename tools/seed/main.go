// Command seed imports tutors from a JSON file into the catalogue.
//
// The file holds an array of tutor records. Records without an id receive a
// ULID in file order, so the catalogue pages through them in the same order.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/atinyakov/LearnLingo/internal/db"
	"github.com/atinyakov/LearnLingo/internal/logger"
	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/atinyakov/LearnLingo/internal/repository"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TutorInserter stores one tutor under its key.
type TutorInserter interface {
	InsertTutor(ctx context.Context, t models.Tutor) error
}

// seed decodes tutors from r and inserts them, returning the keys in file order.
func seed(ctx context.Context, repo TutorInserter, r io.Reader, log *zap.Logger) ([]string, error) {
	var tutors []models.Tutor
	if err := json.NewDecoder(r).Decode(&tutors); err != nil {
		return nil, fmt.Errorf("decode tutors: %w", err)
	}

	ids := make([]string, 0, len(tutors))
	for i, t := range tutors {
		if t.ID == "" {
			t.ID = ulid.Make().String()
		}
		if err := repo.InsertTutor(ctx, t); err != nil {
			return ids, fmt.Errorf("tutor #%d (%s): %w", i, t.FullName(), err)
		}
		log.Debug("seeded tutor", zap.String("id", t.ID), zap.String("name", t.FullName()))
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func main() {
	var (
		dsn  string
		file string
	)
	flag.StringVar(&dsn, "d", os.Getenv("DATABASE_DSN"), "db address")
	flag.StringVar(&file, "f", "tutors.json", "path to the tutors JSON file")
	flag.Parse()

	log := logger.New()
	if err := log.Init("Info"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	f, err := os.Open(file)
	if err != nil {
		log.Log.Fatal("cannot open tutors file", zap.Error(err))
	}
	defer f.Close()

	conn, err := db.InitPostgres(dsn)
	if err != nil {
		log.Log.Fatal("cannot init database", zap.Error(err))
	}
	defer conn.Close()

	ids, err := seed(context.Background(), repository.NewPostgresTutorRepository(conn), f, log.Log)
	if err != nil {
		log.Log.Fatal("seeding failed", zap.Int("inserted", len(ids)), zap.Error(err))
	}
	log.Log.Info("seeded tutors", zap.Int("count", len(ids)))
}
