package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/lib/pq"
)

const tutorColumns = `id, name, surname, languages, levels, rating, reviews, price_per_hour,
       lessons_done, avatar_url, lesson_info, conditions, experience`

// PostgresTutorRepository serves the tutor catalogue ordered by store key.
type PostgresTutorRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTutorRepository creates a PostgresTutorRepository using the provided *sql.DB.
func NewPostgresTutorRepository(db *sql.DB) *PostgresTutorRepository {
	return &PostgresTutorRepository{DB: db}
}

// FetchPage returns up to limit tutors with keys strictly greater than after,
// in ascending key order. An empty after starts from the first key.
//
// NextCursor is the last returned key when the page is full, and empty
// otherwise, which tells the caller the catalogue is exhausted.
func (r *PostgresTutorRepository) FetchPage(ctx context.Context, limit int, after string) (models.PageResult, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if after == "" {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+tutorColumns+` FROM tutors ORDER BY id LIMIT $1`, limit)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+tutorColumns+` FROM tutors WHERE id > $1 ORDER BY id LIMIT $2`, after, limit)
	}
	if err != nil {
		return models.PageResult{}, fmt.Errorf("FetchPage: %w", err)
	}
	defer rows.Close()

	items, err := scanTutors(rows)
	if err != nil {
		return models.PageResult{}, fmt.Errorf("FetchPage: %w", err)
	}

	res := models.PageResult{Items: items}
	if len(items) == limit && limit > 0 {
		res.NextCursor = items[len(items)-1].ID
	}
	return res, nil
}

// FetchByIDs returns the tutors with the given keys in request order.
// Keys without a record are silently omitted.
func (r *PostgresTutorRepository) FetchByIDs(ctx context.Context, ids []string) ([]models.Tutor, error) {
	if len(ids) == 0 {
		return []models.Tutor{}, nil
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+tutorColumns+` FROM tutors WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("FetchByIDs: %w", err)
	}
	defer rows.Close()

	found, err := scanTutors(rows)
	if err != nil {
		return nil, fmt.Errorf("FetchByIDs: %w", err)
	}

	byID := make(map[string]models.Tutor, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	out := make([]models.Tutor, 0, len(found))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
			delete(byID, id)
		}
	}
	return out, nil
}

// InsertTutor stores t under t.ID, replacing an existing record with the same key.
func (r *PostgresTutorRepository) InsertTutor(ctx context.Context, t models.Tutor) error {
	reviews, err := json.Marshal(nonNilReviews(t.Reviews))
	if err != nil {
		return fmt.Errorf("marshal reviews: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO tutors (`+tutorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			surname = EXCLUDED.surname,
			languages = EXCLUDED.languages,
			levels = EXCLUDED.levels,
			rating = EXCLUDED.rating,
			reviews = EXCLUDED.reviews,
			price_per_hour = EXCLUDED.price_per_hour,
			lessons_done = EXCLUDED.lessons_done,
			avatar_url = EXCLUDED.avatar_url,
			lesson_info = EXCLUDED.lesson_info,
			conditions = EXCLUDED.conditions,
			experience = EXCLUDED.experience
	`, t.ID, t.Name, t.Surname, pq.Array(t.Languages), pq.Array(t.Levels), t.Rating, reviews,
		t.PricePerHour, t.LessonsDone, t.AvatarURL, t.LessonInfo, pq.Array(t.Conditions), t.Experience)
	if err != nil {
		return fmt.Errorf("InsertTutor: %w", err)
	}
	return nil
}

func scanTutors(rows *sql.Rows) ([]models.Tutor, error) {
	items := []models.Tutor{}
	for rows.Next() {
		var (
			t       models.Tutor
			reviews []byte
		)
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Surname,
			pq.Array(&t.Languages), pq.Array(&t.Levels),
			&t.Rating, &reviews, &t.PricePerHour, &t.LessonsDone,
			&t.AvatarURL, &t.LessonInfo, pq.Array(&t.Conditions), &t.Experience,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if len(reviews) > 0 {
			if err := json.Unmarshal(reviews, &t.Reviews); err != nil {
				return nil, fmt.Errorf("decode reviews of %s: %w", t.ID, err)
			}
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func nonNilReviews(r []models.Review) []models.Review {
	if r == nil {
		return []models.Review{}
	}
	return r
}
