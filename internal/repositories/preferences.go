package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/watchlog/internal/models"
)

// PreferenceRepository remembers the list filter and sort order per entity kind.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the saved query for kind, or the default (all genres, ascending).
func (r *PreferenceRepository) Get(kind models.Kind) (models.ListQuery, error) {
	var genre, sort string
	err := r.db.QueryRow("SELECT genre, sort FROM list_preferences WHERE kind = ?", string(kind)).Scan(&genre, &sort)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ListQuery{Sort: models.SortAsc}, nil
	}
	if err != nil {
		return models.ListQuery{}, fmt.Errorf("failed to query preferences: %w", err)
	}

	order, err := models.ParseSort(sort)
	if err != nil {
		order = models.SortAsc
	}
	return models.ListQuery{Genre: genre, Sort: order}, nil
}

// Save stores the genre filter and sort order of q for kind. The title search is not persisted.
func (r *PreferenceRepository) Save(kind models.Kind, q models.ListQuery) error {
	sort := q.Sort
	if sort == "" {
		sort = models.SortAsc
	}

	query := `
		INSERT INTO list_preferences (kind, genre, sort, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET genre = excluded.genre, sort = excluded.sort, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, string(kind), q.Genre, string(sort), time.Now()); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
