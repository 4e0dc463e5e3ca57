package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// ReadingStatus tells whether the pipeline produced a result.
type ReadingStatus string

const (
	// StatusOK marks a reading with a position and bearing.
	StatusOK ReadingStatus = "ok"
	// StatusFailed marks a reading whose pipeline run returned an error.
	StatusFailed ReadingStatus = "failed"
)

// Reading is the stored outcome of one pipeline run.
type Reading struct {
	ID     string        `json:"id"`
	Source string        `json:"source"`
	Status ReadingStatus `json:"status"`
	// Error and Kind are set for failed readings only.
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`

	TipX    float64 `json:"tip_x"`
	TipY    float64 `json:"tip_y"`
	Bearing float64 `json:"bearing"`
	TipPX   float64 `json:"tip_px"`
	TipPY   float64 `json:"tip_py"`

	CreatedAt time.Time `json:"created_at"`
}

// OK reports whether the reading holds a result.
func (r *Reading) OK() bool {
	return r.Status == StatusOK
}

// ReadingRepository provides CRUD operations for readings.
type ReadingRepository struct {
	db *sql.DB
}

// Readings returns the reading repository for this store.
func (s *Store) Readings() *ReadingRepository {
	return &ReadingRepository{db: s.db}
}

const readingColumns = `id, source, status, error, kind, tip_x, tip_y, bearing, tip_px, tip_py, created_at`

// Create inserts a new reading, assigning its ID and creation time when unset.
func (r *ReadingRepository) Create(rd *Reading) error {
	if rd.ID == "" {
		rd.ID = uuid.New().String()
	}
	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO readings (`+readingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.ID, rd.Source, string(rd.Status), rd.Error, rd.Kind,
		rd.TipX, rd.TipY, rd.Bearing, rd.TipPX, rd.TipPY, rd.CreatedAt,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(row scanner) (*Reading, error) {
	rd := &Reading{}
	var status string
	err := row.Scan(&rd.ID, &rd.Source, &status, &rd.Error, &rd.Kind,
		&rd.TipX, &rd.TipY, &rd.Bearing, &rd.TipPX, &rd.TipPY, &rd.CreatedAt)
	if err != nil {
		return nil, err
	}
	rd.Status = ReadingStatus(status)
	return rd, nil
}

// GetByID retrieves a reading by its ID.
func (r *ReadingRepository) GetByID(id string) (*Reading, error) {
	rd, err := scanReading(r.db.QueryRow(
		`SELECT `+readingColumns+` FROM readings WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rd, nil
}

// List returns the most recent readings, newest first. A limit of zero or
// less means DefaultListLimit.
func (r *ReadingRepository) List(limit int) ([]*Reading, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT `+readingColumns+` FROM readings
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*Reading
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}

// Delete removes a reading by its ID.
func (r *ReadingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM readings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
