package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertMeasurementSQL = `INSERT INTO measurements (
        started_at,
        finished_at,
        bpm,
        method,
        quality,
        peak_count,
        sample_count,
        dropped_count
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8
    )
    RETURNING id;`

	listMeasurementsBetweenSQL = `SELECT
        id,
        started_at,
        finished_at,
        bpm,
        method,
        quality,
        peak_count,
        sample_count,
        dropped_count,
        created_at
    FROM measurements
    WHERE started_at >= $1
      AND started_at < $2
    ORDER BY started_at ASC;`

	listRecentMeasurementsSQL = `SELECT
        id,
        started_at,
        finished_at,
        bpm,
        method,
        quality,
        peak_count,
        sample_count,
        dropped_count,
        created_at
    FROM measurements
    ORDER BY started_at DESC
    LIMIT $1;`

	countMeasurementsSQL = `SELECT COUNT(*) FROM measurements;`
)

// MeasurementStore defines operations for measurement persistence.
type MeasurementStore interface {
	InsertMeasurement(ctx context.Context, m Measurement) (int64, error)
	ListMeasurementsBetween(ctx context.Context, from, to time.Time) ([]Measurement, error)
	ListRecentMeasurements(ctx context.Context, limit int) ([]Measurement, error)
	CountMeasurements(ctx context.Context) (int64, error)
}

// Store aggregates access to the measurement history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertMeasurement persists a completed measurement and returns its id.
func (s *Store) InsertMeasurement(ctx context.Context, m Measurement) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var id int64
	err = pool.QueryRow(ctx, insertMeasurementSQL,
		m.StartedAt,
		m.FinishedAt,
		m.BPM,
		m.Method,
		m.Quality,
		m.PeakCount,
		m.SampleCount,
		m.DroppedCount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert measurement: %w", err)
	}
	return id, nil
}

// ListMeasurementsBetween returns measurements started within [from, to).
func (s *Store) ListMeasurementsBetween(ctx context.Context, from, to time.Time) ([]Measurement, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, listMeasurementsBetweenSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows)
}

// ListRecentMeasurements returns the most recent measurements, newest first.
func (s *Store) ListRecentMeasurements(ctx context.Context, limit int) ([]Measurement, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, listRecentMeasurementsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent measurements: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows)
}

// CountMeasurements returns the total number of stored measurements.
func (s *Store) CountMeasurements(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := pool.QueryRow(ctx, countMeasurementsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return count, nil
}

func scanMeasurements(rows pgx.Rows) ([]Measurement, error) {
	var out []Measurement
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(
			&m.ID,
			&m.StartedAt,
			&m.FinishedAt,
			&m.BPM,
			&m.Method,
			&m.Quality,
			&m.PeakCount,
			&m.SampleCount,
			&m.DroppedCount,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return out, nil
}

var _ MeasurementStore = (*Store)(nil)
