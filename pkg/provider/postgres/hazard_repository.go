package postgres

import (
	"context"
	"fmt"
	"time"

	"lintang/neuracity/pkg/datastructure"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier *pgxpool.Pool, *pgx.Conn atau pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	latestTrafficQuery = `
        SELECT DISTINCT ON (segment_id) segment_id, lat, lng, congestion, ts
        FROM traffic_segments
        WHERE ts >= $1
        ORDER BY segment_id, ts DESC
    `
	latestNoiseQuery = `
        SELECT DISTINCT ON (segment_id) segment_id, lat, lng, noise_db, ts
        FROM noise_segments
        WHERE ts >= $1
        ORDER BY segment_id, ts DESC
    `
	openIssuesQuery = `
        SELECT id::text, lat, lng, severity, urgency, status, created_at
        FROM issues
        WHERE lower(status) NOT IN ('resolved', 'closed')
        ORDER BY created_at DESC, id
    `
)

// NewPool pgxpool dari connection url postgres (Supabase juga bisa).
func NewPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// TrafficRepository sample congestion terbaru per segment_id dari tabel traffic_segments.
type TrafficRepository struct {
	db     Querier
	maxAge time.Duration
	now    func() time.Time
}

func NewTrafficRepository(db Querier, maxAge time.Duration) *TrafficRepository {
	return &TrafficRepository{db: db, maxAge: maxAge, now: time.Now}
}

func (r *TrafficRepository) GetSegments(ctx context.Context) ([]datastructure.HazardSample, error) {
	rows, err := r.db.Query(ctx, latestTrafficQuery, cutoff(r.now(), r.maxAge))
	if err != nil {
		return nil, fmt.Errorf("query traffic_segments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (datastructure.HazardSample, error) {
		var (
			segmentID  string
			lat, lng   float64
			congestion float64
			ts         time.Time
		)
		if err := row.Scan(&segmentID, &lat, &lng, &congestion, &ts); err != nil {
			return datastructure.HazardSample{}, err
		}
		return datastructure.HazardSample{
			Kind:       datastructure.HazardCongestion,
			SourceID:   segmentID,
			Point:      datastructure.NewCoordinate(lat, lng),
			Congestion: congestion,
			Timestamp:  ts,
		}, nil
	})
}

// NoiseRepository sample dB terbaru per segment_id dari tabel noise_segments.
type NoiseRepository struct {
	db     Querier
	maxAge time.Duration
	now    func() time.Time
}

func NewNoiseRepository(db Querier, maxAge time.Duration) *NoiseRepository {
	return &NoiseRepository{db: db, maxAge: maxAge, now: time.Now}
}

func (r *NoiseRepository) GetSegments(ctx context.Context) ([]datastructure.HazardSample, error) {
	rows, err := r.db.Query(ctx, latestNoiseQuery, cutoff(r.now(), r.maxAge))
	if err != nil {
		return nil, fmt.Errorf("query noise_segments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (datastructure.HazardSample, error) {
		var (
			segmentID string
			lat, lng  float64
			noiseDB   float64
			ts        time.Time
		)
		if err := row.Scan(&segmentID, &lat, &lng, &noiseDB, &ts); err != nil {
			return datastructure.HazardSample{}, err
		}
		return datastructure.HazardSample{
			Kind:      datastructure.HazardNoise,
			SourceID:  segmentID,
			Point:     datastructure.NewCoordinate(lat, lng),
			NoiseDB:   noiseDB,
			Timestamp: ts,
		}, nil
	})
}

// IssueRepository incident yang belum resolved/closed dari tabel issues.
type IssueRepository struct {
	db Querier
}

func NewIssueRepository(db Querier) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) GetOpenIncidents(ctx context.Context) ([]datastructure.HazardSample, error) {
	rows, err := r.db.Query(ctx, openIssuesQuery)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (datastructure.HazardSample, error) {
		var (
			id                string
			lat, lng          float64
			severity, urgency *float64
			status            string
			createdAt         time.Time
		)
		if err := row.Scan(&id, &lat, &lng, &severity, &urgency, &status, &createdAt); err != nil {
			return datastructure.HazardSample{}, err
		}
		return datastructure.HazardSample{
			Kind:      datastructure.HazardIncident,
			SourceID:  id,
			Point:     datastructure.NewCoordinate(lat, lng),
			Severity:  valueOr(severity, 0),
			Urgency:   valueOr(urgency, 0),
			Status:    status,
			Timestamp: createdAt,
		}, nil
	})
}

// cutoff maxAge <= 0 artinya semua sample.
func cutoff(now time.Time, maxAge time.Duration) time.Time {
	if maxAge <= 0 {
		return time.Unix(0, 0).UTC()
	}
	return now.Add(-maxAge)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
