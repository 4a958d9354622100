package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/provider/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	rows   [][]any
	idx    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.idx >= len(r.rows) {
		r.closed = true
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, v := range row {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeQuerier struct {
	rows [][]any
	err  error
	sql  string
	args []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return &fakeRows{rows: q.rows}, nil
}

func float(v float64) *float64 { return &v }

var ts = time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)

func TestTrafficRepository(t *testing.T) {
	q := &fakeQuerier{rows: [][]any{
		{"PEACHTREE_01", 33.7490, -84.3880, 0.8, ts},
		{"PONCE_01", 33.7725, -84.3655, 0.3, ts.Add(-time.Minute)},
	}}
	repo := postgres.NewTrafficRepository(q, time.Hour)

	samples, err := repo.GetSegments(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, datastructure.HazardSample{
		Kind:       datastructure.HazardCongestion,
		SourceID:   "PEACHTREE_01",
		Point:      datastructure.NewCoordinate(33.7490, -84.3880),
		Congestion: 0.8,
		Timestamp:  ts,
	}, samples[0])
	assert.Contains(t, q.sql, "DISTINCT ON (segment_id)")
	require.Len(t, q.args, 1)
}

func TestNoiseRepository(t *testing.T) {
	q := &fakeQuerier{rows: [][]any{{"MIDTOWN_03", 33.7838, -84.3830, 72.5, ts}}}
	samples, err := postgres.NewNoiseRepository(q, 0).GetSegments(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, datastructure.HazardNoise, samples[0].Kind)
	assert.Equal(t, 72.5, samples[0].NoiseDB)
	assert.NoError(t, samples[0].Validate())
}

func TestIssueRepository(t *testing.T) {
	q := &fakeQuerier{rows: [][]any{
		{"1", 33.7490, -84.3880, float(0.9), float(0.8), "open", ts},
		{"2", 33.7500, -84.3900, nil, nil, "in_progress", ts},
	}}
	samples, err := postgres.NewIssueRepository(q).GetOpenIncidents(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, 0.9, samples[0].Severity)
	assert.Equal(t, 0.8, samples[0].Urgency)
	assert.True(t, samples[0].IsOpen())
	assert.Equal(t, 0.0, samples[1].Severity)
	assert.Equal(t, "in_progress", samples[1].Status)
	assert.Contains(t, q.sql, "NOT IN ('resolved', 'closed')")
}

func TestRepositoryQueryError(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := postgres.NewTrafficRepository(&fakeQuerier{err: boom}, time.Hour).GetSegments(context.Background())
	assert.ErrorIs(t, err, boom)
}
