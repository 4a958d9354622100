package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/provider/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	p := datastructure.NewCoordinate(33.749, -84.388)

	open, err := datastructure.NewIncidentSample("1", p, 0.9, 0.9, "open", ts)
	require.NoError(t, err)
	closed, err := datastructure.NewIncidentSample("2", p, 0.9, 0.9, "resolved", ts)
	require.NoError(t, err)

	s := memory.NewStatic(open, closed)

	all, err := s.GetSegments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	incidents, err := s.GetOpenIncidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []datastructure.HazardSample{open}, incidents)

	boom := errors.New("upstream down")
	s.Fail(boom)
	_, err = s.GetSegments(ctx)
	assert.ErrorIs(t, err, boom)

	empty, err := memory.Empty().GetSegments(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
