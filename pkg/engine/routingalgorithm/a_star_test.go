package routingalgorithm_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"lintang/neuracity/pkg/costfunction"
	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/engine/routingalgorithm"
	"lintang/neuracity/pkg/graph"
	"lintang/neuracity/pkg/hazard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawSegment(t *testing.T, from, to datastructure.Coordinate, lengthM, speed float64) datastructure.RawSegment {
	t.Helper()
	r, err := datastructure.NewRawSegment("", from, to, lengthM, speed, 0, "", "")
	require.NoError(t, err)
	return r
}

var (
	nodeA = datastructure.NewCoordinate(0, 0)
	nodeB = datastructure.NewCoordinate(0, 0.0089)
	nodeC = datastructure.NewCoordinate(0.003, 0.00445)
)

// triangle A-B 1000 m, A-C 600 m, C-B 600 m. segment 0 = AB.
func triangle(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.BuildGraph([]datastructure.RawSegment{
		rawSegment(t, nodeA, nodeB, 1000, 50),
		rawSegment(t, nodeA, nodeC, 600, 50),
		rawSegment(t, nodeC, nodeB, 600, 50),
	})
	require.NoError(t, err)
	require.Equal(t, 3, g.NumSegments())
	return g
}

func assertContiguous(t *testing.T, g *graph.Graph, p datastructure.Path) {
	t.Helper()
	require.Len(t, p.Segments, len(p.Nodes)-1)
	for i := 0; i+1 < len(p.Nodes); i++ {
		id, ok := g.SegmentBetween(p.Nodes[i], p.Nodes[i+1])
		require.True(t, ok)
		require.Equal(t, id, p.Segments[i])
	}
}

func TestAStarTriangleModeSensitivity(t *testing.T) {
	g := triangle(t)
	rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{})
	w := costfunction.DefaultWeights()
	ctx := context.Background()

	tests := []struct {
		name       string
		congestion float64
		cf         costfunction.CostFunction
		want       []datastructure.NodeID
		wantCost   float64
	}{
		{
			name:       "drive takes the direct road under light congestion",
			congestion: 0.2,
			cf:         costfunction.NewDrive(w),
			want:       []datastructure.NodeID{0, 1},
			wantCost:   1.0 / 45.0,
		},
		{
			name:       "eco detours around light congestion",
			congestion: 0.2,
			cf:         costfunction.NewEco(w),
			want:       []datastructure.NodeID{0, 2, 1},
			wantCost:   1.2 / 50.0,
		},
		{
			name:       "eco detours around full congestion",
			congestion: 1.0,
			cf:         costfunction.NewEco(w),
			want:       []datastructure.NodeID{0, 2, 1},
			wantCost:   1.2 / 50.0,
		},
		{
			name:       "drive detours when the direct road crawls",
			congestion: 1.0,
			cf:         costfunction.NewDrive(w),
			want:       []datastructure.NodeID{0, 2, 1},
			wantCost:   1.2 / 50.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pen := hazard.NewSnapshotFromPenalties([]datastructure.Penalty{{Congestion: tt.congestion}, {}, {}}, 40, time.Time{})

			p, err := rt.AStar(ctx, g, pen, 0, 1, tt.cf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Nodes)
			assert.InDelta(t, tt.wantCost, p.Cost, 1e-9)
			assertContiguous(t, g, p)
		})
	}
}

func TestAStarGridModesAgreeWithoutHazards(t *testing.T) {
	// grid 3x3, jarak antar node ~89 m tapi panjang segment 100 m
	const step = 0.0008
	coord := func(r, c int) datastructure.Coordinate {
		return datastructure.NewCoordinate(33.75+float64(r)*step, -84.39+float64(c)*step)
	}
	raws := []datastructure.RawSegment{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if c+1 < 3 {
				raws = append(raws, rawSegment(t, coord(r, c), coord(r, c+1), 100, 50))
			}
			if r+1 < 3 {
				raws = append(raws, rawSegment(t, coord(r, c), coord(r+1, c), 100, 50))
			}
		}
	}
	g, err := graph.BuildGraph(raws)
	require.NoError(t, err)
	require.Equal(t, 9, g.NumNodes())

	start, err := g.Snap(coord(0, 0), 50)
	require.NoError(t, err)
	goal, err := g.Snap(coord(2, 2), 50)
	require.NoError(t, err)

	rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{})
	empty := hazard.NewSnapshotFromPenalties(nil, 40, time.Time{})

	var first []datastructure.NodeID
	for _, mode := range datastructure.Modes() {
		cf, err := costfunction.ForMode(mode, costfunction.DefaultWeights())
		require.NoError(t, err)

		p, err := rt.AStar(context.Background(), g, empty, start, goal, cf)
		require.NoError(t, err)
		assert.Len(t, p.Nodes, 5, "mode %s", mode)
		assertContiguous(t, g, p)

		total := 0.0
		for _, id := range p.Segments {
			total += g.Segment(id).LengthM
		}
		assert.InDelta(t, 400.0, total, 1e-9)

		if first == nil {
			first = p.Nodes
		}
		assert.Equal(t, first, p.Nodes, "mode %s", mode)
	}
}

func TestAStarNoPath(t *testing.T) {
	g, err := graph.BuildGraph([]datastructure.RawSegment{
		rawSegment(t, nodeA, nodeB, 1000, 50),
		rawSegment(t, nodeB, nodeC, 600, 50),
		rawSegment(t, nodeC, nodeA, 600, 50),
		rawSegment(t, datastructure.NewCoordinate(1, 1), datastructure.NewCoordinate(1, 1.01), 0, 50),
		rawSegment(t, datastructure.NewCoordinate(1, 1.01), datastructure.NewCoordinate(1.01, 1), 0, 50),
		rawSegment(t, datastructure.NewCoordinate(1.01, 1), datastructure.NewCoordinate(1, 1), 0, 50),
	})
	require.NoError(t, err)

	rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{})
	_, err = rt.AStar(context.Background(), g, hazard.NewSnapshotFromPenalties(nil, 40, time.Time{}), 0, 4,
		costfunction.NewDrive(costfunction.DefaultWeights()))

	var noPath *datastructure.NoPathFoundError
	require.True(t, errors.As(err, &noPath))
	assert.Equal(t, datastructure.NodeID(0), noPath.From)
	assert.Equal(t, datastructure.NodeID(4), noPath.To)
}

func TestAStarStartEqualsGoal(t *testing.T) {
	g := triangle(t)
	rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{})

	p, err := rt.AStar(context.Background(), g, hazard.NewSnapshotFromPenalties(nil, 40, time.Time{}), 2, 2,
		costfunction.NewEco(costfunction.DefaultWeights()))
	require.NoError(t, err)
	assert.Equal(t, []datastructure.NodeID{2}, p.Nodes)
	assert.Empty(t, p.Segments)
	assert.Equal(t, 0.0, p.Cost)
}

func TestAStarInvalidNodes(t *testing.T) {
	g := triangle(t)
	rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{})

	_, err := rt.AStar(context.Background(), g, hazard.NewSnapshotFromPenalties(nil, 40, time.Time{}), 0, 99,
		costfunction.NewEco(costfunction.DefaultWeights()))
	assert.Equal(t, datastructure.CodeInvalidInput, datastructure.ErrorCode(err))
}

// line graph panjang biar budget habis sebelum goal
func lineGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	raws := make([]datastructure.RawSegment, 0, n)
	for i := 0; i < n; i++ {
		lon := float64(i) * 0.001
		raws = append(raws, rawSegment(t, datastructure.NewCoordinate(0, lon), datastructure.NewCoordinate(0, lon+0.001), 0, 50))
	}
	g, err := graph.BuildGraph(raws)
	require.NoError(t, err)
	return g
}

func TestAStarBudget(t *testing.T) {
	g := lineGraph(t, 2000)
	empty := hazard.NewSnapshotFromPenalties(nil, 40, time.Time{})
	cf := costfunction.NewDrive(costfunction.DefaultWeights())

	t.Run("expansion budget", func(t *testing.T) {
		rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{MaxExpansions: 100})
		_, err := rt.AStar(context.Background(), g, empty, 0, 2000, cf)

		var timeout *datastructure.SearchTimeoutError
		require.True(t, errors.As(err, &timeout))
		assert.Equal(t, 101, timeout.Expanded)
		assert.True(t, timeout.Retryable())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{})
		_, err := rt.AStar(ctx, g, empty, 0, 2000, cf)

		assert.Equal(t, datastructure.CodeSearchTimeout, datastructure.ErrorCode(err))
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("enough budget finds the goal", func(t *testing.T) {
		rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{MaxExpansions: 5000, Timeout: time.Minute})
		p, err := rt.AStar(context.Background(), g, empty, 0, 2000, cf)
		require.NoError(t, err)
		assert.Len(t, p.Nodes, 2001)
	})
}

// dijkstra tanpa heuristic sebagai pembanding
func referenceDijkstra(g *graph.Graph, pen routingalgorithm.PenaltySource, start, goal datastructure.NodeID,
	cf costfunction.CostFunction) float64 {
	dist := make([]float64, g.NumNodes())
	done := make([]bool, g.NumNodes())
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[start] = 0
	for {
		u := -1
		for i := range dist {
			if !done[i] && !math.IsInf(dist[i], 1) && (u == -1 || dist[i] < dist[u]) {
				u = i
			}
		}
		if u == -1 {
			return math.Inf(1)
		}
		if datastructure.NodeID(u) == goal {
			return dist[u]
		}
		done[u] = true
		for _, e := range g.Neighbors(datastructure.NodeID(u)) {
			seg := g.Segment(e.SegmentIDx)
			if nd := dist[u] + cf.Weight(seg, pen.Penalty(seg.ID)); nd < dist[e.ToNodeIDx] {
				dist[e.ToNodeIDx] = nd
			}
		}
	}
}

func TestAStarMatchesDijkstraOnRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rt := routingalgorithm.NewRouteAlgorithm(routingalgorithm.Budget{})

	for trial := 0; trial < 40; trial++ {
		n := 5 + rng.Intn(46)
		points := make([]datastructure.Coordinate, n)
		for i := range points {
			points[i] = datastructure.NewCoordinate(33.74+rng.Float64()*0.03, -84.40+rng.Float64()*0.03)
		}

		raws := []datastructure.RawSegment{}
		for i := 0; i < n*2; i++ {
			a, b := rng.Intn(n), rng.Intn(n)
			if a == b {
				continue
			}
			speed := 20 + rng.Float64()*60
			r, err := datastructure.NewRawSegment("", points[a], points[b], rng.Float64()*4000, speed, 3+rng.Float64()*3, "", "")
			require.NoError(t, err)
			raws = append(raws, r)
		}
		g, err := graph.BuildGraph(raws)
		require.NoError(t, err)
		if g.NumNodes() < 2 {
			continue
		}

		penalties := make([]datastructure.Penalty, g.NumSegments())
		for i := range penalties {
			penalties[i] = datastructure.Penalty{Congestion: rng.Float64(), Noise: rng.Float64(), Hazard: rng.Float64()}
		}
		snap := hazard.NewSnapshotFromPenalties(penalties, 40, time.Time{})

		for _, mode := range datastructure.Modes() {
			cf, err := costfunction.ForMode(mode, costfunction.DefaultWeights())
			require.NoError(t, err)

			start := datastructure.NodeID(rng.Intn(g.NumNodes()))
			goal := datastructure.NodeID(rng.Intn(g.NumNodes()))
			want := referenceDijkstra(g, snap, start, goal, cf)

			p, err := rt.AStar(context.Background(), g, snap, start, goal, cf)
			if math.IsInf(want, 1) {
				assert.Equal(t, datastructure.CodeNoPath, datastructure.ErrorCode(err), "trial %d mode %s", trial, mode)
				continue
			}
			require.NoError(t, err, "trial %d mode %s", trial, mode)
			assert.InDelta(t, want, p.Cost, 1e-9, "trial %d mode %s", trial, mode)
			assertContiguous(t, g, p)

			again, err := rt.AStar(context.Background(), g, snap, start, goal, cf)
			require.NoError(t, err)
			assert.Equal(t, p, again, "search must be deterministic")
		}
	}
}
