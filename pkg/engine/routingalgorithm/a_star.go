package routingalgorithm

import (
	"context"
	"math"
	"time"

	"lintang/neuracity/pkg/costfunction"
	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/geo"
	"lintang/neuracity/pkg/util"
)

// RoadGraph graph yang bisa di-search. semua method read-only.
type RoadGraph interface {
	NumNodes() int
	Node(id datastructure.NodeID) datastructure.Node
	Segment(id datastructure.SegmentID) datastructure.Segment
	Neighbors(id datastructure.NodeID) []datastructure.EdgePair
	MaxDriveSpeedKmh() float64
	MaxWalkSpeedKmh() float64
}

// PenaltySource penalty per segment. satu snapshot dipakai untuk seluruh search.
type PenaltySource interface {
	Penalty(id datastructure.SegmentID) datastructure.Penalty
}

// Budget batas search. nilai nol artinya tanpa batas.
type Budget struct {
	MaxExpansions int           `mapstructure:"max_expansions"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

const checkEvery = 256

type RouteAlgorithm struct {
	budget Budget
	now    func() time.Time
}

func NewRouteAlgorithm(budget Budget) *RouteAlgorithm {
	return &RouteAlgorithm{budget: budget, now: time.Now}
}

// FindPath AStar sekali jalan dengan budget.
func FindPath(ctx context.Context, g RoadGraph, penalties PenaltySource, start, goal datastructure.NodeID,
	cf costfunction.CostFunction, budget Budget) (datastructure.Path, error) {
	return NewRouteAlgorithm(budget).AStar(ctx, g, penalties, start, goal, cf)
}

/*
AStar shortest path dari start ke goal dengan bobot cf.Weight(segment, penalty).

heuristic h(n) = haversine(n, goal) / cf.HeuristicSpeedKmh. panjang segment >= jarak great-circle endpoint-nya
dan kecepatan efektif <= heuristic speed, jadi h admissible dan consistent: node yang sudah di-pop dari heap
sudah optimal, pop berikutnya untuk node yang sama di-skip (lazy deletion).
*/
func (rt *RouteAlgorithm) AStar(ctx context.Context, g RoadGraph, penalties PenaltySource, start, goal datastructure.NodeID,
	cf costfunction.CostFunction) (datastructure.Path, error) {
	n := g.NumNodes()
	if start < 0 || int(start) >= n {
		return datastructure.Path{}, &datastructure.InputValidationError{Field: "start", Reason: "node is not in the graph"}
	}
	if goal < 0 || int(goal) >= n {
		return datastructure.Path{}, &datastructure.InputValidationError{Field: "goal", Reason: "node is not in the graph"}
	}
	if start == goal {
		return datastructure.Path{Nodes: []datastructure.NodeID{start}, Segments: []datastructure.SegmentID{}}, nil
	}

	startTime := rt.now()
	var deadline time.Time
	if rt.budget.Timeout > 0 {
		deadline = startTime.Add(rt.budget.Timeout)
	}

	goalNode := g.Node(goal)
	goalLoc := geo.NewLocation(goalNode.Lat, goalNode.Lon)
	heuristicSpeed := cf.HeuristicSpeedKmh(g)
	heuristic := func(id datastructure.NodeID) float64 {
		if heuristicSpeed <= 0 || math.IsNaN(heuristicSpeed) {
			return 0
		}
		node := g.Node(id)
		return geo.HaversineDistance(geo.NewLocation(node.Lat, node.Lon), goalLoc) / heuristicSpeed
	}

	costSoFar := make([]float64, n)
	for i := range costSoFar {
		costSoFar[i] = math.Inf(1)
	}
	cameFrom := make([]datastructure.EdgePair, n)
	closed := make([]bool, n)

	heap := NewMinHeap[datastructure.NodeID]()
	costSoFar[start] = 0
	cameFrom[start] = datastructure.EdgePair{ToNodeIDx: datastructure.InvalidNodeID, SegmentIDx: datastructure.InvalidSegmentID}
	heap.Insert(PriorityQueueNode[datastructure.NodeID]{Rank: heuristic(start), Item: start})

	expanded := 0
	for heap.Size() > 0 {
		current, _ := heap.ExtractMin()
		u := current.Item
		if closed[u] {
			continue
		}
		closed[u] = true
		expanded++

		if u == goal {
			return rt.createPath(start, goal, cameFrom, costSoFar[goal], expanded), nil
		}

		if rt.budget.MaxExpansions > 0 && expanded > rt.budget.MaxExpansions {
			return datastructure.Path{}, &datastructure.SearchTimeoutError{Expanded: expanded, Elapsed: rt.now().Sub(startTime)}
		}
		if expanded%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return datastructure.Path{}, &datastructure.SearchTimeoutError{Expanded: expanded, Elapsed: rt.now().Sub(startTime), Cause: err}
			}
			if !deadline.IsZero() && rt.now().After(deadline) {
				return datastructure.Path{}, &datastructure.SearchTimeoutError{Expanded: expanded, Elapsed: rt.now().Sub(startTime)}
			}
		}

		for _, edge := range g.Neighbors(u) {
			v := edge.ToNodeIDx
			if closed[v] {
				continue
			}
			seg := g.Segment(edge.SegmentIDx)
			w := util.Finite(cf.Weight(seg, penalties.Penalty(seg.ID)), math.Inf(1))
			newCost := costSoFar[u] + math.Max(w, 0)
			if newCost < costSoFar[v] {
				costSoFar[v] = newCost
				cameFrom[v] = datastructure.EdgePair{ToNodeIDx: u, SegmentIDx: edge.SegmentIDx}
				heap.Insert(PriorityQueueNode[datastructure.NodeID]{Rank: newCost + heuristic(v), Item: v})
			}
		}
	}

	return datastructure.Path{}, &datastructure.NoPathFoundError{From: start, To: goal}
}

func (rt *RouteAlgorithm) createPath(start, goal datastructure.NodeID, cameFrom []datastructure.EdgePair,
	cost float64, expanded int) datastructure.Path {
	nodes := []datastructure.NodeID{goal}
	segments := []datastructure.SegmentID{}
	for curr := goal; curr != start; {
		prev := cameFrom[curr]
		segments = append(segments, prev.SegmentIDx)
		nodes = append(nodes, prev.ToNodeIDx)
		curr = prev.ToNodeIDx
	}
	util.ReverseG(nodes)
	util.ReverseG(segments)

	return datastructure.Path{Nodes: nodes, Segments: segments, Cost: cost, Expanded: expanded}
}
