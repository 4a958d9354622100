package graph

import (
	"fmt"
	"math"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/geo"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

const (
	DefaultMergeEpsilonM    = 5.0
	DefaultSnapMaxDistanceM = 300.0
	DefaultDriveSpeedKmh    = 50.0
	DefaultWalkSpeedKmh     = 5.0
	rtreeMinChildren        = 25
	rtreeMaxChildren        = 50
	pointTolerance          = 1e-9
)

type Option func(*builder)

func WithMergeEpsilon(m float64) Option {
	return func(b *builder) {
		if m >= 0 && !math.IsNaN(m) {
			b.mergeEpsilonM = m
		}
	}
}

func WithDefaultSpeeds(driveKmh, walkKmh float64) Option {
	return func(b *builder) {
		if driveKmh > 0 {
			b.defaultDriveKmh = driveKmh
		}
		if walkKmh > 0 {
			b.defaultWalkKmh = walkKmh
		}
	}
}

// nodePoint node graph di rtree. x = lon, y = lat.
type nodePoint struct {
	location rtreego.Point
	id       datastructure.NodeID
}

func (p *nodePoint) Bounds() rtreego.Rect {
	return p.location.ToRect(pointTolerance)
}

// Graph road network immutable. segment dua arah, satu segment per pasangan node.
type Graph struct {
	nodes    []datastructure.Node
	segments []datastructure.Segment
	adj      [][]datastructure.EdgePair
	pairs    map[[2]datastructure.NodeID]datastructure.SegmentID
	rt       *rtreego.Rtree
	bound    orb.Bound
	maxDrive float64
	maxWalk  float64
}

type builder struct {
	mergeEpsilonM   float64
	defaultDriveKmh float64
	defaultWalkKmh  float64

	nodes    []datastructure.Node
	segments []datastructure.Segment
	pairs    map[[2]datastructure.NodeID]datastructure.SegmentID
	rt       *rtreego.Rtree
}

// BuildGraph bikin graph dari raw segments. endpoint yang jaraknya <= merge epsilon ke node yang sudah ada digabung ke node itu.
// panjang segment = max(panjang input, haversine kedua endpoint) biar heuristic A* tetap admissible.
func BuildGraph(raws []datastructure.RawSegment, opts ...Option) (*Graph, error) {
	b := &builder{
		mergeEpsilonM:   DefaultMergeEpsilonM,
		defaultDriveKmh: DefaultDriveSpeedKmh,
		defaultWalkKmh:  DefaultWalkSpeedKmh,
		pairs:           make(map[[2]datastructure.NodeID]datastructure.SegmentID),
		rt:              rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren),
	}
	for _, opt := range opts {
		opt(b)
	}

	for i, raw := range raws {
		if err := raw.Validate(); err != nil {
			return nil, fmt.Errorf("raw segment %d: %w", i, err)
		}
		b.addSegment(raw)
	}

	return b.finish(), nil
}

func (b *builder) addSegment(raw datastructure.RawSegment) {
	from := b.nodeFor(raw.From)
	to := b.nodeFor(raw.To)
	if from == to {
		// self loop hasil merge
		return
	}

	fromNode, toNode := b.nodes[from], b.nodes[to]
	lengthM := math.Max(raw.LengthM, geo.DistanceMeters(fromNode.Lat, fromNode.Lon, toNode.Lat, toNode.Lon))
	midLat, midLon := geo.MidPoint(fromNode.Lat, fromNode.Lon, toNode.Lat, toNode.Lon)

	seg := datastructure.Segment{
		LengthM:       lengthM,
		DriveSpeedKmh: speedOrDefault(raw.DriveSpeedKmh, b.defaultDriveKmh),
		WalkSpeedKmh:  speedOrDefault(raw.WalkSpeedKmh, b.defaultWalkKmh),
		Mid:           datastructure.NewCoordinate(midLat, midLon),
		From:          from,
		To:            to,
		StreetName:    raw.StreetName,
		RoadClass:     raw.RoadClass,
	}

	key := pairKey(from, to)
	if existing, ok := b.pairs[key]; ok {
		// parallel segment: simpan yang lebih pendek, id tetap
		if seg.LengthM < b.segments[existing].LengthM {
			seg.ID = existing
			b.segments[existing] = seg
		}
		return
	}

	seg.ID = datastructure.SegmentID(len(b.segments))
	b.segments = append(b.segments, seg)
	b.pairs[key] = seg.ID
}

// nodeFor return node terdekat dalam merge epsilon, atau bikin node baru.
func (b *builder) nodeFor(c datastructure.Coordinate) datastructure.NodeID {
	if b.mergeEpsilonM > 0 && len(b.nodes) > 0 {
		if id, _, ok := nearestWithin(b.rt, b.nodes, c, b.mergeEpsilonM); ok {
			return id
		}
	}

	id := datastructure.NodeID(len(b.nodes))
	b.nodes = append(b.nodes, datastructure.Node{Lat: c.Lat, Lon: c.Lon, ID: id})
	b.rt.Insert(&nodePoint{location: rtreego.Point{c.Lon, c.Lat}, id: id})
	return id
}

func (b *builder) finish() *Graph {
	g := &Graph{
		nodes:    b.nodes,
		segments: b.segments,
		adj:      make([][]datastructure.EdgePair, len(b.nodes)),
		pairs:    b.pairs,
		rt:       b.rt,
	}

	for _, seg := range b.segments {
		g.adj[seg.From] = append(g.adj[seg.From], datastructure.EdgePair{ToNodeIDx: seg.To, SegmentIDx: seg.ID})
		g.adj[seg.To] = append(g.adj[seg.To], datastructure.EdgePair{ToNodeIDx: seg.From, SegmentIDx: seg.ID})
		g.maxDrive = math.Max(g.maxDrive, seg.DriveSpeedKmh)
		g.maxWalk = math.Max(g.maxWalk, seg.WalkSpeedKmh)
	}

	if len(g.nodes) > 0 {
		g.bound = orb.Bound{Min: orb.Point{g.nodes[0].Lon, g.nodes[0].Lat}, Max: orb.Point{g.nodes[0].Lon, g.nodes[0].Lat}}
		for _, n := range g.nodes[1:] {
			g.bound = g.bound.Extend(orb.Point{n.Lon, n.Lat})
		}
	}
	return g
}

// nearestWithin cari node terdekat dalam radiusM meter: prefilter bounding box di rtree, lalu haversine exact.
// kalau jaraknya sama, node dengan id lebih kecil yang dipilih.
func nearestWithin(rt *rtreego.Rtree, nodes []datastructure.Node, c datastructure.Coordinate,
	radiusM float64) (datastructure.NodeID, float64, bool) {
	bound := geo.BoundAroundPoint(c.Lat, c.Lon, radiusM)
	rect, err := rtreego.NewRect(rtreego.Point{bound.Min[0], bound.Min[1]},
		[]float64{math.Max(bound.Max[0]-bound.Min[0], pointTolerance), math.Max(bound.Max[1]-bound.Min[1], pointTolerance)})
	if err != nil {
		return datastructure.InvalidNodeID, 0, false
	}

	best := datastructure.InvalidNodeID
	bestDist := math.Inf(1)
	for _, sp := range rt.SearchIntersect(rect) {
		np := sp.(*nodePoint)
		n := nodes[np.id]
		d := geo.DistanceMeters(c.Lat, c.Lon, n.Lat, n.Lon)
		if d > radiusM {
			continue
		}
		if d < bestDist || (d == bestDist && np.id < best) {
			best, bestDist = np.id, d
		}
	}
	return best, bestDist, best != datastructure.InvalidNodeID
}

func speedOrDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func pairKey(a, b datastructure.NodeID) [2]datastructure.NodeID {
	if a > b {
		a, b = b, a
	}
	return [2]datastructure.NodeID{a, b}
}

// Snap node graph terdekat dari point dalam maxDistanceM meter. maxDistanceM <= 0 pakai default 300 m.
func (g *Graph) Snap(point datastructure.Coordinate, maxDistanceM float64) (datastructure.NodeID, error) {
	if err := datastructure.ValidateCoordinate("point", point); err != nil {
		return datastructure.InvalidNodeID, err
	}
	if maxDistanceM <= 0 || math.IsNaN(maxDistanceM) {
		maxDistanceM = DefaultSnapMaxDistanceM
	}

	// point jauh di luar bounding box graph tidak perlu query rtree
	if len(g.nodes) > 0 && g.bound.Intersects(geo.BoundAroundPoint(point.Lat, point.Lon, maxDistanceM)) {
		if id, _, ok := nearestWithin(g.rt, g.nodes, point, maxDistanceM); ok {
			return id, nil
		}
	}

	return datastructure.InvalidNodeID, &datastructure.SnapFailureError{
		Point:        point,
		MaxDistanceM: maxDistanceM,
		NearestM:     g.approxNearestM(point),
	}
}

// approxNearestM jarak ke node terdekat versi rtree (euclid di derajat), cuma buat pesan error.
func (g *Graph) approxNearestM(point datastructure.Coordinate) float64 {
	if len(g.nodes) == 0 {
		return -1
	}
	sp := g.rt.NearestNeighbor(rtreego.Point{point.Lon, point.Lat})
	if sp == nil {
		return -1
	}
	n := g.nodes[sp.(*nodePoint).id]
	return geo.DistanceMeters(point.Lat, point.Lon, n.Lat, n.Lon)
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumSegments() int {
	return len(g.segments)
}

func (g *Graph) Node(id datastructure.NodeID) datastructure.Node {
	return g.nodes[id]
}

func (g *Graph) Segment(id datastructure.SegmentID) datastructure.Segment {
	return g.segments[id]
}

// Segments read-only view, jangan dimodifikasi.
func (g *Graph) Segments() []datastructure.Segment {
	return g.segments
}

// Neighbors read-only view adjacency node id.
func (g *Graph) Neighbors(id datastructure.NodeID) []datastructure.EdgePair {
	return g.adj[id]
}

// SegmentBetween segment yang menghubungkan a dan b.
func (g *Graph) SegmentBetween(a, b datastructure.NodeID) (datastructure.SegmentID, bool) {
	id, ok := g.pairs[pairKey(a, b)]
	return id, ok
}

func (g *Graph) MaxDriveSpeedKmh() float64 {
	return g.maxDrive
}

func (g *Graph) MaxWalkSpeedKmh() float64 {
	return g.maxWalk
}

func (g *Graph) Bound() orb.Bound {
	return g.bound
}
