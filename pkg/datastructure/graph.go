package datastructure

import (
	"fmt"
	"math"
)

type NodeID int32

type SegmentID int32

const (
	InvalidNodeID    NodeID    = -1
	InvalidSegmentID SegmentID = -1
)

// EdgePair entry adjacency list. satu segment muncul di adjacency kedua ujungnya.
type EdgePair struct {
	ToNodeIDx  NodeID
	SegmentIDx SegmentID
}

type Node struct {
	Lat float64
	Lon float64
	ID  NodeID
}

func (n Node) Coordinate() Coordinate {
	return NewCoordinate(n.Lat, n.Lon)
}

// Segment road segment dua arah antara From dan To. LengthM dalam meter, speed dalam km/h.
type Segment struct {
	LengthM       float64
	DriveSpeedKmh float64
	WalkSpeedKmh  float64
	Mid           Coordinate
	ID            SegmentID
	From          NodeID
	To            NodeID
	StreetName    string
	RoadClass     string
}

// Other return ujung lain segment dari node n.
func (s Segment) Other(n NodeID) NodeID {
	if s.From == n {
		return s.To
	}
	return s.From
}

func (s Segment) LengthKm() float64 {
	return s.LengthM / 1000.0
}

// RawSegment input graph builder sebelum node di-merge.
type RawSegment struct {
	From          Coordinate
	To            Coordinate
	LengthM       float64
	DriveSpeedKmh float64
	WalkSpeedKmh  float64
	ExternalID    string
	StreetName    string
	RoadClass     string
}

func NewRawSegment(externalID string, from, to Coordinate, lengthM, driveSpeedKmh, walkSpeedKmh float64,
	streetName, roadClass string) (RawSegment, error) {
	raw := RawSegment{
		From:          from,
		To:            to,
		LengthM:       lengthM,
		DriveSpeedKmh: driveSpeedKmh,
		WalkSpeedKmh:  walkSpeedKmh,
		ExternalID:    externalID,
		StreetName:    streetName,
		RoadClass:     roadClass,
	}
	if err := raw.Validate(); err != nil {
		return RawSegment{}, err
	}
	return raw, nil
}

// Validate. speed 0 artinya pakai default speed graph builder.
func (r RawSegment) Validate() error {
	if err := ValidateCoordinate("segment "+r.ExternalID+" from", r.From); err != nil {
		return err
	}
	if err := ValidateCoordinate("segment "+r.ExternalID+" to", r.To); err != nil {
		return err
	}
	if !isFiniteNonNegative(r.LengthM) {
		return &InputValidationError{Field: "segment " + r.ExternalID + " length_m",
			Reason: fmt.Sprintf("must be a finite non-negative number, got %v", r.LengthM)}
	}
	if !isFiniteNonNegative(r.DriveSpeedKmh) {
		return &InputValidationError{Field: "segment " + r.ExternalID + " drive_speed_kmh",
			Reason: fmt.Sprintf("must be a finite non-negative number, got %v", r.DriveSpeedKmh)}
	}
	if !isFiniteNonNegative(r.WalkSpeedKmh) {
		return &InputValidationError{Field: "segment " + r.ExternalID + " walk_speed_kmh",
			Reason: fmt.Sprintf("must be a finite non-negative number, got %v", r.WalkSpeedKmh)}
	}
	return nil
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
