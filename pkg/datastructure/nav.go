package datastructure

import (
	"fmt"
	"math"
	"strings"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// ValidateCoordinate lat harus di [-90, 90] dan lon di [-180, 180].
func ValidateCoordinate(field string, c Coordinate) error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return &InputValidationError{Field: field + ".lat", Reason: fmt.Sprintf("latitude must be between -90 and 90, got %v", c.Lat)}
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return &InputValidationError{Field: field + ".lng", Reason: fmt.Sprintf("longitude must be between -180 and 180, got %v", c.Lon)}
	}
	return nil
}

type Mode string

const (
	ModeDrive     Mode = "drive"
	ModeEco       Mode = "eco"
	ModeQuietWalk Mode = "quiet_walk"

	// ModeShortest dipakai internal untuk baseline rute terpendek, bukan mode request.
	ModeShortest Mode = "shortest"
)

func Modes() []Mode {
	return []Mode{ModeDrive, ModeEco, ModeQuietWalk}
}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.TrimSpace(s)); m {
	case ModeDrive, ModeEco, ModeQuietWalk:
		return m, nil
	default:
		return "", &InputValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q, expected one of drive, eco, quiet_walk", s)}
	}
}

type RouteRequest struct {
	Origin      Coordinate
	Destination Coordinate
	Mode        Mode
}

func (r RouteRequest) Validate() error {
	if err := ValidateCoordinate("origin", r.Origin); err != nil {
		return err
	}
	if err := ValidateCoordinate("destination", r.Destination); err != nil {
		return err
	}
	if _, err := ParseMode(string(r.Mode)); err != nil {
		return err
	}
	return nil
}

const (
	MetricCO2Kg      = "co2_kg"
	MetricAvgNoiseDB = "avg_noise_db"
)

// Path hasil pathfinder. len(Segments) == len(Nodes)-1 dan Segments[i] menghubungkan Nodes[i] dan Nodes[i+1].
type Path struct {
	Nodes    []NodeID
	Segments []SegmentID
	Cost     float64
	Expanded int
}

type RouteResult struct {
	Path        []Coordinate
	Polyline    string
	DistanceKm  float64
	EtaMinutes  float64
	MetricType  string
	MetricValue float64
	Explanation string
	Mode        Mode
}
