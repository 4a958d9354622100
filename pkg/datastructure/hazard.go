package datastructure

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type HazardKind string

const (
	HazardCongestion HazardKind = "congestion"
	HazardNoise      HazardKind = "noise"
	HazardIncident   HazardKind = "incident"
)

const (
	IssueStatusOpen       = "open"
	IssueStatusInProgress = "in_progress"
	IssueStatusResolved   = "resolved"
	IssueStatusClosed     = "closed"
)

const (
	MinNoiseDB = 30.0
	MaxNoiseDB = 120.0
)

// HazardSample satu observasi point: traffic (Congestion), noise (NoiseDB) atau incident (Severity, Urgency, Status).
type HazardSample struct {
	Point      Coordinate
	Timestamp  time.Time
	Congestion float64
	NoiseDB    float64
	Severity   float64
	Urgency    float64
	Kind       HazardKind
	Status     string
	SourceID   string
}

func NewHazardSample(s HazardSample) (HazardSample, error) {
	if err := s.Validate(); err != nil {
		return HazardSample{}, err
	}
	if s.Kind == HazardIncident {
		s.Status = strings.ToLower(strings.TrimSpace(s.Status))
	}
	return s, nil
}

func NewTrafficSample(sourceID string, p Coordinate, congestion float64, ts time.Time) (HazardSample, error) {
	return NewHazardSample(HazardSample{Kind: HazardCongestion, SourceID: sourceID, Point: p, Congestion: congestion, Timestamp: ts})
}

func NewNoiseSample(sourceID string, p Coordinate, noiseDB float64, ts time.Time) (HazardSample, error) {
	return NewHazardSample(HazardSample{Kind: HazardNoise, SourceID: sourceID, Point: p, NoiseDB: noiseDB, Timestamp: ts})
}

func NewIncidentSample(sourceID string, p Coordinate, severity, urgency float64, status string, ts time.Time) (HazardSample, error) {
	return NewHazardSample(HazardSample{Kind: HazardIncident, SourceID: sourceID, Point: p,
		Severity: severity, Urgency: urgency, Status: status, Timestamp: ts})
}

func (s HazardSample) Validate() error {
	if err := ValidateCoordinate(string(s.Kind)+" sample", s.Point); err != nil {
		return err
	}
	switch s.Kind {
	case HazardCongestion:
		return checkUnit("congestion", s.Congestion)
	case HazardNoise:
		if math.IsNaN(s.NoiseDB) || s.NoiseDB < MinNoiseDB || s.NoiseDB > MaxNoiseDB {
			return &InputValidationError{Field: "noise_db", Reason: fmt.Sprintf("must be between %v and %v, got %v", MinNoiseDB, MaxNoiseDB, s.NoiseDB)}
		}
		return nil
	case HazardIncident:
		if err := checkUnit("severity", s.Severity); err != nil {
			return err
		}
		if err := checkUnit("urgency", s.Urgency); err != nil {
			return err
		}
		if strings.TrimSpace(s.Status) == "" {
			return &InputValidationError{Field: "status", Reason: "incident status is required"}
		}
		return nil
	default:
		return &InputValidationError{Field: "kind", Reason: fmt.Sprintf("unknown hazard kind %q", s.Kind)}
	}
}

// IsOpen incident yang belum resolved/closed dihitung open (termasuk in_progress).
func (s HazardSample) IsOpen() bool {
	switch strings.ToLower(strings.TrimSpace(s.Status)) {
	case IssueStatusResolved, IssueStatusClosed:
		return false
	default:
		return true
	}
}

func checkUnit(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &InputValidationError{Field: field, Reason: fmt.Sprintf("must be between 0 and 1, got %v", v)}
	}
	return nil
}

// Penalty per segment, Congestion/Noise/Hazard selalu di [0, 1]. NoiseDB nilai dB mentah (atau ambient) buat summary.
type Penalty struct {
	Congestion float64
	Noise      float64
	Hazard     float64
	NoiseDB    float64
}
