package costfunction

import (
	"math"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/util"
)

// SpeedBounds kecepatan free-flow maksimum di graph, dipakai buat heuristic A*.
type SpeedBounds interface {
	MaxDriveSpeedKmh() float64
	MaxWalkSpeedKmh() float64
}

// CostFunction bobot segment untuk satu mode. Weight dan TravelTime total: tidak pernah negatif atau NaN.
type CostFunction interface {
	Mode() datastructure.Mode
	// Weight cost segment (jam + penalty term).
	Weight(seg datastructure.Segment, p datastructure.Penalty) float64
	// TravelTime waktu tempuh segment dalam jam, tanpa penalty term.
	TravelTime(seg datastructure.Segment, p datastructure.Penalty) float64
	// HeuristicSpeedKmh pembagi jarak great-circle (km) di heuristic, harus >= kecepatan efektif segment manapun.
	HeuristicSpeedKmh(g SpeedBounds) float64
}

type Weights struct {
	DriveHazard        float64 `mapstructure:"drive_hazard"`
	EcoCongestion      float64 `mapstructure:"eco_congestion"`
	QuietNoise         float64 `mapstructure:"quiet_noise"`
	CongestionSlowdown float64 `mapstructure:"congestion_slowdown"`
	DefaultDriveKmh    float64 `mapstructure:"default_drive_kmh"`
	DefaultWalkKmh     float64 `mapstructure:"default_walk_kmh"`
}

const maxCongestionSlowdown = 0.95

func DefaultWeights() Weights {
	return Weights{
		DriveHazard:        0.5,
		EcoCongestion:      0.8,
		QuietNoise:         1.0,
		CongestionSlowdown: 0.5,
		DefaultDriveKmh:    50,
		DefaultWalkKmh:     5,
	}
}

// Normalize weight negatif/NaN jadi default, slowdown dibatasi biar kecepatan efektif tidak nol.
func (w Weights) Normalize() Weights {
	def := DefaultWeights()
	nonNeg := func(v, d float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return d
		}
		return v
	}
	positive := func(v, d float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return d
		}
		return v
	}
	w.DriveHazard = nonNeg(w.DriveHazard, def.DriveHazard)
	w.EcoCongestion = nonNeg(w.EcoCongestion, def.EcoCongestion)
	w.QuietNoise = nonNeg(w.QuietNoise, def.QuietNoise)
	w.CongestionSlowdown = util.Clamp(nonNeg(w.CongestionSlowdown, def.CongestionSlowdown), 0, maxCongestionSlowdown)
	w.DefaultDriveKmh = positive(w.DefaultDriveKmh, def.DefaultDriveKmh)
	w.DefaultWalkKmh = positive(w.DefaultWalkKmh, def.DefaultWalkKmh)
	return w
}

// ForMode cost function untuk mode request.
func ForMode(mode datastructure.Mode, w Weights) (CostFunction, error) {
	switch mode {
	case datastructure.ModeDrive:
		return NewDrive(w), nil
	case datastructure.ModeEco:
		return NewEco(w), nil
	case datastructure.ModeQuietWalk:
		return NewQuietWalk(w), nil
	default:
		_, err := datastructure.ParseMode(string(mode))
		return nil, err
	}
}

func lengthKm(seg datastructure.Segment) float64 {
	l := util.Finite(seg.LengthM, 0)
	if l < 0 {
		return 0
	}
	return l / 1000.0
}

func speedOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

// driveTime jam tempuh dengan kecepatan efektif speed * (1 - slowdown * congestion).
func driveTime(seg datastructure.Segment, p datastructure.Penalty, w Weights) float64 {
	speed := speedOr(seg.DriveSpeedKmh, w.DefaultDriveKmh)
	effective := speed * (1 - w.CongestionSlowdown*util.ClampUnit(p.Congestion))
	return lengthKm(seg) / effective
}

func walkTime(seg datastructure.Segment, w Weights) float64 {
	return lengthKm(seg) / speedOr(seg.WalkSpeedKmh, w.DefaultWalkKmh)
}

func maxSpeed(v, def float64) float64 {
	return math.Max(speedOr(v, def), def)
}
