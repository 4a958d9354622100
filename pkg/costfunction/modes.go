package costfunction

import (
	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/util"
)

// Drive time + DriveHazard * hazard.
type Drive struct {
	w Weights
}

func NewDrive(w Weights) *Drive {
	return &Drive{w: w.Normalize()}
}

func (d *Drive) Mode() datastructure.Mode { return datastructure.ModeDrive }

func (d *Drive) Weight(seg datastructure.Segment, p datastructure.Penalty) float64 {
	return d.TravelTime(seg, p) + d.w.DriveHazard*util.ClampUnit(p.Hazard)
}

func (d *Drive) TravelTime(seg datastructure.Segment, p datastructure.Penalty) float64 {
	return driveTime(seg, p, d.w)
}

func (d *Drive) HeuristicSpeedKmh(g SpeedBounds) float64 {
	return maxSpeed(g.MaxDriveSpeedKmh(), d.w.DefaultDriveKmh)
}

// Eco time + EcoCongestion * congestion.
type Eco struct {
	w Weights
}

func NewEco(w Weights) *Eco {
	return &Eco{w: w.Normalize()}
}

func (e *Eco) Mode() datastructure.Mode { return datastructure.ModeEco }

func (e *Eco) Weight(seg datastructure.Segment, p datastructure.Penalty) float64 {
	return e.TravelTime(seg, p) + e.w.EcoCongestion*util.ClampUnit(p.Congestion)
}

func (e *Eco) TravelTime(seg datastructure.Segment, p datastructure.Penalty) float64 {
	return driveTime(seg, p, e.w)
}

func (e *Eco) HeuristicSpeedKmh(g SpeedBounds) float64 {
	return maxSpeed(g.MaxDriveSpeedKmh(), e.w.DefaultDriveKmh)
}

// QuietWalk walking time + QuietNoise (alpha) * noise.
type QuietWalk struct {
	w Weights
}

func NewQuietWalk(w Weights) *QuietWalk {
	return &QuietWalk{w: w.Normalize()}
}

func (q *QuietWalk) Mode() datastructure.Mode { return datastructure.ModeQuietWalk }

func (q *QuietWalk) Weight(seg datastructure.Segment, p datastructure.Penalty) float64 {
	return q.TravelTime(seg, p) + q.w.QuietNoise*util.ClampUnit(p.Noise)
}

func (q *QuietWalk) TravelTime(seg datastructure.Segment, _ datastructure.Penalty) float64 {
	return walkTime(seg, q.w)
}

func (q *QuietWalk) HeuristicSpeedKmh(g SpeedBounds) float64 {
	return maxSpeed(g.MaxWalkSpeedKmh(), q.w.DefaultWalkKmh)
}

// Distance panjang segment dalam km, buat baseline rute terpendek tanpa penalty.
type Distance struct {
	w Weights
}

func NewDistance(w Weights) *Distance {
	return &Distance{w: w.Normalize()}
}

func (d *Distance) Mode() datastructure.Mode { return datastructure.ModeShortest }

func (d *Distance) Weight(seg datastructure.Segment, _ datastructure.Penalty) float64 {
	return lengthKm(seg)
}

func (d *Distance) TravelTime(seg datastructure.Segment, p datastructure.Penalty) float64 {
	return driveTime(seg, p, d.w)
}

func (d *Distance) HeuristicSpeedKmh(_ SpeedBounds) float64 {
	return 1
}
