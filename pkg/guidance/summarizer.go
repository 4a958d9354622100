package guidance

import (
	"fmt"
	"math"

	"lintang/neuracity/pkg/costfunction"
	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/util"

	"github.com/twpayne/go-polyline"
	"golang.org/x/exp/slices"
)

type Config struct {
	Co2KgPerKm          float64 `mapstructure:"co2_kg_per_km"`
	CongestionCo2Relief float64 `mapstructure:"congestion_co2_relief"`
	HighHazardThreshold float64 `mapstructure:"high_hazard_threshold"`
	AmbientNoiseDB      float64 `mapstructure:"ambient_noise_db"`
}

func DefaultConfig() Config {
	return Config{
		Co2KgPerKm:          0.15,
		CongestionCo2Relief: 0.3,
		HighHazardThreshold: 0.7,
		AmbientNoiseDB:      40,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if !(c.Co2KgPerKm > 0) || math.IsInf(c.Co2KgPerKm, 0) {
		c.Co2KgPerKm = def.Co2KgPerKm
	}
	if !(c.CongestionCo2Relief >= 0 && c.CongestionCo2Relief <= 1) {
		c.CongestionCo2Relief = def.CongestionCo2Relief
	}
	if !(c.HighHazardThreshold > 0 && c.HighHazardThreshold <= 1) {
		c.HighHazardThreshold = def.HighHazardThreshold
	}
	if !(c.AmbientNoiseDB > 0) || math.IsInf(c.AmbientNoiseDB, 0) {
		c.AmbientNoiseDB = def.AmbientNoiseDB
	}
	return c
}

// RouteGraph bagian graph yang dibaca summarizer.
type RouteGraph interface {
	Node(id datastructure.NodeID) datastructure.Node
	Segment(id datastructure.SegmentID) datastructure.Segment
}

type PenaltySource interface {
	Penalty(id datastructure.SegmentID) datastructure.Penalty
}

type Summarizer struct {
	cfg Config
}

func NewSummarizer(cfg Config) *Summarizer {
	return &Summarizer{cfg: cfg.withDefaults()}
}

// pathStats agregat penalty sepanjang path. mean dihitung per segment (tidak dibobot panjang).
type pathStats struct {
	distanceKm         float64
	travelHours        float64
	congestionSum      float64
	congestionExposure float64 // sum(congestion * km)
	noiseDBSum         float64
	highHazard         int
	segments           int
}

func (s pathStats) avgCongestion() float64 {
	if s.segments == 0 {
		return 0
	}
	return s.congestionSum / float64(s.segments)
}

func (s pathStats) avgNoiseDB(ambient float64) float64 {
	if s.segments == 0 {
		return ambient
	}
	return s.noiseDBSum / float64(s.segments)
}

func (sm *Summarizer) collect(g RouteGraph, path datastructure.Path, pen PenaltySource,
	cf costfunction.CostFunction) pathStats {
	var st pathStats
	for _, id := range path.Segments {
		seg := g.Segment(id)
		p := pen.Penalty(id)

		km := math.Max(util.Finite(seg.LengthKm(), 0), 0)
		congestion := util.ClampUnit(p.Congestion)
		noiseDB := p.NoiseDB
		if !(noiseDB > 0) || math.IsInf(noiseDB, 0) {
			noiseDB = sm.cfg.AmbientNoiseDB
		}

		st.distanceKm += km
		st.travelHours += math.Max(util.Finite(cf.TravelTime(seg, p), 0), 0)
		st.congestionSum += congestion
		st.congestionExposure += congestion * km
		st.noiseDBSum += noiseDB
		if util.ClampUnit(p.Hazard) > sm.cfg.HighHazardThreshold {
			st.highHazard++
		}
		st.segments++
	}
	return st
}

/*
Summarize ringkasan rute: jarak, eta, metric per mode, polyline, dan satu kalimat penjelasan.

baseline = path terpendek tanpa penalty (cost function Distance) di graph dan snapshot yang sama. penjelasan
membandingkan agregat penalty route dengan baseline. tidak ada side effect, input yang sama selalu menghasilkan
RouteResult yang sama.
*/
func (sm *Summarizer) Summarize(g RouteGraph, route, baseline datastructure.Path, pen PenaltySource,
	cf costfunction.CostFunction) datastructure.RouteResult {
	st := sm.collect(g, route, pen, cf)
	base := sm.collect(g, baseline, pen, cf)

	coords := make([]datastructure.Coordinate, 0, len(route.Nodes))
	encoded := make([][]float64, 0, len(route.Nodes))
	for _, id := range route.Nodes {
		c := g.Node(id).Coordinate()
		coords = append(coords, c)
		encoded = append(encoded, []float64{c.Lat, c.Lon})
	}

	res := datastructure.RouteResult{
		Path:       coords,
		Polyline:   string(polyline.EncodeCoords(encoded)),
		DistanceKm: util.RoundFloat(st.distanceKm, 3),
		EtaMinutes: util.RoundFloat(st.travelHours*60, 2),
		Mode:       cf.Mode(),
	}

	sameAsBaseline := samePath(route, baseline)
	switch cf.Mode() {
	case datastructure.ModeQuietWalk:
		avg := st.avgNoiseDB(sm.cfg.AmbientNoiseDB)
		res.MetricType = datastructure.MetricAvgNoiseDB
		res.MetricValue = util.RoundFloat(avg, 1)
		res.Explanation = sm.explainQuietWalk(st, base, sameAsBaseline)
	default:
		co2 := st.distanceKm * sm.cfg.Co2KgPerKm * (1 - sm.cfg.CongestionCo2Relief*st.avgCongestion())
		res.MetricType = datastructure.MetricCO2Kg
		res.MetricValue = util.RoundFloat(co2, 3)
		if cf.Mode() == datastructure.ModeEco {
			res.Explanation = sm.explainEco(st, base, co2, sameAsBaseline)
		} else {
			res.Explanation = sm.explainDrive(st, base, sameAsBaseline)
		}
	}
	return res
}

func (sm *Summarizer) explainDrive(st, base pathStats, sameAsBaseline bool) string {
	avoided := base.highHazard - st.highHazard
	switch {
	case avoided > 0:
		return fmt.Sprintf("Driving route avoiding %d high-hazard %s found on the shortest route.", avoided, plural(avoided, "segment"))
	case sameAsBaseline && st.highHazard == 0:
		return "Driving route that matches the shortest path, no high-hazard segments on the way."
	case sameAsBaseline:
		return fmt.Sprintf("Driving route that matches the shortest path, crossing %d high-hazard %s with no safer alternative.",
			st.highHazard, plural(st.highHazard, "segment"))
	case st.highHazard == 0:
		return "Fastest driving route under current traffic, no high-hazard segments on the way."
	default:
		return fmt.Sprintf("Fastest driving route under current traffic, crossing %d high-hazard %s.",
			st.highHazard, plural(st.highHazard, "segment"))
	}
}

func (sm *Summarizer) explainEco(st, base pathStats, co2 float64, sameAsBaseline bool) string {
	if !sameAsBaseline && base.congestionExposure > 0 && st.congestionExposure < base.congestionExposure {
		pct := (1 - st.congestionExposure/base.congestionExposure) * 100
		return fmt.Sprintf("Eco route avoiding %.0f%% of the congestion on the shortest route, estimated %.2f kg CO2.", pct, co2)
	}
	if sameAsBaseline {
		return fmt.Sprintf("Eco route that matches the shortest path, estimated %.2f kg CO2.", co2)
	}
	return fmt.Sprintf("Eco route minimizing emissions, estimated %.2f kg CO2.", co2)
}

func (sm *Summarizer) explainQuietWalk(st, base pathStats, sameAsBaseline bool) string {
	avg := st.avgNoiseDB(sm.cfg.AmbientNoiseDB)
	quieter := base.avgNoiseDB(sm.cfg.AmbientNoiseDB) - avg
	if !sameAsBaseline && quieter >= 0.05 {
		return fmt.Sprintf("Quiet walking route averaging %.1f dB, %.1f dB quieter than the shortest route.", avg, quieter)
	}
	if sameAsBaseline {
		return fmt.Sprintf("Quiet walking route that matches the shortest path, averaging %.1f dB.", avg)
	}
	return fmt.Sprintf("Quiet walking route averaging %.1f dB.", avg)
}

func samePath(a, b datastructure.Path) bool {
	return slices.Equal(a.Segments, b.Segments) && slices.Equal(a.Nodes, b.Nodes)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
