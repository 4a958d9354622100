package hazard

import (
	"math"
	"runtime"
	"time"

	"lintang/neuracity/pkg/concurrent"
	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/util"
)

type Config struct {
	TrafficRadiusM float64       `mapstructure:"traffic_radius_m"`
	NoiseRadiusM   float64       `mapstructure:"noise_radius_m"`
	IssueRadiusM   float64       `mapstructure:"issue_radius_m"`
	NoiseFloorDB   float64       `mapstructure:"noise_floor_db"`
	NoiseCeilingDB float64       `mapstructure:"noise_ceiling_db"`
	AmbientNoiseDB float64       `mapstructure:"ambient_noise_db"`
	H3Resolution   int           `mapstructure:"h3_resolution"`
	SnapshotTTL    time.Duration `mapstructure:"snapshot_ttl"`
	Workers        int           `mapstructure:"workers"`
}

func DefaultConfig() Config {
	return Config{
		TrafficRadiusM: 150,
		NoiseRadiusM:   150,
		IssueRadiusM:   200,
		NoiseFloorDB:   40,
		NoiseCeilingDB: 90,
		AmbientNoiseDB: 40,
		H3Resolution:   9,
		SnapshotTTL:    30 * time.Second,
		Workers:        runtime.NumCPU(),
	}
}

// withDefaults field yang kosong/invalid diisi default.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TrafficRadiusM <= 0 {
		c.TrafficRadiusM = def.TrafficRadiusM
	}
	if c.NoiseRadiusM <= 0 {
		c.NoiseRadiusM = def.NoiseRadiusM
	}
	if c.IssueRadiusM <= 0 {
		c.IssueRadiusM = def.IssueRadiusM
	}
	if c.NoiseCeilingDB <= c.NoiseFloorDB {
		c.NoiseFloorDB, c.NoiseCeilingDB = def.NoiseFloorDB, def.NoiseCeilingDB
	}
	if c.AmbientNoiseDB <= 0 {
		c.AmbientNoiseDB = def.AmbientNoiseDB
	}
	if c.H3Resolution <= 0 || c.H3Resolution > 15 {
		c.H3Resolution = def.H3Resolution
	}
	if c.SnapshotTTL <= 0 {
		c.SnapshotTTL = def.SnapshotTTL
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	return c
}

// SegmentSource graph yang segment-nya di-overlay hazard.
type SegmentSource interface {
	Segments() []datastructure.Segment
}

type Stats struct {
	Segments          int       `json:"segments"`
	TrafficSamples    int       `json:"traffic_samples"`
	NoiseSamples      int       `json:"noise_samples"`
	IncidentSamples   int       `json:"incident_samples"`
	SkippedSamples    int       `json:"skipped_samples"`
	CongestedSegments int       `json:"congested_segments"`
	NoisySegments     int       `json:"noisy_segments"`
	HazardousSegments int       `json:"hazardous_segments"`
	DegradedProviders []string  `json:"degraded_providers,omitempty"`
	BuiltAt           time.Time `json:"built_at"`
}

// Snapshot penalty per segment untuk satu graph pada satu waktu. immutable setelah dibuat.
type Snapshot struct {
	penalties []datastructure.Penalty
	source    SegmentSource
	ambientDB float64
	stats     Stats
}

// NewSnapshotFromPenalties snapshot dari penalty yang sudah jadi, index = SegmentID.
func NewSnapshotFromPenalties(penalties []datastructure.Penalty, ambientNoiseDB float64, builtAt time.Time) *Snapshot {
	cp := make([]datastructure.Penalty, len(penalties))
	for i, p := range penalties {
		cp[i] = datastructure.Penalty{
			Congestion: util.ClampUnit(p.Congestion),
			Noise:      util.ClampUnit(p.Noise),
			Hazard:     util.ClampUnit(p.Hazard),
			NoiseDB:    p.NoiseDB,
		}
		if cp[i].NoiseDB <= 0 || math.IsNaN(cp[i].NoiseDB) {
			cp[i].NoiseDB = ambientNoiseDB
		}
	}
	return &Snapshot{penalties: cp, ambientDB: ambientNoiseDB, stats: Stats{Segments: len(cp), BuiltAt: builtAt}}
}

// Penalty total: segment yang tidak dikenal dapat penalty nol.
func (s *Snapshot) Penalty(id datastructure.SegmentID) datastructure.Penalty {
	if s == nil {
		return datastructure.Penalty{}
	}
	if id < 0 || int(id) >= len(s.penalties) {
		return datastructure.Penalty{NoiseDB: s.ambientDB}
	}
	return s.penalties[id]
}

func (s *Snapshot) AmbientNoiseDB() float64 {
	return s.ambientDB
}

func (s *Snapshot) BuiltAt() time.Time {
	return s.stats.BuiltAt
}

func (s *Snapshot) Stats() Stats {
	st := s.stats
	st.DegradedProviders = append([]string(nil), s.stats.DegradedProviders...)
	return st
}

type Aggregator struct {
	cfg Config
}

func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg.withDefaults()}
}

func (a *Aggregator) Config() Config {
	return a.cfg
}

type segmentRange struct {
	start, end int
}

type rangePenalties struct {
	start     int
	penalties []datastructure.Penalty
}

const segmentsPerJob = 2048

// BuildSnapshot hitung penalty setiap segment dari midpoint-nya. sample yang invalid di-skip, input kosong -> penalty nol.
func (a *Aggregator) BuildSnapshot(g SegmentSource, traffic, noise, incidents []datastructure.HazardSample, builtAt time.Time) *Snapshot {
	segments := g.Segments()

	var skipped int
	trafficIdx := newSampleIndex(filterSamples(traffic, datastructure.HazardCongestion, &skipped), a.cfg.H3Resolution)
	noiseIdx := newSampleIndex(filterSamples(noise, datastructure.HazardNoise, &skipped), a.cfg.H3Resolution)
	incidentIdx := newSampleIndex(filterOpenIncidents(incidents, &skipped), a.cfg.H3Resolution)

	penalties := make([]datastructure.Penalty, len(segments))
	if len(segments) > 0 {
		numJobs := (len(segments) + segmentsPerJob - 1) / segmentsPerJob
		workers := concurrent.NewWorkerPool[segmentRange, rangePenalties](a.cfg.Workers, numJobs)
		for start := 0; start < len(segments); start += segmentsPerJob {
			workers.AddJob(segmentRange{start: start, end: min(start+segmentsPerJob, len(segments))})
		}
		workers.Close()

		workers.Start(func(job segmentRange) rangePenalties {
			out := make([]datastructure.Penalty, 0, job.end-job.start)
			for i := job.start; i < job.end; i++ {
				out = append(out, a.segmentPenalty(segments[i], trafficIdx, noiseIdx, incidentIdx))
			}
			return rangePenalties{start: job.start, penalties: out}
		})
		workers.Wait()

		for res := range workers.CollectResults() {
			copy(penalties[res.start:], res.penalties)
		}
	}

	stats := Stats{
		Segments:        len(segments),
		TrafficSamples:  trafficIdx.len(),
		NoiseSamples:    noiseIdx.len(),
		IncidentSamples: incidentIdx.len(),
		SkippedSamples:  skipped,
		BuiltAt:         builtAt,
	}
	for _, p := range penalties {
		if p.Congestion > 0 {
			stats.CongestedSegments++
		}
		if p.Noise > 0 {
			stats.NoisySegments++
		}
		if p.Hazard > 0 {
			stats.HazardousSegments++
		}
	}

	return &Snapshot{penalties: penalties, source: g, ambientDB: a.cfg.AmbientNoiseDB, stats: stats}
}

func (a *Aggregator) segmentPenalty(seg datastructure.Segment, traffic, noise, incidents *sampleIndex) datastructure.Penalty {
	p := datastructure.Penalty{NoiseDB: a.cfg.AmbientNoiseDB}
	lat, lon := seg.Mid.Lat, seg.Mid.Lon

	if i, ok := nearest(traffic, lat, lon, a.cfg.TrafficRadiusM); ok {
		p.Congestion = util.ClampUnit(traffic.samples[i].Congestion)
	}

	if i, ok := nearest(noise, lat, lon, a.cfg.NoiseRadiusM); ok {
		db := noise.samples[i].NoiseDB
		p.NoiseDB = db
		p.Noise = a.NoisePenalty(db)
	}

	incidents.within(lat, lon, a.cfg.IssueRadiusM, func(i int, _ float64) {
		s := incidents.samples[i]
		p.Hazard = math.Max(p.Hazard, util.ClampUnit(s.Severity*s.Urgency))
	})

	return p
}

// NoisePenalty (dB - floor) / (ceiling - floor), di-clip ke [0, 1].
func (a *Aggregator) NoisePenalty(db float64) float64 {
	return util.ClampUnit((db - a.cfg.NoiseFloorDB) / (a.cfg.NoiseCeilingDB - a.cfg.NoiseFloorDB))
}

// nearest sample terdekat dalam radius, kalau jaraknya sama ambil index paling kecil.
func nearest(idx *sampleIndex, lat, lon, radiusM float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	idx.within(lat, lon, radiusM, func(i int, d float64) {
		if d < bestDist {
			best, bestDist = i, d
		}
	})
	return best, best >= 0
}

func filterSamples(samples []datastructure.HazardSample, kind datastructure.HazardKind, skipped *int) []datastructure.HazardSample {
	out := make([]datastructure.HazardSample, 0, len(samples))
	for _, s := range samples {
		if s.Kind != kind || s.Validate() != nil {
			*skipped++
			continue
		}
		out = append(out, s)
	}
	return out
}

func filterOpenIncidents(samples []datastructure.HazardSample, skipped *int) []datastructure.HazardSample {
	valid := filterSamples(samples, datastructure.HazardIncident, skipped)
	out := valid[:0]
	for _, s := range valid {
		if s.IsOpen() {
			out = append(out, s)
		}
	}
	return out
}
