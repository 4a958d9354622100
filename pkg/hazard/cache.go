package hazard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"lintang/neuracity/pkg/datastructure"

	"go.uber.org/zap"
)

type TrafficDataProvider interface {
	GetSegments(ctx context.Context) ([]datastructure.HazardSample, error)
}

type NoiseDataProvider interface {
	GetSegments(ctx context.Context) ([]datastructure.HazardSample, error)
}

type IssueDataProvider interface {
	GetOpenIncidents(ctx context.Context) ([]datastructure.HazardSample, error)
}

const (
	ProviderTraffic = "traffic"
	ProviderNoise   = "noise"
	ProviderIssues  = "issues"
)

// SnapshotCache cache snapshot dengan TTL. satu goroutine refresh (mutex), reader lain tetap dapat snapshot lama
// selama refresh berjalan. snapshot baru dipublish pakai atomic swap.
type SnapshotCache struct {
	agg         *Aggregator
	traffic     TrafficDataProvider
	noise       NoiseDataProvider
	issues      IssueDataProvider
	log         *zap.Logger
	now         func() time.Time
	ttl         time.Duration
	current     atomic.Pointer[Snapshot]
	invalidated atomic.Bool
	mu          sync.Mutex
}

type CacheOption func(*SnapshotCache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *SnapshotCache) {
		c.now = now
	}
}

// NewSnapshotCache provider boleh nil, dianggap tidak ada data.
func NewSnapshotCache(agg *Aggregator, traffic TrafficDataProvider, noise NoiseDataProvider, issues IssueDataProvider,
	log *zap.Logger, opts ...CacheOption) *SnapshotCache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &SnapshotCache{
		agg:     agg,
		traffic: traffic,
		noise:   noise,
		issues:  issues,
		log:     log,
		now:     time.Now,
		ttl:     agg.Config().SnapshotTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SnapshotCache) fresh(s *Snapshot, g SegmentSource) bool {
	return s != nil && s.source == g && !c.invalidated.Load() && c.now().Sub(s.BuiltAt()) < c.ttl
}

// Get snapshot untuk graph g. fetch ke provider terjadi di sini, sebelum search dimulai.
func (c *SnapshotCache) Get(ctx context.Context, g SegmentSource) *Snapshot {
	cur := c.current.Load()
	if c.fresh(cur, g) {
		return cur
	}

	if cur != nil && cur.source == g {
		// snapshot lama masih valid untuk graph ini, jangan blok reader kalau refresh sedang jalan
		if !c.mu.TryLock() {
			return cur
		}
	} else {
		c.mu.Lock()
	}
	defer c.mu.Unlock()

	cur = c.current.Load()
	if c.fresh(cur, g) {
		return cur
	}

	c.invalidated.Store(false)
	next := c.build(ctx, g)
	c.current.Store(next)
	return next
}

// Current snapshot terakhir tanpa refresh, nil kalau belum pernah dibuat.
func (c *SnapshotCache) Current() *Snapshot {
	return c.current.Load()
}

// Invalidate paksa refresh di Get berikutnya.
func (c *SnapshotCache) Invalidate() {
	c.invalidated.Store(true)
}

func (c *SnapshotCache) build(ctx context.Context, g SegmentSource) *Snapshot {
	start := c.now()
	var degraded []string

	var traffic, noise, incidents []datastructure.HazardSample
	if c.traffic != nil {
		traffic = c.fetch(ctx, ProviderTraffic, c.traffic.GetSegments, &degraded)
	}
	if c.noise != nil {
		noise = c.fetch(ctx, ProviderNoise, c.noise.GetSegments, &degraded)
	}
	if c.issues != nil {
		incidents = c.fetch(ctx, ProviderIssues, c.issues.GetOpenIncidents, &degraded)
	}

	snap := c.agg.BuildSnapshot(g, traffic, noise, incidents, c.now())
	snap.stats.DegradedProviders = degraded

	c.log.Debug("hazard snapshot rebuilt",
		zap.Int("segments", snap.stats.Segments),
		zap.Int("traffic_samples", snap.stats.TrafficSamples),
		zap.Int("noise_samples", snap.stats.NoiseSamples),
		zap.Int("incident_samples", snap.stats.IncidentSamples),
		zap.Strings("degraded", degraded),
		zap.Duration("took", c.now().Sub(start)))
	return snap
}

func (c *SnapshotCache) fetch(ctx context.Context, provider string,
	get func(context.Context) ([]datastructure.HazardSample, error), degraded *[]string) []datastructure.HazardSample {
	samples, err := get(ctx)
	if err != nil {
		derr := &datastructure.DataUnavailableError{Provider: provider, Err: err}
		c.log.Warn("hazard provider unavailable, treating as empty", zap.String("provider", provider), zap.Error(derr))
		*degraded = append(*degraded, provider)
		return nil
	}
	return samples
}
