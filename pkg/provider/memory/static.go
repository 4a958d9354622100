package memory

import (
	"context"
	"sync"

	"lintang/neuracity/pkg/datastructure"
)

// Static provider in-memory. bisa dipakai sebagai traffic, noise, maupun issue provider.
// Set mengganti isi sample, Fail bikin setiap fetch error (buat simulasi upstream down).
type Static struct {
	mu      sync.RWMutex
	samples []datastructure.HazardSample
	err     error
}

func NewStatic(samples ...datastructure.HazardSample) *Static {
	return &Static{samples: samples}
}

// Empty provider tanpa data.
func Empty() *Static {
	return &Static{}
}

func (s *Static) Set(samples []datastructure.HazardSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = samples
}

func (s *Static) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Static) GetSegments(ctx context.Context) ([]datastructure.HazardSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]datastructure.HazardSample, len(s.samples))
	copy(out, s.samples)
	return out, nil
}

// GetOpenIncidents hanya incident yang masih open.
func (s *Static) GetOpenIncidents(ctx context.Context) ([]datastructure.HazardSample, error) {
	all, err := s.GetSegments(ctx)
	if err != nil {
		return nil, err
	}
	open := all[:0]
	for _, sample := range all {
		if sample.IsOpen() {
			open = append(open, sample)
		}
	}
	return open, nil
}
