package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"lintang/neuracity/pkg/costfunction"
	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/engine/routingalgorithm"
	"lintang/neuracity/pkg/guidance"
	"lintang/neuracity/pkg/hazard"
	"lintang/neuracity/pkg/server"

	"go.uber.org/zap"
)

// RoadNetwork graph yang sudah jadi. read-only, aman dipakai banyak request sekaligus.
type RoadNetwork interface {
	routingalgorithm.RoadGraph
	Segments() []datastructure.Segment
	Snap(point datastructure.Coordinate, maxDistanceM float64) (datastructure.NodeID, error)
}

type HazardCache interface {
	Get(ctx context.Context, g hazard.SegmentSource) *hazard.Snapshot
	Invalidate()
}

type Summarizer interface {
	Summarize(g guidance.RouteGraph, route, baseline datastructure.Path, pen guidance.PenaltySource,
		cf costfunction.CostFunction) datastructure.RouteResult
}

type Config struct {
	SnapToleranceM float64                 `mapstructure:"snap_tolerance_m"`
	Weights        costfunction.Weights    `mapstructure:"weights"`
	Budget         routingalgorithm.Budget `mapstructure:"budget"`
}

const defaultSnapToleranceM = 300

type roadNetworkRef struct {
	g RoadNetwork
}

type NavigationService struct {
	network    atomic.Pointer[roadNetworkRef]
	hazards    HazardCache
	summarizer Summarizer
	cfg        Config
	log        *zap.Logger
}

func NewNavigationService(g RoadNetwork, hazards HazardCache, summarizer Summarizer, cfg Config,
	log *zap.Logger) *NavigationService {
	if cfg.SnapToleranceM <= 0 {
		cfg.SnapToleranceM = defaultSnapToleranceM
	}
	if log == nil {
		log = zap.NewNop()
	}
	uc := &NavigationService{hazards: hazards, summarizer: summarizer, cfg: cfg, log: log}
	if g != nil {
		uc.SetGraph(g)
	}
	return uc
}

// SetGraph ganti road network secara atomik. request yang sedang jalan tetap pakai graph lama.
func (uc *NavigationService) SetGraph(g RoadNetwork) {
	uc.network.Store(&roadNetworkRef{g: g})
	uc.hazards.Invalidate()
}

func (uc *NavigationService) graph() (RoadNetwork, error) {
	ref := uc.network.Load()
	if ref == nil || ref.g == nil {
		return nil, server.WrapErrorf(nil, server.ErrUnavailable, "road network is not loaded yet")
	}
	return ref.g, nil
}

/*
PlanRoute validasi request -> snap origin & destination -> ambil hazard snapshot (semua I/O provider di sini)
-> A* dengan cost function mode -> A* baseline tanpa penalty (jarak) -> summary.

error selalu *server.Error, error engine (SnapFailureError, NoPathFoundError, dst) tetap bisa diambil pakai errors.As.
*/
func (uc *NavigationService) PlanRoute(ctx context.Context, req datastructure.RouteRequest) (datastructure.RouteResult, error) {
	if err := req.Validate(); err != nil {
		return datastructure.RouteResult{}, wrapRouteError(err, "invalid route request")
	}
	g, err := uc.graph()
	if err != nil {
		return datastructure.RouteResult{}, err
	}

	from, err := g.Snap(req.Origin, uc.cfg.SnapToleranceM)
	if err != nil {
		return datastructure.RouteResult{}, wrapRouteError(err, "origin is not covered by the road network")
	}
	to, err := g.Snap(req.Destination, uc.cfg.SnapToleranceM)
	if err != nil {
		return datastructure.RouteResult{}, wrapRouteError(err, "destination is not covered by the road network")
	}

	cf, err := costfunction.ForMode(req.Mode, uc.cfg.Weights)
	if err != nil {
		return datastructure.RouteResult{}, wrapRouteError(err, "invalid route request")
	}

	snapshot := uc.hazards.Get(ctx, g)

	path, err := routingalgorithm.FindPath(ctx, g, snapshot, from, to, cf, uc.cfg.Budget)
	if err != nil {
		return datastructure.RouteResult{}, wrapRouteError(err, "failed to find %s route", req.Mode)
	}
	baseline, err := routingalgorithm.FindPath(ctx, g, snapshot, from, to, costfunction.NewDistance(uc.cfg.Weights), uc.cfg.Budget)
	if err != nil {
		return datastructure.RouteResult{}, wrapRouteError(err, "failed to find shortest baseline route")
	}

	res := uc.summarizer.Summarize(g, path, baseline, snapshot, cf)
	uc.log.Debug("route planned",
		zap.String("mode", string(req.Mode)),
		zap.Int("nodes", len(path.Nodes)),
		zap.Int("expanded", path.Expanded),
		zap.Float64("distance_km", res.DistanceKm),
		zap.Float64("eta_minutes", res.EtaMinutes))
	return res, nil
}

// HazardStats ringkasan snapshot hazard yang sedang dipakai (refresh kalau sudah kadaluarsa).
func (uc *NavigationService) HazardStats(ctx context.Context) (hazard.Stats, error) {
	g, err := uc.graph()
	if err != nil {
		return hazard.Stats{}, err
	}
	return uc.hazards.Get(ctx, g).Stats(), nil
}

// RefreshHazards snapshot dibangun ulang di request berikutnya.
func (uc *NavigationService) RefreshHazards() {
	uc.hazards.Invalidate()
	uc.log.Info("hazard snapshot invalidated")
}

func wrapRouteError(err error, format string, a ...interface{}) error {
	code := server.ErrInternalServerError
	switch datastructure.ErrorCode(err) {
	case datastructure.CodeInvalidInput:
		code = server.ErrBadParamInput
	case datastructure.CodeSnapFailed:
		code = server.ErrNotFound
	case datastructure.CodeNoPath:
		code = server.ErrUnprocessable
	case datastructure.CodeSearchTimeout:
		code = server.ErrTimeout
	}
	return server.WrapErrorf(err, code, "%s: %s", fmt.Sprintf(format, a...), err.Error())
}
