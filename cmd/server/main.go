package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "lintang/neuracity/docs"
	"lintang/neuracity/pkg/config"
	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/graph"
	"lintang/neuracity/pkg/guidance"
	"lintang/neuracity/pkg/hazard"
	"lintang/neuracity/pkg/kv"
	"lintang/neuracity/pkg/logger"
	"lintang/neuracity/pkg/osmparser"
	"lintang/neuracity/pkg/provider/postgres"
	"lintang/neuracity/pkg/provider/synthetic"
	"lintang/neuracity/pkg/server/rest"
	"lintang/neuracity/pkg/server/rest/service"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "neuracity-server",
	Short: "Multi-modal hazard-aware route planner",
	Long: `neuracity-server serves route planning for drive, eco and quiet_walk modes over a road network
overlaid with live traffic congestion, noise levels and open incident reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./neuracity.yaml or $HOME/neuracity.yaml)")

	rootCmd.Flags().String("listen-addr", ":5000", "server listen address")
	rootCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().String("graph-source", config.GraphSourceSynthetic, "road network source: osm, pebble, synthetic")
	rootCmd.Flags().String("osm-file", "atlanta.osm.pbf", "openstreetmap pbf file buat road network graphnya")
	rootCmd.Flags().String("pebble-dir", "neuracityDB", "pebble directory hasil cmd/preprocessing")
	rootCmd.Flags().String("providers", config.ProviderSourceSynthetic, "hazard data providers: postgres, synthetic, none")
	rootCmd.Flags().String("postgres-url", "", "postgres connection url buat tabel traffic_segments, noise_segments, issues")

	bind := map[string]string{
		"listen_addr":            "listen-addr",
		"log_level":              "log-level",
		"graph.source":           "graph-source",
		"graph.osm_file":         "osm-file",
		"graph.pebble_dir":       "pebble-dir",
		"providers.source":       "providers",
		"providers.postgres_url": "postgres-url",
	}
	for key, flag := range bind {
		cobra.CheckErr(viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)))
	}
}

//	@title			neuracity route planner API
//	@version		1.0
//	@description	multi-modal route planner (drive, eco, quiet_walk) di atas road network dengan overlay hazard traffic, noise, dan incident.

//	@contact.name	neuracity

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	var city *synthetic.City
	if cfg.Graph.Source == config.GraphSourceSynthetic || cfg.Providers.Source == config.ProviderSourceSynthetic {
		city = synthetic.NewCity(cfg.Synthetic, nil)
	}

	cache, closeProviders, err := newHazardCache(ctx, cfg, city, log)
	if err != nil {
		return err
	}
	defer closeProviders()

	navigatorSvc := service.NewNavigationService(nil, cache, guidance.NewSummarizer(cfg.Summary), cfg.Navigation, log)

	// graph dibangun di background, request /plan dapat 503 sampai graph siap
	go func() {
		start := time.Now()
		raws, err := loadRoadNetwork(ctx, cfg, city, log)
		if err != nil {
			log.Error("failed to load road network", zap.String("source", cfg.Graph.Source), zap.Error(err))
			return
		}
		g, err := graph.BuildGraph(raws, cfg.GraphOptions()...)
		if err != nil {
			log.Error("failed to build road network graph", zap.Error(err))
			return
		}
		navigatorSvc.SetGraph(g)
		b := g.Bound()
		log.Info("road network ready",
			zap.String("source", cfg.Graph.Source),
			zap.Int("nodes", g.NumNodes()),
			zap.Int("segments", g.NumSegments()),
			zap.Float64s("bound", []float64{b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon()}),
			zap.Duration("took", time.Since(start)))
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), //The url pointing to API definition
	))

	rest.NavigatorRouter(r, navigatorSvc, m)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHazardCache provider hazard sesuai config. provider yang tidak dipakai dibiarkan nil (interface nil, bukan typed nil).
func newHazardCache(ctx context.Context, cfg *config.Config, city *synthetic.City,
	log *zap.Logger) (*hazard.SnapshotCache, func(), error) {
	agg := hazard.NewAggregator(cfg.Hazard)

	switch cfg.Providers.Source {
	case config.ProviderSourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Providers.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		cache := hazard.NewSnapshotCache(agg,
			postgres.NewTrafficRepository(pool, cfg.Providers.MaxSampleAge),
			postgres.NewNoiseRepository(pool, cfg.Providers.MaxSampleAge),
			postgres.NewIssueRepository(pool),
			log)
		return cache, pool.Close, nil
	case config.ProviderSourceSynthetic:
		return hazard.NewSnapshotCache(agg, city.Traffic(), city.Noise(), city.Issues(), log), func() {}, nil
	default:
		log.Warn("no hazard providers configured, routes use pure travel time")
		return hazard.NewSnapshotCache(agg, nil, nil, nil, log), func() {}, nil
	}
}

func loadRoadNetwork(ctx context.Context, cfg *config.Config, city *synthetic.City,
	log *zap.Logger) ([]datastructure.RawSegment, error) {
	switch cfg.Graph.Source {
	case config.GraphSourceOSM:
		return osmparser.NewOsmParser(log).ParseFile(ctx, cfg.Graph.OSMFile)
	case config.GraphSourcePebble:
		db, err := kv.Open(cfg.Graph.PebbleDir, &pebble.Options{ReadOnly: true})
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadSegments()
	default:
		return city.RoadNetwork(), nil
	}
}
