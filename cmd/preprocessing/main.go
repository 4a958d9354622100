package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lintang/neuracity/pkg/config"
	"lintang/neuracity/pkg/graph"
	"lintang/neuracity/pkg/kv"
	"lintang/neuracity/pkg/logger"
	"lintang/neuracity/pkg/osmparser"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// preprocessing: parse osm pbf sekali, simpan road segment ke pebble biar server start cepat (graph.source=pebble).
var rootCmd = &cobra.Command{
	Use:   "neuracity-preprocessing",
	Short: "Import an OpenStreetMap extract into the pebble road segment store",
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
	rootCmd.Flags().StringP("osm-file", "f", "atlanta.osm.pbf", "openstreetmap pbf file buat road network graphnya")
	rootCmd.Flags().String("pebble-dir", "neuracityDB", "output pebble directory")
	rootCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")

	cobra.CheckErr(viper.BindPFlag("graph.osm_file", rootCmd.Flags().Lookup("osm-file")))
	cobra.CheckErr(viper.BindPFlag("graph.pebble_dir", rootCmd.Flags().Lookup("pebble-dir")))
	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level")))
}

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

	start := time.Now()
	raws, err := osmparser.NewOsmParser(log).ParseFile(ctx, cfg.Graph.OSMFile)
	if err != nil {
		return err
	}

	// cek dulu graph-nya bisa dibangun, jangan simpan data yang nanti gagal di server
	g, err := graph.BuildGraph(raws, cfg.GraphOptions()...)
	if err != nil {
		return fmt.Errorf("build graph from %s: %w", cfg.Graph.OSMFile, err)
	}

	db, err := kv.Open(cfg.Graph.PebbleDir, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveSegments(raws); err != nil {
		return err
	}

	log.Info("road segments stored",
		zap.String("osm_file", cfg.Graph.OSMFile),
		zap.String("pebble_dir", cfg.Graph.PebbleDir),
		zap.Int("raw_segments", len(raws)),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("segments", g.NumSegments()),
		zap.Duration("took", time.Since(start)))
	return nil
}
