package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lintang/neuracity/pkg/costfunction"
	"lintang/neuracity/pkg/graph"
	"lintang/neuracity/pkg/guidance"
	"lintang/neuracity/pkg/hazard"
	"lintang/neuracity/pkg/provider/synthetic"
	"lintang/neuracity/pkg/server/rest/service"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvPrefix = "NEURACITY"

const (
	GraphSourceOSM       = "osm"
	GraphSourcePebble    = "pebble"
	GraphSourceSynthetic = "synthetic"

	ProviderSourcePostgres  = "postgres"
	ProviderSourceSynthetic = "synthetic"
	ProviderSourceNone      = "none"
)

type GraphConfig struct {
	Source        string  `mapstructure:"source"`
	OSMFile       string  `mapstructure:"osm_file"`
	PebbleDir     string  `mapstructure:"pebble_dir"`
	MergeEpsilonM float64 `mapstructure:"merge_epsilon_m"`
	DriveSpeedKmh float64 `mapstructure:"drive_speed_kmh"`
	WalkSpeedKmh  float64 `mapstructure:"walk_speed_kmh"`
}

type ProviderConfig struct {
	Source      string `mapstructure:"source"`
	PostgresURL string `mapstructure:"postgres_url"`
	// MaxSampleAge sample traffic/noise yang lebih tua dari ini diabaikan, 0 = semua.
	MaxSampleAge time.Duration `mapstructure:"max_sample_age"`
}

type Config struct {
	ListenAddr string           `mapstructure:"listen_addr"`
	LogLevel   string           `mapstructure:"log_level"`
	Graph      GraphConfig      `mapstructure:"graph"`
	Providers  ProviderConfig   `mapstructure:"providers"`
	Navigation service.Config   `mapstructure:"navigation"`
	Hazard     hazard.Config    `mapstructure:"hazard"`
	Summary    guidance.Config  `mapstructure:"summary"`
	Synthetic  synthetic.Config `mapstructure:"synthetic"`
}

// SetDefaults semua key didaftarkan ke viper, supaya env NEURACITY_* tetap kebaca walau key tidak ada di file config.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("log_level", "info")

	v.SetDefault("graph.source", GraphSourceSynthetic)
	v.SetDefault("graph.osm_file", "atlanta.osm.pbf")
	v.SetDefault("graph.pebble_dir", "neuracityDB")
	v.SetDefault("graph.merge_epsilon_m", graph.DefaultMergeEpsilonM)
	v.SetDefault("graph.drive_speed_kmh", graph.DefaultDriveSpeedKmh)
	v.SetDefault("graph.walk_speed_kmh", graph.DefaultWalkSpeedKmh)

	v.SetDefault("providers.source", ProviderSourceSynthetic)
	v.SetDefault("providers.postgres_url", "")
	v.SetDefault("providers.max_sample_age", "1h")

	w := costfunction.DefaultWeights()
	v.SetDefault("navigation.snap_tolerance_m", graph.DefaultSnapMaxDistanceM)
	v.SetDefault("navigation.weights.drive_hazard", w.DriveHazard)
	v.SetDefault("navigation.weights.eco_congestion", w.EcoCongestion)
	v.SetDefault("navigation.weights.quiet_noise", w.QuietNoise)
	v.SetDefault("navigation.weights.congestion_slowdown", w.CongestionSlowdown)
	v.SetDefault("navigation.weights.default_drive_kmh", w.DefaultDriveKmh)
	v.SetDefault("navigation.weights.default_walk_kmh", w.DefaultWalkKmh)
	v.SetDefault("navigation.budget.max_expansions", 0)
	v.SetDefault("navigation.budget.timeout", "2s")

	h := hazard.DefaultConfig()
	v.SetDefault("hazard.traffic_radius_m", h.TrafficRadiusM)
	v.SetDefault("hazard.noise_radius_m", h.NoiseRadiusM)
	v.SetDefault("hazard.issue_radius_m", h.IssueRadiusM)
	v.SetDefault("hazard.noise_floor_db", h.NoiseFloorDB)
	v.SetDefault("hazard.noise_ceiling_db", h.NoiseCeilingDB)
	v.SetDefault("hazard.ambient_noise_db", h.AmbientNoiseDB)
	v.SetDefault("hazard.h3_resolution", h.H3Resolution)
	v.SetDefault("hazard.snapshot_ttl", h.SnapshotTTL.String())
	v.SetDefault("hazard.workers", h.Workers)

	s := guidance.DefaultConfig()
	v.SetDefault("summary.co2_kg_per_km", s.Co2KgPerKm)
	v.SetDefault("summary.congestion_co2_relief", s.CongestionCo2Relief)
	v.SetDefault("summary.high_hazard_threshold", s.HighHazardThreshold)
	v.SetDefault("summary.ambient_noise_db", s.AmbientNoiseDB)

	c := synthetic.DefaultConfig()
	v.SetDefault("synthetic.seed", c.Seed)
	v.SetDefault("synthetic.origin_lat", c.OriginLat)
	v.SetDefault("synthetic.origin_lon", c.OriginLon)
	v.SetDefault("synthetic.rows", c.Rows)
	v.SetDefault("synthetic.cols", c.Cols)
	v.SetDefault("synthetic.spacing_deg", c.SpacingDeg)
	v.SetDefault("synthetic.arterial_every", c.ArterialEvery)
	v.SetDefault("synthetic.sensors_per_area", c.SensorsPerArea)
	v.SetDefault("synthetic.issues", c.Issues)
}

/*
LoadConfig baca config dari (urutan prioritas naik): default, file config (yaml/json/toml), env NEURACITY_*, flag cobra
yang sudah di-bind ke v. cfgFile kosong -> cari neuracity.yaml di working directory dan $HOME, tidak wajib ada.
*/
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName("neuracity")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := v.Unmarshal(&cfg, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Graph.Source {
	case GraphSourceOSM:
		if c.Graph.OSMFile == "" {
			return errors.New("graph.osm_file is required when graph.source is osm")
		}
	case GraphSourcePebble:
		if c.Graph.PebbleDir == "" {
			return errors.New("graph.pebble_dir is required when graph.source is pebble")
		}
	case GraphSourceSynthetic:
	default:
		return fmt.Errorf("unknown graph.source %q, expected one of osm, pebble, synthetic", c.Graph.Source)
	}

	switch c.Providers.Source {
	case ProviderSourcePostgres:
		if c.Providers.PostgresURL == "" {
			return errors.New("providers.postgres_url is required when providers.source is postgres")
		}
	case ProviderSourceSynthetic, ProviderSourceNone:
	default:
		return fmt.Errorf("unknown providers.source %q, expected one of postgres, synthetic, none", c.Providers.Source)
	}

	if c.Navigation.SnapToleranceM < 0 {
		return fmt.Errorf("navigation.snap_tolerance_m must not be negative, got %v", c.Navigation.SnapToleranceM)
	}
	return nil
}

// GraphOptions opsi graph builder dari config.
func (c *Config) GraphOptions() []graph.Option {
	return []graph.Option{
		graph.WithMergeEpsilon(c.Graph.MergeEpsilonM),
		graph.WithDefaultSpeeds(c.Graph.DriveSpeedKmh, c.Graph.WalkSpeedKmh),
	}
}

