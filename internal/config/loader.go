// Package config loads logcove's process configuration via viper: defaults,
// then environment variables prefixed LOGCOVE_, then an optional runtime
// override map, in that increasing order of precedence.
//
// Grounded on gonimbus's internal/config loader (the same three-tier
// precedence, the same per-field env-spec table), with the fulmen/pathfinder
// CI-boundary-detection layer it builds on dropped: that layer has no
// buildable source anywhere in the retrieval pack, so this loader resolves
// configuration purely from viper's own mechanisms instead of a project-root
// discovery step.
package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const envPrefix = "LOGCOVE"

// ServerConfig controls the HTTP listener (internal/server).
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig selects the zap logger's level and output profile.
type LoggingConfig struct {
	Level   string
	Profile string
}

// MetricsConfig controls whether/where the Prometheus registry is exposed.
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// HealthConfig controls whether the health-check routes are registered.
type HealthConfig struct {
	Enabled bool
}

// DebugConfig controls debug-only surfaces (pprof).
type DebugConfig struct {
	Enabled      bool
	PprofEnabled bool
}

// StoreConfig selects and configures the object-store provider (spec §6
// object-store layout) backing pkg/catalog and pkg/provider.
type StoreConfig struct {
	Provider       string // "file" or "s3"
	Bucket         string
	Region         string
	Endpoint       string
	Profile        string
	ForcePathStyle bool
	LocalRoot      string
}

// IngestConfig configures the ingestion controller (pkg/ingest, spec §4.6).
type IngestConfig struct {
	Mode                   string // "all", "query", or "ingest"
	TagPrefix              string
	MetaPrefix             string
	Separator              string
	DefaultTimestampColumn string
}

// QueryConfig configures the embedded SQL session (pkg/querysession, spec §4.8).
type QueryConfig struct {
	MemoryPoolBytes int64
}

// Config is the fully resolved process configuration.
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Metrics MetricsConfig
	Health  HealthConfig
	Debug   DebugConfig
	Workers int

	Store  StoreConfig
	Ingest IngestConfig
	Query  QueryConfig
}

var (
	configMu  sync.RWMutex
	appConfig *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "STRUCTURED")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.pprof_enabled", false)

	v.SetDefault("workers", 4)

	v.SetDefault("store.provider", "file")
	v.SetDefault("store.local_root", "./data")
	v.SetDefault("store.force_path_style", false)

	v.SetDefault("ingest.mode", "all")
	v.SetDefault("ingest.tag_prefix", "X-P-Tag-")
	v.SetDefault("ingest.meta_prefix", "X-P-Meta-")
	v.SetDefault("ingest.separator", "^")
	v.SetDefault("ingest.default_timestamp_column", "p_timestamp")

	v.SetDefault("query.memory_pool_bytes", 0)
}

// envSpec names one viper key and the environment variable bound to it,
// used both to wire viper.BindEnv and to describe the mapping for callers.
type envSpec struct {
	Name string // e.g. LOGCOVE_SERVER_PORT
	Path string // e.g. server.port
}

func getEnvSpecs() []envSpec {
	paths := []string{
		"server.host", "server.port",
		"server.read_timeout", "server.write_timeout",
		"server.idle_timeout", "server.shutdown_timeout",
		"logging.level", "logging.profile",
		"metrics.enabled", "metrics.port",
		"health.enabled",
		"debug.enabled", "debug.pprof_enabled",
		"workers",
		"store.provider", "store.bucket", "store.region", "store.endpoint",
		"store.profile", "store.force_path_style", "store.local_root",
		"ingest.mode", "ingest.tag_prefix", "ingest.meta_prefix",
		"ingest.separator", "ingest.default_timestamp_column",
		"query.memory_pool_bytes",
	}
	specs := make([]envSpec, len(paths))
	for i, path := range paths {
		specs[i] = envSpec{
			Name: envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(path, ".", "_")),
			Path: path,
		}
	}
	return specs
}

// Load resolves configuration from defaults, then LOGCOVE_-prefixed
// environment variables, then an optional runtime override map (highest
// precedence), and records the result as the process-wide config returned
// by GetConfig.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, spec := range getEnvSpecs() {
		_ = v.BindEnv(spec.Path, spec.Name)
	}

	if len(overrides) > 0 && overrides[0] != nil {
		if err := v.MergeConfigMap(overrides[0]); err != nil {
			return nil, fmt.Errorf("config: merge runtime overrides: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()

	return &cfg, nil
}

// GetConfig returns the most recently Load-ed configuration, or nil if
// Load has never been called.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}
