// Package config loads runtime settings from defaults, an optional YAML
// file and TEAMWORK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. TEAMWORK_RUNTIME_LIFECYCLE.
const EnvPrefix = "TEAMWORK_"

// Config is the full runtime configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Runtime RuntimeConfig `koanf:"runtime"`
	Cache   CacheConfig   `koanf:"cache"`
	// RolesFile is a YAML file of custom role definitions.
	RolesFile string `koanf:"roles_file"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type RuntimeConfig struct {
	Lifecycle      string `koanf:"lifecycle"`       // singleton, transient
	MutationCheck  string `koanf:"mutation_check"`  // type-based, structural-scan
	BranchingCheck string `koanf:"branching_check"` // structural-scan, none
	OnViolation    string `koanf:"on_violation"`    // reject, warn
}

type CacheConfig struct {
	Backend   string        `koanf:"backend"` // none, memory, redis
	RedisAddr string        `koanf:"redis_addr"`
	TTL       time.Duration `koanf:"ttl"`
}

var defaults = map[string]any{
	"log.level":               "info",
	"log.format":              "text",
	"runtime.lifecycle":       string(domain.Singleton),
	"runtime.mutation_check":  string(domain.MutationTypeBased),
	"runtime.branching_check": string(domain.BranchingStructuralScan),
	"runtime.on_violation":    string(domain.OnViolationReject),
	"cache.backend":           "none",
	"cache.redis_addr":        "localhost:6379",
	"cache.ttl":               "24h",
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Runtime: RuntimeConfig{
			Lifecycle:      string(domain.Singleton),
			MutationCheck:  string(domain.MutationTypeBased),
			BranchingCheck: string(domain.BranchingStructuralScan),
			OnViolation:    string(domain.OnViolationReject),
		},
		Cache: CacheConfig{Backend: "none", RedisAddr: "localhost:6379", TTL: 24 * time.Hour},
	}
}

// Load reads defaults, then path (if not empty), then the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps TEAMWORK_RUNTIME_ON_VIOLATION to runtime.on_violation.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"log", "runtime", "cache"} {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Validate rejects unknown enum values. Every problem is reported.
func (c Config) Validate() error {
	var errs []error
	if _, err := domain.ParseLifecycle(c.Runtime.Lifecycle); err != nil {
		errs = append(errs, err)
	}
	if _, err := domain.ParseMutationStrategy(c.Runtime.MutationCheck); err != nil {
		errs = append(errs, err)
	}
	if _, err := domain.ParseBranchingStrategy(c.Runtime.BranchingCheck); err != nil {
		errs = append(errs, err)
	}
	if _, err := domain.ParseViolationPolicy(c.Runtime.OnViolation); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (expected text|json)", c.Log.Format))
	}
	switch c.Cache.Backend {
	case "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q (expected none|memory|redis)", c.Cache.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
