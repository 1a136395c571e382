package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Validate checks cfg for settings that cannot work.
func Validate(cfg *Config) error {
	var errs []string
	if cfg.Listen == "" {
		errs = append(errs, "listen must not be empty")
	}
	if hclog.LevelFromString(cfg.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Sprintf("invalid log_level %q", cfg.LogLevel))
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, "max_body_bytes must not be negative")
	}
	if cfg.Metrics != nil && cfg.Metrics.Listen == "" {
		errs = append(errs, "metrics.listen must not be empty")
	}
	if cfg.Metrics != nil && cfg.Metrics.Listen == cfg.Listen {
		errs = append(errs, "metrics.listen must differ from listen")
	}
	if s := cfg.Store; s != nil {
		if s.PageSize < 0 {
			errs = append(errs, "store.page_size must not be negative")
		}
		switch s.Backend {
		case BackendMem:
		case BackendRedis:
			if s.Address == "" {
				errs = append(errs, `store "redis" requires address`)
			}
			if s.DB < 0 {
				errs = append(errs, `store "redis" db must not be negative`)
			}
		case BackendLevelDB:
			if s.Path == "" {
				errs = append(errs, `store "leveldb" requires path`)
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown store backend %q (want %s, %s or %s)",
				s.Backend, BackendMem, BackendRedis, BackendLevelDB))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
