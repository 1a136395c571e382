// Package config loads and validates gitkv server configuration files.
//
// The configuration is written in HCL:
//
//	listen         = ":8080"
//	log_level      = "info"
//	log_json       = false
//	max_body_bytes = 104857600
//	cors_origins   = ["https://example.com"]
//
//	metrics {
//	  listen = ":9090"
//	}
//
//	store "redis" {
//	  address   = "127.0.0.1:6379"
//	  db        = 0
//	  page_size = 1000
//	}
//
// Every setting is optional; see Default for the values used in their
// absence.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the gitkv configuration
type Config struct {
	Listen       string         `hcl:"listen,optional"`
	LogLevel     string         `hcl:"log_level,optional"`
	LogJSON      bool           `hcl:"log_json,optional"`
	MaxBodyBytes int64          `hcl:"max_body_bytes,optional"`
	CORSOrigins  []string       `hcl:"cors_origins,optional"`
	Metrics      *MetricsConfig `hcl:"metrics,block"`
	Store        *StoreConfig   `hcl:"store,block"`

	// path to the loaded config file (empty if using defaults)
	configPath string
}

// MetricsConfig defines the metrics listener
type MetricsConfig struct {
	Listen string `hcl:"listen,optional"`
}

// StoreConfig selects and configures the ref store backend
type StoreConfig struct {
	Backend  string `hcl:"backend,label"`
	Address  string `hcl:"address,optional"`
	Password string `hcl:"password,optional"`
	DB       int    `hcl:"db,optional"`
	PageSize int    `hcl:"page_size,optional"`
	Path     string `hcl:"path,optional"`
}

// The store backends a server can be started with.
const (
	BackendMem     = "mem"
	BackendRedis   = "redis"
	BackendLevelDB = "leveldb"
)

// ConfigPath returns the path to the loaded config file, or empty if using defaults
func (c *Config) ConfigPath() string {
	return c.configPath
}

// MetricsListen returns the address of the metrics listener, or empty
// if metrics are not served.
func (c *Config) MetricsListen() string {
	if c.Metrics == nil {
		return ""
	}
	return c.Metrics.Listen
}

// NewLogger returns the logger the configuration asks for, writing to w.
func (c *Config) NewLogger(w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "gitkv",
		Level:      hclog.LevelFromString(c.LogLevel),
		JSONFormat: c.LogJSON,
		Output:     w,
	})
}

// Load loads configuration from path.  An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", formatDiagnostics(diags))
	}
	return decode(file.Body, path)
}

// Parse parses configuration from src.  filename is used in error
// messages only.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", formatDiagnostics(diags))
	}
	return decode(file.Body, "")
}

func decode(body hcl.Body, path string) (*Config, error) {
	var cfg Config
	if diags := gohcl.DecodeBody(body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", formatDiagnostics(diags))
	}
	cfg.configPath = path
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// formatDiagnostics formats HCL diagnostics into a readable error string
func formatDiagnostics(diags hcl.Diagnostics) string {
	var b strings.Builder
	for i, diag := range diags {
		if i > 0 {
			b.WriteString("; ")
		}
		if diag.Subject != nil {
			fmt.Fprintf(&b, "%s:%d: ", diag.Subject.Filename, diag.Subject.Start.Line)
		}
		b.WriteString(diag.Summary)
		if diag.Detail != "" {
			b.WriteString(": ")
			b.WriteString(diag.Detail)
		}
	}
	return b.String()
}

// applyDefaults fills in default values for unset settings
func applyDefaults(cfg *Config) {
	defaults := Default()
	if cfg.Listen == "" {
		cfg.Listen = defaults.Listen
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if cfg.Store == nil {
		cfg.Store = defaults.Store
	} else if cfg.Store.PageSize == 0 {
		cfg.Store.PageSize = defaults.Store.PageSize
	}
}
