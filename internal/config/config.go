package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/handstats/internal/handhistory"
)

// Environment variables that override the configuration file.
const (
	EnvBBUnit   = "HANDSTATS_BB_UNIT"
	EnvWorkers  = "HANDSTATS_WORKERS"
	EnvLogLevel = "HANDSTATS_LOG_LEVEL"
	EnvDB       = "HANDSTATS_DB"
)

// Config is the complete analyzer configuration.
type Config struct {
	LogLevel string
	Analysis Analysis
	Report   Report
	Storage  Storage
}

// Analysis controls parsing and aggregation.
type Analysis struct {
	BBUnit    int                    // chips per big blind for EV normalization
	Workers   int                    // 0 uses every CPU
	Positions []handhistory.Position // report ordering
}

// Report names optional export files. Empty disables the export.
type Report struct {
	CSV   string
	Chart string
}

// Storage names the SQLite database for run persistence.
type Storage struct {
	Path string
}

// file mirrors the HCL schema. Blocks are pointers so they may be omitted.
type file struct {
	LogLevel string        `hcl:"log_level,optional"`
	Analysis *analysisFile `hcl:"analysis,block"`
	Report   *reportFile   `hcl:"report,block"`
	Storage  *storageFile  `hcl:"storage,block"`
}

type analysisFile struct {
	BBUnit    int      `hcl:"bb_unit,optional"`
	Workers   int      `hcl:"workers,optional"`
	Positions []string `hcl:"positions,optional"`
}

type reportFile struct {
	CSV   string `hcl:"csv,optional"`
	Chart string `hcl:"chart,optional"`
}

type storageFile struct {
	Path string `hcl:"path,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Analysis: Analysis{
			BBUnit:    100,
			Workers:   4,
			Positions: append([]handhistory.Position(nil), handhistory.Positions...),
		},
	}
}

// Load reads an HCL configuration file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if a := raw.Analysis; a != nil {
		if a.BBUnit != 0 {
			cfg.Analysis.BBUnit = a.BBUnit
		}
		cfg.Analysis.Workers = a.Workers
		if len(a.Positions) > 0 {
			cfg.Analysis.Positions = cfg.Analysis.Positions[:0]
			for _, s := range a.Positions {
				cfg.Analysis.Positions = append(cfg.Analysis.Positions, handhistory.Position(s))
			}
		}
	}
	if r := raw.Report; r != nil {
		cfg.Report = Report{CSV: r.CSV, Chart: r.Chart}
	}
	if s := raw.Storage; s != nil {
		cfg.Storage.Path = s.Path
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(filename string) error {
	if err := godotenv.Load(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", filename, err)
	}
	return nil
}

// ApplyEnv overlays environment variables found via lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBBUnit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBBUnit, err)
		}
		c.Analysis.BBUnit = n
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Analysis.Workers = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.Storage.Path = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Analysis.BBUnit <= 0 {
		return fmt.Errorf("analysis: bb_unit must be positive, got %d", c.Analysis.BBUnit)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis: workers must not be negative, got %d", c.Analysis.Workers)
	}

	seen := make(map[handhistory.Position]bool, len(c.Analysis.Positions))
	for i, s := range c.Analysis.Positions {
		p, err := handhistory.ParsePosition(string(s))
		if err != nil {
			return fmt.Errorf("analysis: %w", err)
		}
		if seen[p] {
			return fmt.Errorf("analysis: duplicate position %s", p)
		}
		seen[p] = true
		c.Analysis.Positions[i] = p
	}
	return nil
}
