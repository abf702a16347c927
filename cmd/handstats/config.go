package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/handstats/cmd/handstats/shared"
	"github.com/lox/handstats/internal/config"
)

// ConfigFlags are shared by commands that read the configuration file.
type ConfigFlags struct {
	Config  string `help:"HCL configuration file" default:"handstats.hcl" type:"path"`
	EnvFile string `name:"env-file" help:"dotenv file with HANDSTATS_* overrides" default:".env" type:"path"`
	Debug   bool   `help:"Enable debug logging"`
}

// load reads the file, overlays the environment and validates. Command flags
// are applied by the caller before Validate via override.
func (f ConfigFlags) load(override func(*config.Config)) (*config.Config, *log.Logger, error) {
	if err := config.LoadDotEnv(f.EnvFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(f.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, shared.SetupLogger(cfg.LogLevel, f.Debug), nil
}
