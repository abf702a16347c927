package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/handstats/internal/config"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/report"
	"github.com/lox/handstats/internal/statistics"
	"github.com/lox/handstats/internal/storage"
)

// AnalyzeCmd parses a corpus, aggregates it and reports the table.
type AnalyzeCmd struct {
	ConfigFlags `embed:""`

	File    string `arg:"" help:"Hand history file" type:"existingfile"`
	BBUnit  *int   `name:"bb-unit" help:"Chips per big blind for EV normalization"`
	Workers *int   `help:"Parse and aggregate workers (0 = all CPUs)"`
	CSV     string `name:"csv" help:"Write the table as CSV to this file"`
	Chart   string `help:"Write an HTML chart to this file"`
	DB      string `name:"db" help:"Store the run in this SQLite database"`
	Plain   bool   `help:"Disable colour in the table"`
}

func (c *AnalyzeCmd) override(cfg *config.Config) {
	if c.BBUnit != nil {
		cfg.Analysis.BBUnit = *c.BBUnit
	}
	if c.Workers != nil {
		cfg.Analysis.Workers = *c.Workers
	}
	if c.CSV != "" {
		cfg.Report.CSV = c.CSV
	}
	if c.Chart != "" {
		cfg.Report.Chart = c.Chart
	}
	if c.DB != "" {
		cfg.Storage.Path = c.DB
	}
}

func (c *AnalyzeCmd) Run(ctx context.Context) error {
	cfg, logger, err := c.load(c.override)
	if err != nil {
		return err
	}
	return c.run(ctx, cfg, logger, os.Stdout)
}

func (c *AnalyzeCmd) run(ctx context.Context, cfg *config.Config, logger *log.Logger, stdout io.Writer) error {
	res, table, err := analyzeFile(ctx, c.File, cfg, logger)
	if err != nil {
		return err
	}

	if err := report.RenderTable(stdout, table, report.TableOptions{Order: cfg.Analysis.Positions, Plain: c.Plain}); err != nil {
		return err
	}

	if path := cfg.Report.CSV; path != "" {
		if err := report.SaveCSV(path, table, cfg.Analysis.Positions); err != nil {
			return err
		}
		logger.Info("Wrote CSV", "path", path)
	}
	if path := cfg.Report.Chart; path != "" {
		if err := report.SaveChart(path, table, cfg.Analysis.Positions, report.DefaultChartConfig()); err != nil {
			return err
		}
		logger.Info("Wrote chart", "path", path)
	}
	if path := cfg.Storage.Path; path != "" {
		store, err := storage.Open(ctx, path, nil)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.SaveRun(ctx, c.File, res, table)
		if err != nil {
			return err
		}
		logger.Info("Stored run", "id", run.ID, "db", path)
	}
	return nil
}

// analyzeFile runs the whole pipeline over one file. An unreadable file is
// the only error that aborts before any result exists.
func analyzeFile(ctx context.Context, path string, cfg *config.Config, logger *log.Logger) (handhistory.Result, *statistics.Table, error) {
	corpus, err := handhistory.LoadCorpus(path)
	if err != nil {
		logger.Error("Cannot read corpus", "path", path, "error", err)
		return handhistory.Result{}, nil, err
	}

	res, err := handhistory.ParseParallel(ctx, corpus, cfg.Analysis.Workers, logger)
	if err != nil {
		return handhistory.Result{}, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	table, err := statistics.AggregateParallel(ctx, res.Hands, cfg.Analysis.BBUnit, cfg.Analysis.Workers)
	if err != nil {
		return handhistory.Result{}, nil, fmt.Errorf("aggregating %s: %w", path, err)
	}
	if err := table.Validate(); err != nil {
		logger.Warn("Statistics failed validation", "error", err)
	}

	logger.Info("Analyzed corpus",
		"path", path,
		"hands", len(res.Hands),
		"counted", table.Row(statistics.Overall).Hands,
		"dropped", res.Dropped,
		"diagnostics", len(res.Diagnostics),
	)
	return res, table, nil
}
