package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/handstats/internal/config"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/statistics"
	"github.com/lox/handstats/internal/storage"
	"github.com/lox/handstats/internal/tui"
)

// ViewCmd opens the interactive viewer on a file or a stored run.
type ViewCmd struct {
	ConfigFlags `embed:""`

	File   string `arg:"" optional:"" help:"Hand history file" type:"existingfile"`
	BBUnit *int   `name:"bb-unit" help:"Chips per big blind for EV normalization"`
	DB     string `name:"db" help:"SQLite database with stored runs"`
	RunID  string `name:"run" help:"Stored run ID (default: newest)"`
}

func (c *ViewCmd) override(cfg *config.Config) {
	if c.BBUnit != nil {
		cfg.Analysis.BBUnit = *c.BBUnit
	}
	if c.DB != "" {
		cfg.Storage.Path = c.DB
	}
}

func (c *ViewCmd) Run(ctx context.Context) error {
	cfg, logger, err := c.load(c.override)
	if err != nil {
		return err
	}

	table, hands, title, err := c.source(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return tui.Run(tui.New(table, hands, tui.Options{
		Title:  title,
		Order:  cfg.Analysis.Positions,
		Logger: logger,
	}))
}

func (c *ViewCmd) source(ctx context.Context, cfg *config.Config, logger *log.Logger) (*statistics.Table, []*handhistory.Hand, string, error) {
	if c.File != "" {
		res, table, err := analyzeFile(ctx, c.File, cfg, logger)
		if err != nil {
			return nil, nil, "", err
		}
		return table, res.Hands, c.File, nil
	}

	if cfg.Storage.Path == "" {
		return nil, nil, "", errors.New("view needs a FILE or --db")
	}
	store, err := storage.Open(ctx, cfg.Storage.Path, nil)
	if err != nil {
		return nil, nil, "", err
	}
	defer store.Close()

	id := c.RunID
	if id == "" {
		runs, err := store.ListRuns(ctx)
		if err != nil {
			return nil, nil, "", err
		}
		if len(runs) == 0 {
			return nil, nil, "", fmt.Errorf("no runs stored in %s", cfg.Storage.Path)
		}
		id = runs[0].ID
	}

	run, err := store.GetRun(ctx, id)
	if err != nil {
		return nil, nil, "", err
	}
	table, err := store.LoadTable(ctx, id)
	if err != nil {
		return nil, nil, "", err
	}
	hands, err := store.LoadHands(ctx, id)
	if err != nil {
		return nil, nil, "", err
	}
	return table, hands, fmt.Sprintf("%s (%s)", run.Source, run.CreatedAt.Local().Format("2006-01-02 15:04")), nil
}
