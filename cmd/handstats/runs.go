package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/handstats/internal/storage"
)

// RunsCmd lists stored runs.
type RunsCmd struct {
	DB string `name:"db" required:"" help:"SQLite database with stored runs" env:"HANDSTATS_DB"`
}

func (c *RunsCmd) Run(ctx context.Context) error {
	return c.run(ctx, os.Stdout)
}

func (c *RunsCmd) run(ctx context.Context, stdout io.Writer) error {
	store, err := storage.Open(ctx, c.DB, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintf(stdout, "no runs stored in %s\n", c.DB)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Created", "Source", "Hands", "Dropped", "BB unit")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Source,
			strconv.Itoa(r.Hands),
			strconv.Itoa(r.Dropped),
			strconv.Itoa(r.BBUnit),
		)
	}
	_, err = fmt.Fprintln(stdout, t.String())
	return err
}
