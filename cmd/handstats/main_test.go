package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/handstats/internal/config"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/statistics"
	"github.com/lox/handstats/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionFile = "../../internal/handhistory/testdata/session.txt"

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestCLIParsing(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"analyze", sessionFile, "--bb-unit", "50", "--workers", "2", "--csv", "out.csv", "--plain"})
	require.NoError(t, err)
	assert.Equal(t, "analyze <file>", ctx.Command())
	require.NotNil(t, cli.Analyze.BBUnit)
	assert.Equal(t, 50, *cli.Analyze.BBUnit)
	assert.Equal(t, 2, *cli.Analyze.Workers)
	assert.True(t, cli.Analyze.Plain)
	assert.Equal(t, "handstats.hcl", filepath.Base(cli.Analyze.Config))

	cfg := config.Default()
	cli.Analyze.override(cfg)
	assert.Equal(t, 50, cfg.Analysis.BBUnit)
	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.Equal(t, "out.csv", cfg.Report.CSV)
	assert.Empty(t, cfg.Storage.Path)
}

func TestAnalyzeCommand(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cmd := &AnalyzeCmd{
		File:  sessionFile,
		CSV:   filepath.Join(dir, "stats.csv"),
		Chart: filepath.Join(dir, "stats.html"),
		DB:    filepath.Join(dir, "runs.db"),
		Plain: true,
	}
	cfg := config.Default()
	cmd.override(cfg)
	require.NoError(t, cfg.Validate())

	var out bytes.Buffer
	require.NoError(t, cmd.run(ctx, cfg, quietLogger(), &out))
	assert.Contains(t, out.String(), "UTG")
	assert.Contains(t, out.String(), "overall")

	t.Run("csv", func(t *testing.T) {
		f, err := os.Open(cfg.Report.CSV)
		require.NoError(t, err)
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		last := records[len(records)-1]
		assert.Equal(t, "overall", last[0])
		assert.Equal(t, "3", last[1])
	})

	t.Run("chart", func(t *testing.T) {
		info, err := os.Stat(cfg.Report.Chart)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("stored run", func(t *testing.T) {
		store, err := storage.Open(ctx, cfg.Storage.Path, nil)
		require.NoError(t, err)
		defer store.Close()

		runs, err := store.ListRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, 4, runs[0].Hands)
		assert.Equal(t, 1, runs[0].Dropped)

		table, err := store.LoadTable(ctx, runs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 3, table.Row(statistics.Overall).Hands)
		assert.Equal(t, 1, table.Row(handhistory.UTG).Hands)
		assert.Equal(t, 1, table.Row(handhistory.BB).Hands)
		assert.Equal(t, 1, table.Row(handhistory.BTN).Hands)

		var listing bytes.Buffer
		require.NoError(t, (&RunsCmd{DB: cfg.Storage.Path}).run(ctx, &listing))
		assert.Contains(t, listing.String(), runs[0].ID)

		view := &ViewCmd{DB: cfg.Storage.Path}
		vcfg := config.Default()
		view.override(vcfg)
		viewTable, hands, title, err := view.source(ctx, vcfg, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, table, viewTable)
		assert.Len(t, hands, 4)
		assert.Contains(t, title, sessionFile)
	})
}

func TestAnalyzeMissingFile(t *testing.T) {
	cmd := &AnalyzeCmd{File: filepath.Join(t.TempDir(), "missing.txt")}
	err := cmd.run(context.Background(), config.Default(), quietLogger(), io.Discard)
	assert.Error(t, err)
}

func TestHandsCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&HandsCmd{File: sessionFile, Limit: 2}).run(quietLogger(), &out))

	var hands []handhistory.Hand
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var h handhistory.Hand
		require.NoError(t, json.Unmarshal(sc.Bytes(), &h))
		hands = append(hands, h)
	}
	require.Len(t, hands, 2)
	assert.Equal(t, "TM1001", hands[0].ID)
	assert.Equal(t, handhistory.UTG, hands[0].Position)
	assert.Equal(t, "TM1002", hands[1].ID)
	assert.Equal(t, handhistory.BB, hands[1].Position)
}

func TestViewNeedsSource(t *testing.T) {
	_, _, _, err := (&ViewCmd{}).source(context.Background(), config.Default(), quietLogger())
	assert.ErrorContains(t, err, "view needs a FILE or --db")
}

func TestRunsEmpty(t *testing.T) {
	var out bytes.Buffer
	db := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, (&RunsCmd{DB: db}).run(context.Background(), &out))
	assert.Contains(t, out.String(), "no runs stored")
}
