// Package storage persists analysis runs in SQLite: run metadata, the parsed
// hands and the raw position accumulators.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/statistics"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// Store is a handle on the runs database.
type Store struct {
	db    *sql.DB
	clock quartz.Clock
}

// Run is the metadata of one stored analysis.
type Run struct {
	ID          string
	Source      string
	CreatedAt   time.Time
	BBUnit      int
	Hands       int
	Dropped     int
	Diagnostics int
}

// Open opens (creating if needed) the database at path and migrates it.
// A nil clock uses the real clock.
func Open(ctx context.Context, path string, clock quartz.Clock) (*Store, error) {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := Migrate(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db, clock: clock}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a parse result and its statistics table as a new run.
func (s *Store) SaveRun(ctx context.Context, source string, res handhistory.Result, table *statistics.Table) (Run, error) {
	run := Run{
		ID:          uuid.NewString(),
		Source:      source,
		CreatedAt:   s.clock.Now().UTC(),
		BBUnit:      table.BBUnit,
		Hands:       len(res.Hands),
		Dropped:     res.Dropped,
		Diagnostics: len(res.Diagnostics),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, created_at, bb_unit, hands, dropped, diagnostics) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.CreatedAt.Format(time.RFC3339Nano), run.BBUnit, run.Hands, run.Dropped, run.Diagnostics,
	); err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	handStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO hands (run_id, seq, hand_id, tournament_id, position, profit, data) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("failed to prepare hand insert: %w", err)
	}
	defer handStmt.Close()

	for i, h := range res.Hands {
		data, err := json.Marshal(h)
		if err != nil {
			return Run{}, fmt.Errorf("failed to encode hand %s: %w", h.ID, err)
		}
		if _, err := handStmt.ExecContext(ctx, run.ID, i, h.ID, h.TournamentID, string(h.Position), h.Profit(), string(data)); err != nil {
			return Run{}, fmt.Errorf("failed to insert hand %s: %w", h.ID, err)
		}
	}

	for p, a := range table.Raw {
		if _, err := tx.ExecContext(ctx, `INSERT INTO position_stats (
			run_id, position, hands, vpip_hits, pfr_hits, three_bet_hits, bets_raises, calls, folds,
			cbet_opportunities, fold_to_cbet_hits, won_showdown, won_noshow, showdown_hands,
			total_profit, showdown_profit, nonshowdown_profit, chips_start, chips_end
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, string(p), a.Hands, a.VPIPHits, a.PFRHits, a.ThreeBetHits, a.BetsRaises, a.Calls, a.Folds,
			a.CBetOpportunities, a.FoldToCBetHits, a.WonShowdown, a.WonNoShowdown, a.ShowdownHands,
			a.TotalProfit, a.ShowdownProfit, a.NonShowdownProfit, a.ChipsStart, a.ChipsEnd,
		); err != nil {
			return Run{}, fmt.Errorf("failed to insert %s stats: %w", p, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var (
		r       Run
		created string
	)
	if err := row.Scan(&r.ID, &r.Source, &created, &r.BBUnit, &r.Hands, &r.Dropped, &r.Diagnostics); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad created_at %q: %w", r.ID, created, err)
	}
	r.CreatedAt = t
	return r, nil
}

const runColumns = `id, source, created_at, bb_unit, hands, dropped, diagnostics`

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the metadata of one run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return r, nil
}

// LoadTable re-derives the statistics table of a run from its stored
// accumulators.
func (s *Store) LoadTable(ctx context.Context, id string) (*statistics.Table, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		position, hands, vpip_hits, pfr_hits, three_bet_hits, bets_raises, calls, folds,
		cbet_opportunities, fold_to_cbet_hits, won_showdown, won_noshow, showdown_hands,
		total_profit, showdown_profit, nonshowdown_profit, chips_start, chips_end
		FROM position_stats WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for run %s: %w", id, err)
	}
	defer rows.Close()

	raw := make(map[handhistory.Position]statistics.Accumulator)
	for rows.Next() {
		var (
			p string
			a statistics.Accumulator
		)
		if err := rows.Scan(&p, &a.Hands, &a.VPIPHits, &a.PFRHits, &a.ThreeBetHits, &a.BetsRaises, &a.Calls, &a.Folds,
			&a.CBetOpportunities, &a.FoldToCBetHits, &a.WonShowdown, &a.WonNoShowdown, &a.ShowdownHands,
			&a.TotalProfit, &a.ShowdownProfit, &a.NonShowdownProfit, &a.ChipsStart, &a.ChipsEnd); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		raw[handhistory.Position(p)] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statistics.FromAccumulators(raw, run.BBUnit), nil
}

// LoadHands returns the hands stored with a run in corpus order.
func (s *Store) LoadHands(ctx context.Context, id string) ([]*handhistory.Hand, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM hands WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load hands for run %s: %w", id, err)
	}
	defer rows.Close()

	var hands []*handhistory.Hand
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan hand: %w", err)
		}
		var h handhistory.Hand
		if err := json.Unmarshal([]byte(data), &h); err != nil {
			return nil, fmt.Errorf("failed to decode hand: %w", err)
		}
		// only seated hands are stored
		h.Seated = true
		hands = append(hands, &h)
	}
	return hands, rows.Err()
}
