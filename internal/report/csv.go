package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lox/handstats/internal/fileutil"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/statistics"
)

// CSVHeader is the column layout of the CSV export.
var CSVHeader = []string{
	"position", "hands", "vpip", "pfr", "aggression_factor", "fold_cbet_flop",
	"win_rate", "3bet", "won_showdown", "won_noshow", "total_won", "ev_bb_100", "total_profit",
}

func pct(m statistics.Metric) string {
	if !m.Applicable() {
		return statistics.NotApplicableText
	}
	return m.Format(2) + "%"
}

func csvRecord(r statistics.Row) []string {
	return []string{
		string(r.Position),
		strconv.Itoa(r.Hands),
		pct(r.VPIP),
		pct(r.PFR),
		r.AggressionFactor.Format(2),
		pct(r.FoldToCBet),
		pct(r.WinRate),
		pct(r.ThreeBet),
		strconv.Itoa(r.WonShowdown),
		strconv.Itoa(r.WonNoShowdown),
		strconv.Itoa(r.TotalWon),
		r.EVBBPer100.Format(2),
		strconv.FormatInt(r.TotalProfit, 10),
	}
}

// WriteCSV writes one row per position in order, followed by the overall row.
func WriteCSV(w io.Writer, table *statistics.Table, order []handhistory.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range table.Ordered(order) {
		if err := cw.Write(csvRecord(row)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.Position, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the CSV export to path.
func SaveCSV(path string, table *statistics.Table, order []handhistory.Position) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteCSV(w, table, order)
	})
}
