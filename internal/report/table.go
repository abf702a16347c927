package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/statistics"
	"github.com/muesli/termenv"
)

// TableHeaders are the columns of the terminal table.
var TableHeaders = []string{"Position", "Hands", "VPIP", "PFR", "3-Bet", "AF", "F-CBet", "Win%", "EV bb/100"}

// TableRow formats a statistics row as terminal table cells.
func TableRow(r statistics.Row) []string {
	return []string{
		string(r.Position),
		strconv.Itoa(r.Hands),
		pct(r.VPIP),
		pct(r.PFR),
		pct(r.ThreeBet),
		r.AggressionFactor.Format(2),
		pct(r.FoldToCBet),
		pct(r.WinRate),
		r.EVBBPer100.Format(2),
	}
}

// TableOptions controls terminal rendering.
type TableOptions struct {
	Order []handhistory.Position
	// Plain disables colour, for pipes and tests.
	Plain bool
}

// RenderTable writes the statistics table to w.
func RenderTable(w io.Writer, st *statistics.Table, o TableOptions) error {
	var renderer *lipgloss.Renderer
	if o.Plain {
		renderer = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
	} else {
		renderer = lipgloss.NewRenderer(w)
	}

	header := renderer.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Bold(true).
		Padding(0, 1)
	cell := renderer.NewStyle().Padding(0, 1)
	overall := cell.Foreground(lipgloss.Color("#96CEB4")).Bold(true)
	na := cell.Foreground(lipgloss.Color("#626262"))

	rows := st.Ordered(o.Order)
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = TableRow(r)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(renderer.NewStyle().Foreground(lipgloss.Color("#7D56F4"))).
		Headers(TableHeaders...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row == len(cells)-1:
				return overall
			case cells[row][col] == statistics.NotApplicableText:
				return na
			default:
				return cell
			}
		})

	_, err := fmt.Fprintf(w, "%s\nbb unit: %d chips\n", t.String(), st.BBUnit)
	return err
}
