package statistics

import (
	"fmt"

	"github.com/lox/handstats/internal/handhistory"
)

// Row holds the derived metrics for one position.
type Row struct {
	Position         handhistory.Position `json:"position"`
	Hands            int                  `json:"hands"`
	VPIP             Metric               `json:"vpip"`
	PFR              Metric               `json:"pfr"`
	ThreeBet         Metric               `json:"three_bet"`
	WinRate          Metric               `json:"win_rate"`
	AggressionFactor Metric               `json:"aggression_factor"`
	FoldToCBet       Metric               `json:"fold_to_cbet"`
	EVBBPer100       Metric               `json:"ev_bb_100"`
	ShowdownEV       Metric               `json:"showdown_ev_bb_100"`
	NonShowdownEV    Metric               `json:"nonshowdown_ev_bb_100"`
	TotalWon         int                  `json:"total_won"`
	WonShowdown      int                  `json:"won_showdown"`
	WonNoShowdown    int                  `json:"won_noshow"`
	TotalProfit      int64                `json:"total_profit"`
}

// Table is the statistics table: one row per canonical position plus Overall.
type Table struct {
	BBUnit int
	Raw    map[handhistory.Position]Accumulator
	Rows   map[handhistory.Position]Row
}

// FromAccumulators derives a table from raw accumulators. Missing positions
// are treated as empty.
func FromAccumulators(raw map[handhistory.Position]Accumulator, bbUnit int) *Table {
	t := &Table{
		BBUnit: bbUnit,
		Raw:    make(map[handhistory.Position]Accumulator, len(handhistory.Positions)+1),
		Rows:   make(map[handhistory.Position]Row, len(handhistory.Positions)+1),
	}
	keys := append(append([]handhistory.Position{}, handhistory.Positions...), Overall)
	for _, p := range keys {
		acc := raw[p]
		t.Raw[p] = acc
		t.Rows[p] = derive(p, acc, bbUnit)
	}
	return t
}

func percent(hits, n int) Metric {
	if n == 0 {
		return NotApplicable()
	}
	return Value(float64(hits) / float64(n) * 100)
}

func evPer100(profit int64, hands, bbUnit int) Metric {
	if hands == 0 || bbUnit <= 0 {
		return NotApplicable()
	}
	return Value(float64(profit) / float64(bbUnit) / float64(hands) * 100)
}

func derive(p handhistory.Position, acc Accumulator, bbUnit int) Row {
	row := Row{
		Position:      p,
		Hands:         acc.Hands,
		TotalWon:      acc.TotalWon(),
		WonShowdown:   acc.WonShowdown,
		WonNoShowdown: acc.WonNoShowdown,
		TotalProfit:   acc.TotalProfit,
	}
	if acc.Hands == 0 {
		return row
	}

	row.VPIP = percent(acc.VPIPHits, acc.Hands)
	row.PFR = percent(acc.PFRHits, acc.Hands)
	row.ThreeBet = percent(acc.ThreeBetHits, acc.Hands)
	row.WinRate = percent(acc.TotalWon(), acc.Hands)
	row.FoldToCBet = percent(acc.FoldToCBetHits, acc.CBetOpportunities)

	row.AggressionFactor = Value(0)
	if acc.Calls > 0 {
		row.AggressionFactor = Value(float64(acc.BetsRaises) / float64(acc.Calls))
	}

	row.EVBBPer100 = evPer100(acc.TotalProfit, acc.Hands, bbUnit)
	row.ShowdownEV = evPer100(acc.ShowdownProfit, acc.ShowdownHands, bbUnit)
	row.NonShowdownEV = evPer100(acc.NonShowdownProfit, acc.Hands-acc.ShowdownHands, bbUnit)
	return row
}

// Row returns the row for p.
func (t *Table) Row(p handhistory.Position) Row {
	if r, ok := t.Rows[p]; ok {
		return r
	}
	return derive(p, Accumulator{}, t.BBUnit)
}

// Ordered returns the rows for order followed by the Overall row. An empty
// order uses the canonical position order.
func (t *Table) Ordered(order []handhistory.Position) []Row {
	if len(order) == 0 {
		order = handhistory.Positions
	}
	rows := make([]Row, 0, len(order)+1)
	for _, p := range order {
		rows = append(rows, t.Row(p))
	}
	return append(rows, t.Row(Overall))
}

// IsLedgerBalanced checks that showdown and non-showdown profit add up to
// the total for every accumulator.
func (t *Table) IsLedgerBalanced() bool {
	for _, acc := range t.Raw {
		if acc.ShowdownProfit+acc.NonShowdownProfit != acc.TotalProfit {
			return false
		}
	}
	return true
}

// Validate checks the overall accumulator against the positional ones.
func (t *Table) Validate() error {
	if !t.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: showdown and non-showdown profit do not sum to total")
	}

	var sum Accumulator
	for _, p := range handhistory.Positions {
		sum.Merge(t.Raw[p])
	}
	overall := t.Raw[Overall]
	if sum != overall {
		return fmt.Errorf("overall accumulator mismatch: positions sum to %d hands, overall has %d", sum.Hands, overall.Hands)
	}

	for p, acc := range t.Raw {
		if acc.Hands < 0 {
			return fmt.Errorf("%s: invalid hand count %d", p, acc.Hands)
		}
		if acc.PFRHits > acc.VPIPHits {
			return fmt.Errorf("%s: PFR hits %d exceed VPIP hits %d", p, acc.PFRHits, acc.VPIPHits)
		}
		if acc.TotalWon() > acc.Hands {
			return fmt.Errorf("%s: won %d of %d hands", p, acc.TotalWon(), acc.Hands)
		}
	}
	return nil
}
