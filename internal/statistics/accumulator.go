package statistics

import "github.com/lox/handstats/internal/handhistory"

// Accumulator holds running counts for one position. It is purely additive;
// percentages are produced by Derive.
type Accumulator struct {
	Hands             int
	VPIPHits          int
	PFRHits           int
	ThreeBetHits      int
	BetsRaises        int // across all streets
	Calls             int
	Folds             int
	CBetOpportunities int // hands where hero acted on the flop
	FoldToCBetHits    int
	WonShowdown       int
	WonNoShowdown     int
	ShowdownHands     int
	TotalProfit       int64
	ShowdownProfit    int64
	NonShowdownProfit int64
	ChipsStart        int64
	ChipsEnd          int64
}

// TotalWon is the number of winning hands.
func (a Accumulator) TotalWon() int {
	return a.WonShowdown + a.WonNoShowdown
}

// Merge adds b into a. Merge is associative and commutative.
func (a *Accumulator) Merge(b Accumulator) {
	a.Hands += b.Hands
	a.VPIPHits += b.VPIPHits
	a.PFRHits += b.PFRHits
	a.ThreeBetHits += b.ThreeBetHits
	a.BetsRaises += b.BetsRaises
	a.Calls += b.Calls
	a.Folds += b.Folds
	a.CBetOpportunities += b.CBetOpportunities
	a.FoldToCBetHits += b.FoldToCBetHits
	a.WonShowdown += b.WonShowdown
	a.WonNoShowdown += b.WonNoShowdown
	a.ShowdownHands += b.ShowdownHands
	a.TotalProfit += b.TotalProfit
	a.ShowdownProfit += b.ShowdownProfit
	a.NonShowdownProfit += b.NonShowdownProfit
	a.ChipsStart += b.ChipsStart
	a.ChipsEnd += b.ChipsEnd
}

// Add folds one hand into the accumulator.
func (a *Accumulator) Add(h *handhistory.Hand) {
	a.Merge(handAccumulator(h))
}

// handAccumulator classifies a single hand as a one-hand accumulator.
func handAccumulator(h *handhistory.Hand) Accumulator {
	acc := Accumulator{Hands: 1}

	raises := 0
	for _, act := range h.ActionsOn(handhistory.Preflop) {
		switch act.Verb {
		case handhistory.VerbRaise:
			raises++
			acc.VPIPHits = 1
			acc.PFRHits = 1
		case handhistory.VerbCall, handhistory.VerbBet:
			acc.VPIPHits = 1
		}
	}
	if raises >= 2 {
		acc.ThreeBetHits = 1
	}

	showdown := false
	for _, act := range h.AllActions() {
		switch act.Verb {
		case handhistory.VerbBet, handhistory.VerbRaise:
			acc.BetsRaises++
		case handhistory.VerbCall:
			acc.Calls++
		case handhistory.VerbFold:
			acc.Folds++
		case handhistory.VerbShow:
			showdown = true
		}
	}

	if flop := h.ActionsOn(handhistory.Flop); len(flop) > 0 {
		acc.CBetOpportunities = 1
		if flop[0].Verb == handhistory.VerbFold {
			acc.FoldToCBetHits = 1
		}
	}

	profit := int64(h.Profit())
	acc.TotalProfit = profit
	acc.ChipsStart = int64(h.Stack)
	acc.ChipsEnd = int64(h.Stack) + profit

	if showdown {
		acc.ShowdownHands = 1
		acc.ShowdownProfit = profit
	} else {
		acc.NonShowdownProfit = profit
	}

	if h.Outcome > 0 || h.Bounty > 0 {
		if showdown {
			acc.WonShowdown = 1
		} else {
			acc.WonNoShowdown = 1
		}
	}
	return acc
}
