package statistics

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lox/handstats/internal/handhistory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pre = []handhistory.Action

func act(v handhistory.Verb) handhistory.Action { return handhistory.Action{Verb: v} }

func hand(pos handhistory.Position, outcome int, streets ...[]handhistory.Action) *handhistory.Hand {
	h := &handhistory.Hand{
		ID:       "test",
		Position: pos,
		Seated:   true,
		Outcome:  outcome,
		Actions:  map[handhistory.Street][]handhistory.Action{},
	}
	for i, s := range streets {
		h.Actions[handhistory.Streets[i]] = s
	}
	return h
}

func TestMetric(t *testing.T) {
	t.Run("not applicable", func(t *testing.T) {
		m := NotApplicable()
		assert.False(t, m.Applicable())
		assert.Equal(t, "N/A", m.String())
		b, err := json.Marshal(m)
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	})

	t.Run("zero is a value", func(t *testing.T) {
		m := Value(0)
		assert.True(t, m.Applicable())
		assert.Equal(t, "0.00", m.String())
		b, err := json.Marshal(m)
		require.NoError(t, err)
		assert.Equal(t, "0", string(b))
	})

	t.Run("format precision", func(t *testing.T) {
		assert.Equal(t, "33.3", Value(100.0/3).Format(1))
	})
}

func TestHandClassification(t *testing.T) {
	t.Run("call raise raise is vpip pfr and 3-bet", func(t *testing.T) {
		acc := handAccumulator(hand(handhistory.CO, 0, pre{
			act(handhistory.VerbCall), act(handhistory.VerbRaise), act(handhistory.VerbRaise),
		}))
		assert.Equal(t, 1, acc.VPIPHits)
		assert.Equal(t, 1, acc.PFRHits)
		assert.Equal(t, 1, acc.ThreeBetHits)
		assert.Equal(t, 2, acc.BetsRaises)
		assert.Equal(t, 1, acc.Calls)
	})

	t.Run("check is not voluntary", func(t *testing.T) {
		acc := handAccumulator(hand(handhistory.BB, 0, pre{act(handhistory.VerbCheck)}))
		assert.Zero(t, acc.VPIPHits)
		assert.Zero(t, acc.PFRHits)
	})

	t.Run("counts span every street", func(t *testing.T) {
		acc := handAccumulator(hand(handhistory.BTN, 0,
			pre{act(handhistory.VerbCall)},
			[]handhistory.Action{act(handhistory.VerbBet)},
			[]handhistory.Action{act(handhistory.VerbCall)},
			[]handhistory.Action{act(handhistory.VerbFold)},
		))
		assert.Equal(t, 1, acc.BetsRaises)
		assert.Equal(t, 2, acc.Calls)
		assert.Equal(t, 1, acc.Folds)
	})

	t.Run("fold to cbet uses the first flop action", func(t *testing.T) {
		folded := handAccumulator(hand(handhistory.BB, 0, pre{act(handhistory.VerbCall)},
			[]handhistory.Action{act(handhistory.VerbFold)}))
		assert.Equal(t, 1, folded.CBetOpportunities)
		assert.Equal(t, 1, folded.FoldToCBetHits)

		later := handAccumulator(hand(handhistory.BB, 0, pre{act(handhistory.VerbCall)},
			[]handhistory.Action{act(handhistory.VerbCheck), act(handhistory.VerbFold)}))
		assert.Equal(t, 1, later.CBetOpportunities)
		assert.Zero(t, later.FoldToCBetHits)

		none := handAccumulator(hand(handhistory.BB, 0, pre{act(handhistory.VerbFold)}))
		assert.Zero(t, none.CBetOpportunities)
	})

	t.Run("showdown win", func(t *testing.T) {
		acc := handAccumulator(hand(handhistory.SB, 400, pre{act(handhistory.VerbCall)},
			nil, nil, []handhistory.Action{act(handhistory.VerbShow)}))
		assert.Equal(t, 1, acc.WonShowdown)
		assert.Zero(t, acc.WonNoShowdown)
		assert.Equal(t, int64(400), acc.ShowdownProfit)
		assert.Zero(t, acc.NonShowdownProfit)
	})

	t.Run("bounty alone counts as a win", func(t *testing.T) {
		h := hand(handhistory.MP, -200, pre{act(handhistory.VerbRaise)})
		h.Bounty = 500
		acc := handAccumulator(h)
		assert.Equal(t, 1, acc.WonNoShowdown)
		assert.Equal(t, int64(300), acc.TotalProfit)
	})

	t.Run("chips track stack and profit", func(t *testing.T) {
		h := hand(handhistory.HJ, 150, pre{act(handhistory.VerbRaise)})
		h.Stack = 1000
		acc := handAccumulator(h)
		assert.Equal(t, int64(1000), acc.ChipsStart)
		assert.Equal(t, int64(1150), acc.ChipsEnd)
	})
}

func TestAggregateEndToEnd(t *testing.T) {
	handA := hand(handhistory.ResolvePosition(1, 4), 250, pre{act(handhistory.VerbRaise)})
	handB := hand(handhistory.BB, -50, pre{act(handhistory.VerbFold)})
	require.Equal(t, handhistory.UTG, handA.Position)

	table := Aggregate([]*handhistory.Hand{handA, handB}, 100)
	require.NoError(t, table.Validate())

	utg := table.Row(handhistory.UTG)
	assert.Equal(t, 1, utg.Hands)
	assertMetric(t, 100, utg.VPIP)
	assertMetric(t, 100, utg.PFR)
	assertMetric(t, 250, utg.EVBBPer100)

	bb := table.Row(handhistory.BB)
	assert.Equal(t, 1, bb.Hands)
	assertMetric(t, 0, bb.VPIP)
	assertMetric(t, 0, bb.PFR)
	assertMetric(t, -50, bb.EVBBPer100)

	overall := table.Row(Overall)
	assert.Equal(t, 2, overall.Hands)
	assert.Equal(t, int64(200), overall.TotalProfit)
	assertMetric(t, 100, overall.EVBBPer100)
}

func TestAggregateExclusions(t *testing.T) {
	unseated := hand(handhistory.UTG, 100, pre{act(handhistory.VerbRaise)})
	unseated.Seated = false
	unresolved := hand(handhistory.PositionUnresolved, 100, pre{act(handhistory.VerbRaise)})

	a := NewAggregator()
	assert.False(t, a.Add(unseated))
	assert.False(t, a.Add(unresolved))
	assert.False(t, a.Add(nil))

	table := a.Derive(100)
	assert.Zero(t, table.Row(Overall).Hands)
	require.NoError(t, table.Validate())
}

func TestZeroHandsNotApplicable(t *testing.T) {
	table := Aggregate(nil, 100)
	for _, row := range table.Ordered(nil) {
		assert.Zero(t, row.Hands, row.Position)
		for name, m := range map[string]Metric{
			"vpip": row.VPIP, "pfr": row.PFR, "3bet": row.ThreeBet,
			"win": row.WinRate, "af": row.AggressionFactor, "fcb": row.FoldToCBet,
			"ev": row.EVBBPer100, "sd": row.ShowdownEV, "nsd": row.NonShowdownEV,
		} {
			assert.False(t, m.Applicable(), "%s %s", row.Position, name)
		}
	}
}

func TestDerivedEdgeCases(t *testing.T) {
	t.Run("aggression factor without calls is zero", func(t *testing.T) {
		table := Aggregate([]*handhistory.Hand{hand(handhistory.CO, 0, pre{act(handhistory.VerbRaise)})}, 100)
		assertMetric(t, 0, table.Row(handhistory.CO).AggressionFactor)
	})

	t.Run("fold to cbet without opportunities", func(t *testing.T) {
		table := Aggregate([]*handhistory.Hand{hand(handhistory.CO, 0, pre{act(handhistory.VerbFold)})}, 100)
		assert.False(t, table.Row(handhistory.CO).FoldToCBet.Applicable())
	})

	t.Run("aggression factor ratio", func(t *testing.T) {
		table := Aggregate([]*handhistory.Hand{
			hand(handhistory.SB, 0, pre{act(handhistory.VerbRaise)}, []handhistory.Action{act(handhistory.VerbBet)}),
			hand(handhistory.SB, 0, pre{act(handhistory.VerbCall)}),
		}, 100)
		assertMetric(t, 2, table.Row(handhistory.SB).AggressionFactor)
	})
}

func TestVPIPAtLeastPFR(t *testing.T) {
	verbs := []handhistory.Verb{handhistory.VerbFold, handhistory.VerbCheck, handhistory.VerbCall, handhistory.VerbBet, handhistory.VerbRaise}
	var hands []*handhistory.Hand
	for i := range 60 {
		var actions []handhistory.Action
		for j := 0; j <= i%3; j++ {
			actions = append(actions, act(verbs[(i+j*2)%len(verbs)]))
		}
		hands = append(hands, hand(handhistory.Positions[i%len(handhistory.Positions)], i-30, actions))
	}
	table := Aggregate(hands, 100)
	for _, row := range table.Ordered(nil) {
		vpip, _ := row.VPIP.Float()
		pfr, _ := row.PFR.Float()
		assert.GreaterOrEqual(t, vpip, pfr, row.Position)
	}
	require.NoError(t, table.Validate())
}

func TestAggregateParallel(t *testing.T) {
	var hands []*handhistory.Hand
	for i := range 101 {
		actions := pre{act(handhistory.VerbCall)}
		if i%4 == 0 {
			actions = append(actions, act(handhistory.VerbRaise), act(handhistory.VerbRaise))
		}
		h := hand(handhistory.Positions[i%len(handhistory.Positions)], (i%7-3)*100, actions,
			[]handhistory.Action{act(handhistory.VerbShow)})
		if i%3 == 0 {
			h.Actions[handhistory.Flop] = []handhistory.Action{act(handhistory.VerbFold)}
		}
		hands = append(hands, h)
	}

	want := Aggregate(hands, 100)
	for _, workers := range []int{0, 1, 2, 5, 200} {
		got, err := AggregateParallel(context.Background(), hands, 100, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := AggregateParallel(ctx, hands, 100, 2)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMergeIsCommutative(t *testing.T) {
	a := handAccumulator(hand(handhistory.UTG, 250, pre{act(handhistory.VerbRaise)}))
	b := handAccumulator(hand(handhistory.UTG, -100, pre{act(handhistory.VerbCall)},
		[]handhistory.Action{act(handhistory.VerbFold)}))

	ab, ba := a, b
	ab.Merge(b)
	ba.Merge(a)
	assert.Equal(t, ab, ba)
	assert.Equal(t, 2, ab.Hands)
	assert.Equal(t, int64(150), ab.TotalProfit)
}

func TestValidateDetectsMismatch(t *testing.T) {
	table := Aggregate([]*handhistory.Hand{hand(handhistory.UTG, 100, pre{act(handhistory.VerbRaise)})}, 100)
	raw := table.Raw[Overall]
	raw.Hands++
	table.Raw[Overall] = raw
	assert.ErrorContains(t, table.Validate(), "overall accumulator mismatch")

	table = Aggregate(nil, 100)
	raw = table.Raw[handhistory.BTN]
	raw.TotalProfit = 10
	table.Raw[handhistory.BTN] = raw
	assert.ErrorContains(t, table.Validate(), "ledger mismatch")
}

func TestOrdered(t *testing.T) {
	table := Aggregate(nil, 100)
	rows := table.Ordered([]handhistory.Position{handhistory.BB, handhistory.UTG})
	require.Len(t, rows, 3)
	assert.Equal(t, handhistory.BB, rows[0].Position)
	assert.Equal(t, handhistory.UTG, rows[1].Position)
	assert.Equal(t, Overall, rows[2].Position)
	assert.Len(t, table.Ordered(nil), len(handhistory.Positions)+1)
}

func assertMetric(t *testing.T, want float64, m Metric) {
	t.Helper()
	got, ok := m.Float()
	require.True(t, ok, "metric not applicable")
	assert.InDelta(t, want, got, 1e-9)
}
