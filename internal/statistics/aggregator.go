package statistics

import (
	"context"
	"runtime"

	"github.com/lox/handstats/internal/handhistory"
	"golang.org/x/sync/errgroup"
)

// Overall keys the accumulator covering every canonical position.
const Overall handhistory.Position = "overall"

// Aggregator folds hands into per-position accumulators and the overall one.
type Aggregator struct {
	acc map[handhistory.Position]*Accumulator
}

// NewAggregator returns an aggregator with an empty accumulator for each
// canonical position and for Overall.
func NewAggregator() *Aggregator {
	a := &Aggregator{acc: make(map[handhistory.Position]*Accumulator, len(handhistory.Positions)+1)}
	for _, p := range handhistory.Positions {
		a.acc[p] = &Accumulator{}
	}
	a.acc[Overall] = &Accumulator{}
	return a
}

// Add folds one hand. Hands without a seated hero or a canonical position
// are excluded and Add reports false.
func (a *Aggregator) Add(h *handhistory.Hand) bool {
	if h == nil || !h.Seated || !h.Position.Canonical() {
		return false
	}
	one := handAccumulator(h)
	a.acc[h.Position].Merge(one)
	a.acc[Overall].Merge(one)
	return true
}

// Merge adds every accumulator of b into a.
func (a *Aggregator) Merge(b *Aggregator) {
	for p, acc := range b.acc {
		a.acc[p].Merge(*acc)
	}
}

// Accumulator returns a copy of the accumulator for p.
func (a *Aggregator) Accumulator(p handhistory.Position) Accumulator {
	if acc, ok := a.acc[p]; ok {
		return *acc
	}
	return Accumulator{}
}

// Derive computes the statistics table using bbUnit chips per big blind.
func (a *Aggregator) Derive(bbUnit int) *Table {
	raw := make(map[handhistory.Position]Accumulator, len(a.acc))
	for p, acc := range a.acc {
		raw[p] = *acc
	}
	return FromAccumulators(raw, bbUnit)
}

// Aggregate folds hands sequentially and derives the table.
func Aggregate(hands []*handhistory.Hand, bbUnit int) *Table {
	a := NewAggregator()
	for _, h := range hands {
		a.Add(h)
	}
	return a.Derive(bbUnit)
}

// AggregateParallel shards hands across workers, folds each shard into its
// own aggregator, and merges the shards. The result equals Aggregate.
func AggregateParallel(ctx context.Context, hands []*handhistory.Hand, bbUnit, workers int) (*Table, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	shards := make([]*Aggregator, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range shards {
		shard := NewAggregator()
		shards[w] = shard
		g.Go(func() error {
			for i := w; i < len(hands); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				shard.Add(hands[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := NewAggregator()
	for _, shard := range shards {
		total.Merge(shard)
	}
	return total.Derive(bbUnit), nil
}
