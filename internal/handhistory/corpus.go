package handhistory

import (
	"context"
	"io"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Result is the parsed form of a corpus.
type Result struct {
	Hands       []*Hand // hands hero was seated in, in corpus order
	Dropped     int     // hands where hero never took a seat
	Diagnostics []Diagnostic
}

// ParseBlock parses a single hand block as produced by Blocks.
func ParseBlock(block string) (*Hand, []Diagnostic) {
	p := NewParser()
	var hand *Hand
	for line := range strings.SplitSeq(block, "\n") {
		if done := p.Feed(line); done != nil && hand == nil {
			hand = done
		}
	}
	if last := p.Finish(); hand == nil {
		hand = last
	}
	return hand, p.Diagnostics()
}

// ParseCorpus segments and parses a corpus sequentially.
func ParseCorpus(corpus string, logger *log.Logger) Result {
	logger = orDiscard(logger)
	var res Result
	for block := range Blocks(corpus) {
		hand, diags := ParseBlock(block)
		res.add(hand, diags, logger)
	}
	return res
}

// ParseParallel parses the corpus's hand blocks across workers. Blocks are
// independent, so the result is identical to ParseCorpus.
func ParseParallel(ctx context.Context, corpus string, workers int, logger *log.Logger) (Result, error) {
	logger = orDiscard(logger)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	blocks := slices.Collect(Blocks(corpus))
	type parsed struct {
		hand  *Hand
		diags []Diagnostic
	}
	out := make([]parsed, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < len(blocks); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				hand, diags := ParseBlock(blocks[i])
				out[i] = parsed{hand: hand, diags: diags}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var res Result
	for _, p := range out {
		res.add(p.hand, p.diags, logger)
	}
	return res, nil
}

func (r *Result) add(hand *Hand, diags []Diagnostic, logger *log.Logger) {
	for _, d := range diags {
		logger.Debug("ignored line", "hand", d.HandID, "line", d.Line, "rule", d.Rule, "err", d.Err)
	}
	r.Diagnostics = append(r.Diagnostics, diags...)
	if hand == nil {
		return
	}
	if !hand.Seated {
		logger.Debug("dropping hand without hero seat", "hand", hand.ID)
		r.Dropped++
		return
	}
	r.Hands = append(r.Hands, hand)
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
