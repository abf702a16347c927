package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/handstats/cmd/handstats/shared"
	"github.com/lox/handstats/internal/handhistory"
)

// HandsCmd dumps parsed hand records.
type HandsCmd struct {
	File  string `arg:"" help:"Hand history file" type:"existingfile"`
	Limit int    `help:"Maximum number of hands to print (0 = all)"`
	Debug bool   `help:"Enable debug logging"`
}

func (c *HandsCmd) Run() error {
	return c.run(shared.SetupLogger("info", c.Debug), os.Stdout)
}

func (c *HandsCmd) run(logger *log.Logger, stdout io.Writer) error {
	corpus, err := handhistory.LoadCorpus(c.File)
	if err != nil {
		return err
	}
	res := handhistory.ParseCorpus(corpus, logger)

	hands := res.Hands
	if c.Limit > 0 && c.Limit < len(hands) {
		hands = hands[:c.Limit]
	}

	enc := json.NewEncoder(stdout)
	for _, h := range hands {
		if err := enc.Encode(h); err != nil {
			return fmt.Errorf("encoding hand %s: %w", h.ID, err)
		}
	}
	return nil
}
