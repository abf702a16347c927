package handhistory

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// State is the parser's position within the current hand.
type State int

const (
	StateAwaitingHeader State = iota
	StatePreflopPending
	StatePreflop
	StateFlop
	StateTurn
	StateRiver
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateAwaitingHeader:
		return "awaiting-header"
	case StatePreflopPending:
		return "preflop-pending"
	case StatePreflop:
		return "preflop"
	case StateFlop:
		return "flop"
	case StateTurn:
		return "turn"
	case StateRiver:
		return "river"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) street() Street {
	switch s {
	case StatePreflop:
		return Preflop
	case StateFlop:
		return Flop
	case StateTurn:
		return Turn
	case StateRiver:
		return River
	default:
		return StreetNone
	}
}

var (
	errNoCapture = errors.New("expected fields not found")
	errNoStreet  = errors.New("action before hole cards marker")
)

// Diagnostic describes a recognized line whose fields could not be extracted.
// Diagnostics never stop a parse.
type Diagnostic struct {
	HandID string
	Line   int
	Rule   string
	Text   string
	Err    error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("hand %s line %d (%s): %v: %q", d.HandID, d.Line, d.Rule, d.Err, d.Text)
}

var (
	handIDRe     = regexp.MustCompile(`Hand #(\w+)`)
	tournamentRe = regexp.MustCompile(`Tournament #(\d+)`)
	levelRe      = regexp.MustCompile(`Level([IVXLCDM]+|\d+)\(([\d,]+)/([\d,]+)`)

	buttonRe    = regexp.MustCompile(`Seat #(\d+) is the button`)
	heroSeatRe  = regexp.MustCompile(`Seat (\d+): Hero \(([\d,]+) in chips`)
	holeCardsRe = regexp.MustCompile(`Dealt to Hero \[([^\]]+)\]`)
	anteRe      = regexp.MustCompile(`posts the ante ([\d,]+)`)
	smallBlind  = regexp.MustCompile(`posts small blind ([\d,]+)`)
	bigBlind    = regexp.MustCompile(`posts big blind ([\d,]+)`)
	actionRe    = regexp.MustCompile(`Hero: (folds|checks|calls|bets|raises|shows|mucks)\b`)
	callRe      = regexp.MustCompile(`calls ([\d,]+)`)
	betRe       = regexp.MustCompile(`bets ([\d,]+)`)
	raiseRe     = regexp.MustCompile(`raises (?:[\d,]+ )?to ([\d,]+)`)
	collectedRe = regexp.MustCompile(`collected ([\d,]+)`)
	bountyRe    = regexp.MustCompile(`bounty ([\d,]+)`)
)

var streetMarkers = []struct {
	marker string
	state  State
}{
	{"*** HOLE CARDS ***", StatePreflop},
	{"*** FLOP ***", StateFlop},
	{"*** TURN ***", StateTurn},
	{"*** RIVER ***", StateRiver},
}

var actionVerbs = map[string]Verb{
	"folds":  VerbFold,
	"checks": VerbCheck,
	"calls":  VerbCall,
	"bets":   VerbBet,
	"raises": VerbRaise,
	"shows":  VerbShow,
	"mucks":  VerbMuck,
}

// lineRule recognizes one kind of hand line. When match is nil the pattern
// doubles as the trigger; otherwise a triggered line whose pattern fails is
// reported as a partial-field failure.
type lineRule struct {
	name    string
	match   func(line string) bool
	pattern *regexp.Regexp
	apply   func(p *Parser, m []string) error
}

func containsAll(subs ...string) func(string) bool {
	return func(line string) bool {
		for _, s := range subs {
			if !strings.Contains(line, s) {
				return false
			}
		}
		return true
	}
}

var rules = []lineRule{
	{
		name:    "button",
		match:   containsAll("Seat #", "is the button"),
		pattern: buttonRe,
		apply: func(p *Parser, m []string) error {
			seat, err := parseAmount(m[1])
			if err != nil {
				return err
			}
			p.hand.ButtonSeat = seat
			return nil
		},
	},
	{
		name:    "hero-seat",
		match:   containsAll("Seat ", Hero, "chips"),
		pattern: heroSeatRe,
		apply: func(p *Parser, m []string) error {
			seat, err := parseAmount(m[1])
			if err != nil {
				return err
			}
			stack, err := parseAmount(m[2])
			if err != nil {
				return err
			}
			p.hand.HeroSeat = seat
			p.hand.Stack = stack
			p.hand.Seated = true
			return nil
		},
	},
	{
		name:    "hole-cards",
		match:   containsAll("Dealt to " + Hero),
		pattern: holeCardsRe,
		apply: func(p *Parser, m []string) error {
			cards := strings.Fields(m[1])
			if len(cards) != 2 {
				return fmt.Errorf("expected 2 hole cards, got %d", len(cards))
			}
			p.hand.HeroCards = cards
			return nil
		},
	},
	{
		name:    "ante",
		match:   containsAll(Hero, "posts the ante"),
		pattern: anteRe,
		apply: func(p *Parser, m []string) error {
			return p.invest(m[1])
		},
	},
	{
		name:    "small-blind",
		match:   containsAll(Hero, "posts small blind"),
		pattern: smallBlind,
		apply: func(p *Parser, m []string) error {
			if err := p.invest(m[1]); err != nil {
				return err
			}
			p.setPosition(SB)
			return nil
		},
	},
	{
		name:    "big-blind",
		match:   containsAll(Hero, "posts big blind"),
		pattern: bigBlind,
		apply: func(p *Parser, m []string) error {
			if err := p.invest(m[1]); err != nil {
				return err
			}
			p.setPosition(BB)
			return nil
		},
	},
	{
		name:  "street",
		match: containsAll("*** "),
		apply: func(p *Parser, _ []string) error {
			for _, sm := range streetMarkers {
				if strings.Contains(p.text, sm.marker) {
					p.advance(sm.state)
				}
			}
			return nil
		},
	},
	{
		name:    "action",
		pattern: actionRe,
		apply: func(p *Parser, m []string) error {
			return p.act(actionVerbs[m[1]])
		},
	},
	{
		name:    "collected",
		match:   containsAll(Hero, "collected"),
		pattern: collectedRe,
		apply: func(p *Parser, m []string) error {
			amount, err := parseAmount(m[1])
			if err != nil {
				return err
			}
			p.hand.Collected += amount
			p.hand.Outcome = p.hand.Collected - p.hand.Invested
			return nil
		},
	},
	{
		name:    "bounty",
		match:   containsAll(Hero, "bounty"),
		pattern: bountyRe,
		apply: func(p *Parser, m []string) error {
			amount, err := parseAmount(m[1])
			if err != nil {
				return err
			}
			p.hand.Bounty = amount
			return nil
		},
	},
}

// Parser is a line-fed state machine that builds one Hand at a time.
// The zero value is ready to use.
type Parser struct {
	state State
	hand  *Hand
	line  int
	text  string
	diags []Diagnostic
}

// NewParser returns a parser waiting for its first header line.
func NewParser() *Parser {
	return &Parser{}
}

// State returns the current machine state.
func (p *Parser) State() State {
	return p.state
}

// Diagnostics returns every partial-field failure seen so far.
func (p *Parser) Diagnostics() []Diagnostic {
	return p.diags
}

// Feed processes one line. When the line opens a new hand, the previous hand
// is finalized and returned.
func (p *Parser) Feed(line string) *Hand {
	line = strings.TrimRight(line, "\r")
	p.line++
	p.text = line

	if IsHeader(line) {
		done := p.finalize()
		p.start(line)
		return done
	}
	if p.hand == nil {
		return nil
	}

	for _, r := range rules {
		var m []string
		switch {
		case r.match == nil:
			if m = r.pattern.FindStringSubmatch(line); m == nil {
				continue
			}
		case !r.match(line):
			continue
		case r.pattern != nil:
			if m = r.pattern.FindStringSubmatch(line); m == nil {
				p.diagnose(r.name, errNoCapture)
				continue
			}
		}
		if err := r.apply(p, m); err != nil {
			p.diagnose(r.name, err)
		}
	}
	return nil
}

// Finish finalizes and returns the hand in progress, if any.
func (p *Parser) Finish() *Hand {
	return p.finalize()
}

func (p *Parser) start(header string) {
	h := newHand()
	if m := handIDRe.FindStringSubmatch(header); m != nil {
		h.ID = m[1]
	}
	if m := tournamentRe.FindStringSubmatch(header); m != nil {
		h.TournamentID = m[1]
	}
	p.hand = h
	p.state = StatePreflopPending

	compact := strings.ReplaceAll(header, " ", "")
	if !strings.Contains(compact, "Level") {
		return
	}
	m := levelRe.FindStringSubmatch(compact)
	if m == nil {
		p.diagnose("level", errNoCapture)
		return
	}
	level, err := parseLevel(m[1], m[2], m[3])
	if err != nil {
		p.diagnose("level", err)
		return
	}
	h.Level = level
}

func (p *Parser) finalize() *Hand {
	h := p.hand
	if h == nil {
		return nil
	}
	if h.Position == "" {
		if h.ButtonSeat > 0 && h.HeroSeat > 0 {
			h.Position = ResolvePosition(h.ButtonSeat, h.HeroSeat)
		} else {
			h.Position = PositionUnresolved
		}
	}
	p.hand = nil
	p.state = StateFinalized
	return h
}

// advance moves to a later street. Markers for the current or an earlier
// street are ignored.
func (p *Parser) advance(to State) {
	if to <= p.state {
		return
	}
	p.state = to
	p.hand.Street = to.street()
}

// setPosition records blind evidence. The first posting wins.
func (p *Parser) setPosition(pos Position) {
	if p.hand.Position == "" {
		p.hand.Position = pos
	}
}

func (p *Parser) invest(raw string) error {
	amount, err := parseAmount(raw)
	if err != nil {
		return err
	}
	p.hand.Invested += amount
	return nil
}

func (p *Parser) act(verb Verb) error {
	street := p.hand.Street
	if street == StreetNone {
		return errNoStreet
	}

	var amountRe *regexp.Regexp
	switch verb {
	case VerbCall:
		amountRe = callRe
	case VerbBet:
		amountRe = betRe
	case VerbRaise:
		amountRe = raiseRe
	}

	action := Action{Verb: verb}
	var err error
	if amountRe != nil {
		if m := amountRe.FindStringSubmatch(p.text); m == nil {
			err = fmt.Errorf("%s: %w", verb, errNoCapture)
		} else if action.Amount, err = parseAmount(m[1]); err == nil {
			p.hand.Invested += action.Amount
		}
	}
	p.hand.Actions[street] = append(p.hand.Actions[street], action)
	return err
}

func (p *Parser) diagnose(rule string, err error) {
	d := Diagnostic{Line: p.line, Rule: rule, Text: p.text, Err: err}
	if p.hand != nil {
		d.HandID = p.hand.ID
	}
	p.diags = append(p.diags, d)
}

// parseAmount parses a chip amount, allowing comma digit grouping.
func parseAmount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", raw, err)
	}
	return n, nil
}

func parseLevel(number, sb, bb string) (*Level, error) {
	n, err := strconv.Atoi(number)
	if err != nil {
		if n = romanToInt(number); n == 0 {
			return nil, fmt.Errorf("level %q: %w", number, err)
		}
	}
	small, err := parseAmount(sb)
	if err != nil {
		return nil, err
	}
	big, err := parseAmount(bb)
	if err != nil {
		return nil, err
	}
	return &Level{Number: n, SmallBlind: small, BigBlind: big}, nil
}

var romanValues = map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

func romanToInt(s string) int {
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0
		}
		if i+1 < len(s) && romanValues[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}
