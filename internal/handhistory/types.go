package handhistory

import (
	"fmt"
	"strings"
)

// Hero is the name the hand-history format uses for the player being analyzed.
const Hero = "Hero"

// Street identifies a betting round within a hand.
type Street int

const (
	// StreetNone is the pending state between the header and the hole-cards marker.
	StreetNone Street = iota
	Preflop
	Flop
	Turn
	River
)

// Streets lists the betting rounds in play order.
var Streets = [...]Street{Preflop, Flop, Turn, River}

// String returns the lower-case street name used as the actions key.
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "none"
	}
}

// MarshalText encodes the street by name so it can key JSON objects.
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a street name.
func (s *Street) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "preflop":
		*s = Preflop
	case "flop":
		*s = Flop
	case "turn":
		*s = Turn
	case "river":
		*s = River
	case "none", "":
		*s = StreetNone
	default:
		return fmt.Errorf("unknown street %q", text)
	}
	return nil
}

// Verb is the kind of action hero took.
type Verb string

const (
	VerbFold  Verb = "fold"
	VerbCheck Verb = "check"
	VerbCall  Verb = "call"
	VerbBet   Verb = "bet"
	VerbRaise Verb = "raise"
	VerbShow  Verb = "show"
	VerbMuck  Verb = "muck"
)

// Action is a single hero action. Amount is zero for verbs that carry none.
type Action struct {
	Verb   Verb `json:"verb"`
	Amount int  `json:"amount,omitempty"`
}

// Level is the tournament blind level announced in the hand header.
type Level struct {
	Number     int `json:"number"`
	SmallBlind int `json:"small_blind"`
	BigBlind   int `json:"big_blind"`
}

// Hand is one parsed hand record, seen from hero's seat.
type Hand struct {
	ID           string              `json:"hand_id"`
	TournamentID string              `json:"tournament_id"`
	Level        *Level              `json:"level,omitempty"`
	ButtonSeat   int                 `json:"button_seat,omitempty"` // 0 when unknown
	HeroSeat     int                 `json:"hero_seat,omitempty"`   // 0 when unknown
	HeroCards    []string            `json:"hero_cards,omitempty"`
	Position     Position            `json:"position"`
	Actions      map[Street][]Action `json:"actions"`
	Invested     int                 `json:"invested"`
	Collected    int                 `json:"collected"`
	Outcome      int                 `json:"outcome"`
	Bounty       int                 `json:"bounty"`
	Seated       bool                `json:"-"`

	// Parse-time state.
	Stack  int    `json:"-"`
	Street Street `json:"-"`
}

func newHand() *Hand {
	actions := make(map[Street][]Action, len(Streets))
	for _, s := range Streets {
		actions[s] = []Action{}
	}
	return &Hand{
		ID:           "unknown",
		TournamentID: "unknown",
		Actions:      actions,
	}
}

// ActionsOn returns hero's actions on the given street.
func (h *Hand) ActionsOn(s Street) []Action {
	return h.Actions[s]
}

// AllActions returns hero's actions across every street in play order.
func (h *Hand) AllActions() []Action {
	var out []Action
	for _, s := range Streets {
		out = append(out, h.Actions[s]...)
	}
	return out
}

// Profit is the hand's net result including any bounty.
func (h *Hand) Profit() int {
	return h.Outcome + h.Bounty
}

// Showdown reports whether hero showed cards at any point in the hand.
func (h *Hand) Showdown() bool {
	for _, a := range h.AllActions() {
		if a.Verb == VerbShow {
			return true
		}
	}
	return false
}
