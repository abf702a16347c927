package handhistory

import "fmt"

// Position is a canonical table position label.
type Position string

const (
	UTG  Position = "UTG"
	UTG1 Position = "UTG+1"
	MP   Position = "MP"
	HJ   Position = "HJ"
	CO   Position = "CO"
	BTN  Position = "BTN"
	SB   Position = "SB"
	BB   Position = "BB"

	// PositionUnresolved marks a finalized hand with neither blind evidence nor both seats.
	PositionUnresolved Position = "unresolved"
)

// TableSize is the seat count the offset table below assumes.
const TableSize = 8

// Positions is the canonical position set in default report order.
var Positions = []Position{UTG, UTG1, MP, HJ, CO, BTN, SB, BB}

// offsetPositions maps (hero - button) mod 8 to a label.
var offsetPositions = [TableSize]Position{BTN, SB, BB, UTG, UTG1, MP, HJ, CO}

// ResolvePosition derives hero's position from the button and hero seat numbers
// on an 8-handed table. It is total over all integers.
func ResolvePosition(buttonSeat, heroSeat int) Position {
	offset := ((heroSeat-buttonSeat)%TableSize + TableSize) % TableSize
	return offsetPositions[offset]
}

// Canonical reports whether p is one of the eight statistics positions.
func (p Position) Canonical() bool {
	for _, c := range Positions {
		if p == c {
			return true
		}
	}
	return false
}

// ParsePosition converts a label into a canonical Position.
func ParsePosition(s string) (Position, error) {
	p := Position(s)
	if p == "UTG1" {
		p = UTG1
	}
	if !p.Canonical() {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}
