package entities

import (
	"fmt"
	"strings"
)

// MobilityClass determines which lines an item may be moved to
type MobilityClass int

const (
	// FixedLine items may only move across dates on their own line
	FixedLine MobilityClass = iota
	// RestrictedPair items may move to a specific alternate line and are excluded from others
	RestrictedPair
	// MultiLineFlexible items may move to any other line on the same day
	MultiLineFlexible
)

// String method for MobilityClass enum
func (c MobilityClass) String() string {
	switch c {
	case FixedLine:
		return "FixedLine"
	case RestrictedPair:
		return "RestrictedPair"
	case MultiLineFlexible:
		return "MultiLineFlexible"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the class by name
func (c MobilityClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseMobilityClass parses a class name case-insensitively
func ParseMobilityClass(s string) (MobilityClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixedline", "fixed_line", "fixed":
		return FixedLine, nil
	case "restrictedpair", "restricted_pair", "restricted":
		return RestrictedPair, nil
	case "multilineflexible", "multi_line_flexible", "flexible":
		return MultiLineFlexible, nil
	default:
		return FixedLine, fmt.Errorf("invalid mobility class: %s (expected: FixedLine, RestrictedPair, or MultiLineFlexible)", s)
	}
}

// Mobility is the resolved class of an item plus the lines it may cross to
// from its source line. CrossLines never contains the source line.
type Mobility struct {
	Class      MobilityClass
	CrossLines []LineID
}

// Permits reports whether a move from one slot to another is allowed.
// Staying on the source line requires a date change; changing line
// requires the destination line to be in CrossLines.
func (m Mobility) Permits(from, to Location) bool {
	if to.Line == from.Line {
		return !from.SameDay(to)
	}
	return m.AllowsLine(to.Line)
}

// AllowsLine reports whether line is a legal cross-line destination
func (m Mobility) AllowsLine(line LineID) bool {
	for _, l := range m.CrossLines {
		if l == line {
			return true
		}
	}
	return false
}
