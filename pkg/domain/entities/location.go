package entities

import (
	"fmt"
	"strings"
	"time"
)

// Location is a (date, line) production slot
type Location struct {
	Date time.Time
	Line LineID
}

// NewLocation creates a Location with the date truncated to a day
func NewLocation(date time.Time, line LineID) Location {
	return Location{Date: Day(date), Line: line}
}

// String renders the canonical "YYYY-MM-DD_line" form
func (l Location) String() string {
	if l.IsZero() {
		return ""
	}
	return l.Date.Format(DateLayout) + "_" + string(l.Line)
}

// IsZero reports whether the location is unset
func (l Location) IsZero() bool {
	return l.Date.IsZero() && l.Line == ""
}

// SameDay reports whether both locations are on the same date
func (l Location) SameDay(other Location) bool {
	return Day(l.Date).Equal(Day(other.Date))
}

// ParseLocation parses the canonical "YYYY-MM-DD_line" form.
// Surrounding whitespace on either part is ignored.
func ParseLocation(s string) (Location, error) {
	datePart, linePart, found := strings.Cut(strings.TrimSpace(s), "_")
	if !found {
		return Location{}, fmt.Errorf("%w: %q has no date_line separator", ErrMalformedLocation, s)
	}

	datePart = strings.TrimSpace(datePart)
	linePart = strings.TrimSpace(linePart)
	if linePart == "" {
		return Location{}, fmt.Errorf("%w: %q has no line", ErrMalformedLocation, s)
	}

	date, err := time.Parse(DateLayout, datePart)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %q has invalid date", ErrMalformedLocation, s)
	}

	return NewLocation(date, LineID(linePart)), nil
}

// MarshalText encodes the location in canonical form
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes the canonical form; empty text yields a zero location
func (l *Location) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*l = Location{}
		return nil
	}
	parsed, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
