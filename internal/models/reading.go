// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"strings"
	"time"
)

// ReadingType selects which metered stream a request targets.
type ReadingType int

const (
	// ReadingCost is the monetary cost stream, reported in pence.
	ReadingCost ReadingType = iota
	// ReadingEnergy is the energy consumption stream, reported in kWh.
	ReadingEnergy
)

// ReadingTypes lists every supported reading type in display order.
var ReadingTypes = []ReadingType{ReadingCost, ReadingEnergy}

// String returns the wire name of the reading type.
func (t ReadingType) String() string {
	switch t {
	case ReadingCost:
		return "cost"
	case ReadingEnergy:
		return "energy"
	default:
		return "unknown"
	}
}

// ParseReadingType converts "cost" or "energy" into a ReadingType.
func ParseReadingType(s string) (ReadingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cost":
		return ReadingCost, nil
	case "energy":
		return ReadingEnergy, nil
	default:
		return 0, fmt.Errorf("unknown reading type %q", s)
	}
}

// MarshalText encodes the type by name.
func (t ReadingType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name.
func (t *ReadingType) UnmarshalText(b []byte) error {
	parsed, err := ParseReadingType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Reading is the summed quantity accrued over one 30-minute bucket.
type Reading struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Time returns the reading timestamp as a time.Time in the local zone.
func (r Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// WindowLayout is the time layout the provider expects for from/to.
const WindowLayout = "2006-01-02T15:04:05"

// Window is the [From, To] range a single reading request covers.
type Window struct {
	From time.Time
	To   time.Time
}

// FromParam formats the window start for the readings query.
func (w Window) FromParam() string {
	return w.From.Format(WindowLayout)
}

// ToParam formats the window end for the readings query.
func (w Window) ToParam() string {
	return w.To.Format(WindowLayout)
}
