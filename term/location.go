// Package term implements the value and term model: the universe of
// values the engine unifies, stores in rules, and hands back to hosts.
package term

import "fmt"

// Location records a position in policy source, used for diagnostics.
// A nil *Location is valid and means "no source
// position" (e.g. terms synthesized by the VM during rule activation).
type Location struct {
	Text []byte
	File string
	Row  int
	Col  int
}

// NewLocation returns a new Location.
func NewLocation(text []byte, file string, row, col int) *Location {
	return &Location{Text: text, File: file, Row: row, Col: col}
}

// String renders the location the way diagnostics quote it: "file:row:col".
func (loc *Location) String() string {
	if loc == nil {
		return "<unknown location>"
	}
	if loc.File != "" {
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Row, loc.Col)
	}
	return fmt.Sprintf("%d:%d", loc.Row, loc.Col)
}

// Format prefixes a formatted message with the location.
func (loc *Location) Format(f string, a ...interface{}) string {
	return fmt.Sprintf("%s: %s", loc.String(), fmt.Sprintf(f, a...))
}
