package tab

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TabOpen    = "[tab]"
	TabClose   = "[/tab]"
	ChordOpen  = "[ch]"
	ChordClose = "[/ch]"
	capoMarker = "capo"
)

// ErrInvalidCapacity is returned when a column capacity or visible column count is not positive.
var ErrInvalidCapacity = errors.New("invalid column capacity")

// Column is an ordered group of consecutive tab lines.
type Column []string

// Layout is an ordered sequence of columns, left to right.
type Layout []Column

// Lines returns every line of the layout in column order.
func (l Layout) Lines() []string {
	var lines []string
	for _, col := range l {
		lines = append(lines, col...)
	}
	return lines
}

// HasChord reports whether a line carries a chord marker.
func HasChord(line string) bool {
	return strings.Contains(line, ChordOpen)
}

// Format normalizes raw tab text and prepends the capo/transposition annotation line.
//
// An empty raw string stands in for "no tab loaded" and yields the annotation followed by one empty line.
func Format(raw string, steps int) []string {
	text := strings.ReplaceAll(raw, TabOpen, "")
	text = strings.ReplaceAll(text, TabClose, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	body := lines[BodyStart(lines):]

	formatted := make([]string, 0, len(body)+1)
	formatted = append(formatted, Annotation(CapoLine(lines), steps))
	return append(formatted, body...)
}

// BodyStart returns the index of the first line containing a chord marker, or 0 when there is none.
func BodyStart(lines []string) int {
	for i, line := range lines {
		if HasChord(line) {
			return i
		}
	}
	return 0
}

// CapoLine returns the first line mentioning "capo" in any case, or "".
func CapoLine(lines []string) string {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), capoMarker) {
			return line
		}
	}
	return ""
}

// Annotation composes the capo text and transposition phrase.
//
// The separating space is always present, so a zero transposition leaves a trailing space.
func Annotation(capo string, steps int) string {
	transposed := ""
	if steps != 0 {
		transposed = fmt.Sprintf("transposed %d steps", steps)
	}
	return capo + " " + transposed
}

// SplitIntoColumns packs lines into columns holding at most maxLength lines.
//
// A chord line that would land in the last slot of a column is pushed to the next column,
// and the running count skips a slot so the shifted column does not fill early.
func SplitIntoColumns(lines []string, maxLength int) (Layout, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, maxLength)
	}

	layout := Layout{Column{}}
	count := 0
	for _, line := range lines {
		shift := count%maxLength == maxLength-1 && HasChord(line)

		target := count / maxLength
		count++
		if shift {
			target++
			count++
		}

		// columns are created one at a time, never skipped
		if target >= len(layout) {
			target = len(layout)
			layout = append(layout, Column{})
		}
		layout[target] = append(layout[target], line)
	}

	return layout, nil
}

// CountColumns returns the number of columns raw tab text occupies at the given capacity, ignoring transposition.
func CountColumns(raw string, maxLength int) (int, error) {
	layout, err := SplitIntoColumns(Format(raw, 0), maxLength)
	if err != nil {
		return 0, err
	}
	return len(layout), nil
}

// WithoutChords drops chord lines after the annotation line, for displays that hide chords.
func WithoutChords(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	kept := []string{lines[0]}
	for _, line := range lines[1:] {
		if !HasChord(line) {
			kept = append(kept, line)
		}
	}
	return kept
}

// StripMarkup removes chord tags from a line for plain-text display.
func StripMarkup(line string) string {
	line = strings.ReplaceAll(line, ChordOpen, "")
	return strings.ReplaceAll(line, ChordClose, "")
}
