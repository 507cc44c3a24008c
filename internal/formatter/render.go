package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/desertthunder/songbook/internal/tab"
)

// DefaultGutter is the number of spaces between rendered columns.
const DefaultGutter = 4

// RenderOptions controls how a [tab.Layout] is laid out as text.
type RenderOptions struct {
	Gutter     int  // spaces between columns; non-positive means [DefaultGutter]
	KeepMarkup bool // keep [ch] tags instead of stripping them
}

// TabOptions configures the full tab rendering pipeline in [RenderTab].
type TabOptions struct {
	LinesPerColumn int
	Columns        int // columns on screen; zero shows every column
	First          int
	Transpose      int
	HideChords     bool
	Render         RenderOptions
}

// TabView is a rendered window onto a formatted tab.
type TabView struct {
	Annotation string     `json:"annotation"`
	Total      int        `json:"total_columns"`
	First      int        `json:"first_column"`
	Layout     tab.Layout `json:"columns"`
	Text       string     `json:"-"`
}

// RenderColumns lays the columns of layout side by side.
//
// Each column is padded to its widest line in terminal cells. Trailing spaces are trimmed from every row.
func RenderColumns(layout tab.Layout, opts RenderOptions) string {
	gutter := opts.Gutter
	if gutter <= 0 {
		gutter = DefaultGutter
	}

	cells := make([][]string, len(layout))
	widths := make([]int, len(layout))
	rows := 0

	for i, column := range layout {
		cells[i] = make([]string, len(column))
		for j, line := range column {
			if !opts.KeepMarkup {
				line = tab.StripMarkup(line)
			}
			cells[i][j] = line
			widths[i] = max(widths[i], runewidth.StringWidth(line))
		}
		rows = max(rows, len(column))
	}

	var b strings.Builder
	sep := strings.Repeat(" ", gutter)

	for row := range rows {
		var line strings.Builder
		for i := range cells {
			if i > 0 {
				line.WriteString(sep)
			}

			cell := ""
			if row < len(cells[i]) {
				cell = cells[i][row]
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}

	return b.String()
}

// RenderTab formats content, splits it into columns and renders the visible window.
func RenderTab(content string, opts TabOptions) (*TabView, error) {
	lines := tab.Format(content, opts.Transpose)
	if opts.HideChords {
		lines = tab.WithoutChords(lines)
	}

	layout, err := tab.SplitIntoColumns(lines, opts.LinesPerColumn)
	if err != nil {
		return nil, err
	}

	visible := opts.Columns
	if visible == 0 {
		visible = len(layout)
	}

	viewport, err := tab.NewViewport(visible, len(layout))
	if err != nil {
		return nil, fmt.Errorf("failed to create viewport: %w", err)
	}
	viewport.SetFirst(opts.First)

	window := viewport.Window(layout)

	return &TabView{
		Annotation: strings.TrimSpace(lines[0]),
		Total:      len(layout),
		First:      viewport.First(),
		Layout:     window,
		Text:       RenderColumns(window, opts.Render),
	}, nil
}
