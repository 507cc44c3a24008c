package tab

import "fmt"

// pageStep is how many columns one page turn moves.
const pageStep = 2

// Viewport is the window of columns currently on screen.
type Viewport struct {
	first   int
	visible int
	total   int
}

// NewViewport creates a [Viewport] showing visible columns of a layout with total columns.
func NewViewport(visible, total int) (*Viewport, error) {
	if visible <= 0 {
		return nil, fmt.Errorf("%w: %d visible columns", ErrInvalidCapacity, visible)
	}
	return &Viewport{visible: visible, total: max(total, 0)}, nil
}

func (v *Viewport) First() int   { return v.first }
func (v *Viewport) Visible() int { return v.visible }
func (v *Viewport) Total() int   { return v.total }

// Resize sets a new column total, pulling the first column back into range.
func (v *Viewport) Resize(total int) {
	v.total = max(total, 0)
	if v.first >= v.total {
		v.first = max(v.total-1, 0)
	}
}

// SetFirst jumps to column n, clamped to the layout.
func (v *Viewport) SetFirst(n int) {
	v.first = max(min(n, v.total-1), 0)
}

// Prev moves back two columns, or one when only one remains before the window.
func (v *Viewport) Prev() bool {
	switch {
	case v.first-pageStep >= 0:
		v.first -= pageStep
	case v.first-1 >= 0:
		v.first--
	default:
		return false
	}
	return true
}

// Next moves forward two columns while the window still overlaps the layout.
func (v *Viewport) Next() bool {
	if v.first+v.visible+pageStep > v.total+1 {
		return false
	}
	v.first += pageStep
	return true
}

// Window returns the columns of layout that are on screen.
func (v *Viewport) Window(layout Layout) Layout {
	start := min(v.first, len(layout))
	end := min(start+v.visible, len(layout))
	return layout[start:end]
}
