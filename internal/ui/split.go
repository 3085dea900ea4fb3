package ui

import "github.com/charmbracelet/lipgloss"

// splitLayout splits an area horizontally. The left view takes [fraction]
// of the width and the right view the remaining space.
//
//	+-----------------+------------------+
//	| Left View (45%) | Right View (55%) |
//	+-----------------+------------------+
type splitLayout struct {
	fraction float64

	width, height int
	leftWidth     int
}

// newSplitLayout defaults to 50% if [fraction] is not between 0 and 1.
func newSplitLayout(fraction float64) *splitLayout {
	if fraction <= 0 || fraction >= 1 {
		fraction = 0.5
	}
	return &splitLayout{fraction: fraction}
}

func (s *splitLayout) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.leftWidth = int(float64(width) * s.fraction)
}

func (s *splitLayout) rightWidth() int {
	return s.width - s.leftWidth
}

func (s *splitLayout) Render(left, right string) string {
	if s.width <= 0 || s.height <= 0 {
		return left
	}
	if s.leftWidth <= 0 {
		// if the left view has no width, return the right view only (fullscreen-ish)
		return right
	}
	if s.rightWidth() <= 0 {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderWithBounds(s.leftWidth, s.height, left),
		renderWithBounds(s.rightWidth(), s.height, right))
}

// renderWithBounds pads and cuts [view] to exactly [width] x [height].
func renderWithBounds(width, height int, view string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxWidth(width).
		MaxHeight(height).
		Render(view)
}
