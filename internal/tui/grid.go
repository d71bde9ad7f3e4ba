package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/cardscout/internal/margins"
)

const (
	gridRowCapacity = 3
	gridCellWidth   = 26
	gridCellLines   = 2
	// Outer cell size including the rounded border.
	gridCellOuterWidth  = gridCellWidth + 2
	gridCellOuterHeight = gridCellLines + 2
)

var errBadCandidate = errors.New("candidate has no usable name or card id")

type candidateControl struct {
	candidate margins.Candidate
	label     string
}

// candidateGrid lays search hits out in rows of gridRowCapacity selectable
// controls. focus doubles as the hovered control.
type candidateGrid struct {
	controls []candidateControl
	rows     [][]int
	focus    int
	selected int
	skipped  int

	// Top-left cell of the grid on screen, refreshed on every View.
	originX int
	originY int
}

func newCandidateGrid(candidates []margins.Candidate, logger *slog.Logger) *candidateGrid {
	g := &candidateGrid{selected: -1}
	var row []int
	for i, candidate := range candidates {
		control, err := buildControl(candidate)
		if err != nil {
			g.skipped++
			logger.Warn("[grid] skipping candidate", "index", i, "name", candidate.Name, "err", err)
			continue
		}
		g.controls = append(g.controls, control)
		row = append(row, len(g.controls)-1)
		if len(row) == gridRowCapacity {
			g.rows = append(g.rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		g.rows = append(g.rows, row)
	}
	return g
}

func buildControl(candidate margins.Candidate) (candidateControl, error) {
	label := strings.TrimSpace(candidate.Name)
	if label == "" || strings.TrimSpace(candidate.CardID) == "" {
		return candidateControl{}, errBadCandidate
	}
	return candidateControl{candidate: candidate, label: label}, nil
}

func (g *candidateGrid) empty() bool {
	return g == nil || len(g.controls) == 0
}

func (g *candidateGrid) control(index int) (candidateControl, bool) {
	if g == nil || index < 0 || index >= len(g.controls) {
		return candidateControl{}, false
	}
	return g.controls[index], true
}

func (g *candidateGrid) focused() (candidateControl, bool) {
	return g.control(g.focus)
}

// move shifts focus by whole cells and returns the new index. Moving down
// from a full row into a shorter last row lands on its final control.
func (g *candidateGrid) move(dx, dy int) int {
	if g.empty() {
		return 0
	}
	row, col := g.focus/gridRowCapacity, g.focus%gridRowCapacity
	row += dy
	col += dx
	if row < 0 {
		row = 0
	}
	if row >= len(g.rows) {
		row = len(g.rows) - 1
	}
	cells := g.rows[row]
	if col < 0 {
		col = 0
	}
	if col >= len(cells) {
		col = len(cells) - 1
	}
	return cells[col]
}

// controlAt maps a terminal cell to the control drawn there.
func (g *candidateGrid) controlAt(x, y int) (int, bool) {
	if g.empty() {
		return 0, false
	}
	dx, dy := x-g.originX, y-g.originY
	if dx < 0 || dy < 0 {
		return 0, false
	}
	row, col := dy/gridCellOuterHeight, dx/gridCellOuterWidth
	if row >= len(g.rows) || col >= len(g.rows[row]) {
		return 0, false
	}
	return g.rows[row][col], true
}

func (g *candidateGrid) height() int {
	if g == nil {
		return 0
	}
	return len(g.rows) * gridCellOuterHeight
}

func (g *candidateGrid) View(active bool) string {
	if g.empty() {
		return ""
	}
	lines := make([]string, 0, len(g.rows))
	for _, row := range g.rows {
		cells := make([]string, 0, len(row))
		for _, idx := range row {
			cells = append(cells, g.renderControl(idx, active))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (g *candidateGrid) renderControl(idx int, active bool) string {
	control := g.controls[idx]
	inner := uint(gridCellWidth - 2)
	label := truncate.StringWithTail(control.label, inner, "…")
	released := "release unknown"
	if control.candidate.ReleasedAt != "" {
		released = "released " + control.candidate.ReleasedAt
	}
	meta := helperStyle.Render(truncate.StringWithTail(released, inner, "…"))

	style := cellStyle
	switch {
	case idx == g.selected:
		style = cellSelectedStyle
		label = "✓ " + truncate.StringWithTail(control.label, inner-2, "…")
	case idx == g.focus && active:
		style = cellFocusStyle
	}
	return style.Width(gridCellWidth).Height(gridCellLines).Render(label + "\n" + meta)
}

func (g *candidateGrid) summary() string {
	if g.empty() {
		return ""
	}
	text := fmt.Sprintf("%d match", len(g.controls))
	if len(g.controls) != 1 {
		text += "es"
	}
	if g.skipped > 0 {
		text += fmt.Sprintf(" (%d skipped)", g.skipped)
	}
	return text
}
