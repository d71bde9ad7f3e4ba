package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	hero := m.heroView()
	input := m.inputView()
	body := m.bodyView(lipgloss.Height(hero) + 1 + lipgloss.Height(input) + 1)
	view, dropped := clipToHeight(joinNonEmpty([]string{hero, input, body, m.footerView()}), m.layout.windowHeight)
	if dropped > 0 && !m.grid.empty() {
		m.grid.originY -= dropped
	}
	return view
}

// bodyView renders the grid, results and preview. top is the screen row the
// body starts on, used to anchor mouse hit-testing.
func (m *model) bodyView(top int) string {
	left := []string{}
	if !m.grid.empty() {
		header := sectionHeaderStyle.Render("Pick a printing") + "  " + helperStyle.Render(m.grid.summary())
		m.grid.originX = 0
		m.grid.originY = top + lipgloss.Height(header)
		left = append(left, header+"\n"+m.grid.View(m.focus == focusGrid))
	}
	if results := m.results.View(); results != "" {
		left = append(left, results)
	}
	column := joinNonEmpty(left)
	if m.grid.empty() && column == "" {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, column, "  ", m.preview.View(m.spinner.View()))
}

func (m *model) inputView() string {
	box := inputBoxStyle
	if m.focus == focusInput {
		box = inputFocusBoxStyle
	}
	parts := []string{helperStyle.Render("Card Name")}
	parts = append(parts, box.Render(m.input.View()))
	return strings.Join(parts, "\n")
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(lipgloss.Left, renderLogo(), taglineStyle.Render(heroTagline))
}

func (m *model) footerView() string {
	parts := []string{}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.busy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	parts = append(parts, m.sessionMeterView())
	m.refreshLogIfDirty()
	logBody := strings.TrimSpace(m.logView.View())
	if logBody == "" {
		logBody = helperStyle.Render("Activity will appear here once you search.")
	}
	parts = append(parts, sectionHeaderStyle.Render("Session Log")+"\n"+logBody)
	parts = append(parts, m.help.View(m.keys))
	return joinNonEmpty(parts)
}

func (m *model) sessionMeterView() string {
	stats := []string{fmt.Sprintf("Stage %s", m.stage)}
	if m.lastQuery != "" {
		stats = append(stats, fmt.Sprintf("Query %q", m.lastQuery))
	}
	if !m.grid.empty() {
		stats = append(stats, fmt.Sprintf("Cards %d", len(m.grid.controls)))
	}
	if m.results.active() {
		stats = append(stats,
			fmt.Sprintf("In stock %d", m.results.listingCount()),
			fmt.Sprintf("Out %d", m.results.noticeCount()),
		)
	}
	stats = append(stats, m.tracker.badges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	// Shadow first, offset one cell down-right, then the face on top.
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: logoFaceStyle}
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}
