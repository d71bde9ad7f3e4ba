package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/cardscout/internal/format"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroEmberColor         = lipgloss.Color("#2b1400")
	heroTextColor          = lipgloss.Color("#fff4d0")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	inputFocusBoxStyle = inputBoxStyle.Copy().BorderForeground(heroAccentColor)
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroEmberColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#110600"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)

	cellStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	cellFocusStyle    = cellStyle.Copy().BorderForeground(heroAccentColor).Bold(true)
	cellSelectedStyle = cellStyle.Copy().BorderForeground(lipgloss.Color("#a3be8c")).Foreground(lipgloss.Color("#a3be8c"))

	previewBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7f5af0"))
	listingBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#8ecae6")).Padding(0, 1)
	fieldLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Bold(true)
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)

	logoArtLines = []string{
		"╔═╗╔═╗╦═╗╔╦╗  ╔═╗╔═╗╔═╗╦ ╦╔╦╗",
		"║  ╠═╣╠╦╝ ║║  ╚═╗║  ║ ║║ ║ ║ ",
		"╚═╝╩ ╩╩╚══╩╝  ╚═╝╚═╝╚═╝╚═╝ ╩ ",
	}
)

// hintStyles colours listing values by their presentation hint.
var hintStyles = map[format.Hint]lipgloss.Style{
	format.HintPlain:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")),
	format.HintPrice:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166")),
	format.HintInStock: lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")),
	format.HintStock:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a3be8c")),
	format.HintURL:     lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#8ecae6")),
}

func styleForHint(hint format.Hint) lipgloss.Style {
	if style, ok := hintStyles[hint]; ok {
		return style
	}
	return hintStyles[format.HintPlain]
}
