package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/cardscout/internal/artwork"
)

// previewPanel shows artwork for the hovered candidate. At most one image is
// mounted at a time and a pending load always replaces the current one.
type previewPanel struct {
	columns  int
	art      *artwork.Artwork
	rendered string
	pending  string
}

func newPreviewPanel(columns int) previewPanel {
	if columns <= 0 {
		columns = 28
	}
	return previewPanel{columns: columns}
}

func (p *previewPanel) teardown() {
	p.art = nil
	p.rendered = ""
	p.pending = ""
}

func (p *previewPanel) beginLoad(name string) {
	p.teardown()
	p.pending = name
}

// mount shows art. rendered was drawn columns cells wide and is redrawn
// when the panel has been resized since the load started.
func (p *previewPanel) mount(art *artwork.Artwork, rendered string, columns int) {
	p.art = art
	p.rendered = rendered
	p.pending = ""
	if columns != p.columns {
		p.redraw()
	}
}

func (p *previewPanel) resize(columns int) {
	if columns <= 0 || columns == p.columns {
		return
	}
	p.columns = columns
	p.redraw()
}

func (p *previewPanel) redraw() {
	if p.art == nil || p.art.Image == nil {
		return
	}
	p.rendered = artwork.Render(p.art.Image, p.columns)
}

func (p *previewPanel) mounted() bool {
	return p.art != nil && p.rendered != ""
}

func (p *previewPanel) loading() bool {
	return p.pending != ""
}

func (p *previewPanel) View(spin string) string {
	caption := ""
	body := ""
	switch {
	case p.mounted():
		caption = sectionHeaderStyle.Render(truncate.StringWithTail(p.art.CardName, uint(p.columns), "…"))
		body = p.rendered
	case p.loading():
		caption = sectionHeaderStyle.Render("Preview")
		body = helperStyle.Render(truncate.StringWithTail(spin+" loading "+p.pending, uint(p.columns), "…"))
	default:
		caption = sectionHeaderStyle.Render("Preview")
		body = helperStyle.Width(p.columns).Render("Hover a card to see its art.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, caption, previewBoxStyle.Width(p.columns).Render(body))
}
