package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/cardscout/internal/format"
	"github.com/csheth/cardscout/internal/margins"
	"github.com/csheth/cardscout/internal/stock"
)

type resultEntryKind int

const (
	entryListing resultEntryKind = iota
	entryNotice
)

type resultEntry struct {
	kind      resultEntryKind
	scraperID string
	listing   margins.Listing
	text      string
}

// resultsPanel accumulates the output of one stock run: a box per in-stock
// listing and a notice per empty scraper, in arrival order.
type resultsPanel struct {
	viewport viewport.Model
	progress progress.Model

	card     *margins.Candidate
	detail   *margins.Card
	entries  []resultEntry
	total    int
	checked  int
	summary  *stock.Summary
	canceled bool
	width    int
	dirty    bool
}

func newResultsPanel() resultsPanel {
	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	return resultsPanel{viewport: vp, progress: bar, width: 80, dirty: true}
}

func (r *resultsPanel) reset(card *margins.Candidate) {
	r.card = card
	r.detail = nil
	r.entries = nil
	r.total = 0
	r.checked = 0
	r.summary = nil
	r.canceled = false
	r.viewport.GotoTop()
	r.dirty = true
}

func (r *resultsPanel) active() bool {
	return r.card != nil
}

func (r *resultsPanel) setDetail(card *margins.Card) {
	r.detail = card
	r.dirty = true
}

func (r *resultsPanel) resize(width, height int) {
	if width < minViewportWidth {
		width = minViewportWidth
	}
	if height < 3 {
		height = 3
	}
	r.width = width
	r.viewport.Width = width
	r.viewport.Height = height
	r.progress.Width = width / 2
	r.dirty = true
}

func (r *resultsPanel) apply(event stock.Event) {
	switch event.Kind {
	case stock.EventStarted:
		r.total = event.Total
	case stock.EventListing:
		r.checked = event.Index + 1
		if event.Listing != nil {
			r.entries = append(r.entries, resultEntry{kind: entryListing, scraperID: event.ScraperID, listing: *event.Listing})
		}
	case stock.EventOutOfStock:
		r.checked = event.Index + 1
		r.entries = append(r.entries, resultEntry{kind: entryNotice, scraperID: event.ScraperID, text: format.OutOfStockNotice(event.ScraperID)})
	case stock.EventDone:
		summary := event.Summary
		r.summary = &summary
		r.checked = summary.Checked
	case stock.EventCancelled:
		r.canceled = true
	}
	r.dirty = true
}

func (r *resultsPanel) listingCount() int {
	count := 0
	for _, entry := range r.entries {
		if entry.kind == entryListing {
			count++
		}
	}
	return count
}

func (r *resultsPanel) noticeCount() int {
	return len(r.entries) - r.listingCount()
}

func (r *resultsPanel) refreshIfDirty() {
	if !r.dirty {
		return
	}
	r.viewport.SetContent(r.render())
	r.dirty = false
}

func (r *resultsPanel) View() string {
	if !r.active() {
		return ""
	}
	r.refreshIfDirty()
	return joinNonEmpty([]string{r.header(), r.viewport.View()})
}

func (r *resultsPanel) header() string {
	title := sectionHeaderStyle.Render("Sellers for " + r.card.Name)
	lines := []string{title}
	if r.detail != nil {
		meta := []string{}
		if r.detail.SetName != "" {
			meta = append(meta, r.detail.SetName)
		}
		if r.detail.TypeLine != "" {
			meta = append(meta, r.detail.TypeLine)
		}
		if r.detail.ReleasedAt != "" {
			meta = append(meta, r.detail.ReleasedAt)
		}
		if len(meta) > 0 {
			lines = append(lines, helperStyle.Render(truncate.StringWithTail(strings.Join(meta, " · "), uint(r.width), "…")))
		}
	}
	lines = append(lines, r.progressLine())
	return strings.Join(lines, "\n")
}

func (r *resultsPanel) progressLine() string {
	switch {
	case r.canceled:
		return warnStyle.Render("Stock search cancelled.")
	case r.summary != nil:
		return helperStyle.Render(fmt.Sprintf("Checked %d sellers: %d in stock, %d out of stock.", r.summary.Checked, r.summary.InStock, r.summary.OutOfStock))
	case r.total == 0:
		return helperStyle.Render("Resolving sellers…")
	}
	percent := float64(r.checked) / float64(r.total)
	return lipgloss.JoinHorizontal(lipgloss.Center, r.progress.ViewAs(percent), helperStyle.Render(fmt.Sprintf("  %d/%d sellers", r.checked, r.total)))
}

func (r *resultsPanel) render() string {
	if len(r.entries) == 0 {
		return helperStyle.Render("No seller answers yet.")
	}
	blocks := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		switch entry.kind {
		case entryListing:
			blocks = append(blocks, r.renderListing(entry.listing))
		default:
			blocks = append(blocks, noticeStyle.Render(entry.text))
		}
	}
	return strings.Join(blocks, "\n")
}

func (r *resultsPanel) renderListing(l margins.Listing) string {
	fields := format.Fields(l)
	labelWidth := 0
	for _, field := range fields {
		if w := lipgloss.Width(field.Name); w > labelWidth {
			labelWidth = w
		}
	}
	valueWidth := r.width - labelWidth - 8
	if valueWidth < 10 {
		valueWidth = 10
	}
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		label := fieldLabelStyle.Render(fmt.Sprintf("%-*s", labelWidth, field.Name))
		value := field.Value
		if field.Hint == format.HintURL {
			value = truncate.StringWithTail(value, uint(valueWidth), "…")
		} else {
			value = wordwrap.String(value, valueWidth)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, "  ", styleForHint(field.Hint).Render(value)))
	}
	return listingBoxStyle.Render(strings.Join(lines, "\n"))
}
