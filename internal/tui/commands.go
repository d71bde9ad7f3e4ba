package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/cardscout/internal/artwork"
	"github.com/csheth/cardscout/internal/margins"
	"github.com/csheth/cardscout/internal/stock"
)

type searchResultMsg struct {
	cycle      int
	query      string
	candidates []margins.Candidate
	err        error
}

type previewResultMsg struct {
	seq      int
	name     string
	art      *artwork.Artwork
	rendered string
	columns  int
	err      error
}

type cardDetailMsg struct {
	runID int
	card  *margins.Card
	err   error
}

type stockEventMsg struct {
	runID  int
	event  stock.Event
	events <-chan stock.Event
	closed bool
}

func searchJob(catalog Catalog, cycle int, query string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		candidates, err := catalog.Search(ctx, query)
		return searchResultMsg{cycle: cycle, query: query, candidates: candidates, err: err}, err
	}
}

// previewJob loads and renders artwork for name. Rendering happens here so
// the update loop only swaps strings.
func previewJob(loader ArtworkLoader, seq int, name string, columns int) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		art, err := loader.Load(ctx, name)
		if err != nil {
			return previewResultMsg{seq: seq, name: name, err: err}, err
		}
		rendered := artwork.Render(art.Image, columns)
		return previewResultMsg{seq: seq, name: name, art: art, rendered: rendered, columns: columns}, nil
	}
}

func cardDetailJob(catalog Catalog, runID int, cardID string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		card, err := catalog.FetchCard(ctx, cardID)
		return cardDetailMsg{runID: runID, card: card, err: err}, err
	}
}

// waitForStockEvent blocks on the next event of a stock run. The handler
// re-issues it until the channel closes.
func waitForStockEvent(runID int, events <-chan stock.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		return stockEventMsg{runID: runID, event: event, events: events, closed: !ok}
	}
}
