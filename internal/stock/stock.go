// Package stock walks every scraper for one card and streams what each
// seller has in stock.
package stock

import (
	"context"
	"log/slog"

	"github.com/csheth/cardscout/internal/margins"
)

// Source fetches one scraper's listings for a card.
type Source interface {
	FetchSellerStock(ctx context.Context, cardID, scraperID string) ([]margins.Listing, error)
}

// Scrapers resolves the scraper ids to query, in order.
type Scrapers interface {
	IDs(ctx context.Context) ([]string, error)
}

// EventKind discriminates Event.
type EventKind int

const (
	// EventStarted announces how many scrapers will be checked.
	EventStarted EventKind = iota
	// EventListing carries an in-stock listing.
	EventListing
	// EventOutOfStock reports a scraper with no stock (or no usable answer).
	EventOutOfStock
	// EventDone ends a run that visited every scraper.
	EventDone
	// EventCancelled ends a run whose context was cancelled.
	EventCancelled
)

// Event is one step of a run. Index is the position of ScraperID in the
// scraper list, starting at zero.
type Event struct {
	Kind      EventKind
	CardID    string
	ScraperID string
	Index     int
	Total     int
	Listing   *margins.Listing
	Failed    bool
	Summary   Summary
}

// Summary tallies a run.
type Summary struct {
	CardID     string
	Checked    int
	InStock    int
	OutOfStock int
	Failed     int
}

// Orchestrator runs stock searches one scraper at a time.
type Orchestrator struct {
	source   Source
	scrapers Scrapers
	logger   *slog.Logger
}

// New builds an Orchestrator. A nil logger discards output.
func New(source Source, scrapers Scrapers, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{source: source, scrapers: scrapers, logger: logger}
}

// Run checks every scraper for cardID in directory order, calling emit for
// each event. It returns early only when ctx is cancelled or emit returns
// false, in which case the last event is EventCancelled (if delivered).
// A failed or empty scraper call counts as out of stock.
func (o *Orchestrator) Run(ctx context.Context, cardID string, emit func(Event) bool) Summary {
	summary := Summary{CardID: cardID}
	cancelled := func() Summary {
		o.logger.Info("[stock] run cancelled", "card", cardID, "checked", summary.Checked)
		emit(Event{Kind: EventCancelled, CardID: cardID, Summary: summary})
		return summary
	}

	ids, err := o.scrapers.IDs(ctx)
	if ctx.Err() != nil {
		return cancelled()
	}
	if err != nil {
		o.logger.Warn("[stock] scraper directory unavailable", "card", cardID, "err", err)
		ids = nil
	}
	total := len(ids)
	if !emit(Event{Kind: EventStarted, CardID: cardID, Total: total}) {
		return summary
	}

	for index, scraperID := range ids {
		listings, err := o.source.FetchSellerStock(ctx, cardID, scraperID)
		if ctx.Err() != nil {
			return cancelled()
		}
		summary.Checked++
		event := Event{CardID: cardID, ScraperID: scraperID, Index: index, Total: total}
		if err != nil {
			summary.Failed++
			event.Failed = true
			o.logger.Warn("[stock] scraper failed", "card", cardID, "scraper", scraperID, "err", err)
		}
		if len(listings) > 0 && listings[0].Stock > 0 {
			listing := listings[0]
			event.Kind = EventListing
			event.Listing = &listing
			summary.InStock++
		} else {
			event.Kind = EventOutOfStock
			summary.OutOfStock++
		}
		if !emit(event) {
			return summary
		}
	}

	o.logger.Info("[stock] run finished", "card", cardID, "checked", summary.Checked, "in_stock", summary.InStock, "failed", summary.Failed)
	emit(Event{Kind: EventDone, CardID: cardID, Total: total, Summary: summary})
	return summary
}

// Start runs the search in a goroutine and streams events on the returned
// channel, which is closed after the final event. Cancelling ctx stops the
// run; a cancellation notice nobody receives is dropped.
func (o *Orchestrator) Start(ctx context.Context, cardID string) <-chan Event {
	events := make(chan Event, 1)
	go func() {
		defer close(events)
		o.Run(ctx, cardID, func(event Event) bool {
			if event.Kind == EventCancelled {
				select {
				case events <- event:
				default:
				}
				return false
			}
			select {
			case events <- event:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return events
}
