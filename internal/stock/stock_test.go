package stock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/cardscout/internal/margins"
)

const cardID = "af482a14-a144-4e60-bd04-a548a3c89f5a"

type fakeScrapers struct {
	ids []string
	err error
}

func (f fakeScrapers) IDs(ctx context.Context) ([]string, error) {
	return f.ids, f.err
}

type fakeSource struct {
	mu       sync.Mutex
	calls    []string
	listings map[string][]margins.Listing
	errs     map[string]error
	block    map[string]chan struct{}
}

func (f *fakeSource) FetchSellerStock(ctx context.Context, card, scraper string) ([]margins.Listing, error) {
	f.mu.Lock()
	f.calls = append(f.calls, scraper)
	gate := f.block[scraper]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[scraper]; err != nil {
		return nil, err
	}
	return f.listings[scraper], nil
}

func collect(t *testing.T, o *Orchestrator, ctx context.Context) ([]Event, Summary) {
	t.Helper()
	var events []Event
	summary := o.Run(ctx, cardID, func(e Event) bool {
		events = append(events, e)
		return true
	})
	return events, summary
}

func TestRunVisitsScrapersInOrder(t *testing.T) {
	source := &fakeSource{
		listings: map[string][]margins.Listing{
			"facetofacegames": {{ScraperID: "facetofacegames", Name: "Heartfire", Stock: 2}},
			"kanatacg":        {{ScraperID: "kanatacg", Name: "Heartfire", Stock: 0}},
			"401games":        {{Stock: 0}, {Stock: 5}},
		},
		errs: map[string]error{"gamezilla": margins.ErrTransport},
	}
	scrapers := fakeScrapers{ids: []string{"facetofacegames", "kanatacg", "401games", "gamezilla", "multizone"}}
	o := New(source, scrapers, nil)

	events, summary := collect(t, o, context.Background())
	require.Len(t, events, 7)

	assert.Equal(t, EventStarted, events[0].Kind)
	assert.Equal(t, 5, events[0].Total)

	kinds := []EventKind{EventListing, EventOutOfStock, EventOutOfStock, EventOutOfStock, EventOutOfStock}
	for i, want := range kinds {
		ev := events[i+1]
		assert.Equal(t, want, ev.Kind, "scraper %s", ev.ScraperID)
		assert.Equal(t, scrapers.ids[i], ev.ScraperID)
		assert.Equal(t, i, ev.Index)
	}
	require.NotNil(t, events[1].Listing)
	assert.Equal(t, 2, events[1].Listing.Stock)
	assert.Nil(t, events[2].Listing, "zero stock listings must not be surfaced")
	assert.True(t, events[4].Failed)

	done := events[6]
	assert.Equal(t, EventDone, done.Kind)
	assert.Equal(t, Summary{CardID: cardID, Checked: 5, InStock: 1, OutOfStock: 4, Failed: 1}, summary)
	assert.Equal(t, summary, done.Summary)
	assert.Equal(t, scrapers.ids, source.calls)
}

func TestRunWithoutScraperDirectory(t *testing.T) {
	o := New(&fakeSource{}, fakeScrapers{err: errors.New("directory down")}, nil)
	events, summary := collect(t, o, context.Background())
	require.Len(t, events, 2)
	assert.Equal(t, EventStarted, events[0].Kind)
	assert.Equal(t, 0, events[0].Total)
	assert.Equal(t, EventDone, events[1].Kind)
	assert.Zero(t, summary.Checked)
}

func TestRunStopsWhenEmitDeclines(t *testing.T) {
	source := &fakeSource{}
	o := New(source, fakeScrapers{ids: []string{"a", "b", "c"}}, nil)
	seen := 0
	o.Run(context.Background(), cardID, func(e Event) bool {
		seen++
		return e.Kind == EventStarted
	})
	assert.Equal(t, 2, seen)
	assert.Equal(t, []string{"a"}, source.calls)
}

func TestStartStreamsUntilClosed(t *testing.T) {
	source := &fakeSource{listings: map[string][]margins.Listing{"b": {{Stock: 1}}}}
	o := New(source, fakeScrapers{ids: []string{"a", "b"}}, nil)

	var kinds []EventKind
	for ev := range o.Start(context.Background(), cardID) {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventStarted, EventOutOfStock, EventListing, EventDone}, kinds)
}

func TestStartCancellation(t *testing.T) {
	gate := make(chan struct{})
	source := &fakeSource{block: map[string]chan struct{}{"b": gate}}
	o := New(source, fakeScrapers{ids: []string{"a", "b", "c"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	events := o.Start(ctx, cardID)

	first := <-events
	require.Equal(t, EventStarted, first.Kind)
	second := <-events
	require.Equal(t, EventOutOfStock, second.Kind)
	cancel()

	var last Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				assert.Equal(t, EventCancelled, last.Kind)
				assert.NotContains(t, source.calls, "c")
				return
			}
			last = ev
		case <-timeout:
			t.Fatal("stream did not close after cancellation")
		}
	}
}
