package tui

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/csheth/cardscout/internal/artwork"
	"github.com/csheth/cardscout/internal/margins"
)

type failingArtwork struct{}

func (failingArtwork) Load(ctx context.Context, name string) (*artwork.Artwork, error) {
	return nil, artwork.ErrNoImage
}

func TestJobTrackerBadges(t *testing.T) {
	tracker := newJobTracker()
	tracker.record(jobSnapshot{ID: "search-1", Kind: jobKindSearch, Status: jobStatusRunning})
	tracker.record(jobSnapshot{ID: "preview-2", Kind: jobKindPreview, Status: jobStatusRunning})
	tracker.record(jobSnapshot{ID: "preview-3", Kind: jobKindPreview, Status: jobStatusRunning})

	if got, want := tracker.badges(), []string{"preview×2…", "search…"}; !slices.Equal(got, want) {
		t.Fatalf("badges = %v, want %v", got, want)
	}

	tracker.record(jobSnapshot{ID: "search-1", Kind: jobKindSearch, Status: jobStatusSucceeded})
	tracker.record(jobSnapshot{ID: "preview-2", Kind: jobKindPreview, Status: jobStatusFailed})
	if got := tracker.running(jobKindSearch); got != 0 {
		t.Fatalf("running searches = %d, want 0", got)
	}
	if got, want := tracker.badges(), []string{"preview…"}; !slices.Equal(got, want) {
		t.Fatalf("badges = %v, want %v", got, want)
	}
}

func TestJobBusIDsAreUnique(t *testing.T) {
	bus := newJobBus(nil)
	first, second := bus.nextID(jobKindSearch), bus.nextID(jobKindSearch)
	if first == second {
		t.Fatalf("job ids collide: %s", first)
	}
}

func TestSearchJobCarriesCycle(t *testing.T) {
	catalog := &fakeCatalog{candidates: []margins.Candidate{{Name: "Heartfire", CardID: heartfireID}}}
	msg, err := searchJob(catalog, 7, "Heartfire")(context.Background())
	if err != nil {
		t.Fatalf("search job: %v", err)
	}
	result := msg.(searchResultMsg)
	if result.cycle != 7 || len(result.candidates) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPreviewJobRendersArtwork(t *testing.T) {
	msg, err := previewJob(&fakeArtwork{}, 3, "Heartfire", 4)(context.Background())
	if err != nil {
		t.Fatalf("preview job: %v", err)
	}
	result := msg.(previewResultMsg)
	if result.seq != 3 || result.rendered == "" || result.art.CardName != "Heartfire" {
		t.Fatalf("unexpected preview %+v", result)
	}

	msg, err = previewJob(failingArtwork{}, 4, "Heartfire", 4)(context.Background())
	if !errors.Is(err, artwork.ErrNoImage) {
		t.Fatalf("err = %v, want ErrNoImage", err)
	}
	if failed := msg.(previewResultMsg); failed.art != nil || failed.err == nil {
		t.Fatalf("failed preview should carry only the error: %+v", failed)
	}
}
