package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

type jobStatus string

const (
	jobKindSearch  jobKind = "search"
	jobKindPreview jobKind = "preview"
	jobKindCard    jobKind = "card"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	counter int64
	logger  *slog.Logger
}

func newJobBus(logger *slog.Logger) *jobBus {
	return &jobBus{logger: logger}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Start runs runner off the update loop, announcing it first with a
// jobSignalMsg and delivering its payload inside a jobResultEnvelope.
func (b *jobBus) Start(ctx context.Context, kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		b.logger.Debug("[jobs] finished", "job", id, "status", snapshot.Status, "duration", snapshot.Duration, "err", err)
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

// jobTracker keeps the latest snapshot per job id so the status bar can show
// what is in flight.
type jobTracker struct {
	jobs map[string]jobSnapshot
}

func newJobTracker() jobTracker {
	return jobTracker{jobs: map[string]jobSnapshot{}}
}

func (t *jobTracker) record(snapshot jobSnapshot) {
	if snapshot.Status == jobStatusRunning {
		t.jobs[snapshot.ID] = snapshot
		return
	}
	delete(t.jobs, snapshot.ID)
}

func (t *jobTracker) running(kind jobKind) int {
	count := 0
	for _, job := range t.jobs {
		if job.Kind == kind {
			count++
		}
	}
	return count
}

func (t *jobTracker) badges() []string {
	counts := map[jobKind]int{}
	for _, job := range t.jobs {
		counts[job.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		n := counts[jobKind(kind)]
		if n == 1 {
			badges = append(badges, kind+"…")
			continue
		}
		badges = append(badges, fmt.Sprintf("%s×%d…", kind, n))
	}
	return badges
}
