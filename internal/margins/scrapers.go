package margins

import (
	"context"
	"sync"
	"time"
)

// ScraperLister is the part of Client the directory depends on.
type ScraperLister interface {
	ListScrapers(ctx context.Context) ([]string, error)
}

// ScraperDirectory serves scraper ids, optionally caching them for a TTL.
// A TTL of zero refetches the directory on every call.
type ScraperDirectory struct {
	source ScraperLister
	ttl    time.Duration
	now    func() time.Time

	mutex   sync.RWMutex
	ids     []string
	expires time.Time
}

// NewScraperDirectory wraps source with the given cache TTL.
func NewScraperDirectory(source ScraperLister, ttl time.Duration) *ScraperDirectory {
	if ttl < 0 {
		ttl = 0
	}
	return &ScraperDirectory{source: source, ttl: ttl, now: time.Now}
}

// IDs returns the scraper ids, from cache when still fresh.
func (d *ScraperDirectory) IDs(ctx context.Context) ([]string, error) {
	if ids, ok := d.cached(); ok {
		return ids, nil
	}
	ids, err := d.source.ListScrapers(ctx)
	if err != nil {
		return nil, err
	}
	if d.ttl > 0 {
		d.mutex.Lock()
		d.ids = append([]string(nil), ids...)
		d.expires = d.now().Add(d.ttl)
		d.mutex.Unlock()
	}
	return ids, nil
}

// Invalidate drops any cached directory.
func (d *ScraperDirectory) Invalidate() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.ids = nil
	d.expires = time.Time{}
}

func (d *ScraperDirectory) cached() ([]string, bool) {
	if d.ttl <= 0 {
		return nil, false
	}
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	if d.ids == nil || !d.now().Before(d.expires) {
		return nil, false
	}
	return append([]string(nil), d.ids...), true
}
