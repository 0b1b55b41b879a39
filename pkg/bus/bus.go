// Package bus carries chart data from the chat pipeline to chart views.
// It replaces an ambient global callback with explicit publish/subscribe:
// the chat handler publishes records after an event-analytics response and
// chart endpoints read the latest update for their session.
package bus

import (
	"sync"
	"time"

	"github.com/sabio/unified-ai-frontend/pkg/visualize"
)

// ChartUpdate is one published batch of chart records.
type ChartUpdate struct {
	SessionKey string                  `json:"session_key"`
	Records    []visualize.EventRecord `json:"records"`
	Timestamp  time.Time               `json:"timestamp"`
}

// ChartFeed holds the latest chart update per session and notifies
// subscribers of new ones.
type ChartFeed struct {
	latest map[string]*ChartUpdate
	subs   []func(*ChartUpdate)
	mu     sync.RWMutex
}

// NewChartFeed creates an empty feed.
func NewChartFeed() *ChartFeed {
	return &ChartFeed{latest: make(map[string]*ChartUpdate)}
}

// Publish stores the latest records for a session and invokes subscribers.
func (f *ChartFeed) Publish(sessionKey string, records []visualize.EventRecord) {
	update := &ChartUpdate{
		SessionKey: sessionKey,
		Records:    records,
		Timestamp:  time.Now().UTC(),
	}

	f.mu.Lock()
	f.latest[sessionKey] = update
	subs := make([]func(*ChartUpdate), len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, sub := range subs {
		sub(update)
	}
}

// Latest returns the most recent update for a session.
func (f *ChartFeed) Latest(sessionKey string) (*ChartUpdate, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	update, ok := f.latest[sessionKey]
	return update, ok
}

// Subscribe registers a callback for every published update.
func (f *ChartFeed) Subscribe(fn func(*ChartUpdate)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

// Clear drops the stored update for a session.
func (f *ChartFeed) Clear(sessionKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.latest, sessionKey)
}
