package ws

import (
	"sort"
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 1000
	defaultBufferMaxAge = 1 * time.Hour
)

// EventBuffer stores recent events per dataset for replay on reconnect.
type EventBuffer struct {
	mu     sync.RWMutex
	events map[string][]Event
	maxAge time.Duration
	maxLen int
	stop   chan struct{}
}

// NewEventBuffer creates an EventBuffer with the given limits and starts
// a background goroutine that removes stale dataset entries every 10 minutes.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	eb := &EventBuffer{
		events: make(map[string][]Event),
		maxAge: maxAge,
		maxLen: maxLen,
		stop:   make(chan struct{}),
	}
	go eb.cleanupLoop()
	return eb
}

// Stop halts the background cleanup goroutine.
func (eb *EventBuffer) Stop() {
	close(eb.stop)
}

func (eb *EventBuffer) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-eb.stop:
			return
		case <-ticker.C:
			eb.evictStaleDatasets()
		}
	}
}

func (eb *EventBuffer) evictStaleDatasets() {
	cutoff := time.Now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for datasetID, buf := range eb.events {
		if len(buf) == 0 || buf[len(buf)-1].Time.Before(cutoff) {
			delete(eb.events, datasetID)
		}
	}
}

// Append stores an event for potential replay, evicting old entries.
func (eb *EventBuffer) Append(datasetID string, event *Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	buf := eb.events[datasetID]

	cutoff := time.Now().Add(-eb.maxAge)
	buf = buf[sort.Search(len(buf), func(i int) bool { return !buf[i].Time.Before(cutoff) }):]

	buf = append(buf, *event)
	if len(buf) > eb.maxLen {
		buf = buf[len(buf)-eb.maxLen:]
	}

	eb.events[datasetID] = buf
}

// Since returns all events for a dataset with ID > lastEventID.
// Returns nil if the dataset has no buffered events.
func (eb *EventBuffer) Since(datasetID string, lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[datasetID]
	if len(buf) == 0 {
		return nil
	}

	lo := sort.Search(len(buf), func(i int) bool { return buf[i].ID > lastEventID })
	if lo >= len(buf) {
		return nil
	}

	result := make([]Event, len(buf)-lo)
	copy(result, buf[lo:])
	return result
}

// OldestID returns the oldest buffered event ID for a dataset, or 0 if empty.
func (eb *EventBuffer) OldestID(datasetID string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[datasetID]
	if len(buf) == 0 {
		return 0
	}
	return buf[0].ID
}
