package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type      string          `json:"type"`
	ID        uint64          `json:"id"`
	DatasetID string          `json:"dataset_id"`
	Data      json.RawMessage `json:"data"`
	Time      time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client on connect. Without LastEventID the
// client only receives events broadcast from now on.
type SubscribeMsg struct {
	Type        string  `json:"type"`
	LastEventID *uint64 `json:"last_event_id,omitempty"`
}

// ResetMsg tells the client that the requested events are gone.
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventSequence hands out monotonic event ids per dataset.
type EventSequence struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{counters: make(map[string]uint64)}
}

// Next returns the next sequence number for a dataset, starting at 1.
func (es *EventSequence) Next(datasetID string) uint64 {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.counters[datasetID]++

	return es.counters[datasetID]
}
