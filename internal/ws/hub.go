// Package ws implements the dataset-scoped WebSocket event hub.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/metrics"
)

// Hub channel buffer sizes and connection caps.
const (
	broadcastBuffer      = 256
	registerBuffer       = 64
	maxClients           = 1000
	maxClientsPerDataset = 100
)

// datasetBroadcast is sent through the broadcast channel to the Run goroutine.
type datasetBroadcast struct {
	datasetID string
	msg       []byte
}

// Hub manages active WebSocket clients and broadcasts each event to the
// clients subscribed to its dataset.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients      map[*Client]bool
	datasetCount map[string]int
	register     chan *Client
	unregister   chan *Client
	broadcast    chan datasetBroadcast
	shutdown     chan struct{}
	done         chan struct{}
	count        atomic.Int64
	log          *logrus.Logger
	seq          *EventSequence
	buffer       *EventBuffer
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		datasetCount: make(map[string]int),
		register:     make(chan *Client, registerBuffer),
		unregister:   make(chan *Client, registerBuffer),
		broadcast:    make(chan datasetBroadcast, broadcastBuffer),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		log:          log,
		seq:          NewEventSequence(),
		buffer:       NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
	}
}

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// Run starts the hub event loop. It should be run as a goroutine.
// It exits when Shutdown is called or the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.buffer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
			}

			h.updateCount()
			h.log.WithField("total", len(h.clients)).Debug("client unregistered")

		case b := <-h.broadcast:
			for client := range h.clients {
				if client.DatasetID != b.datasetID {
					continue
				}

				select {
				case client.send <- b.msg:
				default:
					metrics.EventsDropped.Inc()
					h.remove(client)
				}
			}

			h.updateCount()
		}
	}
}

func (h *Hub) add(client *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global connection limit reached, dropping client")
		client.closeSend()

		return
	}

	if h.datasetCount[client.DatasetID] >= maxClientsPerDataset {
		h.log.WithField("dataset_id", client.DatasetID).Warn("per-dataset connection limit reached, dropping client")
		client.closeSend()

		return
	}

	h.clients[client] = true
	h.datasetCount[client.DatasetID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{
		"dataset_id": client.DatasetID,
		"total":      len(h.clients),
	}).Debug("client registered")
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()

	h.datasetCount[client.DatasetID]--
	if h.datasetCount[client.DatasetID] <= 0 {
		delete(h.datasetCount, client.DatasetID)
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// maxBroadcastPayload is the maximum allowed event payload size (4 KB).
const maxBroadcastPayload = 4096

// broadcastToDataset queues msg for every client of datasetID. Oversized
// payloads and a full broadcast channel drop the message with a warning.
func (h *Hub) broadcastToDataset(datasetID string, msg []byte) {
	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"dataset_id":   datasetID,
			"payload_size": len(msg),
			"max_size":     maxBroadcastPayload,
		}).Warn("dropping oversized broadcast payload")

		return
	}

	select {
	case h.broadcast <- datasetBroadcast{datasetID: datasetID, msg: msg}:
	default:
		metrics.EventsDropped.Inc()
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; client cleanup happened in Run shutdown.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// BroadcastEvent assigns the next sequence id of the dataset, stores the
// event for replay and sends it to every client of that dataset.
func (h *Hub) BroadcastEvent(eventType, datasetID string, data json.RawMessage) {
	evt := Event{
		Type:      eventType,
		ID:        h.seq.Next(datasetID),
		DatasetID: datasetID,
		Data:      data,
		Time:      time.Now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	h.buffer.Append(datasetID, &evt)
	h.broadcastToDataset(datasetID, msg)
}

// Shutdown sends a shutdown frame to every connected client, waits for their
// write pumps to flush, then closes all connections. It blocks until the
// drain is complete or the timeout expires.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

// drainClients sends a shutdown message to every client and waits for buffers to flush.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

wait:
	for {
		drained := true

		for client := range h.clients {
			if len(client.send) > 0 {
				drained = false

				break
			}
		}

		if drained {
			break
		}

		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")

			break wait
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.datasetCount = make(map[string]int)
	h.updateCount()
}

// ReplayEvents queues the buffered events of the client's dataset with an
// id above lastEventID. It returns false when lastEventID is older than the
// oldest buffered event.
func (h *Hub) ReplayEvents(client *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID(client.DatasetID)
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest-1 {
		return false
	}

	for _, evt := range h.buffer.Since(client.DatasetID, lastEventID) {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		select {
		case client.send <- msg:
		default:
			return true
		}
	}

	return true
}
