package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/dbpool"
)

// validChannel matches safe PostgreSQL LISTEN channel names.
var validChannel = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const (
	listenChannel     = "labelr_events"
	initialBackoff    = 1 * time.Second
	maxBackoff        = 30 * time.Second
	backoffMultiplier = 2
)

// Broadcaster sends events to the clients subscribed to a dataset.
type Broadcaster interface {
	BroadcastEvent(eventType, datasetID string, data json.RawMessage)
}

// NotifyBridge subscribes to PostgreSQL LISTEN/NOTIFY on the labelr_events
// channel and forwards each payload to the WebSocket hub. The channel is fed
// by the samples_labeled_notify trigger, so every server instance sharing the
// database sees every label write.
type NotifyBridge struct {
	log  *logrus.Logger
	pool *dbpool.Pool
	hub  Broadcaster
}

// NewNotifyBridge creates a NotifyBridge wired to the given pool and hub.
func NewNotifyBridge(log *logrus.Logger, pool *dbpool.Pool, hub Broadcaster) *NotifyBridge {
	return &NotifyBridge{
		log:  log,
		pool: pool,
		hub:  hub,
	}
}

// Start launches the LISTEN/NOTIFY loop in a background goroutine.
// It verifies the initial connection before returning. If the initial
// LISTEN fails, it returns an error. The background goroutine handles
// reconnection for subsequent failures.
func (b *NotifyBridge) Start(ctx context.Context) error {
	if !validChannel.MatchString(listenChannel) {
		return fmt.Errorf("notify bridge: invalid channel name %q", listenChannel)
	}

	if err := b.pool.Ping(ctx); err != nil {
		return fmt.Errorf("notify bridge: database not reachable: %w", err)
	}

	go b.listen(ctx)

	return nil
}

// listen is the main loop that acquires a connection, subscribes to the
// channel, and processes notifications until the context is cancelled.
func (b *NotifyBridge) listen(ctx context.Context) {
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		err := b.subscribeAndForward(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}

		b.log.WithError(err).WithField("retry_in", backoff).
			Warn("notify bridge connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

// subscribeAndForward acquires a connection, issues LISTEN, and blocks on
// notifications until the connection fails or the context is cancelled.
func (b *NotifyBridge) subscribeAndForward(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	// LISTEN requires the channel name inline (not a parameter), so we use
	// pgx.Identifier to safely quote/sanitize the channel name.
	sanitizedChannel := pgx.Identifier{listenChannel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+sanitizedChannel); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", listenChannel).Info("notify bridge listening")

	for {
		// Set a 2-minute read deadline so we periodically check ctx cancellation.
		if err := conn.Conn().PgConn().Conn().SetReadDeadline(time.Now().Add(2 * time.Minute)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// On timeout, loop back to check context and retry.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(notification)
	}
}

// handleNotification forwards a single PG notification payload to the hub.
func (b *NotifyBridge) handleNotification(n *pgconn.Notification) {
	b.log.WithFields(logrus.Fields{
		"channel": n.Channel,
		"pid":     n.PID,
	}).Debug("notification received")

	eventType, datasetID, data, err := decodeNotification(n.Payload)
	if err != nil {
		b.log.WithError(err).Warn("dropping notification")
		return
	}

	b.hub.BroadcastEvent(eventType, datasetID, data)
}

// labelEvent is the data of a sample.labeled event as sent to clients.
type labelEvent struct {
	SampleID       string  `json:"sample_id"`
	LabeledPercent float64 `json:"labeled_percent"`
}

// decodeNotification splits a trigger payload into the event type, the
// dataset it belongs to, and the client-facing event data.
func decodeNotification(payload string) (string, string, json.RawMessage, error) {
	var p struct {
		Type      string `json:"type"`
		DatasetID string `json:"dataset_id"`
		labelEvent
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", "", nil, fmt.Errorf("decoding payload: %w", err)
	}

	if p.DatasetID == "" {
		return "", "", nil, errors.New("payload has no dataset_id")
	}

	if p.Type == "" {
		p.Type = "sample.labeled"
	}

	data, err := json.Marshal(p.labelEvent)
	if err != nil {
		return "", "", nil, fmt.Errorf("encoding event data: %w", err)
	}

	return p.Type, p.DatasetID, data, nil
}

// nextBackoff doubles the current backoff duration with random jitter (±25%),
// capped at maxBackoff. Jitter prevents thundering herd on reconnect.
func nextBackoff(current time.Duration) time.Duration {
	next := current * backoffMultiplier
	if next > maxBackoff {
		next = maxBackoff
	}

	// Add ±25% jitter.
	jitter := float64(next) * (0.75 + rand.Float64()*0.5) //nolint:gosec // jitter doesn't need crypto rand.

	return time.Duration(jitter)
}
