package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
)

// eventBuffer is the capacity of the channel returned by Subscribe.
const eventBuffer = 64

// EventService subscribes to dataset event streams.
type EventService struct {
	c *Client
}

// Subscribe opens the event stream of a dataset. Events with an id above
// lastEventID that the server still buffers are replayed first. The returned
// channel is closed when ctx is cancelled or the connection ends; events are
// dropped while the receiver is not keeping up.
func (s *EventService) Subscribe(ctx context.Context, datasetID string, lastEventID uint64) (<-chan Event, error) {
	return s.subscribe(ctx, datasetID, map[string]any{"type": "subscribe", "last_event_id": lastEventID})
}

// SubscribeLive opens the event stream of a dataset without replay: only
// events broadcast after the subscription reach the channel.
func (s *EventService) SubscribeLive(ctx context.Context, datasetID string) (<-chan Event, error) {
	return s.subscribe(ctx, datasetID, map[string]any{"type": "subscribe"})
}

func (s *EventService) subscribe(ctx context.Context, datasetID string, msg map[string]any) (<-chan Event, error) {
	wsURL, err := websocketURL(s.c.baseURL + datasetPath(datasetID, "events"))
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if s.c.apiKey != "" {
		header.Set("Authorization", "Bearer "+s.c.apiKey)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPClient: s.c.httpClient,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: err.Error()}
		}

		return nil, fmt.Errorf("dialing event stream: %w", err)
	}

	subscribe, err := json.Marshal(msg)
	if err != nil {
		conn.CloseNow() //nolint:errcheck // best-effort close on setup failure
		return nil, fmt.Errorf("marshal subscribe: %w", err)
	}

	if err := conn.Write(ctx, websocket.MessageText, subscribe); err != nil {
		conn.CloseNow() //nolint:errcheck // best-effort close on setup failure
		return nil, fmt.Errorf("sending subscribe: %w", err)
	}

	events := make(chan Event, eventBuffer)
	go readEvents(ctx, conn, events)

	return events, nil
}

func readEvents(ctx context.Context, conn *websocket.Conn, events chan<- Event) {
	defer close(events)
	defer conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck // best-effort

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil || evt.ID == 0 {
			// Control messages (reset, shutdown) carry no id.
			continue
		}

		select {
		case events <- evt:
		default:
		}
	}
}

// websocketURL swaps the http(s) scheme of u for ws(s).
func websocketURL(u string) (string, error) {
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://"), nil
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://"), nil
	default:
		return "", fmt.Errorf("unsupported base URL scheme: %s", u)
	}
}

// DecodeSampleLabeled decodes the payload of a sample.labeled event.
func DecodeSampleLabeled(evt Event) (SampleLabeled, error) {
	var p SampleLabeled
	if evt.Type != EventSampleLabeled {
		return p, fmt.Errorf("event %d is %q, not %s", evt.ID, evt.Type, EventSampleLabeled)
	}

	if err := json.Unmarshal(evt.Data, &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", EventSampleLabeled, err)
	}

	return p, nil
}
