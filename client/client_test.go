package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithAPIKey("test-key"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func f(v float64) *float64 { return &v }

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.7.0"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.Version != "0.7.0" {
		t.Errorf("got version %q, want 0.7.0", resp.Version)
	}
}

func TestStats(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, StatsResponse{Datasets: 2, Samples: 40, LabeledSamples: 10, LabeledPercent: 0.25})
		},
	})
	resp, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if resp.Samples != 40 || resp.LabeledPercent != 0.25 {
		t.Errorf("unexpected stats: %+v", resp)
	}
}

func TestDatasetsCRUD(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/datasets": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"datasets": []Dataset{{ID: "ds-1", Name: "Headlines"}}})
		},
		"POST /api/v1/datasets": func(w http.ResponseWriter, r *http.Request) {
			var req CreateDatasetRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 201, DatasetDetail{
				Dataset:        Dataset{ID: "ds-2", Name: req.Name},
				Labels:         req.Labels,
				LabeledPercent: 1,
			})
		},
		"GET /api/v1/datasets/ds-1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, DatasetDetail{
				Dataset: Dataset{ID: "ds-1", Name: "Headlines"},
				Labels:  []LabelDefinition{{Name: "News", Variant: VariantBoolean}},
			})
		},
		"DELETE /api/v1/datasets/ds-1": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(204)
		},
	})

	ctx := context.Background()

	list, err := c.Datasets.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ds-1" {
		t.Errorf("unexpected list: %+v", list)
	}

	created, err := c.Datasets.Create(ctx, &CreateDatasetRequest{
		Name: "Reviews",
		Labels: []LabelDefinition{
			{Name: "Score", Variant: VariantNumerical, Minimum: f(0), Maximum: f(5), Interval: f(1)},
		},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID != "ds-2" || len(created.Labels) != 1 || *created.Labels[0].Maximum != 5 {
		t.Errorf("unexpected created dataset: %+v", created)
	}

	got, err := c.Datasets.Get(ctx, "ds-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Labels[0].Name != "News" {
		t.Errorf("got label %q, want News", got.Labels[0].Name)
	}

	if err := c.Datasets.Delete(ctx, "ds-1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}

func TestDatasetExport(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/datasets/ds-1/export": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			w.Write([]byte("id,News\na,1\n")) //nolint:errcheck
		},
		"GET /api/v1/datasets/missing/export": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "dataset not found"})
		},
	})

	var buf bytes.Buffer
	if err := c.Datasets.Export(context.Background(), "ds-1", &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if buf.String() != "id,News\na,1\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	err := c.Datasets.Export(context.Background(), "missing", &buf)
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("error body leaked into output: %q", buf.String())
	}
}

func TestSamplesList(t *testing.T) {
	var gotQuery string
	next := 1
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/datasets/ds-1/samples": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			jsonResponse(w, 200, SamplePage{
				Samples: []Sample{{ID: "s1", Text: "hello"}},
				Metadata: SampleMetadata{
					LabeledPercent: 0.5,
					Pagination:     Pagination{Offset: 0, Limit: 1, NextOffset: &next, Total: 2},
				},
			})
		},
	})

	sample, meta, err := c.Samples.NextUnlabeled(context.Background(), "ds-1", 0)
	if err != nil {
		t.Fatalf("NextUnlabeled() error: %v", err)
	}
	if gotQuery != "labeled=false&limit=1" {
		t.Errorf("got query %q", gotQuery)
	}
	if sample == nil || sample.ID != "s1" {
		t.Fatalf("unexpected sample: %+v", sample)
	}
	if meta.Pagination.NextOffset == nil || *meta.Pagination.NextOffset != 1 {
		t.Errorf("unexpected pagination: %+v", meta.Pagination)
	}
}

func TestSamplesNextUnlabeled_Exhausted(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/datasets/ds-1/samples": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, SamplePage{Samples: []Sample{}, Metadata: SampleMetadata{LabeledPercent: 1}})
		},
	})

	sample, meta, err := c.Samples.NextUnlabeled(context.Background(), "ds-1", 3)
	if err != nil {
		t.Fatalf("NextUnlabeled() error: %v", err)
	}
	if sample != nil {
		t.Errorf("expected no sample, got %+v", sample)
	}
	if meta.LabeledPercent != 1 {
		t.Errorf("got labeled_percent %v, want 1", meta.LabeledPercent)
	}
}

func TestSamplesLabelAndAdd(t *testing.T) {
	var gotLabels map[string]float64
	var gotSamples []NewSample
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"PUT /api/v1/datasets/ds-1/samples/s1": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Labels map[string]float64 `json:"labels"`
			}
			json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
			gotLabels = body.Labels
			jsonResponse(w, 200, Sample{ID: "s1", Labels: body.Labels})
		},
		"POST /api/v1/datasets/ds-1/samples": func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Samples []NewSample `json:"samples"`
			}
			json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
			gotSamples = body.Samples
			jsonResponse(w, 201, map[string]int{"added": len(body.Samples)})
		},
	})

	ctx := context.Background()

	sample, err := c.Samples.Label(ctx, "ds-1", "s1", map[string]float64{"News": 1, "Score": -0.5})
	if err != nil {
		t.Fatalf("Label() error: %v", err)
	}
	if gotLabels["Score"] != -0.5 || sample.Labels["News"] != 1 {
		t.Errorf("labels not round-tripped: sent %v, got %v", gotLabels, sample.Labels)
	}

	added, err := c.Samples.Add(ctx, "ds-1", []NewSample{{Text: "one"}, {OriginalID: "x", Text: "two"}})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if added != 2 || gotSamples[1].OriginalID != "x" {
		t.Errorf("unexpected add: added=%d samples=%+v", added, gotSamples)
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/datasets/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "dataset not found"})
		},
		"POST /api/v1/datasets": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 422, map[string]any{
				"code":    "validation_error",
				"message": "invalid label definitions",
				"fields":  map[string]string{"labels[0].interval": "must be positive"},
			})
		},
		"PUT /api/v1/datasets/ds-1/samples/s1": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(502)
			w.Write([]byte("bad gateway")) //nolint:errcheck
		},
	})

	ctx := context.Background()

	_, err := c.Datasets.Get(ctx, "missing")
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}

	_, err = c.Datasets.Create(ctx, &CreateDatasetRequest{Name: "x"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got: %v", err)
	}
	apiErr := err.(*APIError)
	if apiErr.Fields["labels[0].interval"] != "must be positive" {
		t.Errorf("unexpected fields: %v", apiErr.Fields)
	}

	_, err = c.Samples.Label(ctx, "ds-1", "s1", map[string]float64{})
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Code != "unknown" || apiErr.Message != "bad gateway" {
		t.Errorf("unexpected fallback error: %v", err)
	}
	if IsNotFound(err) || IsConflict(err) || IsRateLimited(err) {
		t.Errorf("502 misclassified: %v", err)
	}
}

func TestAuthHeader(t *testing.T) {
	var gotAuth string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(w, 200, HealthResponse{Status: "ok"})
		},
	})

	c.Health(context.Background()) //nolint:errcheck
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: got %q, want %q", gotAuth, "Bearer test-key")
	}
}

func TestEventsSubscribe(t *testing.T) {
	subscribed := make(chan map[string]any, 1)
	var gotAuth string

	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/datasets/ds-1/events": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")

			conn, err := websocket.Accept(w, r, nil)
			if err != nil {
				return
			}
			defer conn.CloseNow() //nolint:errcheck

			ctx := r.Context()

			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg map[string]any
			json.Unmarshal(data, &msg) //nolint:errcheck
			subscribed <- msg

			conn.Write(ctx, websocket.MessageText, []byte(`{"type":"reset","reason":"too old"}`)) //nolint:errcheck
			conn.Write(ctx, websocket.MessageText, []byte( //nolint:errcheck
				`{"type":"sample.labeled","id":8,"dataset_id":"ds-1","data":{"sample_id":"s9","labeled_percent":0.5}}`))
			conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := c.Events.Subscribe(ctx, "ds-1", 7)
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	msg := <-subscribed
	if msg["type"] != "subscribe" || msg["last_event_id"] != float64(7) {
		t.Errorf("unexpected subscribe message: %v", msg)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: got %q", gotAuth)
	}

	evt, ok := <-events
	if !ok {
		t.Fatal("event channel closed before any event")
	}
	if evt.ID != 8 || evt.Type != EventSampleLabeled {
		t.Fatalf("unexpected event: %+v", evt)
	}

	payload, err := DecodeSampleLabeled(evt)
	if err != nil {
		t.Fatalf("DecodeSampleLabeled() error: %v", err)
	}
	if payload.SampleID != "s9" {
		t.Errorf("got sample %q, want s9", payload.SampleID)
	}

	if _, ok := <-events; ok {
		t.Error("expected channel to close after server closed the stream")
	}
}

func TestEventsSubscribeLive(t *testing.T) {
	subscribed := make(chan map[string]any, 1)

	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/datasets/ds-1/events": func(w http.ResponseWriter, r *http.Request) {
			conn, err := websocket.Accept(w, r, nil)
			if err != nil {
				return
			}
			defer conn.CloseNow() //nolint:errcheck

			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			var msg map[string]any
			json.Unmarshal(data, &msg) //nolint:errcheck
			subscribed <- msg

			conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := c.Events.SubscribeLive(ctx, "ds-1")
	if err != nil {
		t.Fatalf("SubscribeLive() error: %v", err)
	}

	msg := <-subscribed
	if msg["type"] != "subscribe" {
		t.Errorf("unexpected subscribe message: %v", msg)
	}
	if _, ok := msg["last_event_id"]; ok {
		t.Errorf("live subscription asked for replay: %v", msg)
	}

	for range events {
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:3040/x":  "ws://localhost:3040/x",
		"https://labelr.example/x": "wss://labelr.example/x",
	}
	for in, want := range tests {
		got, err := websocketURL(in)
		if err != nil || got != want {
			t.Errorf("websocketURL(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := websocketURL("ftp://x"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}
