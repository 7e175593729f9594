package client

import (
	"encoding/json"
	"time"
)

// LabelDefinition describes one label of a dataset. Minimum, Maximum and
// Interval are only set for numerical labels.
type LabelDefinition struct {
	Name     string   `json:"name"`
	Variant  string   `json:"variant"`
	Minimum  *float64 `json:"minimum,omitempty"`
	Maximum  *float64 `json:"maximum,omitempty"`
	Interval *float64 `json:"interval,omitempty"`
}

// Label variants.
const (
	VariantBoolean   = "boolean"
	VariantNumerical = "numerical"
)

// Dataset is a named collection of samples.
type Dataset struct {
	ID          string    `json:"dataset_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// DatasetDetail is a dataset with its label schema and labeling progress.
type DatasetDetail struct {
	Dataset
	Labels         []LabelDefinition `json:"labels"`
	LabeledPercent float64           `json:"labeled_percent"`
}

// CreateDatasetRequest is the payload for creating a dataset.
type CreateDatasetRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Labels      []LabelDefinition `json:"labels"`
}

// Sample is one text to be labeled. Labels is nil until the sample is labeled.
type Sample struct {
	ID         string             `json:"sample_id"`
	OriginalID string             `json:"original_id"`
	Text       string             `json:"text"`
	Labels     map[string]float64 `json:"labels"`
}

// NewSample is a sample to add to a dataset.
type NewSample struct {
	OriginalID string `json:"original_id,omitempty"`
	Text       string `json:"text"`
}

// Pagination describes one window over a sample queue. NextOffset is nil at
// the end of the queue.
type Pagination struct {
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	NextOffset *int `json:"next_offset"`
	Total      int  `json:"total"`
}

// SampleMetadata accompanies every sample page.
type SampleMetadata struct {
	LabeledPercent float64    `json:"labeled_percent"`
	Pagination     Pagination `json:"pagination"`
}

// SamplePage is one page of samples.
type SamplePage struct {
	Samples  []Sample       `json:"samples"`
	Metadata SampleMetadata `json:"metadata"`
}

// SampleListOptions filters a sample listing. A nil Labeled returns every sample.
type SampleListOptions struct {
	Offset  int
	Limit   int
	Labeled *bool
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	EventClients  int     `json:"event_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatsResponse holds instance-wide counts.
type StatsResponse struct {
	Datasets       int     `json:"datasets"`
	Samples        int     `json:"samples"`
	LabeledSamples int     `json:"labeled_samples"`
	LabeledPercent float64 `json:"labeled_percent"`
	EventClients   int     `json:"event_clients"`
}

// Event is one message on a dataset's event stream.
type Event struct {
	Type      string          `json:"type"`
	ID        uint64          `json:"id"`
	DatasetID string          `json:"dataset_id"`
	Data      json.RawMessage `json:"data"`
	Time      time.Time       `json:"time"`
}

// EventSampleLabeled is the type of events emitted after a label write.
const EventSampleLabeled = "sample.labeled"

// SampleLabeled is the payload of a sample.labeled event.
type SampleLabeled struct {
	SampleID       string  `json:"sample_id"`
	LabeledPercent float64 `json:"labeled_percent"`
}
