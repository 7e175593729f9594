package models

// Sample is one unit of text to be labeled.
// A nil Labels map means the sample has never been labeled.
type Sample struct {
	ID         string             `json:"sample_id"`
	DatasetID  string             `json:"-"`
	OriginalID string             `json:"original_id"`
	Text       string             `json:"text"`
	Labels     map[string]float64 `json:"labels"`
}

// Pagination describes one window over a sample queue.
// NextOffset is nil once the window reaches the end of the queue.
type Pagination struct {
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	NextOffset *int `json:"next_offset"`
	Total      int  `json:"total"`
}

// NewPagination builds the pagination block for a window of limit items at offset
// over a queue of total items.
func NewPagination(offset, limit, total int) Pagination {
	p := Pagination{Offset: offset, Limit: limit, Total: total}

	next := offset + limit
	if next < total {
		p.NextOffset = &next
	}

	return p
}

// SampleMetadata accompanies every sample page.
type SampleMetadata struct {
	LabeledPercent float64    `json:"labeled_percent"`
	Pagination     Pagination `json:"pagination"`
}

// SamplePage is the response for a paginated sample query.
type SamplePage struct {
	Samples  []Sample       `json:"samples"`
	Metadata SampleMetadata `json:"metadata"`
}

// SampleQuery holds the filters for listing a dataset's samples.
// A nil Labeled returns both labeled and unlabeled samples.
type SampleQuery struct {
	Offset  int
	Limit   int
	Labeled *bool
}

// LabelSampleRequest is the payload for writing a sample's labels.
type LabelSampleRequest struct {
	Labels map[string]float64 `json:"labels"`
}

// Validate checks that a label map is present.
func (r *LabelSampleRequest) Validate() error {
	if r.Labels == nil {
		return ErrMissingLabels
	}

	return nil
}

// NewSample is a sample to be inserted into a dataset.
type NewSample struct {
	OriginalID string `json:"original_id"`
	Text       string `json:"text"`
}

// CreateSamplesRequest is the payload for bulk-adding samples to a dataset.
type CreateSamplesRequest struct {
	Samples []NewSample `json:"samples"`
}

// maxSamplesPerRequest caps a single bulk insert.
const maxSamplesPerRequest = 10000

// Validate checks sample count and per-sample fields.
func (r *CreateSamplesRequest) Validate() error {
	if len(r.Samples) == 0 {
		return ErrMissingSamples
	}

	if len(r.Samples) > maxSamplesPerRequest {
		return ErrFieldTooLong("samples", maxSamplesPerRequest)
	}

	for i := range r.Samples {
		if r.Samples[i].Text == "" {
			return ErrMissingText
		}

		if len(r.Samples[i].OriginalID) > 255 {
			return ErrFieldTooLong("original_id", 255)
		}

		if len(r.Samples[i].Text) > 100000 {
			return ErrFieldTooLong("text", 100000)
		}
	}

	return nil
}

// Stats holds instance-wide counts.
type Stats struct {
	Datasets       int `json:"datasets"`
	Samples        int `json:"samples"`
	LabeledSamples int `json:"labeled_samples"`
}
