package session

import (
	"context"

	"github.com/labelr/labelr/internal/models"
)

// SampleSource is the remote sample store a labeling session reads from and
// writes to.
type SampleSource interface {
	// FetchUnlabeledSample returns the unlabeled sample at offset in the
	// dataset's queue, or nil when there is none. The metadata's
	// Pagination.NextOffset is nil once the queue is exhausted.
	FetchUnlabeledSample(ctx context.Context, datasetID string, offset int) (*models.Sample, models.SampleMetadata, error)

	// FetchSampleByID returns the latest stored state of one sample.
	FetchSampleByID(ctx context.Context, datasetID, sampleID string) (*models.Sample, error)

	// WriteLabels replaces a sample's labels.
	WriteLabels(ctx context.Context, datasetID, sampleID string, labels map[string]float64) error
}
