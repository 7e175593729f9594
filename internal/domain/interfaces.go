// Package domain defines the service interfaces shared by the REST API and
// its tests. Consumers should depend on these interfaces rather than
// re-declaring equivalent ones.
package domain

import (
	"context"
	"io"

	"github.com/labelr/labelr/internal/models"
)

// DatasetService defines dataset and label schema operations.
type DatasetService interface {
	ListDatasets(ctx context.Context) ([]models.Dataset, error)
	GetDataset(ctx context.Context, datasetID string) (*models.DatasetDetail, error)
	CreateDataset(ctx context.Context, req models.CreateDatasetRequest) (*models.DatasetDetail, error)
	DeleteDataset(ctx context.Context, datasetID string) error
}

// SampleService defines sample queries, label writes and bulk inserts.
type SampleService interface {
	ListSamples(ctx context.Context, datasetID string, q models.SampleQuery) (*models.SamplePage, error)
	GetSample(ctx context.Context, datasetID, sampleID string) (*models.Sample, error)
	WriteLabels(ctx context.Context, datasetID, sampleID string, labels map[string]float64) (*models.Sample, error)
	AddSamples(ctx context.Context, datasetID string, samples []models.NewSample) (int, error)
}

// ExportService writes a dataset's labeled samples as CSV.
type ExportService interface {
	ExportCSV(ctx context.Context, datasetID string, w io.Writer) error
}
