package api

import (
	"context"

	"github.com/labelr/labelr/internal/domain"
	"github.com/labelr/labelr/internal/models"
)

// DatasetService defines the dataset operations used by DatasetHandler.
type DatasetService = domain.DatasetService

// SampleService defines the sample operations used by SampleHandler.
type SampleService = domain.SampleService

// ExportService defines the CSV export used by DatasetHandler.
type ExportService = domain.ExportService

// StatsRepository returns instance-wide counts.
type StatsRepository interface {
	Stats(ctx context.Context) (*models.Stats, error)
}
