// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/domain"
	"github.com/labelr/labelr/internal/labelschema"
	"github.com/labelr/labelr/internal/models"
)

// DatasetStore is the data-access interface DatasetService depends on.
// It reuses domain.DatasetService since the method sets are identical.
type DatasetStore = domain.DatasetService

// Compile-time check: *DatasetService must satisfy domain.DatasetService.
var _ domain.DatasetService = (*DatasetService)(nil)

// DatasetService validates label schemas before they reach the store.
type DatasetService struct {
	store DatasetStore
	log   *logrus.Logger
}

// NewDatasetService creates a DatasetService.
func NewDatasetService(store DatasetStore, log *logrus.Logger) *DatasetService {
	return &DatasetService{store: store, log: log}
}

// ListDatasets returns all datasets (pass-through).
func (s *DatasetService) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	return s.store.ListDatasets(ctx)
}

// GetDataset returns a dataset with its schema and progress (pass-through).
func (s *DatasetService) GetDataset(ctx context.Context, datasetID string) (*models.DatasetDetail, error) {
	return s.store.GetDataset(ctx, datasetID)
}

// CreateDataset checks the metadata, then accepts the label definitions one
// at a time against the schema built so far. The stored definitions are the
// normalized ones. Rejected labels come back as labelschema.FieldErrors.
func (s *DatasetService) CreateDataset(
	ctx context.Context, req models.CreateDatasetRequest,
) (*models.DatasetDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	schema, err := labelschema.New(req.Labels)
	if err != nil {
		return nil, err
	}

	req.Labels = schema.Definitions()

	ds, err := s.store.CreateDataset(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"dataset_id": ds.ID,
		"labels":     len(ds.Labels),
	}).Info("dataset.create")

	return ds, nil
}

// DeleteDataset removes a dataset with all its samples.
func (s *DatasetService) DeleteDataset(ctx context.Context, datasetID string) error {
	if err := s.store.DeleteDataset(ctx, datasetID); err != nil {
		return err
	}

	s.log.WithField("dataset_id", datasetID).Info("dataset.delete")

	return nil
}
