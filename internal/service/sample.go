package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/domain"
	"github.com/labelr/labelr/internal/labelschema"
	"github.com/labelr/labelr/internal/metrics"
	"github.com/labelr/labelr/internal/models"
)

// SampleStore is the data-access interface SampleService depends on.
type SampleStore = domain.SampleService

// SchemaStore loads a dataset's label definitions.
type SchemaStore interface {
	LabelDefinitions(ctx context.Context, datasetID string) ([]models.LabelDefinition, error)
}

// Compile-time check: *SampleService must satisfy domain.SampleService.
var _ domain.SampleService = (*SampleService)(nil)

// SampleService checks label writes against the dataset's schema. Label
// events reach subscribers through the database trigger, not through here.
type SampleService struct {
	store   SampleStore
	schemas SchemaStore
	log     *logrus.Logger
}

// NewSampleService creates a SampleService.
func NewSampleService(store SampleStore, schemas SchemaStore, log *logrus.Logger) *SampleService {
	return &SampleService{store: store, schemas: schemas, log: log}
}

// ListSamples returns one page of a dataset's samples.
func (s *SampleService) ListSamples(
	ctx context.Context, datasetID string, q models.SampleQuery,
) (*models.SamplePage, error) {
	page, err := s.store.ListSamples(ctx, datasetID, q)
	if err != nil {
		return nil, err
	}

	metrics.SamplesServed.WithLabelValues(queryKind(q)).Add(float64(len(page.Samples)))

	return page, nil
}

func queryKind(q models.SampleQuery) string {
	switch {
	case q.Labeled == nil:
		return "all"
	case *q.Labeled:
		return "labeled"
	default:
		return "unlabeled"
	}
}

// GetSample returns one sample.
func (s *SampleService) GetSample(ctx context.Context, datasetID, sampleID string) (*models.Sample, error) {
	sample, err := s.store.GetSample(ctx, datasetID, sampleID)
	if err != nil {
		return nil, err
	}

	metrics.SamplesServed.WithLabelValues("by_id").Inc()

	return sample, nil
}

// WriteLabels replaces a sample's labels after checking every key and value
// against the dataset's schema. Errors for illegal values wrap
// models.ErrInvalidLabel.
func (s *SampleService) WriteLabels(
	ctx context.Context, datasetID, sampleID string, labels map[string]float64,
) (*models.Sample, error) {
	defs, err := s.schemas.LabelDefinitions(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	schema, err := labelschema.New(defs)
	if err != nil {
		return nil, fmt.Errorf("loading label schema: %w", err)
	}

	if err := schema.CheckValues(labels); err != nil {
		return nil, err
	}

	sample, err := s.store.WriteLabels(ctx, datasetID, sampleID, labels)
	if err != nil {
		return nil, err
	}

	metrics.LabelsWritten.WithLabelValues(datasetID).Inc()

	return sample, nil
}

// AddSamples validates and bulk-inserts samples into a dataset.
func (s *SampleService) AddSamples(ctx context.Context, datasetID string, samples []models.NewSample) (int, error) {
	req := models.CreateSamplesRequest{Samples: samples}
	if err := req.Validate(); err != nil {
		return 0, err
	}

	n, err := s.store.AddSamples(ctx, datasetID, samples)
	if err != nil {
		return 0, err
	}

	metrics.SamplesAdded.Add(float64(n))
	s.log.WithFields(logrus.Fields{
		"dataset_id": datasetID,
		"count":      n,
	}).Info("samples.add")

	return n, nil
}
