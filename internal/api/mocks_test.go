package api_test

import (
	"context"
	"io"

	"github.com/labelr/labelr/internal/models"
)

// mockDatasetService implements api.DatasetService for testing.
type mockDatasetService struct {
	listFn   func(ctx context.Context) ([]models.Dataset, error)
	getFn    func(ctx context.Context, datasetID string) (*models.DatasetDetail, error)
	createFn func(ctx context.Context, req models.CreateDatasetRequest) (*models.DatasetDetail, error)
	deleteFn func(ctx context.Context, datasetID string) error
}

func (m *mockDatasetService) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	return m.listFn(ctx)
}

func (m *mockDatasetService) GetDataset(ctx context.Context, datasetID string) (*models.DatasetDetail, error) {
	return m.getFn(ctx, datasetID)
}

func (m *mockDatasetService) CreateDataset(ctx context.Context, req models.CreateDatasetRequest) (*models.DatasetDetail, error) {
	return m.createFn(ctx, req)
}

func (m *mockDatasetService) DeleteDataset(ctx context.Context, datasetID string) error {
	return m.deleteFn(ctx, datasetID)
}

// mockSampleService implements api.SampleService for testing.
type mockSampleService struct {
	listFn  func(ctx context.Context, datasetID string, q models.SampleQuery) (*models.SamplePage, error)
	getFn   func(ctx context.Context, datasetID, sampleID string) (*models.Sample, error)
	writeFn func(ctx context.Context, datasetID, sampleID string, labels map[string]float64) (*models.Sample, error)
	addFn   func(ctx context.Context, datasetID string, samples []models.NewSample) (int, error)
}

func (m *mockSampleService) ListSamples(ctx context.Context, datasetID string, q models.SampleQuery) (*models.SamplePage, error) {
	return m.listFn(ctx, datasetID, q)
}

func (m *mockSampleService) GetSample(ctx context.Context, datasetID, sampleID string) (*models.Sample, error) {
	return m.getFn(ctx, datasetID, sampleID)
}

func (m *mockSampleService) WriteLabels(ctx context.Context, datasetID, sampleID string, labels map[string]float64) (*models.Sample, error) {
	return m.writeFn(ctx, datasetID, sampleID, labels)
}

func (m *mockSampleService) AddSamples(ctx context.Context, datasetID string, samples []models.NewSample) (int, error) {
	return m.addFn(ctx, datasetID, samples)
}

// mockExportService implements api.ExportService for testing.
type mockExportService struct {
	exportFn func(ctx context.Context, datasetID string, w io.Writer) error
}

func (m *mockExportService) ExportCSV(ctx context.Context, datasetID string, w io.Writer) error {
	return m.exportFn(ctx, datasetID, w)
}

// mockStatsRepo implements api.StatsRepository for testing.
type mockStatsRepo struct {
	statsFn func(ctx context.Context) (*models.Stats, error)
}

func (m *mockStatsRepo) Stats(ctx context.Context) (*models.Stats, error) {
	return m.statsFn(ctx)
}
