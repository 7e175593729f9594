package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

func f(v float64) *float64 { return &v }

// mockDatasetStore records calls and returns configured responses.
type mockDatasetStore struct {
	mu    sync.Mutex
	calls []string

	listDatasets     func(ctx context.Context) ([]models.Dataset, error)
	getDataset       func(ctx context.Context, datasetID string) (*models.DatasetDetail, error)
	createDataset    func(ctx context.Context, req models.CreateDatasetRequest) (*models.DatasetDetail, error)
	deleteDataset    func(ctx context.Context, datasetID string) error
	labelDefinitions func(ctx context.Context, datasetID string) ([]models.LabelDefinition, error)
	exportLabeled    func(ctx context.Context, datasetID string, fn func(models.Sample) error) error
}

func (m *mockDatasetStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockDatasetStore) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	m.record("ListDatasets")
	return m.listDatasets(ctx)
}

func (m *mockDatasetStore) GetDataset(ctx context.Context, datasetID string) (*models.DatasetDetail, error) {
	m.record("GetDataset")
	return m.getDataset(ctx, datasetID)
}

func (m *mockDatasetStore) CreateDataset(ctx context.Context, req models.CreateDatasetRequest) (*models.DatasetDetail, error) {
	m.record("CreateDataset")
	return m.createDataset(ctx, req)
}

func (m *mockDatasetStore) DeleteDataset(ctx context.Context, datasetID string) error {
	m.record("DeleteDataset")
	return m.deleteDataset(ctx, datasetID)
}

func (m *mockDatasetStore) LabelDefinitions(ctx context.Context, datasetID string) ([]models.LabelDefinition, error) {
	m.record("LabelDefinitions")
	return m.labelDefinitions(ctx, datasetID)
}

func (m *mockDatasetStore) ExportLabeled(ctx context.Context, datasetID string, fn func(models.Sample) error) error {
	m.record("ExportLabeled")
	return m.exportLabeled(ctx, datasetID, fn)
}

// mockSampleStore records calls and returns configured responses.
type mockSampleStore struct {
	mu    sync.Mutex
	calls []string

	listSamples func(ctx context.Context, datasetID string, q models.SampleQuery) (*models.SamplePage, error)
	getSample   func(ctx context.Context, datasetID, sampleID string) (*models.Sample, error)
	writeLabels func(ctx context.Context, datasetID, sampleID string, labels map[string]float64) (*models.Sample, error)
	addSamples  func(ctx context.Context, datasetID string, samples []models.NewSample) (int, error)
}

func (m *mockSampleStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockSampleStore) called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.calls {
		if c == name {
			return true
		}
	}

	return false
}

func (m *mockSampleStore) ListSamples(ctx context.Context, datasetID string, q models.SampleQuery) (*models.SamplePage, error) {
	m.record("ListSamples")
	return m.listSamples(ctx, datasetID, q)
}

func (m *mockSampleStore) GetSample(ctx context.Context, datasetID, sampleID string) (*models.Sample, error) {
	m.record("GetSample")
	return m.getSample(ctx, datasetID, sampleID)
}

func (m *mockSampleStore) WriteLabels(ctx context.Context, datasetID, sampleID string, labels map[string]float64) (*models.Sample, error) {
	m.record("WriteLabels")
	return m.writeLabels(ctx, datasetID, sampleID, labels)
}

func (m *mockSampleStore) AddSamples(ctx context.Context, datasetID string, samples []models.NewSample) (int, error) {
	m.record("AddSamples")
	return m.addSamples(ctx, datasetID, samples)
}

// newsScoreSchema returns a boolean "News" label followed by a numerical
// "Score" label over [-1, 1].
func newsScoreSchema(context.Context, string) ([]models.LabelDefinition, error) {
	return []models.LabelDefinition{
		{Name: "News", Variant: models.VariantBoolean},
		{Name: "Score", Variant: models.VariantNumerical, Minimum: f(-1), Maximum: f(1), Interval: f(0.5)},
	}, nil
}
