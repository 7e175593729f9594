package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/labelr/labelr/internal/models"
)

// DatasetStore handles dataset and label schema persistence.
type DatasetStore struct {
	Base
}

// NewDatasetStore creates a new DatasetStore.
func NewDatasetStore(base Base) *DatasetStore {
	return &DatasetStore{Base: base}
}

// ListDatasets returns all datasets, newest first.
func (s *DatasetStore) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, "SELECT "+datasetColumns+" FROM datasets ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]models.Dataset, 0)

	for rows.Next() {
		d, err := scanDataset(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning dataset row: %w", err)
		}

		datasets = append(datasets, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dataset rows: %w", err)
	}

	return datasets, nil
}

// GetDataset returns a dataset with its ordered label schema and the share of
// labeled samples. A dataset without samples counts as fully labeled.
func (s *DatasetStore) GetDataset(ctx context.Context, datasetID string) (*models.DatasetDetail, error) {
	if !validID(datasetID) {
		return nil, models.ErrDatasetNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting dataset: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	d, err := scanDataset(tx.QueryRow(ctx,
		"SELECT "+datasetColumns+" FROM datasets WHERE id = $1", datasetID).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDatasetNotFound
		}

		return nil, fmt.Errorf("querying dataset: %w", err)
	}

	labels, err := queryLabels(ctx, tx, datasetID)
	if err != nil {
		return nil, err
	}

	var total, labeled int

	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE labels IS NOT NULL)
		 FROM samples WHERE dataset_id = $1`, datasetID,
	).Scan(&total, &labeled)
	if err != nil {
		return nil, fmt.Errorf("counting samples: %w", err)
	}

	return &models.DatasetDetail{
		Dataset:        *d,
		Labels:         labels,
		LabeledPercent: fraction(labeled, total, 1),
	}, nil
}

// LabelDefinitions returns a dataset's label schema in schema order.
func (s *DatasetStore) LabelDefinitions(ctx context.Context, datasetID string) ([]models.LabelDefinition, error) {
	if !validID(datasetID) {
		return nil, models.ErrDatasetNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting label definitions: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM datasets WHERE id = $1)", datasetID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking dataset: %w", err)
	}

	if !exists {
		return nil, models.ErrDatasetNotFound
	}

	return queryLabels(ctx, tx, datasetID)
}

// CreateDataset inserts a dataset and its label definitions in one transaction.
// labels must already be validated; their order becomes the schema order.
func (s *DatasetStore) CreateDataset(
	ctx context.Context,
	req models.CreateDatasetRequest,
) (*models.DatasetDetail, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating dataset: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	d, err := scanDataset(tx.QueryRow(ctx,
		`INSERT INTO datasets (id, name, description) VALUES ($1, $2, $3)
		 RETURNING `+datasetColumns,
		uuid.NewString(), req.Name, req.Description,
	).Scan)
	if err != nil {
		return nil, fmt.Errorf("inserting dataset: %w", err)
	}

	batch := &pgx.Batch{}
	for i, l := range req.Labels {
		batch.Queue(
			`INSERT INTO label_definitions (dataset_id, position, name, variant, minimum, maximum, interval)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			d.ID, i, l.Name, string(l.Variant), l.Minimum, l.Maximum, l.Interval,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("inserting label definitions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create dataset: %w", err)
	}

	labels := req.Labels
	if labels == nil {
		labels = []models.LabelDefinition{}
	}

	return &models.DatasetDetail{Dataset: *d, Labels: labels, LabeledPercent: 1}, nil
}

// DeleteDataset removes a dataset together with its labels and samples.
func (s *DatasetStore) DeleteDataset(ctx context.Context, datasetID string) error {
	if !validID(datasetID) {
		return models.ErrDatasetNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, "DELETE FROM datasets WHERE id = $1", datasetID)
	if err != nil {
		return fmt.Errorf("deleting dataset: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrDatasetNotFound
	}

	return nil
}

// queryLabels reads a dataset's label definitions in schema order.
func queryLabels(ctx context.Context, tx pgx.Tx, datasetID string) ([]models.LabelDefinition, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+labelColumns+" FROM label_definitions WHERE dataset_id = $1 ORDER BY position",
		datasetID)
	if err != nil {
		return nil, fmt.Errorf("querying label definitions: %w", err)
	}
	defer rows.Close()

	labels := make([]models.LabelDefinition, 0)

	for rows.Next() {
		l, err := scanLabelDefinition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning label definition row: %w", err)
		}

		labels = append(labels, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating label definition rows: %w", err)
	}

	return labels, nil
}
