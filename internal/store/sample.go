package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/labelr/labelr/internal/models"
)

// SampleStore handles sample reads and label writes.
type SampleStore struct {
	Base
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(base Base) *SampleStore {
	return &SampleStore{Base: base}
}

// ListSamples returns one page of a dataset's samples in insertion order,
// optionally restricted to labeled or unlabeled ones. labeled_percent covers
// the whole dataset and is 0 for an empty one; total counts only the samples
// matching the filter.
func (s *SampleStore) ListSamples(
	ctx context.Context,
	datasetID string,
	q models.SampleQuery,
) (*models.SamplePage, error) {
	if !validID(datasetID) {
		return nil, models.ErrDatasetNotFound
	}

	limit, offset := clampPage(q.Limit, q.Offset, defaultSampleLimit)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing samples: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	var exists bool
	var all, labeled int

	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM datasets WHERE id = $1),
			COUNT(*), COUNT(*) FILTER (WHERE labels IS NOT NULL)
		 FROM samples WHERE dataset_id = $1`, datasetID,
	).Scan(&exists, &all, &labeled)
	if err != nil {
		return nil, fmt.Errorf("counting samples: %w", err)
	}

	if !exists {
		return nil, models.ErrDatasetNotFound
	}

	where := " WHERE dataset_id = $1"
	total := all

	if q.Labeled != nil {
		if *q.Labeled {
			where += " AND labels IS NOT NULL"
			total = labeled
		} else {
			where += " AND labels IS NULL"
			total = all - labeled
		}
	}

	rows, err := tx.Query(ctx,
		"SELECT "+sampleColumns+" FROM samples"+where+" ORDER BY seq LIMIT $2 OFFSET $3",
		datasetID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	samples := make([]models.Sample, 0, limit)

	for rows.Next() {
		sample, err := scanSample(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}

		samples = append(samples, *sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sample rows: %w", err)
	}

	return &models.SamplePage{
		Samples: samples,
		Metadata: models.SampleMetadata{
			LabeledPercent: fraction(labeled, all, 0),
			Pagination:     models.NewPagination(offset, limit, total),
		},
	}, nil
}

// GetSample returns one sample of a dataset.
func (s *SampleStore) GetSample(ctx context.Context, datasetID, sampleID string) (*models.Sample, error) {
	if !validID(datasetID) || !validID(sampleID) {
		return nil, models.ErrSampleNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sample, err := scanSample(s.Pool.QueryRow(ctx,
		"SELECT "+sampleColumns+" FROM samples WHERE id = $1 AND dataset_id = $2",
		sampleID, datasetID,
	).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSampleNotFound
		}

		return nil, fmt.Errorf("querying sample: %w", err)
	}

	return sample, nil
}

// WriteLabels replaces a sample's labels. The samples_labeled_notify trigger
// announces the write on the labelr_events channel.
func (s *SampleStore) WriteLabels(
	ctx context.Context,
	datasetID, sampleID string,
	labels map[string]float64,
) (*models.Sample, error) {
	if !validID(datasetID) || !validID(sampleID) {
		return nil, models.ErrSampleNotFound
	}

	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, fmt.Errorf("marshalling labels: %w", err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sample, err := scanSample(s.Pool.QueryRow(ctx,
		`UPDATE samples SET labels = $3, labeled_at = now()
		 WHERE id = $1 AND dataset_id = $2
		 RETURNING `+sampleColumns,
		sampleID, datasetID, labelsJSON,
	).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSampleNotFound
		}

		return nil, fmt.Errorf("updating sample labels: %w", err)
	}

	return sample, nil
}

// ExportLabeled calls fn for every labeled sample of a dataset in insertion
// order, inside one read-only transaction so the export is consistent.
func (s *SampleStore) ExportLabeled(
	ctx context.Context,
	datasetID string,
	fn func(models.Sample) error,
) error {
	if !validID(datasetID) {
		return models.ErrDatasetNotFound
	}

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return fmt.Errorf("exporting samples: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	rows, err := tx.Query(ctx,
		"SELECT "+sampleColumns+" FROM samples WHERE dataset_id = $1 AND labels IS NOT NULL ORDER BY seq",
		datasetID)
	if err != nil {
		return fmt.Errorf("querying labeled samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sample, err := scanSample(rows.Scan)
		if err != nil {
			return fmt.Errorf("scanning sample row: %w", err)
		}

		if err := fn(*sample); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating sample rows: %w", err)
	}

	return nil
}

// Stats returns instance-wide counts.
func (s *SampleStore) Stats(ctx context.Context) (*models.Stats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var st models.Stats

	err := s.Pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM datasets),
			COUNT(*),
			COUNT(*) FILTER (WHERE labels IS NOT NULL)
		 FROM samples`,
	).Scan(&st.Datasets, &st.Samples, &st.LabeledSamples)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}

	return &st, nil
}
