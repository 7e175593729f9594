package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/labelr/labelr/internal/models"
)

// maxBulkBatchSize limits the number of rows per INSERT statement to avoid
// exceeding PostgreSQL's parameter limit (65535 params).
const maxBulkBatchSize = 500

// AddSamples inserts unlabeled samples into a dataset in a single transaction
// using multi-row INSERTs. Insertion order is the queue order. Returns the
// number of inserted rows.
func (s *SampleStore) AddSamples(ctx context.Context, datasetID string, samples []models.NewSample) (int, error) {
	if !validID(datasetID) {
		return 0, models.ErrDatasetNotFound
	}

	if len(samples) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("adding samples: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	total := 0

	// Process in batches to stay within parameter limits.
	for i := 0; i < len(samples); i += maxBulkBatchSize {
		end := min(i+maxBulkBatchSize, len(samples))
		batch := samples[i:end]

		valueParts := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*4)

		for j, sample := range batch {
			base := j*4 + 1
			valueParts = append(valueParts, fmt.Sprintf("($%d, $%d, $%d, $%d)", base, base+1, base+2, base+3))
			args = append(args, uuid.NewString(), datasetID, sample.OriginalID, sample.Text)
		}

		sql := `INSERT INTO samples (id, dataset_id, original_id, text) VALUES ` + strings.Join(valueParts, ", ")

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return 0, models.ErrDatasetNotFound
			}

			return 0, fmt.Errorf("inserting samples batch: %w", err)
		}

		total += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing add samples: %w", err)
	}

	return total, nil
}
