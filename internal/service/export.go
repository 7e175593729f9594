package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/labelr/labelr/internal/domain"
	"github.com/labelr/labelr/internal/models"
)

// exportStore is the minimal store interface consumed by ExportService.
type exportStore interface {
	LabelDefinitions(ctx context.Context, datasetID string) ([]models.LabelDefinition, error)
	ExportLabeled(ctx context.Context, datasetID string, fn func(models.Sample) error) error
}

// Compile-time check: *ExportService must satisfy domain.ExportService.
var _ domain.ExportService = (*ExportService)(nil)

// ExportService streams labeled samples as CSV.
type ExportService struct {
	store exportStore
}

// NewExportService creates an ExportService.
func NewExportService(store exportStore) *ExportService {
	return &ExportService{store: store}
}

// ExportCSV writes a header of "id" followed by the label names in schema
// order, then one row per labeled sample. The id column holds the sample's
// original id, or its generated id when none was supplied. Labels missing
// from a sample leave their cell empty.
func (s *ExportService) ExportCSV(ctx context.Context, datasetID string, w io.Writer) error {
	defs, err := s.store.LabelDefinitions(ctx, datasetID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	header := make([]string, 0, len(defs)+1)
	header = append(header, "id")

	for i := range defs {
		header = append(header, defs[i].Name)
	}

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(header))

	err = s.store.ExportLabeled(ctx, datasetID, func(sample models.Sample) error {
		row[0] = sample.OriginalID
		if row[0] == "" {
			row[0] = sample.ID
		}

		for i := range defs {
			row[i+1] = ""
			if v, ok := sample.Labels[defs[i].Name]; ok {
				row[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}

		return cw.Write(row)
	})
	if err != nil {
		return fmt.Errorf("exporting samples: %w", err)
	}

	cw.Flush()

	return cw.Error()
}
