package store

import (
	"encoding/json"
	"fmt"

	"github.com/labelr/labelr/internal/models"
)

// datasetColumns lists the columns selected for dataset queries.
const datasetColumns = `id::text, name, description, created_at`

// sampleColumns lists the columns selected for sample queries.
const sampleColumns = `id::text, dataset_id::text, original_id, text, labels`

// labelColumns lists the columns selected for label definition queries.
const labelColumns = `name, variant, minimum, maximum, interval`

// scanDataset scans a single row into a models.Dataset.
func scanDataset(scan func(dest ...any) error) (*models.Dataset, error) {
	var d models.Dataset

	if err := scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt); err != nil {
		return nil, err
	}

	return &d, nil
}

// scanSample scans a single row into a models.Sample. A NULL labels column
// leaves Labels nil.
func scanSample(scan func(dest ...any) error) (*models.Sample, error) {
	var s models.Sample
	var labels []byte

	if err := scan(&s.ID, &s.DatasetID, &s.OriginalID, &s.Text, &labels); err != nil {
		return nil, err
	}

	if labels != nil {
		if err := json.Unmarshal(labels, &s.Labels); err != nil {
			return nil, fmt.Errorf("unmarshalling sample labels: %w", err)
		}
	}

	return &s, nil
}

// scanLabelDefinition scans a single row into a models.LabelDefinition.
func scanLabelDefinition(scan func(dest ...any) error) (models.LabelDefinition, error) {
	var d models.LabelDefinition
	var variant string

	if err := scan(&d.Name, &variant, &d.Minimum, &d.Maximum, &d.Interval); err != nil {
		return d, err
	}

	d.Variant = models.Variant(variant)

	return d, nil
}
