// Package models defines data types for datasets, label definitions and samples.
package models

import (
	"strings"
	"time"
)

// Variant identifies the kind of value a label carries.
type Variant string

// Supported label variants.
const (
	VariantBoolean   Variant = "boolean"
	VariantNumerical Variant = "numerical"
)

// Valid reports whether v is one of the supported variants.
func (v Variant) Valid() bool {
	return v == VariantBoolean || v == VariantNumerical
}

// LabelDefinition describes one label of a dataset's schema.
// Minimum, Maximum and Interval are only set for numerical labels.
type LabelDefinition struct {
	Name     string   `json:"name"`
	Variant  Variant  `json:"variant"`
	Minimum  *float64 `json:"minimum,omitempty"`
	Maximum  *float64 `json:"maximum,omitempty"`
	Interval *float64 `json:"interval,omitempty"`
}

// IsNumerical reports whether the label carries a scalar value.
func (d *LabelDefinition) IsNumerical() bool {
	return d.Variant == VariantNumerical
}

// Bounds returns the numerical range and step. Unset fields read as zero.
func (d *LabelDefinition) Bounds() (minimum, maximum, interval float64) {
	if d.Minimum != nil {
		minimum = *d.Minimum
	}

	if d.Maximum != nil {
		maximum = *d.Maximum
	}

	if d.Interval != nil {
		interval = *d.Interval
	}

	return minimum, maximum, interval
}

// Accepts reports whether value is a legal stored value for this label:
// 0 or 1 for boolean labels, within [minimum, maximum] for numerical ones.
func (d *LabelDefinition) Accepts(value float64) bool {
	if d.IsNumerical() {
		minimum, maximum, _ := d.Bounds()

		return value >= minimum && value <= maximum
	}

	return value == 0 || value == 1
}

// Dataset is a named collection of samples sharing one label schema.
type Dataset struct {
	ID          string    `json:"dataset_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// DatasetDetail is a dataset with its ordered label schema and labeling progress.
type DatasetDetail struct {
	Dataset
	Labels         []LabelDefinition `json:"labels"`
	LabeledPercent float64           `json:"labeled_percent"`
}

// CreateDatasetRequest is the payload for creating a dataset.
// Labels are checked separately against the label schema rules.
type CreateDatasetRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Labels      []LabelDefinition `json:"labels"`
}

// Validate checks the dataset metadata fields.
func (r *CreateDatasetRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrMissingName
	}

	if len(r.Name) > 255 {
		return ErrFieldTooLong("name", 255)
	}

	if len(r.Description) > 10000 {
		return ErrFieldTooLong("description", 10000)
	}

	return nil
}
