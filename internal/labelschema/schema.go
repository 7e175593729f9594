package labelschema

import (
	"fmt"
	"sort"

	"github.com/labelr/labelr/internal/models"
)

// Schema is the ordered, validated set of label definitions of one dataset.
// Order is insertion order and drives display and shortcut order.
type Schema struct {
	defs  []models.LabelDefinition
	index map[string]int
}

// New builds a schema by accepting defs one at a time in order. The returned
// FieldErrors are keyed "labels[i].<field>".
func New(defs []models.LabelDefinition) (*Schema, error) {
	s := &Schema{
		defs:  make([]models.LabelDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}

	for i := range defs {
		if _, errs := s.Add(defs[i]); errs != nil {
			return nil, errs.prefixed(fmt.Sprintf("labels[%d].", i))
		}
	}

	return s, nil
}

// Add validates candidate against the schema and appends it when accepted.
func (s *Schema) Add(candidate models.LabelDefinition) (models.LabelDefinition, FieldErrors) {
	def, errs := ValidateDefinition(candidate, s.defs)
	if errs != nil {
		return models.LabelDefinition{}, errs
	}

	s.index[def.Name] = len(s.defs)
	s.defs = append(s.defs, def)

	return def, nil
}

// Len returns the number of definitions.
func (s *Schema) Len() int {
	return len(s.defs)
}

// Definitions returns a copy of all definitions in schema order.
func (s *Schema) Definitions() []models.LabelDefinition {
	out := make([]models.LabelDefinition, len(s.defs))
	copy(out, s.defs)

	return out
}

// Lookup returns the definition named name.
func (s *Schema) Lookup(name string) (models.LabelDefinition, bool) {
	i, ok := s.index[name]
	if !ok {
		return models.LabelDefinition{}, false
	}

	return s.defs[i], true
}

// Boolean returns the boolean definitions in schema order.
func (s *Schema) Boolean() []models.LabelDefinition {
	return s.filter(models.VariantBoolean)
}

// Numerical returns the numerical definitions in schema order.
func (s *Schema) Numerical() []models.LabelDefinition {
	return s.filter(models.VariantNumerical)
}

func (s *Schema) filter(v models.Variant) []models.LabelDefinition {
	var out []models.LabelDefinition

	for i := range s.defs {
		if s.defs[i].Variant == v {
			out = append(out, s.defs[i])
		}
	}

	return out
}

// CheckValues verifies a label map about to be stored: every key must name a
// label of the schema and every value must be legal for that label.
// Errors wrap models.ErrInvalidLabel.
func (s *Schema) CheckValues(labels map[string]float64) error {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		value := labels[name]

		def, ok := s.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: label %q is not defined for this dataset", models.ErrInvalidLabel, name)
		}

		if def.Accepts(value) {
			continue
		}

		if def.IsNumerical() {
			minimum, maximum, _ := def.Bounds()

			return fmt.Errorf("%w: value %g of label %q must be within range (%g, %g)",
				models.ErrInvalidLabel, value, name, minimum, maximum)
		}

		return fmt.Errorf("%w: value %g of label %q must be either 0 or 1", models.ErrInvalidLabel, value, name)
	}

	return nil
}
