package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/labelr/labelr/internal/labelschema"
	"github.com/labelr/labelr/internal/models"
)

// Errors returned by numerical label edits.
var (
	ErrUnknownLabel    = errors.New("unknown numerical label")
	ErrValueOutOfRange = errors.New("value out of range")
)

// EditBuffer holds the label edits for the sample on screen. It is rebuilt
// from the sample's stored labels whenever the sample or schema changes, so
// unsaved edits never carry over to another sample.
type EditBuffer struct {
	booleans   []string
	numericals []models.LabelDefinition
	checked    map[string]bool
	values     map[string]float64
}

// NewEditBuffer seeds a buffer from sample's stored labels. Absent boolean
// labels start unchecked and absent numerical labels start at 0. A nil
// sample yields an empty buffer over the schema.
func NewEditBuffer(schema *labelschema.Schema, sample *models.Sample) *EditBuffer {
	b := &EditBuffer{
		checked: make(map[string]bool),
		values:  make(map[string]float64),
	}

	if schema == nil {
		return b
	}

	var stored map[string]float64
	if sample != nil {
		stored = sample.Labels
	}

	for _, def := range schema.Boolean() {
		b.booleans = append(b.booleans, def.Name)
		b.checked[def.Name] = stored[def.Name] != 0
	}

	for _, def := range schema.Numerical() {
		b.numericals = append(b.numericals, def)
		b.values[def.Name] = stored[def.Name]
	}

	return b
}

// BooleanCount returns the number of boolean labels.
func (b *EditBuffer) BooleanCount() int {
	return len(b.booleans)
}

// Toggle flips the boolean label at 1-based position. It reports false and
// changes nothing when position is out of range.
func (b *EditBuffer) Toggle(position int) bool {
	if position < 1 || position > len(b.booleans) {
		return false
	}

	name := b.booleans[position-1]
	b.checked[name] = !b.checked[name]

	return true
}

// SetValue sets a numerical label. The value must lie within the label's range.
func (b *EditBuffer) SetValue(name string, value float64) error {
	def, ok := b.numerical(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}

	if !def.Accepts(value) {
		minimum, maximum, _ := def.Bounds()

		return fmt.Errorf("%w: %g not in [%g, %g]", ErrValueOutOfRange, value, minimum, maximum)
	}

	b.values[name] = value

	return nil
}

// Step moves a numerical label by steps intervals, clamped to its range.
func (b *EditBuffer) Step(name string, steps int) (float64, error) {
	def, ok := b.numerical(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}

	minimum, maximum, interval := def.Bounds()
	v := math.Min(maximum, math.Max(minimum, b.values[name]+float64(steps)*interval))
	b.values[name] = v

	return v, nil
}

func (b *EditBuffer) numerical(name string) (models.LabelDefinition, bool) {
	for _, def := range b.numericals {
		if def.Name == name {
			return def, true
		}
	}

	return models.LabelDefinition{}, false
}

// BooleanState returns a copy of the checked state per boolean label.
func (b *EditBuffer) BooleanState() map[string]bool {
	out := make(map[string]bool, len(b.checked))
	for k, v := range b.checked {
		out[k] = v
	}

	return out
}

// NumericalState returns a copy of the value per numerical label.
func (b *EditBuffer) NumericalState() map[string]float64 {
	out := make(map[string]float64, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}

	return out
}

// Merge produces the persist-ready label map: every boolean label as 1 or 0
// and every numerical label with its current value.
func (b *EditBuffer) Merge() map[string]float64 {
	out := make(map[string]float64, len(b.booleans)+len(b.numericals))

	for _, name := range b.booleans {
		if b.checked[name] {
			out[name] = 1
		} else {
			out[name] = 0
		}
	}

	for _, def := range b.numericals {
		out[def.Name] = b.values[def.Name]
	}

	return out
}
