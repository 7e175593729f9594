// Package labelschema validates label definitions and holds a dataset's
// ordered label schema.
package labelschema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/labelr/labelr/internal/models"
)

// FieldErrors maps a field name to the single message describing why it was rejected.
type FieldErrors map[string]string

// Error implements error with fields in sorted order.
func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}

	return "invalid label definition: " + strings.Join(parts, "; ")
}

// add records msg for field unless the field already has a message.
func (e FieldErrors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// prefixed returns a copy with every key prefixed, e.g. "labels[2].".
func (e FieldErrors) prefixed(prefix string) FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[prefix+k] = v
	}

	return out
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("labelschema: registering notblank: %v", err))
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}

	return name
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// identityRules are checked for every candidate.
type identityRules struct {
	Name    string         `json:"name" validate:"notblank"`
	Variant models.Variant `json:"variant" validate:"oneof=boolean numerical"`
}

// rangeRules are checked for numerical candidates only. Authoring bounds are [-10, 10].
type rangeRules struct {
	Minimum  *float64 `json:"minimum" validate:"required,gte=-10"`
	Maximum  *float64 `json:"maximum" validate:"required,lte=10"`
	Interval *float64 `json:"interval" validate:"required,gt=0"`
}

// ValidateDefinition checks candidate against the definitions already accepted
// into a schema. Names are compared exactly as given, case and whitespace
// included. It returns the normalized definition, or the per-field
// messages when any rule fails. It has no side effects.
func ValidateDefinition(candidate models.LabelDefinition, existing []models.LabelDefinition) (models.LabelDefinition, FieldErrors) {
	errs := FieldErrors{}

	def := models.LabelDefinition{
		Name:    candidate.Name,
		Variant: candidate.Variant,
	}

	collect(errs, validate.Struct(identityRules{Name: def.Name, Variant: def.Variant}))

	if def.Name != "" {
		for i := range existing {
			if existing[i].Name == def.Name {
				errs.add("name", fmt.Sprintf("a label named %q already exists", def.Name))

				break
			}
		}
	}

	if def.Variant == models.VariantNumerical {
		def.Minimum = candidate.Minimum
		def.Maximum = candidate.Maximum
		def.Interval = candidate.Interval

		collect(errs, validate.Struct(rangeRules{Minimum: def.Minimum, Maximum: def.Maximum, Interval: def.Interval}))
		checkRange(errs, def)
	}

	if len(errs) > 0 {
		return models.LabelDefinition{}, errs
	}

	return def, nil
}

// checkRange applies the cross-field rules once both ends of the range are known.
func checkRange(errs FieldErrors, def models.LabelDefinition) {
	if def.Minimum == nil || def.Maximum == nil {
		return
	}

	minimum, maximum := *def.Minimum, *def.Maximum
	if minimum >= maximum {
		errs.add("minimum", "minimum must be less than maximum")
		errs.add("maximum", "maximum must be greater than minimum")

		return
	}

	if def.Interval != nil && *def.Interval > maximum-minimum {
		errs.add("interval", fmt.Sprintf("interval must not exceed the range width (%g)", maximum-minimum))
	}
}

// collect converts validator output into field messages.
func collect(errs FieldErrors, err error) {
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.add("_", err.Error())

		return
	}

	for _, fe := range verrs {
		errs.add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "oneof":
		return field + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return field + " is invalid"
	}
}
