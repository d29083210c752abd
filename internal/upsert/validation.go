// =============================================================================
// OC Consolidator - Payload Validation
// =============================================================================
//
// Payloads are re-validated before submission. The extractors already drop
// rows without an order number, supplier or positive amount, but payloads
// can also arrive through the HTTP API, so the rules are enforced again here.
//
// ERROR HANDLING:
//   - Errors are collected per payload, never thrown
//   - A payload with any error becomes a Failed outcome
//   - The rest of the batch is unaffected
//
// =============================================================================

package upsert

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is one failed rule on one payload.
type ValidationError struct {
	// Field is the JSON name of the offending field.
	Field string

	// Rule is the validator tag that failed.
	Rule string

	// Value is the offending value, stringified.
	Value string

	// Message is a human-readable description.
	Message string

	// OrderNumber identifies the payload, when it has one.
	OrderNumber string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks payloads against their struct tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator that reports JSON field names and
// compares decimal amounts numerically.
func NewValidator() *Validator {
	v := validator.New()
	RegisterTypes(v)
	return &Validator{validate: v}
}

// RegisterTypes prepares v for payload structs: field errors carry JSON
// names and decimal.Decimal values validate as float64.
func RegisterTypes(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// Validate returns every rule violation of payload, or nil.
func (v *Validator) Validate(payload OrderPayload) []*ValidationError {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []*ValidationError{{
			Field:       "payload",
			Rule:        "struct",
			Message:     err.Error(),
			OrderNumber: payload.OrderNumber,
		}}
	}

	errs := make([]*ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{
			Field:       fieldPath(fe),
			Rule:        fe.Tag(),
			Value:       fmt.Sprint(fe.Value()),
			Message:     ruleMessage(fe),
			OrderNumber: payload.OrderNumber,
		})
	}
	return errs
}

// =============================================================================
// FORMATTING
// =============================================================================

// Summarize joins the messages of errs into one line, suitable for an
// outcome's error message.
func Summarize(errs []*ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errs: The validation errors to format.
//
// RETURNS:
//   - A numbered listing of all errors.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errs)))
	for i, e := range errs {
		order := e.OrderNumber
		if order == "" {
			order = "(no order number)"
		}
		builder.WriteString(fmt.Sprintf("%d. %s: %s (value: '%s')\n", i+1, order, e.Error(), e.Value))
	}
	return builder.String()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// fieldPath drops the struct name from the namespace: "lines[0].cost_center_code".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return "is invalid"
}
