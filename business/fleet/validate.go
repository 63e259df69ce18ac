package fleet

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Biswayan2006/SIH2025-sub001/business/data/bus"
	"github.com/go-playground/validator/v10"
)

// envelopeValidator checks bus.UpdateEnvelope struct tags, reporting fields by their json names
var envelopeValidator = newEnvelopeValidator()

func newEnvelopeValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateUpdate checks update against the coordinate, count, speed and status constraints and against the
// fixed capacity of the vehicle it is meant for. Values are never clamped; the first violation is returned
// as *InvalidPayloadError.
func ValidateUpdate(update bus.UpdateEnvelope, capacity int) error {
	err := envelopeValidator.Struct(update)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return makeInvalidPayloadError(validationErrors[0])
		}
		return &InvalidPayloadError{Field: "payload", Constraint: err.Error()}
	}
	if update.CurrentPassengers != nil {
		err = envelopeValidator.Var(*update.CurrentPassengers, fmt.Sprintf("lte=%d", capacity))
		if err != nil {
			return &InvalidPayloadError{Field: "passengers", Constraint: fmt.Sprintf("lte=%d (capacity)", capacity)}
		}
	}
	return nil
}

// makeInvalidPayloadError names the offending field by its path below the envelope, "location.lat" for example
func makeInvalidPayloadError(fieldError validator.FieldError) *InvalidPayloadError {
	field := fieldError.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	constraint := fieldError.Tag()
	if fieldError.Param() != "" {
		constraint = constraint + "=" + fieldError.Param()
	}
	return &InvalidPayloadError{Field: field, Constraint: constraint}
}
