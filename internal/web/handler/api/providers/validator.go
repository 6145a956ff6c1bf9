package providers

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type (
	// FieldError describes one failed validation rule.
	FieldError struct {
		FailedField string `json:"field"`
		Tag         string `json:"tag"`
		Value       any    `json:"value"`
	}

	// ValidationResponse is the 400 body for invalid queries.
	ValidationResponse struct {
		Error  string       `json:"error"`
		Fields []FieldError `json:"fields"`
	}

	// XValidator validates query structs.
	XValidator struct {
		validator *validator.Validate
	}
)

// NewValidator returns an XValidator.
func NewValidator() XValidator {
	return XValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns one FieldError per failed rule, nil when data is valid.
func (v XValidator) Validate(data any) []FieldError {
	err := v.validator.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{FailedField: "", Tag: "invalid", Value: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Value:       fe.Value(),
		})
	}

	return out
}
