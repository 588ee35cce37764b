package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Terms look like "Su25" or "Fall 2025"; anything short and printable is
// accepted, the rule only rejects junk that would break list sorting.
var termPattern = regexp.MustCompile(`^[A-Za-z0-9 ]{2,20}$`)

// BusinessValidator wraps go-playground/validator with the domain rules of
// the course service.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

func (bv *BusinessValidator) registerBusinessRules() {
	_ = bv.validate.RegisterValidation("course_term", func(fl validator.FieldLevel) bool {
		return termPattern.MatchString(fl.Field().String())
	})
}

// Validate validates a struct's tags and converts failures into
// ValidationErrors.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Message: err.Error()}}
	}

	var errors ValidationErrors
	for _, fieldErr := range fieldErrs {
		errors = append(errors, ValidationError{
			Field:   fieldErr.Field(),
			Message: bv.errorMessage(fieldErr),
			Value:   fieldErr.Value(),
			Rule:    fieldErr.Tag(),
		})
	}
	return errors
}

func (bv *BusinessValidator) errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "course_term":
		return "is not a valid term"
	default:
		return fmt.Sprintf("failed rule %q", err.Tag())
	}
}
