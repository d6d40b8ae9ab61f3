package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// leadEmailPattern is deliberately loose: something@something.tld
var leadEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages match what the client sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("leademail", func(fl validator.FieldLevel) bool {
		return leadEmailPattern.MatchString(fl.Field().String())
	})

	return v
}

// ValidateRequest validates a request struct using go-playground/validator
// Returns a user-friendly error message if validation fails
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("validation failed: %s: %s", ve[0].Field(), formatValidationError(ve[0]))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "this field is required"
	case "email", "leademail":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

const msgMissingLeadFields = "Missing required fields: firstName, lastName, email, linkedin, country"

// leadFieldChecks is the order submission problems are reported in. Only
// the first failing check reaches the client.
var leadFieldChecks = []struct {
	field, tag, message string
}{
	{"email", "leademail", "Invalid email format"},
	{"linkedin", "url", "Please provide a valid LinkedIn or website URL"},
	{"firstName", "max", "First name is too long"},
	{"lastName", "max", "Last name is too long"},
	{"openInput", "max", "Additional information is too long (max 1000 characters)"},
}

// validateLeadSubmission returns the client message for the first problem
// with req, or "" when it is valid.
func validateLeadSubmission(req *SubmitLeadRequest) string {
	err := validate.Struct(req)
	if err == nil {
		if !req.Visa().Any() {
			return "Please select at least one visa category"
		}
		return ""
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "Invalid request body"
	}

	failed := make(map[string]string, len(ve))
	for _, fe := range ve {
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			return msgMissingLeadFields
		}
		failed[fe.Field()] = fe.Tag()
	}

	for _, check := range leadFieldChecks {
		if failed[check.field] == check.tag {
			return check.message
		}
	}
	return "Invalid request body"
}
