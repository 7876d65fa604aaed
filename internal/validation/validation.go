// Package validation checks the structure of contact form submissions.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/mathbymoves/backend/internal/model"
)

// MismatchMessage is returned when email and confirmEmail differ.
const MismatchMessage = "Email addresses do not match. Please check and try again."

// Error lists the fields that failed validation.
// Message holds the text for the first failing field in form order.
type Error struct {
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

// Validator wraps a go-playground validator configured for form payloads.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator that reports JSON field names and knows the
// notblank tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank rejects whitespace-only names that required lets through.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{v: v}
}

// EmailsMatch reports whether the two addresses are identical.
func EmailsMatch(s *model.ContactSubmission) bool {
	return s.Email == s.ConfirmEmail
}

// Validate returns nil or an *Error describing every failing field.
func (v *Validator) Validate(s *model.ContactSubmission) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := out.Fields[name]; seen {
			continue
		}
		msg := messageFor(fe)
		out.Fields[name] = msg
		if out.Message == "" {
			out.Message = msg
		}
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "firstName":
		return "First name is required"
	case "lastName":
		return "Last name is required"
	case "email", "confirmEmail":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Please enter a valid email address"
	case "subject":
		return "Please select a subject"
	case "message":
		switch fe.Tag() {
		case "min":
			return "Please provide a more detailed message (minimum 20 characters)."
		case "max":
			return "Message is too long. Please keep it under 2000 characters."
		default:
			return "Message is required"
		}
	}
	return "Invalid value"
}
