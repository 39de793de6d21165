// Package validate checks form input before it is sent to the API and turns
// validator failures into messages fit for the terminal.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	otpPattern      = regexp.MustCompile(`^\d{6}$`)
)

// labels maps JSON field names to the words used in messages
var labels = map[string]string{
	"email":           "Email",
	"password":        "Password",
	"newPassword":     "Password",
	"confirmPassword": "Confirm password",
	"username":        "Username",
	"fullName":        "Full name",
	"otp":             "OTP",
	"name":            "Name",
	"description":     "Description",
	"price":           "Price",
	"categoryIds":     "Category",
	"spriteIds":       "Sprite",
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON names
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})

		v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		v.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
			return otpPattern.MatchString(fl.Field().String())
		})

		instance = v
	})
	return instance
}

// FieldError is one rejected field
type FieldError struct {
	Field   string
	Message string
}

// Error lists every rejected field of a form
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		messages = append(messages, field.Message)
	}
	return strings.Join(messages, "; ")
}

// Message returns the message for field, or "" when it passed
func (e *Error) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Struct validates v against its validate tags. Failures are returned as *Error.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{}
	seen := map[string]bool{}
	for _, fe := range fieldErrs {
		field := baseField(fe.Field())
		// One message per field, like the sign-up form shows
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Fields = append(out.Fields, FieldError{Field: field, Message: message(field, fe)})
	}
	return out
}

// baseField strips the index from slice element names ("categoryIds[2]")
func baseField(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

func message(field string, fe validator.FieldError) string {
	name := label(field)
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s is too long (max %s characters)", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "eqfield":
		return "Passwords don't match"
	case "username":
		return "Username can only contain letters, numbers, underscore, and hyphen"
	case "otp":
		return "OTP must be 6 digits"
	case "uuid":
		return fmt.Sprintf("%s must be a valid ID", name)
	case "gte":
		if fe.Param() == "0" {
			return name + " must not be negative"
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}
