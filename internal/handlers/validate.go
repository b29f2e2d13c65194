package handlers

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError names one invalid input field in a 422 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validator accumulates declarative field checks. Handlers run every rule
// and return all failures at once.
type validator struct {
	errors []FieldError
}

func (v *validator) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, FieldError{Field: field, Message: field + " is required"})
	}
}

func (v *validator) email(field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if !emailPattern.MatchString(value) {
		v.errors = append(v.errors, FieldError{Field: field, Message: field + " must be a valid email address"})
	}
}

func (v *validator) minLen(field, value string, min int) {
	if value == "" {
		return
	}
	if len(value) < min {
		v.errors = append(v.errors, FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, min)})
	}
}

func (v *validator) nonNegative(field string, value float64) {
	if value < 0 {
		v.errors = append(v.errors, FieldError{Field: field, Message: field + " must not be negative"})
	}
}

func (v *validator) valid() bool {
	return len(v.errors) == 0
}
