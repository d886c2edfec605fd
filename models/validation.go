package models

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError represents a validation error with field and message
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Validate checks a UsageRecord before it enters an aggregation tree.
// Empty vendor, product and organization are legal: they come from
// directory misses and are grouped under an empty key.
func (r *UsageRecord) Validate() error {
	if strings.TrimSpace(r.Project) == "" {
		return ValidationError{Field: "Project", Message: "project cannot be empty"}
	}

	if math.IsNaN(r.DurationHours) || math.IsInf(r.DurationHours, 0) {
		return ValidationError{Field: "DurationHours", Message: "duration must be a finite number"}
	}

	if r.DurationHours < 0 {
		return ValidationError{Field: "DurationHours", Message: "duration cannot be negative"}
	}

	return nil
}

// Describe identifies the record in diagnostics
func (r *UsageRecord) Describe() string {
	var b strings.Builder
	if r.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", r.Row)
	}
	fmt.Fprintf(&b, "user=%q", r.Username)
	if r.Email != "" {
		fmt.Fprintf(&b, " email=%q", r.Email)
	}
	fmt.Fprintf(&b, " feature=%q", r.Feature)
	return b.String()
}
