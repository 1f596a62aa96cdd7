package validator

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects field problems of one request. Handlers render it
// as a 422 with one detail per field.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keeps the first message reported for each field.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := result[err.Field]; !seen {
			result[err.Field] = err.Message
		}
	}
	return result
}

// IsEmpty reports whether s is blank after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	return t, err == nil
}

// ParseMonth parses a payroll period in YYYY-MM form.
func ParseMonth(s string) (time.Time, bool) {
	t, err := time.Parse(MonthLayout, s)
	return t, err == nil
}

// NormalizePagination applies the default limit and rejects out-of-range values.
func NormalizePagination(limit, offset *int) ValidationErrors {
	var errs ValidationErrors

	switch {
	case *limit < 0:
		errs = append(errs, ValidationError{Field: "limit", Message: "limit must be a positive number"})
	case *limit == 0:
		*limit = DefaultLimit
	case *limit > MaxLimit:
		errs = append(errs, ValidationError{Field: "limit", Message: fmt.Sprintf("limit must not exceed %d", MaxLimit)})
	}
	if *offset < 0 {
		errs = append(errs, ValidationError{Field: "offset", Message: "offset must not be negative"})
	}
	return errs
}
