// Package errors defines the error taxonomy of the assessment engine
// and the RFC 7807 style responses used by the HTTP surface.
//
// The taxonomy follows a strict propagation policy: only setup-time
// failures (missing reference tables, invalid region registry) abort a
// run. Everything raised per combination is caught at the orchestrator
// boundary, logged and degraded to a zero-valued result.
package errors

import (
	"errors"
	"fmt"
)

// Identifier kinds for lookup failures.
const (
	KindResource = "resource"
	KindCountry  = "country"
)

// LookupError reports an identifier that matches neither a code nor a
// name in the reference data. It indicates malformed input; callers
// must not retry.
type LookupError struct {
	Kind       string
	Identifier string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q does not exist in the reference data", e.Kind, e.Identifier)
}

// NewLookupError creates a LookupError for the given identifier kind.
func NewLookupError(kind, identifier string) *LookupError {
	return &LookupError{Kind: kind, Identifier: identifier}
}

// IsLookup reports whether err is a LookupError.
func IsLookup(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// ValidationError reports malformed configuration or reference data: a
// region with unresolvable members, a production unit outside the
// recognized set, a template workbook with non-numeric cells.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrNoData marks a data gap: a missing year column, an empty trade
// slice, an absent country row. Data gaps are not hard errors; callers
// degrade to zero-valued results (or skip the row in the per-exporter
// sweep) and log at debug level.
var ErrNoData = errors.New("no data for the requested combination")
