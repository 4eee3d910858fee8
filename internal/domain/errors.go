package domain

import "fmt"

// MappingError reports a malformed or missing field in an upstream payload.
// It aborts the pipeline for the affected job and is surfaced to the
// orchestrator as a business failure whose description names the violated
// field.
type MappingError struct {
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed payload: missing or invalid field %q", e.Field)
	}
	return fmt.Sprintf("malformed payload: field %q: %s", e.Field, e.Reason)
}

func newMappingError(field, reason string) *MappingError {
	return &MappingError{Field: field, Reason: reason}
}
