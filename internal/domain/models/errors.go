package models

import "fmt"

// MissingArtifactError reports that a capability's trained artifact or baseline is not loaded.
type MissingArtifactError struct {
	Artifact string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("%s not loaded", e.Artifact)
}

// UnknownTypeError reports an equipment type with no baseline or forecaster.
type UnknownTypeError struct {
	Capability string
	Type       string
}

func (e *UnknownTypeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: equipment type is required", e.Capability)
	}
	return fmt.Sprintf("%s: unknown equipment type %q", e.Capability, e.Type)
}

// NotFoundError reports a lookup key with no data behind it.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s for %q", e.Kind, e.Key)
}

// InvalidInputError reports a malformed request value. Field names the offending input.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewInvalidInput(field, format string, a ...interface{}) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, a...)}
}
