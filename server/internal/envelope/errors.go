package envelope

import (
	"errors"
	"fmt"
)

var (
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrMalformedPayload        = errors.New("malformed payload")
	ErrConfigurationAbsent     = errors.New("configuration absent")
	ErrUnexpectedFault         = errors.New("unexpected fault")
)

// Unavailable wraps cause as an ErrCollaboratorUnavailable for the named source.
func Unavailable(source string, cause error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrCollaboratorUnavailable, cause)
}

// Malformed wraps cause as an ErrMalformedPayload for the named source.
func Malformed(source string, cause error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrMalformedPayload, cause)
}

// Fault converts a recovered panic value into an ErrUnexpectedFault.
func Fault(where string, recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("%s: %w: %w", where, ErrUnexpectedFault, err)
	}
	return fmt.Errorf("%s: %w: %v", where, ErrUnexpectedFault, recovered)
}

// Class returns a short name for the taxonomy class of err, or "" if err
// belongs to none of them. Used as a log attribute.
func Class(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfigurationAbsent):
		return "configuration_absent"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrCollaboratorUnavailable):
		return "collaborator_unavailable"
	case errors.Is(err, ErrUnexpectedFault):
		return "unexpected_fault"
	default:
		return ""
	}
}
