package models

import "fmt"

// ValidationError reports the first missing or out-of-range field of a
// submitted record. Validation failures are never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
	}
	return "missing required field: " + e.Field
}

type InvalidRoleError struct{ Value string }

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("role must be %q or %q, got %q", RoleCloser, RoleProspector, e.Value)
}

type InvalidTeamError struct{ Value string }

func (e *InvalidTeamError) Error() string {
	return fmt.Sprintf("team must be %q or %q, got %q", TeamA, TeamB, e.Value)
}
