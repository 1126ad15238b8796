package scheduling

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the scheduling service. Handlers map them to
// HTTP status codes with errors.Is/As.
var (
	// ErrNotFound means the referenced equipment or schedule does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInterval means end <= start or a non-positive duration was
	// requested. Rejected before any store interaction.
	ErrInvalidInterval = errors.New("end datetime must be after start datetime")

	// ErrEquipmentNotSchedulable means the equipment exists but is inactive or
	// in a status that cannot take new schedules.
	ErrEquipmentNotSchedulable = errors.New("equipment not available for scheduling")

	// ErrNotesTooLong means the free-text notes exceed the bounded length.
	ErrNotesTooLong = errors.New("notes exceed 1000 characters")
)

// ConflictError is returned when creation is blocked by at least one
// error-severity overlap.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		if c.Severity == SeverityError {
			msgs = append(msgs, c.Message)
		}
	}
	return fmt.Sprintf("schedule conflicts detected: %s", strings.Join(msgs, "; "))
}

// InvalidTransitionError is returned for a status change the state machine
// does not permit.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid schedule status transition %s -> %s", e.From, e.To)
}
