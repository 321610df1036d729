package services

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input (bad replay URL, unknown role,
// score out of range). Reported to the caller, never retried.
type ValidationError struct {
	Field       string
	Reason      string
	Suggestions []string
}

func (e *ValidationError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("invalid %s: %s (did you mean: %s?)", e.Field, e.Reason, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown ticket/player/guild.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidStateError reports an illegal transition. Mine distinguishes
// "already done by me" from "done by someone else" so callers can answer
// a repeated acknowledgment idempotently instead of failing it.
type InvalidStateError struct {
	Entity string
	ID     string
	State  string
	Op     string
	Mine   bool
}

func (e *InvalidStateError) Error() string {
	if e.Mine {
		return fmt.Sprintf("cannot %s %s %s: already done by you (state %s)", e.Op, e.Entity, e.ID, e.State)
	}
	return fmt.Sprintf("cannot %s %s %s in state %s", e.Op, e.Entity, e.ID, e.State)
}

// ConflictError reports a duplicate registration.
type ConflictError struct {
	Entity string
	Key    string
	State  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists for %s (status %s)", e.Entity, e.Key, e.State)
}
