package service

import "errors"

// ErrNotMember is returned when the caller is not on the group's roster.
var ErrNotMember = errors.New("not a member of this group")

// ValidationError rejects a request before anything is persisted:
// non-positive amounts, self-settlement, amounts exceeding the currently
// known outstanding debt. Retrying the same request will fail the same way.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// ConflictError signals that the caller's view of a settlement is stale: a
// transition raced against another, targeted a terminal state, or came from
// the wrong party. The caller should refetch state rather than retry.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}
