package core

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a lifecycle event is applied in a
// status that does not permit it.
var ErrInvalidTransition = errors.New("invalid transfer transition")

// TransferEvent is an action attempted against a transfer's lifecycle.
type TransferEvent string

const (
	// EventSubmit moves a draft into the validation queue.
	EventSubmit TransferEvent = "submit"
	// EventApprove and EventReject are the two outcomes of validation.
	EventApprove TransferEvent = "approve"
	EventReject  TransferEvent = "reject"
	// EventDispatch marks an approved transfer as physically in transit.
	EventDispatch TransferEvent = "dispatch"
	// EventReceivePartial records receipt of some, but not all, items.
	EventReceivePartial TransferEvent = "receive-partial"
	// EventReceiveAll records receipt of every outstanding item.
	EventReceiveAll TransferEvent = "receive-all"
	// EventCancel abandons a transfer before completion.
	EventCancel TransferEvent = "cancel"
)

// transitions is the single authority for the transfer lifecycle. Any
// (status, event) pair not present here is invalid.
var transitions = map[TransferStatus]map[TransferEvent]TransferStatus{
	StatusDraft: {
		EventSubmit: StatusAwaitingValidation,
		EventCancel: StatusCancelled,
	},
	StatusPending: {
		EventApprove: StatusApproved,
		EventReject:  StatusRejected,
		EventCancel:  StatusCancelled,
	},
	StatusAwaitingValidation: {
		EventApprove: StatusApproved,
		EventReject:  StatusRejected,
		EventCancel:  StatusCancelled,
	},
	StatusApproved: {
		EventDispatch: StatusInTransit,
		EventCancel:   StatusCancelled,
	},
	StatusInTransit: {
		EventReceivePartial: StatusPartiallyReceived,
		EventReceiveAll:     StatusCompleted,
		EventCancel:         StatusCancelled,
	},
	StatusPartiallyReceived: {
		EventReceivePartial: StatusPartiallyReceived,
		EventReceiveAll:     StatusCompleted,
		EventCancel:         StatusCancelled,
	},
}

// Transition returns the status that results from applying event to the
// given status, or an error if the event is not permitted. Terminal
// statuses (completed, cancelled, rejected) accept no events.
func Transition(status TransferStatus, event TransferEvent) (TransferStatus, error) {
	events, ok := transitions[status]
	if !ok {
		return "", fmt.Errorf("%w: status %q is terminal", ErrInvalidTransition, status)
	}
	next, ok := events[event]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a transfer in status %q", ErrInvalidTransition, event, status)
	}
	return next, nil
}

// CanEdit reports whether item, route, and date mutation is permitted.
// Editing never changes status.
func CanEdit(status TransferStatus) bool {
	switch status {
	case StatusDraft, StatusApproved, StatusInTransit, StatusPartiallyReceived:
		return true
	}
	return false
}

// CanValidate reports whether the transfer is waiting on an owner decision.
func CanValidate(status TransferStatus) bool {
	return status == StatusAwaitingValidation || status == StatusPending
}

// IsTerminal reports whether no further mutation is permitted.
func IsTerminal(status TransferStatus) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the nine enumerated statuses.
func ValidStatus(s TransferStatus) bool {
	switch s {
	case StatusDraft, StatusPending, StatusAwaitingValidation, StatusApproved,
		StatusInTransit, StatusPartiallyReceived, StatusCompleted,
		StatusCancelled, StatusRejected:
		return true
	}
	return false
}
