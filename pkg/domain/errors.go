package domain

import "errors"

// ErrDuplicateID is returned when a snapshot holds the same identity twice.
var ErrDuplicateID = errors.New("duplicate id in snapshot")

// ErrListNotFound is returned when a list ID cannot be found in the store.
var ErrListNotFound = errors.New("list not found")

// ErrItemNotFound is returned when an event targets a room that is not in the list.
var ErrItemNotFound = errors.New("item not found")

// ErrInvalidTransition is returned when a transition cannot be applied to a list.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInvalidRange is returned for a stationary range outside the list bounds.
var ErrInvalidRange = errors.New("invalid range")

// ErrUnknownEvent is returned for an interaction type the dispatcher does not know.
var ErrUnknownEvent = errors.New("unknown event type")

// ErrRenderFailed is returned when an attached renderer rejects a transition.
var ErrRenderFailed = errors.New("render failed")
