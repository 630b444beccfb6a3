package hub

import "github.com/pkg/errors"

var (
	// ErrNotAttached signals a publish attempted outside the Attached
	// state. This is a programmer error, not a transient condition.
	ErrNotAttached = errors.New("hub is not attached")

	// ErrAlreadyAttached signals an attach while a live transport handle
	// already exists.
	ErrAlreadyAttached = errors.New("hub is already attached")

	// ErrDiscarded signals an operation on a hub whose UI has been
	// permanently discarded.
	ErrDiscarded = errors.New("hub is discarded")

	// ErrUINotFound signals a revival with no live UI matching the hub's
	// declared kind. The session cannot proceed without one.
	ErrUINotFound = errors.New("no live ui matches hub")
)
