package benchmark

import "errors"

var (
	// ErrInvalidState is returned when an operation is called while the
	// measurement stack or its top span is not in the required state.
	ErrInvalidState = errors.New("invalid measurement state")

	// ErrInvalidArgument is returned when a span count is not positive.
	ErrInvalidArgument = errors.New("invalid argument")
)
