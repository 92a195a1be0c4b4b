package dispatch

import "errors"

// Domain-specific errors for the dispatch package.
var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidArguments = errors.New("invalid arguments")
)
