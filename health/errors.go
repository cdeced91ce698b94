package health

import "errors"

var (
	// ErrCheckTimeout indicates a check did not finish within the
	// aggregator's sweep timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under the
	// requested name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
