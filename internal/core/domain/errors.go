package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPeriod indicates an unknown metric period was specified
	ErrInvalidPeriod = errors.New("invalid metric period")

	// ErrRunInProgress indicates a batch run is already executing
	ErrRunInProgress = errors.New("run already in progress")
)
