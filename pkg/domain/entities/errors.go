package entities

import "errors"

var (
	// ErrDataUnavailable is returned when the target (date, line) has no plan entries.
	// It is the only condition that aborts a reallocation run.
	ErrDataUnavailable = errors.New("no plan data for target")

	// ErrInsufficientData is returned when an item has no date series to analyze
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMalformedLocation is returned when a "date_line" location cannot be parsed
	ErrMalformedLocation = errors.New("malformed location")

	// ErrUnknownLine is returned when a line has no configured capacity
	ErrUnknownLine = errors.New("unknown line")

	// ErrInvalidConfig is returned when configuration fails validation
	ErrInvalidConfig = errors.New("invalid configuration")
)
