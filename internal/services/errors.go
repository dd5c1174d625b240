package services

import "errors"

var (
	// ErrInvalidRange is returned when an end date precedes the start date.
	ErrInvalidRange = errors.New("end date is before start date")

	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrVariableNotFound is returned for a name the catalog and the data
	// do not know.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrUnknownRegression is returned for a regression name outside the
	// standard set.
	ErrUnknownRegression = errors.New("unknown regression")

	// ErrTooFewVariables is returned when fewer than two variables remain
	// for a correlation.
	ErrTooFewVariables = errors.New("at least two variables are required")

	// ErrNoData is returned when the snapshot holds no rows for a request.
	ErrNoData = errors.New("no data loaded")

	// ErrFileNotFound is returned for a download whose file is missing.
	ErrFileNotFound = errors.New("file not found")
)
