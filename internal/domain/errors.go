package domain

import "errors"

// Domain errors for the production case inventory
var (
	// ErrEmptyCaseNumber is returned when a case number is empty after sanitization
	ErrEmptyCaseNumber = errors.New("case number is empty after sanitization")

	// ErrInvalidQuantity is returned when a case quantity is negative or not finite
	ErrInvalidQuantity = errors.New("invalid case quantity")

	// ErrCaseNotFound is returned when a case does not exist under a shipment
	ErrCaseNotFound = errors.New("case not found")

	// ErrOverConsumption is returned when requested lines exceed the remaining balance
	ErrOverConsumption = errors.New("requested lines exceeds remaining balance")

	// ErrJobFinished is returned on an attempt to re-finish a terminal import job
	ErrJobFinished = errors.New("import job already reached a terminal status")

	// ErrEmptyImport is returned when an import payload contains no shipments
	ErrEmptyImport = errors.New("import payload contains no shipments")
)
