package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransitionDenied is returned when a status transition is not allowed
	// from the entity's current status
	ErrTransitionDenied = errors.New("status transition not allowed")

	// ErrStatusLocked is returned when the entity's current status does not
	// allow the requested modification
	ErrStatusLocked = errors.New("entity status does not allow modification")

	// ErrDuplicatePeriod is returned when an INTRASTAT declaration already
	// exists for the requested year/month/direction
	ErrDuplicatePeriod = errors.New("declaration already exists for this period")

	// ErrEmptyDeclaration is returned when a declaration without items is
	// marked ready for sending
	ErrEmptyDeclaration = errors.New("declaration has no items")

	// ErrExportNotReady is returned when a declaration export is requested
	// before the declaration is closed for editing
	ErrExportNotReady = errors.New("declaration is not ready for export")

	// ErrInsufficientStock is returned when a reservation or movement would
	// exceed the available (unreserved) stock
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrFileTooLarge is returned when an uploaded file exceeds the size limit
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

	// ErrOcrNotConfigured is returned when OCR submission is requested but no
	// provider is configured
	ErrOcrNotConfigured = errors.New("ocr provider not configured")
)
