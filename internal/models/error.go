package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Lead pipeline errors
	ErrRateLimited   = errors.New("too many submission attempts")
	ErrInvalidStatus = errors.New("invalid lead status")
	ErrVisaRequired  = errors.New("at least one visa category is required")

	// Resume upload errors
	ErrInvalidFileType = errors.New("invalid resume file type")
	ErrFileTooLarge    = errors.New("resume file too large")
)
