package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Source errors. A failed remote call never leaves partial writes behind.
	ErrSourceUnavailable = fmt.Errorf("playlist source unavailable")

	// Store errors
	ErrNotFound          = fmt.Errorf("not found")
	ErrPlaylistNotFound  = fmt.Errorf("playlist %w", ErrNotFound)
	ErrIntegrityConflict = fmt.Errorf("integrity conflict")
	ErrInconsistent      = fmt.Errorf("inconsistent archive state")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
