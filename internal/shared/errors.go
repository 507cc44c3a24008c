package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrNotFound         = fmt.Errorf("record not found")
	ErrSongNotFound     = fmt.Errorf("song %w", ErrNotFound)
	ErrSongbookNotFound = fmt.Errorf("songbook %w", ErrNotFound)
	ErrEntryNotFound    = fmt.Errorf("song entry %w", ErrNotFound)
	ErrAlreadyRequested = fmt.Errorf("song already requested")
	ErrValidation       = fmt.Errorf("validation failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrInvalidSongFile = fmt.Errorf("invalid song file")
)
