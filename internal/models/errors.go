package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	// ErrArchiveRead means the installer archive could not be opened or
	// listed at all. Fatal for the aggregation of that installer.
	ErrArchiveRead ErrorType = iota

	// ErrExtraction means a single archive entry failed to extract.
	// Extraction of the remaining entries continues.
	ErrExtraction

	// ErrMalformedDescriptor means an extracted PackageInfo or
	// Distribution descriptor could not be parsed.
	ErrMalformedDescriptor

	ErrFileOp
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrArchiveRead:
		return "ArchiveRead"
	case ErrExtraction:
		return "Extraction"
	case ErrMalformedDescriptor:
		return "MalformedDescriptor"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// PatchGenError represents an error during installer metadata extraction
// or patch definition generation
type PatchGenError struct {
	Type      ErrorType
	Installer string
	Err       error
}

// Error implements the error interface
func (e *PatchGenError) Error() string {
	if e.Installer != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Installer, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *PatchGenError) Unwrap() error {
	return e.Err
}
