// Package domain provides domain-specific error definitions and utilities.
package domain

import (
	"errors"
	"fmt"
)

// File-related errors.
var (
	ErrFileNotFound = errors.New("file not found")
	ErrFileRead     = errors.New("file could not be read")
)

// Parse- and handle-related errors.
var (
	ErrParseFailed   = errors.New("source could not be parsed")
	ErrInvalidHandle = errors.New("unknown tree handle")
)

// Mutation errors.
var (
	ErrNodeNotFound              = errors.New("node not found")
	ErrInvalidInsertionPoint     = errors.New("invalid insertion point")
	ErrInvalidReplacementContext = errors.New("invalid replacement context")
	ErrModificationFailed        = errors.New("modification failed")
)

// Addressing errors.
var (
	ErrMalformedAddress         = errors.New("malformed node address")
	ErrInvalidSelectionStrategy = errors.New("unknown selection strategy")
	ErrInvalidIndentWidth       = errors.New("indent width must be positive")
)

// FileNotFoundError wraps ErrFileNotFound with the offending path.
func FileNotFoundError(path string) error {
	return fmt.Errorf("%w: %s", ErrFileNotFound, path)
}

// FileReadError wraps ErrFileRead with the path and the underlying cause.
func FileReadError(path string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrFileRead, path, cause)
}

// ParseError wraps ErrParseFailed with a description of what failed.
func ParseError(detail string) error {
	return fmt.Errorf("%w: %s", ErrParseFailed, detail)
}

// InvalidHandleError wraps ErrInvalidHandle with the handle value.
func InvalidHandleError(handle string) error {
	return fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
}

// NodeNotFoundError wraps ErrNodeNotFound with the address that failed to resolve.
func NodeNotFoundError(address string) error {
	return fmt.Errorf("%w: address %q", ErrNodeNotFound, address)
}

// InvalidInsertionPointError wraps ErrInvalidInsertionPoint with a reason.
func InvalidInsertionPointError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInsertionPoint, reason)
}

// InvalidReplacementContextError wraps ErrInvalidReplacementContext with a reason.
func InvalidReplacementContextError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidReplacementContext, reason)
}

// ModificationFailedError wraps ErrModificationFailed with a reason.
func ModificationFailedError(reason string) error {
	return fmt.Errorf("%w: %s", ErrModificationFailed, reason)
}
