package imaging

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImageData means the provider answered without a usable image.
	ErrNoImageData = errors.New("provider returned no image data")
	// ErrNoSuggestions means the assistant answered without usable prompts.
	ErrNoSuggestions = errors.New("assistant returned no prompts")
)

// ValidationError is caused by bad caller input. Its message is safe to
// show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a failed or unusable call to the external model.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return "provider " + e.Op + ": " + e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// StorageError wraps a failed store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }
