package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented means a library does not provide the requested
	// element, cell, degree or variant.
	ErrNotImplemented        = errors.New("not implemented")
	ErrVariantNotImplemented = fmt.Errorf("variant %w", ErrNotImplemented)
	// ErrLibraryMissing means the library is not installed.
	ErrLibraryMissing = errors.New("library not installed")
)
