// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"

	"github.com/pdiddy/nefconv/pkg/types"
)

// Error kinds. Startup errors abort the run; the rest are per file and are
// wrapped in a *StageError.
var (
	ErrInvalidInput = errors.New("invalid input directory")
	ErrConversion   = errors.New("conversion failed")
	ErrMetadataCopy = errors.New("metadata copy failed")
	ErrTimestamp    = errors.New("timestamp copy failed")
	ErrUnexpected   = errors.New("unexpected error")
)

// StageError records which pipeline stage failed for which file.
type StageError struct {
	Stage types.Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func wrapKind(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
