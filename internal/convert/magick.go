// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"

	"github.com/pdiddy/nefconv/internal/toolexec"
)

// Magick converts raw files with ImageMagick's mogrify, which writes the
// derivative next to the input and silently replaces an existing one.
type Magick struct {
	runner toolexec.Runner
	bin    string
	format string
}

// NewMagick returns a converter that invokes bin ("magick" or "convert")
// to produce files in format.
func NewMagick(r toolexec.Runner, bin, format string) *Magick {
	return &Magick{runner: r, bin: bin, format: format}
}

// Convert writes OutputPath(input, format).
func (m *Magick) Convert(ctx context.Context, input string) error {
	if _, err := m.runner.Run(ctx, m.bin, "mogrify", "-format", m.format, input); err != nil {
		return fmt.Errorf("converting %s with %s: %w", input, m.bin, err)
	}
	return nil
}
