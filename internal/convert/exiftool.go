// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/nefconv/internal/toolexec"
)

// Exiftool copies and reads metadata tags through the exiftool CLI.
type Exiftool struct {
	runner toolexec.Runner
	bin    string
}

// NewExiftool returns a metadata tool that invokes bin.
func NewExiftool(r toolexec.Runner, bin string) *Exiftool {
	return &Exiftool{runner: r, bin: bin}
}

// CopyTags copies every tag from src onto dst, replacing dst's metadata in
// place without leaving an "_original" backup.
func (e *Exiftool) CopyTags(ctx context.Context, src, dst string) error {
	if _, err := e.runner.Run(ctx, e.bin, "-TagsFromFile", src, "-all:all", "-overwrite_original", dst); err != nil {
		return fmt.Errorf("copying tags from %s to %s: %w", src, dst, err)
	}
	return nil
}

// CaptureTime returns src's DateTimeOriginal tag in exiftool's raw layout
// ("2006:01:02 15:04:05"), or "" when the tag is absent. exiftool's exit
// status is ignored here; only a tool that cannot be run is an error.
func (e *Exiftool) CaptureTime(ctx context.Context, src string) (string, error) {
	res, err := e.runner.Run(ctx, e.bin, "-DateTimeOriginal", "-s", "-s", "-s", src)
	if err != nil {
		var exitErr *toolexec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("reading DateTimeOriginal of %s: %w", src, err)
		}
	}
	return strings.TrimSpace(res.Stdout), nil
}

// SetFile sets a file's creation (birth) time with the macOS SetFile tool.
type SetFile struct {
	runner toolexec.Runner
	bin    string
}

// NewSetFile returns a creation-time setter that invokes bin.
func NewSetFile(r toolexec.Runner, bin string) *SetFile {
	return &SetFile{runner: r, bin: bin}
}

// SetCreationTime applies formatted, in SetFile's "01/02/2006 03:04:05 PM"
// layout, as path's creation time.
func (s *SetFile) SetCreationTime(ctx context.Context, path, formatted string) error {
	if _, err := s.runner.Run(ctx, s.bin, "-d", formatted, path); err != nil {
		return fmt.Errorf("setting creation time of %s: %w", path, err)
	}
	return nil
}
