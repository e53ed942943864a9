// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package check validates that the external tools a conversion run depends
// on are installed, and renders the diagnostics printed by `nefconv check`.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/djherbis/times"

	"github.com/pdiddy/nefconv/internal/toolexec"
	"github.com/pdiddy/nefconv/pkg/types"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrConverterNotFound = errors.New("ImageMagick converter not found on PATH")
	ErrExiftoolNotFound  = errors.New("exiftool not found on PATH")
)

// CheckDeps verifies that the converter and the metadata tool resolve on
// PATH. The creation-time setter is not checked: it is only used on some
// platforms and its failures are handled per file.
func CheckDeps(r toolexec.Runner, cfg types.ConversionConfig) error {
	if _, err := r.LookPath(cfg.ConverterCommand()); err != nil {
		return fmt.Errorf("%w: %q (make sure ImageMagick is installed; use --use-magick for ImageMagick 7+)",
			ErrConverterNotFound, cfg.ConverterCommand())
	}
	if _, err := r.LookPath(cfg.MetadataTool); err != nil {
		return fmt.Errorf("%w: %q (make sure ExifTool is installed)", ErrExiftoolNotFound, cfg.MetadataTool)
	}
	return nil
}

// RunCheck prints the availability and version of each tool to w and
// returns false when a required tool is missing.
func RunCheck(ctx context.Context, r toolexec.Runner, cfg types.ConversionConfig, supportsCreationTime bool, w io.Writer) bool {
	ok := true

	conv := cfg.ConverterCommand()
	if line, found := toolVersion(ctx, r, conv, "-version"); found {
		fmt.Fprintf(w, "ok:      %s (%s)\n", conv, line)
	} else {
		fmt.Fprintf(w, "missing: %s\n", conv)
		ok = false
	}

	if line, found := toolVersion(ctx, r, cfg.MetadataTool, "-ver"); found {
		fmt.Fprintf(w, "ok:      %s (%s)\n", cfg.MetadataTool, line)
	} else {
		fmt.Fprintf(w, "missing: %s\n", cfg.MetadataTool)
		ok = false
	}

	if !supportsCreationTime {
		fmt.Fprintln(w, "skip:    creation time (not tracked on this platform)")
		return ok
	}
	if _, err := r.LookPath(cfg.CreationTimeTool); err != nil {
		fmt.Fprintf(w, "warning: %s not found; creation times will not be set\n", cfg.CreationTimeTool)
	} else {
		fmt.Fprintf(w, "ok:      %s\n", cfg.CreationTimeTool)
	}
	if !birthTimeReadable(os.TempDir()) {
		fmt.Fprintf(w, "warning: filesystem at %s does not report birth times\n", os.TempDir())
	}
	return ok
}

// toolVersion resolves name on PATH and returns the first line of its
// version output. A tool that resolves but fails to report a version is
// still considered present.
func toolVersion(ctx context.Context, r toolexec.Runner, name, flag string) (string, bool) {
	if _, err := r.LookPath(name); err != nil {
		return "", false
	}
	res, err := r.Run(ctx, name, flag)
	if err != nil {
		return "version unknown", true
	}
	line := strings.TrimSpace(res.Stdout)
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	if line == "" {
		line = "version unknown"
	}
	return line, true
}

// birthTimeReadable reports whether the filesystem holding path exposes a
// birth time through stat.
func birthTimeReadable(path string) bool {
	ts, err := times.Stat(path)
	if err != nil {
		return false
	}
	return ts.HasBirthTime()
}
