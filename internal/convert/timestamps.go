// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/djherbis/times"
)

const (
	// captureLayout is exiftool's DateTimeOriginal layout. Fields may be
	// zero-padded or not.
	captureLayout = "2006:1:2 15:4:5"
	// creationLayout is the date layout SetFile -d accepts.
	creationLayout = "01/02/2006 03:04:05 PM"
)

// copyTimestamps applies src's access and modification times to dst and,
// where supported, sets dst's creation time from src's capture timestamp.
//
// A missing capture timestamp is skipped silently. An unparseable one is
// returned as a warning and leaves the file successful; the access and
// modification times stay applied either way. Panics are recovered into
// ErrUnexpected.
func (p *Pipeline) copyTimestamps(ctx context.Context, src, dst string) (warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	ts, err := times.Stat(src)
	if err != nil {
		return nil, wrapKind(ErrTimestamp, fmt.Errorf("reading times of %s: %w", src, err))
	}
	if err := os.Chtimes(dst, ts.AccessTime(), ts.ModTime()); err != nil {
		return nil, wrapKind(ErrTimestamp, err)
	}

	if !p.supportsCreationTime {
		return nil, nil
	}

	raw, err := p.metadata.CaptureTime(ctx, src)
	if err != nil {
		return nil, wrapKind(ErrTimestamp, err)
	}
	if raw == "" {
		return nil, nil
	}
	formatted, err := FormatCreationTime(raw)
	if err != nil {
		return []string{fmt.Sprintf("parsing DateTimeOriginal for %s: %v", dst, err)}, nil
	}
	if err := p.creationTime.SetCreationTime(ctx, dst, formatted); err != nil {
		return nil, wrapKind(ErrTimestamp, err)
	}
	return nil, nil
}

// FormatCreationTime reformats an exiftool capture timestamp
// ("2023:07:04 14:30:15") into SetFile's layout ("07/04/2023 02:30:15 PM").
func FormatCreationTime(raw string) (string, error) {
	t, err := time.Parse(captureLayout, raw)
	if err != nil {
		return "", err
	}
	return t.Format(creationLayout), nil
}
