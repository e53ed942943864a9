// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress renders the live batch progress indicator and keeps
// per-file status lines from tearing it.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Unit is the noun shown next to the item rate.
const Unit = "file"

// Bar is a count/total progress indicator drawn on one writer with status
// lines printed to another. It satisfies convert.Reporter.
type Bar struct {
	bar     *progressbar.ProgressBar
	out     io.Writer
	visible bool
}

// New returns a Bar for total items. The indicator is drawn on barW only
// when visible is true; status lines always go to out.
func New(total int, label string, out, barW io.Writer, visible bool) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(barW),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(Unit),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(barW)
		}),
	)
	return &Bar{bar: bar, out: out, visible: visible}
}

// Printf writes a status line above the indicator and redraws it.
func (b *Bar) Printf(format string, args ...any) {
	if b.visible {
		_ = b.bar.Clear()
	}
	fmt.Fprintf(b.out, format, args...)
	if b.visible {
		_ = b.bar.RenderBlank()
	}
}

// Advance moves the indicator forward by one item.
func (b *Bar) Advance() {
	_ = b.bar.Add(1)
}

// Finish completes the indicator.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
}

// IsTerminal reports whether f is attached to a terminal. The indicator is
// hidden when stderr is redirected so logs stay free of carriage returns.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
