// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns raw camera files into derivative images. Each file
// moves through three stages, convert, copy metadata and copy timestamps,
// and a failure in any stage stops that file without affecting the rest of
// the batch. Image and metadata work is delegated to ImageMagick and
// exiftool.
package convert

import (
	"context"
	"runtime"

	"github.com/pdiddy/nefconv/internal/toolexec"
	"github.com/pdiddy/nefconv/pkg/types"
)

// Options configures a Pipeline.
type Options struct {
	// Converter is the ImageMagick binary ("magick" or "convert").
	Converter string

	// MetadataTool is the exiftool binary.
	MetadataTool string

	// CreationTimeTool is the birth-time setter binary (SetFile).
	CreationTimeTool string

	// OutputFormat is the derivative format and extension, without dot.
	OutputFormat string

	// SupportsCreationTime enables copying the capture timestamp into the
	// output's birth time. Resolve it once with SupportsCreationTime().
	SupportsCreationTime bool
}

// SupportsCreationTime reports whether the current platform tracks a file
// creation time separate from the modification time and can set it.
func SupportsCreationTime() bool {
	return runtime.GOOS == "darwin"
}

// Pipeline runs the per-file stages. It holds no per-file state, so one
// Pipeline serves a whole batch.
type Pipeline struct {
	converter            *Magick
	metadata             *Exiftool
	creationTime         *SetFile
	format               string
	supportsCreationTime bool
}

// NewPipeline wires the tool adapters around r.
func NewPipeline(r toolexec.Runner, opts Options) *Pipeline {
	return &Pipeline{
		converter:            NewMagick(r, opts.Converter, opts.OutputFormat),
		metadata:             NewExiftool(r, opts.MetadataTool),
		creationTime:         NewSetFile(r, opts.CreationTimeTool),
		format:               opts.OutputFormat,
		supportsCreationTime: opts.SupportsCreationTime,
	}
}

// Process converts input, copies its metadata onto the output and then its
// timestamps. It never panics or returns early without a result: the
// returned FileResult records the last state reached and, on failure, the
// failing stage and cause.
func (p *Pipeline) Process(ctx context.Context, input string) types.FileResult {
	res := types.FileResult{
		Input:  input,
		Output: OutputPath(input, p.format),
		State:  types.StateStart,
	}

	if err := p.converter.Convert(ctx, input); err != nil {
		return fail(res, types.StageConvert, input, ErrConversion, err)
	}
	res.State = types.StateConverted

	if err := p.metadata.CopyTags(ctx, input, res.Output); err != nil {
		return fail(res, types.StageMetadata, res.Output, ErrMetadataCopy, err)
	}
	res.State = types.StateMetadataCopied

	warnings, err := p.copyTimestamps(ctx, input, res.Output)
	res.Warnings = warnings
	if err != nil {
		return fail(res, types.StageTimestamps, res.Output, nil, err)
	}
	res.State = types.StateTimestampsCopied
	return res
}

// fail records a stage failure. A nil kind means err already wraps one.
func fail(res types.FileResult, stage types.Stage, path string, kind, err error) types.FileResult {
	if kind != nil {
		err = wrapKind(kind, err)
	}
	res.FailedStage = stage
	res.Err = &StageError{Stage: stage, Path: path, Err: err}
	return res
}
