// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"

	"github.com/pdiddy/nefconv/pkg/types"
)

// Reporter receives per-file messages and progress ticks during a batch.
type Reporter interface {
	Printf(format string, args ...any)
	Advance()
	Finish()
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted   int
	Failed      int
	Warned      int
	Interrupted bool
	Files       []types.FileResult
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch runs every input through p in order. Per-file failures are
// reported and counted; they never stop the batch. Cancelling ctx stops the
// batch before the next file and marks the result Interrupted, including
// when the cancellation lands during the last file.
func ConvertBatch(ctx context.Context, p *Pipeline, inputs []string, rep Reporter) BatchResult {
	var result BatchResult
	for _, input := range inputs {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		res := p.Process(ctx, input)
		result.Files = append(result.Files, res)

		for _, w := range res.Warnings {
			rep.Printf("\nError %s\n", w)
		}
		if res.Err != nil {
			result.Failed++
			rep.Printf("\n%s\n", FailureMessage(res))
		} else {
			result.Converted++
			if len(res.Warnings) > 0 {
				result.Warned++
			}
			rep.Printf("Successfully processed: %s\n\n", res.Output)
		}
		rep.Advance()
	}
	if ctx.Err() != nil {
		result.Interrupted = true
	}
	rep.Finish()

	rep.Printf("Batch summary: %d converted, %d failed, %d with warnings (total: %d)\n",
		result.Converted, result.Failed, result.Warned, result.Total())
	return result
}

// FailureMessage renders the operator-facing line for a failed file.
func FailureMessage(res types.FileResult) string {
	var cause error = res.Err
	var se *StageError
	if errors.As(res.Err, &se) {
		cause = se.Err
	}
	switch {
	case res.FailedStage == types.StageConvert:
		return "Error converting " + res.Input + ": " + cause.Error()
	case res.FailedStage == types.StageMetadata:
		return "Error copying EXIF data for " + res.Output + ": " + cause.Error()
	case errors.Is(res.Err, ErrUnexpected):
		return "Unexpected error for " + res.Output + ": " + cause.Error()
	default:
		return "Error setting file times for " + res.Output + ": " + cause.Error()
	}
}
