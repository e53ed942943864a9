// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Invocation names of the ImageMagick converter.
const (
	ConverterMagick  = "magick"
	ConverterConvert = "convert"
)

// ConversionConfig holds settings for a batch conversion run. Fields are
// populated from defaults, the config file, NEFCONV_* environment variables
// and command-line flags, in increasing order of precedence.
type ConversionConfig struct {
	// UseMagick selects "magick" (ImageMagick 7+) instead of "convert".
	UseMagick bool `json:"use_magick" yaml:"use_magick" mapstructure:"use_magick"`

	// MetadataTool is the exiftool invocation name.
	MetadataTool string `json:"metadata_tool" yaml:"metadata_tool" mapstructure:"metadata_tool"`

	// CreationTimeTool sets file birth time on platforms that track it (SetFile on macOS).
	CreationTimeTool string `json:"creation_time_tool" yaml:"creation_time_tool" mapstructure:"creation_time_tool"`

	// InputExt is the raw file extension, matched case-insensitively (default ".nef").
	InputExt string `json:"input_ext" yaml:"input_ext" mapstructure:"input_ext"`

	// OutputFormat is the derivative format and extension, without dot (default "jpg").
	OutputFormat string `json:"output_format" yaml:"output_format" mapstructure:"output_format"`

	// Timeout bounds each external tool invocation. Zero waits indefinitely.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// ReportPath, when set, receives a YAML report of the run.
	ReportPath string `json:"report,omitempty" yaml:"report,omitempty" mapstructure:"report"`

	// Verbose enables debug logging of every tool invocation.
	Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConversionConfig returns the settings used when nothing overrides them.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		MetadataTool:     "exiftool",
		CreationTimeTool: "SetFile",
		InputExt:         ".nef",
		OutputFormat:     "jpg",
	}
}

// ConverterCommand returns the ImageMagick binary to invoke.
func (c ConversionConfig) ConverterCommand() string {
	if c.UseMagick {
		return ConverterMagick
	}
	return ConverterConvert
}

var (
	extPattern    = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)
	formatPattern = regexp.MustCompile(`^[a-z0-9]+$`)
)

// Validate reports configuration errors keyed by field name.
func (c ConversionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MetadataTool, validation.Required),
		validation.Field(&c.CreationTimeTool, validation.Required),
		validation.Field(&c.InputExt,
			validation.Required,
			validation.Match(extPattern).Error("must look like \".nef\""),
		),
		validation.Field(&c.OutputFormat,
			validation.Required,
			validation.Match(formatPattern).Error("must be a lower-case extension without dot"),
			validation.By(func(any) error {
				if strings.EqualFold("."+c.OutputFormat, c.InputExt) {
					return errors.New("must differ from input_ext")
				}
				return nil
			}),
		),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// PipelineState is the last state a file's pipeline reached.
type PipelineState string

const (
	StateStart            PipelineState = "start"
	StateConverted        PipelineState = "converted"
	StateMetadataCopied   PipelineState = "metadata_copied"
	StateTimestampsCopied PipelineState = "timestamps_copied"
)

// Stage names a pipeline step that can fail.
type Stage string

const (
	StageConvert    Stage = "convert"
	StageMetadata   Stage = "metadata"
	StageTimestamps Stage = "timestamps"
)

// FileResult is the outcome of running one input file through the pipeline.
type FileResult struct {
	// Input is the absolute path of the raw file.
	Input string `json:"input" yaml:"input"`

	// Output is the derived path of the converted file.
	Output string `json:"output" yaml:"output"`

	// State is the last state reached. StateTimestampsCopied means success.
	State PipelineState `json:"state" yaml:"state"`

	// FailedStage names the step that failed; empty on success.
	FailedStage Stage `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`

	// Err is the failure cause; nil on success.
	Err error `json:"-" yaml:"-"`

	// Warnings lists non-fatal problems, such as an unparseable capture timestamp.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// OK reports whether the file completed every stage.
func (r FileResult) OK() bool {
	return r.Err == nil && r.State == StateTimestampsCopied
}
