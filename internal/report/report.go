// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report records the outcome of a conversion run as a YAML file
// that can be kept alongside the converted images.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nefconv/internal/convert"
	"github.com/pdiddy/nefconv/pkg/types"
)

// Summary holds the batch counters.
type Summary struct {
	Total       int  `yaml:"total"`
	Converted   int  `yaml:"converted"`
	Failed      int  `yaml:"failed"`
	Warned      int  `yaml:"with_warnings"`
	Interrupted bool `yaml:"interrupted,omitempty"`
}

// File is the per-file entry of a report.
type File struct {
	Input       string              `yaml:"input"`
	Output      string              `yaml:"output"`
	State       types.PipelineState `yaml:"state"`
	FailedStage types.Stage         `yaml:"failed_stage,omitempty"`
	Error       string              `yaml:"error,omitempty"`
	Warnings    []string            `yaml:"warnings,omitempty"`
}

// Report describes one run.
type Report struct {
	RunID      string    `yaml:"run_id"`
	Root       string    `yaml:"root"`
	Converter  string    `yaml:"converter"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Summary    Summary   `yaml:"summary"`
	Files      []File    `yaml:"files,omitempty"`
}

// New builds a Report from a finished batch.
func New(root, converter string, started, finished time.Time, result convert.BatchResult) Report {
	r := Report{
		RunID:      uuid.NewString(),
		Root:       root,
		Converter:  converter,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Summary: Summary{
			Total:       result.Total(),
			Converted:   result.Converted,
			Failed:      result.Failed,
			Warned:      result.Warned,
			Interrupted: result.Interrupted,
		},
	}
	for _, fr := range result.Files {
		f := File{
			Input:       fr.Input,
			Output:      fr.Output,
			State:       fr.State,
			FailedStage: fr.FailedStage,
			Warnings:    fr.Warnings,
		}
		if fr.Err != nil {
			f.Error = fr.Err.Error()
		}
		r.Files = append(r.Files, f)
	}
	return r
}

// Write marshals r to path, creating parent directories as needed.
func Write(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
