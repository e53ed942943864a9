// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nefconv/internal/check"
	"github.com/pdiddy/nefconv/internal/convert"
	"github.com/pdiddy/nefconv/internal/toolexec"
	"github.com/pdiddy/nefconv/pkg/types"
)

// stubRunner resolves only the tools in available and fakes their effects.
type stubRunner struct {
	available map[string]bool
	calls     []string
}

func (s *stubRunner) LookPath(file string) (string, error) {
	if s.available[file] {
		return "/usr/bin/" + file, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) (toolexec.Result, error) {
	s.calls = append(s.calls, name+" "+strings.Join(args, " "))
	if len(args) > 0 && args[0] == "mogrify" {
		input := args[len(args)-1]
		return toolexec.Result{}, os.WriteFile(convert.OutputPath(input, args[2]), []byte("jpeg"), 0o644)
	}
	if len(args) > 0 && (args[0] == "-version" || args[0] == "-ver") {
		return toolexec.Result{Stdout: name + " 1.0\n"}, nil
	}
	return toolexec.Result{}, nil
}

func allTools() *stubRunner {
	return &stubRunner{available: map[string]bool{"convert": true, "magick": true, "exiftool": true}}
}

type execResult struct {
	stdout string
	stderr string
	err    error
}

// execute runs the command tree with r injected and config isolated from
// the developer's machine.
func execute(t *testing.T, ctx context.Context, r *stubRunner, args ...string) execResult {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	origRunner, origCreation := newRunner, supportsCreationTime
	newRunner = func(types.ConversionConfig, *slog.Logger) toolexec.Runner { return r }
	supportsCreationTime = func() bool { return false }
	t.Cleanup(func() { newRunner, supportsCreationTime = origRunner, origCreation })

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(ctx)
	return execResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("raw"), 0o644))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", errInterrupted, 130},
		{"wrapped interrupt", fmt.Errorf("batch: %w", errInterrupted), 130},
		{"missing tool", check.ErrConverterNotFound, 1},
		{"invalid root", convert.ErrInvalidInput, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestConvertSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.nef"))
	r := allTools()

	res := execute(t, context.Background(), r, dir)

	require.NoError(t, res.err)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
	assert.Contains(t, res.stdout, "Successfully processed: "+filepath.Join(dir, "a.jpg"))
	assert.Contains(t, res.stdout, "Batch summary: 1 converted, 0 failed, 0 with warnings (total: 1)")
	assert.Equal(t, "convert mogrify -format jpg "+filepath.Join(dir, "a.nef"), r.calls[0])
}

func TestConvertNoFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"))
	r := allTools()

	res := execute(t, context.Background(), r, dir)

	require.NoError(t, res.err)
	assert.Equal(t, 0, exitCode(res.err))
	assert.Equal(t, "No .nef files found in "+dir+"\n", res.stdout)
	assert.Empty(t, r.calls)
}

func TestConvertMissingToolAbortsBeforeTraversal(t *testing.T) {
	tests := []struct {
		name      string
		available map[string]bool
		args      []string
		wantErr   error
	}{
		{
			name:      "convert missing",
			available: map[string]bool{"exiftool": true, "magick": true},
			wantErr:   check.ErrConverterNotFound,
		},
		{
			name:      "magick missing",
			available: map[string]bool{"exiftool": true, "convert": true},
			args:      []string{"--use-magick"},
			wantErr:   check.ErrConverterNotFound,
		},
		{
			name:      "exiftool missing",
			available: map[string]bool{"convert": true},
			wantErr:   check.ErrExiftoolNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "a.nef"))
			r := &stubRunner{available: tt.available}

			res := execute(t, context.Background(), r, append(tt.args, dir)...)

			require.Error(t, res.err)
			assert.ErrorIs(t, res.err, tt.wantErr)
			assert.Equal(t, 1, exitCode(res.err))
			assert.Empty(t, r.calls)
			assert.NoFileExists(t, filepath.Join(dir, "a.jpg"))
		})
	}
}

func TestConvertInvalidRoot(t *testing.T) {
	res := execute(t, context.Background(), allTools(), filepath.Join(t.TempDir(), "missing"))

	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, convert.ErrInvalidInput)
	assert.Equal(t, 1, exitCode(res.err))
}

func TestConvertRequiresDirectoryArgument(t *testing.T) {
	res := execute(t, context.Background(), allTools())
	assert.Error(t, res.err)
}

func TestConvertUseMagick(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
	}{
		{name: "flag", args: []string{"--use-magick"}},
		{name: "environment", env: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("NEFCONV_USE_MAGICK", tt.env)
			}
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "a.nef"))
			r := allTools()

			res := execute(t, context.Background(), r, append(tt.args, dir)...)

			require.NoError(t, res.err)
			require.NotEmpty(t, r.calls)
			assert.True(t, strings.HasPrefix(r.calls[0], "magick mogrify "), "got %q", r.calls[0])
		})
	}
}

func TestConvertConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.nef"))
	cfgPath := filepath.Join(t.TempDir(), "nefconv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("use_magick: true\nmetadata_tool: exiftool\n"), 0o644))
	r := allTools()

	res := execute(t, context.Background(), r, "--config", cfgPath, dir)

	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Using config file:")
	assert.True(t, strings.HasPrefix(r.calls[0], "magick "))
}

func TestConvertInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.nef"))
	cfgPath := filepath.Join(t.TempDir(), "nefconv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output_format: nef\n"), 0o644))
	r := allTools()

	res := execute(t, context.Background(), r, "--config", cfgPath, dir)

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "output_format")
	assert.Equal(t, 1, exitCode(res.err))
	assert.Empty(t, r.calls)
}

func TestConvertMissingConfigFile(t *testing.T) {
	res := execute(t, context.Background(), allTools(), "--config", filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	assert.Error(t, res.err)
}

func TestConvertWritesReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.nef"))
	writeFile(t, filepath.Join(dir, "sub", "b.NEF"))
	reportPath := filepath.Join(t.TempDir(), "run.yaml")

	res := execute(t, context.Background(), allTools(), "--report", reportPath, dir)

	require.NoError(t, res.err)
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var doc struct {
		Root    string `yaml:"root"`
		Summary struct {
			Total     int `yaml:"total"`
			Converted int `yaml:"converted"`
		} `yaml:"summary"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, dir, doc.Root)
	assert.Equal(t, 2, doc.Summary.Total)
	assert.Equal(t, 2, doc.Summary.Converted)
}

func TestConvertInterrupted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.nef"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := allTools()

	res := execute(t, ctx, r, dir)

	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, errInterrupted))
	assert.Equal(t, 130, exitCode(res.err))
	assert.NoFileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestCheckCommand(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		res := execute(t, context.Background(), allTools(), "check")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "ok:      convert (convert 1.0)")
		assert.Contains(t, res.stdout, "ok:      exiftool (exiftool 1.0)")
	})
	t.Run("exiftool missing", func(t *testing.T) {
		res := execute(t, context.Background(), &stubRunner{available: map[string]bool{"convert": true}}, "check")
		assert.ErrorIs(t, res.err, errToolsMissing)
		assert.Contains(t, res.stdout, "missing: exiftool")
	})
}

func TestVersionCommand(t *testing.T) {
	res := execute(t, context.Background(), allTools(), "version")
	require.NoError(t, res.err)
	assert.Equal(t, "nefconv dev\n", res.stdout)
}
