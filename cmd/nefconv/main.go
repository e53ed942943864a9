// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nefconv CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nefconv/internal/convert"
	"github.com/pdiddy/nefconv/internal/toolexec"
	"github.com/pdiddy/nefconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

var errInterrupted = errors.New("interrupted")

// newRunner builds the tool runner for a run. Tests replace it.
var newRunner = func(cfg types.ConversionConfig, log *slog.Logger) toolexec.Runner {
	return &toolexec.OSRunner{Timeout: cfg.Timeout, Logger: log}
}

// supportsCreationTime is resolved per run so tests can pin it.
var supportsCreationTime = convert.SupportsCreationTime

// flagKeys maps command-line flags to their config keys.
var flagKeys = map[string]string{
	"use-magick": "use_magick",
	"verbose":    "verbose",
	"timeout":    "timeout",
	"report":     "report",
}

// newRootCmd builds the nefconv command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nefconv [flags] <directory>",
		Short: "Convert Nikon NEF raw files to JPEG",
		Long: `nefconv walks a directory tree, converts every .nef file it finds to a
JPEG next to the original with ImageMagick, copies all metadata across
with exiftool and carries over the access and modification times. On
macOS the capture time is also written as the file's creation time.

A file that fails at any step is reported and skipped; the rest of the
batch continues. The progress bar is drawn on stderr only when stderr is a
terminal; per-file status lines always go to stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		RunE: runConvert,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nefconv.yaml or ~/.config/nefconv/nefconv.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every tool invocation")
	rootCmd.PersistentFlags().Bool("use-magick", false, "invoke 'magick' instead of 'convert' (ImageMagick 7+)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "bound on each tool invocation (0 waits indefinitely)")
	rootCmd.Flags().String("report", "", "write a YAML run report to this path")

	rootCmd.AddCommand(newCheckCmd(), newVersionCmd())
	return rootCmd
}

// initConfig reads the config file and binds flags and NEFCONV_*
// environment variables over the defaults.
func initConfig(cmd *cobra.Command) error {
	def := types.DefaultConversionConfig()
	viper.SetDefault("use_magick", def.UseMagick)
	viper.SetDefault("metadata_tool", def.MetadataTool)
	viper.SetDefault("creation_time_tool", def.CreationTimeTool)
	viper.SetDefault("input_ext", def.InputExt)
	viper.SetDefault("output_format", def.OutputFormat)
	viper.SetDefault("timeout", def.Timeout)
	viper.SetDefault("report", def.ReportPath)
	viper.SetDefault("verbose", def.Verbose)

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nefconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nefconv"))
		}
	}

	viper.SetEnvPrefix("NEFCONV")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	return nil
}

// loadConfig unmarshals the merged settings and validates them.
func loadConfig() (types.ConversionConfig, error) {
	cfg := types.DefaultConversionConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger returns the diagnostic logger, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInterrupted):
		return exitInterrupted
	default:
		return 1
	}
}

func run(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
