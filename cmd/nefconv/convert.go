// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nefconv/internal/check"
	"github.com/pdiddy/nefconv/internal/convert"
	"github.com/pdiddy/nefconv/internal/progress"
	"github.com/pdiddy/nefconv/internal/report"
)

// runConvert checks the tools, discovers raw files under args[0] and
// converts them one at a time.
func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	r := newRunner(cfg, log)

	if err := check.CheckDeps(r, cfg); err != nil {
		return err
	}

	root := args[0]
	files, err := convert.Discover(root, cfg.InputExt)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintf(out, "No %s files found in %s\n", cfg.InputExt, root)
		return nil
	}
	log.Debug("discovered files", "root", root, "count", len(files))

	p := convert.NewPipeline(r, convert.Options{
		Converter:            cfg.ConverterCommand(),
		MetadataTool:         cfg.MetadataTool,
		CreationTimeTool:     cfg.CreationTimeTool,
		OutputFormat:         cfg.OutputFormat,
		SupportsCreationTime: supportsCreationTime(),
	})
	bar := progress.New(len(files), progressLabel(cfg.InputExt), out, cmd.ErrOrStderr(), isTerminal(cmd.ErrOrStderr()))

	started := time.Now()
	result := convert.ConvertBatch(cmd.Context(), p, files, bar)

	if cfg.ReportPath != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		rep := report.New(abs, cfg.ConverterCommand(), started, time.Now(), result)
		if err := report.Write(cfg.ReportPath, rep); err != nil {
			log.Error("report not written", "path", cfg.ReportPath, "error", err)
		} else {
			log.Info("report written", "path", cfg.ReportPath, "run_id", rep.RunID)
		}
	}

	if result.Interrupted {
		return errInterrupted
	}
	return nil
}

// progressLabel renders "Processing NEF files" for ".nef".
func progressLabel(ext string) string {
	return "Processing " + strings.ToUpper(strings.TrimPrefix(ext, ".")) + " files"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && progress.IsTerminal(f)
}
