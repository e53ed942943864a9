// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nefconv/internal/check"
)

var errToolsMissing = errors.New("required tools are missing")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether ImageMagick, exiftool and SetFile are available",
		Long: `Check looks up each external tool nefconv depends on and prints its
version. It exits non-zero when the converter or exiftool is missing.
SetFile is optional and only consulted on macOS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r := newRunner(cfg, newLogger(cmd.ErrOrStderr(), cfg.Verbose))
			if !check.RunCheck(cmd.Context(), r, cfg, supportsCreationTime(), cmd.OutOrStdout()) {
				return errToolsMissing
			}
			return nil
		},
	}
}
