package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
)

func validateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check files against the upload rules",
		Long: `Check files against the size limit and extension allow-list
the widget applies before uploading.

Without a config file the default rules apply (2MB; pdf, jpg, jpeg, png).

Examples:
  docwidget validate ktp.pdf foto.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args)
		},
	}
}

func runValidate(opts *globalOptions, paths []string) error {
	cfg, err := loadRules(opts)
	if err != nil {
		return err
	}
	rules := cfg.Widget().Rules()

	failed := 0
	for _, path := range paths {
		name := filepath.Base(path)
		fi, err := os.Stat(path)
		if err != nil {
			errorMsg("%s: %v", name, err)
			failed++
			continue
		}
		size := fi.Size()
		if err := rules.Validate(name, size); err != nil {
			errorMsg("%s (%s): %s", name, humanize.Bytes(uint64(size)), err)
			failed++
			continue
		}
		success("%s (%s)", name, humanize.Bytes(uint64(size)))
	}

	if failed > 0 {
		return dwerrors.New("DW502").WithDetail(fmt.Sprintf("%d of %d files failed validation", failed, len(paths)))
	}
	return nil
}
