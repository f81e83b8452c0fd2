package main

import (
	"context"

	"github.com/spf13/cobra"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/upload"
)

func documentsCmd(opts *globalOptions) *cobra.Command {
	var nik string

	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List the stored documents of a jamaah",
		Long: `Fetch the stored documents of a jamaah from the upload endpoint
and print a preview URL for each.

Examples:
  docwidget documents --nik=3201010101010001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocuments(cmd.Context(), opts, nik)
		},
	}

	cmd.Flags().StringVar(&nik, "nik", "", "Jamaah NIK")
	_ = cmd.MarkFlagRequired("nik")
	return cmd
}

func runDocuments(ctx context.Context, opts *globalOptions, nik string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	endpoint, err := newEndpoint(cfg)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	docs, err := endpoint.Documents(ctx, nik)
	if err != nil {
		return dwerrors.New("DW203").Wrap(err)
	}

	success("Documents for %s", nik)
	for _, dt := range cfg.DocumentTypes {
		path, ok := docs[dt.ID]
		if !ok {
			info("%-12s No file uploaded", dt.ID)
			continue
		}
		filename := upload.FileName(path)
		action := upload.ActionDownload
		if upload.IsPreviewable(filename, cfg.PreviewExtensions) {
			action = upload.ActionPreview
		}
		url, err := resolver.FileURL(ctx, filename, dt.ID, action)
		if err != nil {
			warn("%-12s %s (no URL: %v)", dt.ID, filename, err)
			continue
		}
		info("%-12s %s", dt.ID, filename)
		info("%-12s %s", "", url)
	}
	return nil
}
