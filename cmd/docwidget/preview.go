package main

import (
	"context"

	"github.com/spf13/cobra"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/upload"
)

func previewCmd(opts *globalOptions) *cobra.Command {
	var (
		path     string
		docType  string
		download bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the preview or download URL of a stored document",
		Long: `Print the URL the widget opens for a stored document.

Files whose extension is not previewable get a download URL, as in
the widget.

Examples:
  docwidget preview --path=uploads/ktp/3201_ktp.pdf --type=ktp
  docwidget preview --path=uploads/kk/scan.pdf --type=kk --download`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), opts, path, docType, download)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Stored path as returned by get_documents")
	cmd.Flags().StringVar(&docType, "type", "", "Document type")
	cmd.Flags().BoolVar(&download, "download", false, "Print the download URL")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runPreview(ctx context.Context, opts *globalOptions, path, docType string, download bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	filename := upload.FileName(path)
	action := upload.ActionPreview
	if download || !upload.IsPreviewable(filename, cfg.PreviewExtensions) {
		action = upload.ActionDownload
	}

	url, err := resolver.FileURL(ctx, filename, docType, action)
	if err != nil {
		return dwerrors.New("DW204").Wrap(err)
	}
	if action == upload.ActionDownload && !download {
		warn("%s is not previewable, download instead", filename)
	}
	success("%s %s", action, filename)
	info("%s", url)
	return nil
}
