package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
	"github.com/vango-dev/docwidget/pkg/widget"
)

func uploadCmd(opts *globalOptions) *cobra.Command {
	var (
		nik   string
		name  string
		files []string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload documents for a jamaah",
		Long: `Upload documents through the widget without a browser.

The widget runs headless: files are validated with the configured
rules, then sent to the upload endpoint in one request.

Examples:
  docwidget upload --nik=3201010101010001 --file ktp=./ktp.pdf
  docwidget upload --nik=3201010101010001 --file ktp=./ktp.pdf --file foto=./foto.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selections, err := parseFileFlags(files)
			if err != nil {
				return err
			}
			return runUpload(cmd.Context(), opts, nik, name, selections)
		},
	}

	cmd.Flags().StringVar(&nik, "nik", "", "Jamaah NIK")
	cmd.Flags().StringVar(&name, "name", "", "Jamaah name (default: the NIK)")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Document as type=path (repeatable)")
	_ = cmd.MarkFlagRequired("nik")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// fileFlag is one --file type=path value.
type fileFlag struct {
	docType string
	path    string
}

func parseFileFlags(values []string) ([]fileFlag, error) {
	out := make([]fileFlag, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		docType, path, ok := strings.Cut(v, "=")
		docType, path = strings.TrimSpace(docType), strings.TrimSpace(path)
		if !ok || docType == "" || path == "" {
			return nil, dwerrors.New("DW501").
				WithDetail(fmt.Sprintf("--file %q must be type=path", v))
		}
		if seen[docType] {
			return nil, dwerrors.New("DW501").
				WithDetail(fmt.Sprintf("--file given twice for %q", docType))
		}
		seen[docType] = true
		out = append(out, fileFlag{docType: docType, path: path})
	}
	return out, nil
}

// headlessBrowser records what the widget asks of the browser.
type headlessBrowser struct {
	reloaded bool
}

func (b *headlessBrowser) Reload()           { b.reloaded = true }
func (b *headlessBrowser) Click(*vdom.VNode) {}

func runUpload(ctx context.Context, opts *globalOptions, nik, name string, files []fileFlag) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if name == "" {
		name = nik
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

	wcfg := cfg.Widget()
	known := make(map[string]bool, len(wcfg.DocumentTypes))
	for _, dt := range wcfg.DocumentTypes {
		known[dt.ID] = true
	}

	notifier := notify.NewAlert(notify.EmitterFunc(func(_ string, data any) {
		if payload, ok := data.(map[string]any); ok {
			info("%v", strings.ReplaceAll(fmt.Sprint(payload["message"]), "\n\n", ": "))
		}
	}), notify.WithAutoAck())
	browser := &headlessBrowser{}

	lastProgress := ""
	doc := vdom.NewDocument(widget.BuildPage(wcfg, widget.PageData{
		Jamaah: []widget.Jamaah{{NIK: nik, Name: name}},
	}))
	ctrl, err := widget.New(doc, wcfg, widget.Deps{
		Endpoint: endpoint,
		Resolver: resolver,
		Notifier: notifier,
		Browser:  browser,
	},
		widget.WithLogger(slog.Default()),
		widget.WithMiddleware(actionMiddleware(cfg)...),
		widget.WithOnChange(func(doc *vdom.Document) {
			if text := progressText(doc); text != "" && text != lastProgress {
				lastProgress = text
				info("Uploading... %s", text)
			}
		}),
	)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.Dispatch(ctx, widget.Event{Type: widget.EventClick, Target: widget.TriggerID(nik)}); err != nil {
		warn("Could not load existing documents: %v", err)
	}

	for _, f := range files {
		if !known[f.docType] {
			return dwerrors.New("DW501").
				WithDetail(fmt.Sprintf("unknown document type %q", f.docType))
		}
		fi, err := os.Stat(f.path)
		if err != nil {
			return dwerrors.New("DW501").Wrap(err)
		}
		file := &upload.File{Filename: filepath.Base(f.path), Size: fi.Size(), Path: f.path}
		if ctrl.SelectFile(f.docType, file) {
			success("%s: %s (%s)", f.docType, file.Filename, humanize.Bytes(uint64(file.Size)))
		}
	}

	err = ctrl.Dispatch(ctx, widget.Event{Type: widget.EventClick, Target: widget.UploadBtnID})
	if code := dwerrors.Code(err); code == "DW502" {
		ctrl.View(func(doc *vdom.Document) {
			for _, f := range files {
				if fb := doc.GetElementByID(widget.FeedbackID(f.docType)); fb != nil {
					errorMsg("%s: %s", f.docType, fb.TextContent())
				}
			}
		})
	}
	if err != nil {
		return err
	}
	if browser.reloaded {
		success("Upload complete for %s", name)
	}
	return nil
}

// progressText returns the progress bar label, or "" while it is hidden.
func progressText(doc *vdom.Document) string {
	bar := doc.GetElementByID(widget.ProgressID)
	if bar == nil || bar.HasClass("d-none") {
		return ""
	}
	for _, child := range bar.Children {
		if child.HasClass("progress-bar") {
			return child.TextContent()
		}
	}
	return ""
}
