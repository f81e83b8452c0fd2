package main

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/docwidget/pkg/middleware"
	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/server"
	"github.com/vango-dev/docwidget/pkg/upload"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		addr   string
		title  string
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the widget host server",
		Long: `Run the host server for the document widget.

Open /documents/<nik>?name=<name> in a browser to manage the
documents of one jamaah.

Examples:
  docwidget serve
  docwidget serve --addr=:9090
  docwidget serve --config=/etc/docwidget.yaml
  docwidget serve --pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, addr, title, pretty)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&title, "title", "", "Page heading")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the host page HTML")
	return cmd
}

func runServe(ctx context.Context, opts *globalOptions, addr, title string, pretty bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	endpoint, err := newEndpoint(cfg)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}
	store, err := upload.NewDiskStore(cfg.Server.TempDir, cfg.Server.SelectionLimit)
	if err != nil {
		return err
	}

	serverCfg := server.Config{
		Widget:         cfg.Widget(),
		Endpoint:       endpoint,
		Resolver:       resolver,
		Selections:     store,
		Notifier:       notify.Kind(cfg.Notifier),
		Title:          title,
		PrettyHTML:     pretty,
		SelectionLimit: cfg.Server.SelectionLimit,
		SessionTTL:     cfg.SessionTTL(),
		Middleware:     actionMiddleware(cfg),
		Logger:         slog.Default(),
	}
	if !cfg.Metrics.Disabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		serverCfg.Metrics = middleware.NewMetrics(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(reg),
		)
		serverCfg.Gatherer = reg
		serverCfg.MetricsPath = cfg.Metrics.Path
	}

	srv, err := server.New(serverCfg)
	if err != nil {
		return err
	}

	success("Serving documents on %s", addr)
	info("Upload endpoint: %s", cfg.UploadEndpoint)
	info("Storage:         %s", cfg.Storage.Kind)
	info("Max file size:   %s", humanize.IBytes(uint64(cfg.MaxFileSize)))
	if serverCfg.MetricsPath != "" {
		info("Metrics:         %s", serverCfg.MetricsPath)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	return srv.Run(ctx, addr)
}
