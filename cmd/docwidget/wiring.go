package main

import (
	"log/slog"
	"os"

	"github.com/vango-dev/docwidget/internal/config"
	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/middleware"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/widget"
)

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads and validates the configuration named by --config.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := readConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRules returns the validation settings, falling back to defaults when
// no config file exists.
func loadRules(opts *globalOptions) (*config.Config, error) {
	cfg, err := readConfig(opts.configPath)
	if dwerrors.Code(err) == "DW001" && opts.configPath == "" {
		return config.New(), nil
	}
	return cfg, err
}

func readConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load(".")
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return config.Load(path)
	}
	return config.LoadFile(path)
}

func newEndpoint(cfg *config.Config) (*upload.Client, error) {
	return upload.NewClient(cfg.UploadEndpoint, upload.WithTracerName(cfg.Tracing.TracerName+"/upload"))
}

func newResolver(cfg *config.Config) (upload.Resolver, error) {
	if cfg.Storage.Kind == config.StorageS3 {
		s3cfg := cfg.Storage.S3
		client := upload.NewS3Client(upload.S3Options{
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			UsePathStyle: s3cfg.PathStyle,
		})
		return upload.NewS3Resolver(client, s3cfg.Bucket, s3cfg.Prefix).WithURLExpiry(cfg.URLExpiry()), nil
	}
	fs, err := upload.NewFileServer(cfg.FileEndpoint)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func actionMiddleware(cfg *config.Config) []widget.Middleware {
	return []widget.Middleware{
		middleware.OpenTelemetry(middleware.WithTracerName(cfg.Tracing.TracerName)),
	}
}
