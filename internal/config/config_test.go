package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/docwidget/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	if cfg.MaxFileSize != 2097152 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
	}
	if strings.Join(cfg.AllowedExtensions, ",") != "pdf,jpg,jpeg,png" {
		t.Errorf("AllowedExtensions = %v", cfg.AllowedExtensions)
	}
	if len(cfg.DocumentTypes) != 5 || cfg.DocumentTypes[0].ID != "ktp" {
		t.Errorf("DocumentTypes = %v", cfg.DocumentTypes)
	}
	if cfg.Notifier != "modal" || cfg.Storage.Kind != StorageHTTP || cfg.Server.Addr != DefaultAddr {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.ProgressInterval() != 300*time.Millisecond || cfg.FadeDelay() != time.Second {
		t.Errorf("durations = %v %v", cfg.ProgressInterval(), cfg.FadeDelay())
	}
	if cfg.Progress.Cap != 90 {
		t.Errorf("Progress.Cap = %d", cfg.Progress.Cap)
	}
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, JSONFileName, `{
		"uploadEndpoint": "https://bo.example.com/api/docs.php",
		"fileEndpoint": "https://bo.example.com/api/serve.php",
		"maxFileSize": 5242880,
		"documentTypes": [{"id": "ktp", "label": "KTP"}],
		"progress": {"interval": "100ms"}
	}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MaxFileSize != 5242880 || len(cfg.DocumentTypes) != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Path() != filepath.Join(dir, JSONFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}

	w := cfg.Widget()
	if w.ProgressInterval != 100*time.Millisecond || w.MaxFileSize != 5242880 || w.ProgressCap != 90 {
		t.Errorf("Widget() = %+v", w)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, YAMLFileName, `
uploadEndpoint: https://bo.example.com/api/docs.php
notifier: alert
storage:
  kind: s3
  s3:
    bucket: jamaah-docs
    region: ap-southeast-3
    prefix: uploads/
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Notifier != "alert" || cfg.Storage.S3.Bucket != "jamaah-docs" || cfg.URLExpiry() != 15*time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFile_YAMLUnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "docwidget.yml", "uploadEndpoint: https://x.example\nmaxSize: 3\n")

	_, err := LoadFile(path)
	if errors.Code(err) != "DW002" {
		t.Fatalf("LoadFile() = %v, want DW002", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(t.TempDir()); errors.Code(err) != "DW001" {
		t.Errorf("missing file: %v, want DW001", err)
	}

	dir := t.TempDir()
	writeFile(t, dir, JSONFileName, `{"uploadEndpoint": `)
	if _, err := Load(dir); errors.Code(err) != "DW002" {
		t.Errorf("bad JSON: %v, want DW002", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, JSONFileName, `{"uploadEndpoint": "https://file.example/a"}`)
	t.Setenv("DOCWIDGET_UPLOAD_ENDPOINT", "https://env.example/upload")
	t.Setenv("DOCWIDGET_ADDR", "127.0.0.1:9000")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UploadEndpoint != "https://env.example/upload" || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := New()
		c.UploadEndpoint = "https://bo.example.com/docs.php"
		c.FileEndpoint = "https://bo.example.com/serve.php"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"missing upload endpoint", func(c *Config) { c.UploadEndpoint = "" }, "uploadEndpoint"},
		{"relative file endpoint", func(c *Config) { c.FileEndpoint = "/serve.php" }, "fileEndpoint"},
		{"bad notifier", func(c *Config) { c.Notifier = "toast" }, "notifier"},
		{"bad storage", func(c *Config) { c.Storage.Kind = "ftp" }, "storage.kind"},
		{"s3 without bucket", func(c *Config) { c.Storage.Kind = StorageS3; c.Storage.S3.Region = "x" }, "bucket"},
		{"duplicate type", func(c *Config) {
			c.DocumentTypes = append(c.DocumentTypes, c.DocumentTypes[0])
		}, "duplicate"},
		{"bad duration", func(c *Config) { c.Progress.Interval = "fast" }, "progress.interval"},
		{"cap too high", func(c *Config) { c.Progress.Cap = 120 }, "progress.cap"},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if errors.Code(err) != "DW003" {
				t.Fatalf("Validate() = %v, want DW003", err)
			}
			if we, ok := err.(*errors.WidgetError); !ok || !strings.Contains(we.Detail, tt.wantSub) {
				t.Errorf("detail = %v, want mention of %q", err, tt.wantSub)
			}
		})
	}
}
