package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/widget"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "docwidget.json"

	// YAMLFileName is the YAML configuration file name.
	YAMLFileName = "docwidget.yaml"

	// DefaultAddr is the default listen address of the host server.
	DefaultAddr = ":8080"

	// DefaultSelectionLimit bounds files staged by the host server.
	DefaultSelectionLimit = 32 << 20
)

// Storage kinds.
const (
	StorageHTTP = "http"
	StorageS3   = "s3"
)

// Config is the complete docwidget configuration.
type Config struct {
	// UploadEndpoint serves get_documents and accepts uploads.
	UploadEndpoint string `json:"uploadEndpoint" yaml:"uploadEndpoint"`

	// FileEndpoint serves stored files for preview and download.
	FileEndpoint string `json:"fileEndpoint,omitempty" yaml:"fileEndpoint,omitempty"`

	// MaxFileSize is the per-file limit in bytes.
	MaxFileSize int64 `json:"maxFileSize,omitempty" yaml:"maxFileSize,omitempty"`

	// AllowedExtensions is the upload allow-list.
	AllowedExtensions []string `json:"allowedExtensions,omitempty" yaml:"allowedExtensions,omitempty"`

	// PreviewExtensions open in a preview dialog.
	PreviewExtensions []string `json:"previewExtensions,omitempty" yaml:"previewExtensions,omitempty"`

	// DocumentTypes are the form's file fields in display order.
	DocumentTypes []widget.DocumentType `json:"documentTypes,omitempty" yaml:"documentTypes,omitempty"`

	// Notifier is "modal" or "alert".
	Notifier string `json:"notifier,omitempty" yaml:"notifier,omitempty"`

	Progress ProgressConfig `json:"progress,omitempty" yaml:"progress,omitempty"`
	Storage  StorageConfig  `json:"storage,omitempty" yaml:"storage,omitempty"`
	Server   ServerConfig   `json:"server,omitempty" yaml:"server,omitempty"`
	Metrics  MetricsConfig  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Tracing  TracingConfig  `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ProgressConfig tunes the upload progress bar. Durations use
// time.ParseDuration syntax.
type ProgressConfig struct {
	Interval  string `json:"interval,omitempty" yaml:"interval,omitempty"`
	Cap       int    `json:"cap,omitempty" yaml:"cap,omitempty"`
	FadeDelay string `json:"fadeDelay,omitempty" yaml:"fadeDelay,omitempty"`
}

// StorageConfig selects how preview and download URLs are built.
type StorageConfig struct {
	// Kind is "http" (the file endpoint) or "s3" (presigned URLs).
	Kind string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	S3   S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config locates stored documents in a bucket.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
	URLExpiry string `json:"urlExpiry,omitempty" yaml:"urlExpiry,omitempty"`
}

// ServerConfig configures the host server.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// TempDir stages browser selections. Default: <os temp>/docwidget.
	TempDir string `json:"tempDir,omitempty" yaml:"tempDir,omitempty"`

	// SelectionLimit bounds a staged file in bytes.
	SelectionLimit int64 `json:"selectionLimit,omitempty" yaml:"selectionLimit,omitempty"`

	// SessionTTL drops idle sessions.
	SessionTTL string `json:"sessionTTL,omitempty" yaml:"sessionTTL,omitempty"`
}

// MetricsConfig configures Prometheus.
type MetricsConfig struct {
	Disabled  bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New returns a Config with all defaults applied and no endpoints.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads docwidget.json, or docwidget.yaml when there is no JSON file,
// from dir.
func Load(dir string) (*Config, error) {
	for _, name := range []string{JSONFileName, YAMLFileName, "docwidget.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("DW001").
		WithDetail("No " + JSONFileName + " or " + YAMLFileName + " found in " + dir).
		WithSuggestion("Create " + JSONFileName + " with at least uploadEndpoint and fileEndpoint")
}

// LoadFile reads a config file. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("DW001").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("DW002").Wrap(err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.New("DW002").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML and uses only known keys")
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("DW002").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DOCWIDGET_UPLOAD_ENDPOINT")); v != "" {
		c.UploadEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCWIDGET_FILE_ENDPOINT")); v != "" {
		c.FileEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCWIDGET_ADDR")); v != "" {
		c.Server.Addr = v
	}
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	d := widget.DefaultConfig()

	if c.MaxFileSize == 0 {
		c.MaxFileSize = d.MaxFileSize
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = d.AllowedExtensions
	}
	if len(c.PreviewExtensions) == 0 {
		c.PreviewExtensions = d.PreviewExtensions
	}
	if len(c.DocumentTypes) == 0 {
		c.DocumentTypes = d.DocumentTypes
	}
	if c.Notifier == "" {
		c.Notifier = "modal"
	}

	if c.Progress.Interval == "" {
		c.Progress.Interval = d.ProgressInterval.String()
	}
	if c.Progress.Cap == 0 {
		c.Progress.Cap = d.ProgressCap
	}
	if c.Progress.FadeDelay == "" {
		c.Progress.FadeDelay = d.FadeDelay.String()
	}

	if c.Storage.Kind == "" {
		c.Storage.Kind = StorageHTTP
	}
	if c.Storage.S3.URLExpiry == "" {
		c.Storage.S3.URLExpiry = "15m"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.TempDir == "" {
		c.Server.TempDir = filepath.Join(os.TempDir(), "docwidget")
	}
	if c.Server.SelectionLimit == 0 {
		c.Server.SelectionLimit = DefaultSelectionLimit
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = "30m"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "docwidget"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "docwidget"
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if err := checkURL(c.UploadEndpoint); err != nil {
		add("uploadEndpoint: %v", err)
	}
	switch c.Storage.Kind {
	case StorageHTTP:
		if err := checkURL(c.FileEndpoint); err != nil {
			add("fileEndpoint: %v", err)
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			add("storage.s3.bucket is required for s3 storage")
		}
		if c.Storage.S3.Region == "" {
			add("storage.s3.region is required for s3 storage")
		}
	default:
		add("storage.kind must be %q or %q, got %q", StorageHTTP, StorageS3, c.Storage.Kind)
	}

	if c.MaxFileSize < 0 {
		add("maxFileSize must be positive")
	}
	if c.Notifier != "modal" && c.Notifier != "alert" {
		add("notifier must be \"modal\" or \"alert\", got %q", c.Notifier)
	}

	seen := make(map[string]bool, len(c.DocumentTypes))
	for i, dt := range c.DocumentTypes {
		switch {
		case dt.ID == "":
			add("documentTypes[%d]: id is required", i)
		case strings.ContainsAny(dt.ID, " \t\"'<>&"):
			add("documentTypes[%d]: id %q is not a valid element id", i, dt.ID)
		case seen[dt.ID]:
			add("documentTypes[%d]: duplicate id %q", i, dt.ID)
		}
		seen[dt.ID] = true
	}

	if c.Progress.Cap < 1 || c.Progress.Cap > 100 {
		add("progress.cap must be between 1 and 100")
	}
	for key, value := range map[string]string{
		"progress.interval":    c.Progress.Interval,
		"progress.fadeDelay":   c.Progress.FadeDelay,
		"storage.s3.urlExpiry": c.Storage.S3.URLExpiry,
		"server.sessionTTL":    c.Server.SessionTTL,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			add("%s: %q is not a positive duration", key, value)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.New("DW003").
		WithDetail(strings.Join(problems, "; ")).
		WithSuggestion("Fix the listed keys in " + c.displayPath())
}

func (c *Config) displayPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return JSONFileName
}

// ProgressInterval returns the progress tick interval.
func (c *Config) ProgressInterval() time.Duration {
	return parseDuration(c.Progress.Interval)
}

// FadeDelay returns how long a failed progress bar stays visible.
func (c *Config) FadeDelay() time.Duration {
	return parseDuration(c.Progress.FadeDelay)
}

// URLExpiry returns the lifetime of presigned S3 URLs.
func (c *Config) URLExpiry() time.Duration {
	return parseDuration(c.Storage.S3.URLExpiry)
}

// SessionTTL returns the idle session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Server.SessionTTL)
}

// Widget returns the controller configuration.
func (c *Config) Widget() widget.Config {
	return widget.Config{
		MaxFileSize:       c.MaxFileSize,
		AllowedExtensions: c.AllowedExtensions,
		PreviewExtensions: c.PreviewExtensions,
		DocumentTypes:     c.DocumentTypes,
		ProgressInterval:  c.ProgressInterval(),
		ProgressCap:       c.Progress.Cap,
		FadeDelay:         c.FadeDelay(),
	}
}

func checkURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// parseDuration returns 0 for invalid input; Validate reports it.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

