package widget

import (
	"time"

	"github.com/vango-dev/docwidget/pkg/upload"
)

// DocumentType is one document slot in the form. ID is both the file
// input's id and its form field name.
type DocumentType struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Config is the static widget configuration. It is not modified after New.
type Config struct {
	// MaxFileSize is the per-file limit in bytes.
	MaxFileSize int64

	// AllowedExtensions is the upload allow-list, without dots.
	AllowedExtensions []string

	// PreviewExtensions open in a preview dialog; other files download.
	PreviewExtensions []string

	// DocumentTypes are the form's file fields, in display order.
	DocumentTypes []DocumentType

	// ProgressInterval is the time between progress ticks.
	ProgressInterval time.Duration

	// ProgressCap is the highest value ticks can reach before completion.
	ProgressCap int

	// FadeDelay is how long the failed progress bar stays visible.
	FadeDelay time.Duration
}

// DefaultDocumentTypes are the jamaah document slots.
var DefaultDocumentTypes = []DocumentType{
	{ID: "ktp", Label: "ID Card (KTP)"},
	{ID: "kk", Label: "Family Card (KK)"},
	{ID: "paspor", Label: "Passport"},
	{ID: "foto", Label: "Photo"},
	{ID: "buku_kuning", Label: "Vaccination Book"},
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MaxFileSize:       2 * 1024 * 1024,
		AllowedExtensions: []string{"pdf", "jpg", "jpeg", "png"},
		PreviewExtensions: []string{"pdf", "jpg", "jpeg", "png"},
		DocumentTypes:     append([]DocumentType(nil), DefaultDocumentTypes...),
		ProgressInterval:  300 * time.Millisecond,
		ProgressCap:       90,
		FadeDelay:         time.Second,
	}
}

// Rules returns the validation rules for this configuration.
func (c Config) Rules() upload.Rules {
	return upload.Rules{
		MaxFileSize:       c.MaxFileSize,
		AllowedExtensions: c.AllowedExtensions,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxFileSize <= 0 {
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
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = d.ProgressInterval
	}
	if c.ProgressCap <= 0 || c.ProgressCap > 100 {
		c.ProgressCap = d.ProgressCap
	}
	if c.FadeDelay <= 0 {
		c.FadeDelay = d.FadeDelay
	}
	return c
}
