package upload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("upload: file too large")

// ErrInvalidType is returned when a file's extension is not allowed.
var ErrInvalidType = errors.New("upload: invalid file type")

const bytesPerMB = 1024 * 1024

// Rules are the client-side checks applied to every selected file.
type Rules struct {
	// MaxFileSize is the maximum allowed file size in bytes.
	// Zero disables the size check.
	MaxFileSize int64

	// AllowedExtensions lists accepted extensions without the dot.
	// Matching is case-insensitive.
	AllowedExtensions []string
}

// ValidationError describes why a file was rejected.
type ValidationError struct {
	Filename string
	Size     int64
	Message  string
	Err      error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns ErrTooLarge or ErrInvalidType.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks size first, then extension. It returns nil or a
// *ValidationError.
func (r Rules) Validate(filename string, size int64) error {
	if r.MaxFileSize > 0 && size > r.MaxFileSize {
		return &ValidationError{
			Filename: filename,
			Size:     size,
			Err:      ErrTooLarge,
			Message: fmt.Sprintf("File size (%sMB) exceeds the maximum limit of %sMB",
				FormatMB(size, 2), FormatMB(r.MaxFileSize, -1)),
		}
	}

	if !r.Allows(Extension(filename)) {
		return &ValidationError{
			Filename: filename,
			Size:     size,
			Err:      ErrInvalidType,
			Message:  "Invalid file type. Allowed types: " + strings.Join(r.Extensions(), ", "),
		}
	}

	return nil
}

// Allows reports whether ext is in the allow-list.
func (r Rules) Allows(ext string) bool {
	ext = normalizeExt(ext)
	for _, allowed := range r.AllowedExtensions {
		if normalizeExt(allowed) == ext {
			return true
		}
	}
	return false
}

// Extensions returns the normalized allow-list in configured order.
func (r Rules) Extensions() []string {
	out := make([]string, 0, len(r.AllowedExtensions))
	for _, ext := range r.AllowedExtensions {
		out = append(out, normalizeExt(ext))
	}
	return out
}

// Accept returns the value for an <input type="file" accept="...">.
func (r Rules) Accept() string {
	exts := r.Extensions()
	for i, ext := range exts {
		exts[i] = "." + ext
	}
	return strings.Join(exts, ",")
}

// Extension returns the lower-cased text after the last dot. A name without
// a dot is returned whole, lower-cased.
func Extension(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return strings.ToLower(filename[i+1:])
	}
	return strings.ToLower(filename)
}

// FormatMB renders a byte count in megabytes. prec is passed to
// strconv.FormatFloat; -1 drops trailing zeros.
func FormatMB(bytes int64, prec int) string {
	return strconv.FormatFloat(float64(bytes)/bytesPerMB, 'f', prec, 64)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
