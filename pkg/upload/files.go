package upload

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Action selects how the file-serving endpoint delivers a file.
type Action string

const (
	ActionPreview  Action = "preview"
	ActionDownload Action = "download"
)

// Resolver builds URLs for stored documents.
type Resolver interface {
	FileURL(ctx context.Context, filename, docType string, action Action) (string, error)
}

// FileServer resolves URLs on the file-serving endpoint:
//
//	<endpoint>?file=<name>&type=<docType>&action=preview|download
type FileServer struct {
	endpoint *url.URL
}

// NewFileServer parses the endpoint URL.
func NewFileServer(endpoint string) (*FileServer, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("upload: invalid file endpoint %q: %w", endpoint, err)
	}
	return &FileServer{endpoint: u}, nil
}

// FileURL implements Resolver.
func (f *FileServer) FileURL(_ context.Context, filename, docType string, action Action) (string, error) {
	u := *f.endpoint
	q := u.Query()
	q.Set("file", filename)
	q.Set("type", docType)
	q.Set("action", string(action))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FileName returns the last path segment of a stored path.
func FileName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// IsPreviewable reports whether filename has one of the given extensions.
func IsPreviewable(filename string, previewExtensions []string) bool {
	return Rules{AllowedExtensions: previewExtensions}.Allows(Extension(filename))
}
