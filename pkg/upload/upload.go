package upload

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

// ErrNotFound is returned when a temp file doesn't exist.
var ErrNotFound = errors.New("upload: file not found")

// ErrNoContent is returned when a File has neither a path nor a reader.
var ErrNoContent = errors.New("upload: file has no content")

// Store is the interface for temp selection backends.
type Store interface {
	// Save stores the uploaded file for owner and returns a temp ID.
	Save(owner, filename, contentType string, size int64, r io.Reader) (tempID string, err error)

	// Claim hands the temp file over to its owner. Closing the returned
	// File deletes it. Other owners get ErrNotFound.
	Claim(owner, tempID string) (*File, error)

	// Cleanup removes temp files older than maxAge.
	Cleanup(maxAge time.Duration) error
}

// File is a selected file.
type File struct {
	// ID is the temp ID, empty for files that never went through a Store.
	ID string

	// Filename is the original filename from the client.
	Filename string

	// ContentType is the MIME type reported by the client, if any.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// Path is a local file holding the content. It can be opened any
	// number of times.
	Path string

	// Reader is single-use content for files without a Path.
	Reader io.ReadCloser

	releaseOnce sync.Once
	release     func() error
}

// Open returns the file content. Files with a Path can be opened repeatedly;
// a Reader-only file can be opened once.
func (f *File) Open() (io.ReadCloser, error) {
	if f.Path != "" {
		return os.Open(f.Path)
	}
	if f.Reader != nil {
		r := f.Reader
		f.Reader = nil
		return r, nil
	}
	return nil, ErrNoContent
}

// Close releases the file. Temp files are deleted.
func (f *File) Close() error {
	var err error
	if f.Reader != nil {
		err = f.Reader.Close()
		f.Reader = nil
	}
	f.releaseOnce.Do(func() {
		if f.release != nil {
			if rerr := f.release(); rerr != nil && err == nil {
				err = rerr
			}
		}
	})
	return err
}

// SelectionConfig holds configuration for the selection handler.
type SelectionConfig struct {
	// MaxSize bounds the request body. It should be larger than the widget's
	// validation limit so oversized files still reach validation as metadata.
	// Default: 32MB.
	MaxSize int64

	// Owner names the party a staged file belongs to, usually a session.
	// Default: every file is saved with an empty owner.
	Owner func(r *http.Request) string

	// Logger receives intake failures. Default: slog.Default().
	Logger *slog.Logger
}

// SelectionResponse is the JSON body returned by the selection handler.
type SelectionResponse struct {
	TempID string `json:"temp_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Size   int64  `json:"size,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SelectionHandler returns an http.Handler staging browser selections.
// It expects a multipart form with a "file" field and answers
//
//	{"temp_id": "abc123", "name": "ktp.pdf", "size": 1500000}
func SelectionHandler(store Store, config SelectionConfig) http.Handler {
	maxSize := config.MaxSize
	if maxSize <= 0 {
		maxSize = 32 << 20
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "selection")
	owner := config.Owner
	if owner == nil {
		owner = func(*http.Request) string { return "" }
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSelection(w, http.StatusMethodNotAllowed, SelectionResponse{Error: "method not allowed"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeSelection(w, http.StatusRequestEntityTooLarge, SelectionResponse{Error: "file too large"})
				return
			}
			writeSelection(w, http.StatusBadRequest, SelectionResponse{Error: "failed to parse form"})
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeSelection(w, http.StatusBadRequest, SelectionResponse{Error: "no file provided"})
			return
		}
		defer file.Close()

		tempID, err := store.Save(owner(r), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			logger.Error("save selection failed", "filename", header.Filename, "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, ErrTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			writeSelection(w, status, SelectionResponse{Error: "upload failed"})
			return
		}

		writeSelection(w, http.StatusOK, SelectionResponse{
			TempID: tempID,
			Name:   header.Filename,
			Size:   header.Size,
		})
	})
}

func writeSelection(w http.ResponseWriter, status int, body SelectionResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
