package upload_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/docwidget/pkg/upload"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *upload.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := upload.NewClient(srv.URL + "/api/upload.php")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	if _, err := upload.NewClient("/upload.php"); err == nil {
		t.Fatal("NewClient(relative) error = nil")
	}
}

func TestClient_Documents(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		gotQuery = r.URL.Query()
		io.WriteString(w, `{"success":true,"data":{"ktp":"uploads/ktp/a.pdf","kk":null,"foto":""}}`)
	})

	docs, err := c.Documents(context.Background(), "3201")
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if gotQuery.Get("action") != "get_documents" || gotQuery.Get("nik") != "3201" {
		t.Errorf("query = %v", gotQuery)
	}
	if len(docs) != 1 || docs["ktp"] != "uploads/ktp/a.pdf" {
		t.Errorf("docs = %v, want only ktp", docs)
	}
}

func TestClient_DocumentsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(error) bool
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			wantErr: func(err error) bool {
				var se *upload.StatusError
				return errors.As(err, &se) && se.StatusCode == 500 && se.Body == "boom"
			},
		},
		{
			name:    "rejected",
			status:  http.StatusOK,
			body:    `{"success":false,"message":"unknown nik"}`,
			wantErr: func(err error) bool { return errors.Is(err, upload.ErrRejected) },
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: func(err error) bool { return err != nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.Documents(context.Background(), "1")
			if !tt.wantErr(err) {
				t.Fatalf("Documents() error = %v", err)
			}
		})
	}
}

func TestClient_Upload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ktp.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatal(err)
	}

	var (
		gotFields = map[string]string{}
		gotFiles  = map[string]string{}
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = strings.Join(v, ",")
		}
		for k, fhs := range r.MultipartForm.File {
			f, _ := fhs[0].Open()
			b, _ := io.ReadAll(f)
			f.Close()
			gotFiles[k] = fhs[0].Filename + ":" + string(b)
		}
		io.WriteString(w, `{"success":true,"message":"Documents uploaded"}`)
	})

	resp, err := c.Upload(context.Background(), &upload.Request{
		Fields: url.Values{"nik": {"3201"}, "action": {"ignored"}},
		Parts: []upload.Part{
			{Field: "ktp", File: &upload.File{Filename: "ktp.pdf", Path: path}},
			{Field: "foto", File: &upload.File{Filename: "me.jpg", Reader: io.NopCloser(strings.NewReader("JPEG"))}},
		},
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !resp.Success || resp.Message != "Documents uploaded" {
		t.Errorf("resp = %+v", resp)
	}
	if gotFields["action"] != "upload" {
		t.Errorf("action = %q, want upload", gotFields["action"])
	}
	if gotFields["nik"] != "3201" {
		t.Errorf("nik = %q", gotFields["nik"])
	}
	if gotFiles["ktp"] != "ktp.pdf:%PDF-1.4" || gotFiles["foto"] != "me.jpg:JPEG" {
		t.Errorf("files = %v", gotFiles)
	}
}

func TestClient_UploadRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"message":"quota exceeded"}`)
	})

	resp, err := c.Upload(context.Background(), &upload.Request{})
	var rej *upload.RejectedError
	if !errors.As(err, &rej) || rej.Message != "quota exceeded" {
		t.Fatalf("Upload() error = %v, want RejectedError", err)
	}
	if resp == nil || resp.Success {
		t.Errorf("resp = %+v, want decoded failure", resp)
	}
}

func TestClient_UploadMissingFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		io.WriteString(w, `{"success":true}`)
	})

	_, err := c.Upload(context.Background(), &upload.Request{
		Parts: []upload.Part{{Field: "kk", File: &upload.File{Filename: "gone.pdf"}}},
	})
	if err == nil {
		t.Fatal("Upload() error = nil, want error for file without content")
	}
}

type trackedReader struct {
	io.Reader
	closed bool
}

func (r *trackedReader) Close() error {
	r.closed = true
	return nil
}

func TestClient_UploadEarlyResponseReleasesParts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	src := &trackedReader{Reader: strings.NewReader(strings.Repeat("x", 8<<20))}
	f := &upload.File{Filename: "big.pdf", Reader: src}

	_, err := c.Upload(context.Background(), &upload.Request{
		Parts: []upload.Part{{Field: "ktp", File: f}},
	})
	if err == nil {
		t.Fatal("Upload() error = nil, want failure for status 500")
	}

	// Upload has returned, so the part is no longer in use.
	if f.Reader == nil && !src.closed {
		t.Error("part opened but not closed when Upload returned")
	}
}
