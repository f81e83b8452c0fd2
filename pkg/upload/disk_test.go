package upload_test

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/docwidget/pkg/upload"
)

func TestDiskStore_SaveClaimClose(t *testing.T) {
	store, err := upload.NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	id, err := store.Save("s1", "kk.pdf", "application/pdf", 5, strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := store.Claim("s1", id)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if f.Filename != "kk.pdf" || f.Size != 5 || f.ContentType != "application/pdf" {
		t.Errorf("file = %+v", f)
	}

	for i := 0; i < 2; i++ {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		if string(b) != "hello" {
			t.Errorf("content = %q", b)
		}
	}

	if _, err := store.Claim("s1", id); !errors.Is(err, upload.ErrNotFound) {
		t.Errorf("second Claim error = %v, want ErrNotFound", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(f.Path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after Close")
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestDiskStore_EnforcesLimit(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewDiskStore(dir, 4)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Save("", "a", "", 10, strings.NewReader("0123456789")); !errors.Is(err, upload.ErrTooLarge) {
		t.Errorf("declared size: error = %v, want ErrTooLarge", err)
	}
	if _, err := store.Save("", "a", "", 1, strings.NewReader("0123456789")); !errors.Is(err, upload.ErrTooLarge) {
		t.Errorf("actual size: error = %v, want ErrTooLarge", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d files left behind", len(entries))
	}
}

func TestDiskStore_Cleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := upload.NewDiskStore(dir, 0)
	if err != nil {
		t.Fatal(err)
	}

	id, err := store.Save("", "a.pdf", "", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(dir+"/"+id, old, old); err != nil {
		t.Fatal(err)
	}

	if err := store.Cleanup(time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := store.Claim("", id); !errors.Is(err, upload.ErrNotFound) {
		t.Errorf("Claim after Cleanup error = %v, want ErrNotFound", err)
	}
}

func TestDiskStore_ClaimChecksOwner(t *testing.T) {
	store, err := upload.NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}

	id, err := store.Save("session-a", "ktp.pdf", "", 1, strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.Claim("session-b", id); !errors.Is(err, upload.ErrNotFound) {
		t.Errorf("foreign Claim error = %v, want ErrNotFound", err)
	}
	if _, err := store.Claim("", id); !errors.Is(err, upload.ErrNotFound) {
		t.Errorf("ownerless Claim error = %v, want ErrNotFound", err)
	}

	f, err := store.Claim("session-a", id)
	if err != nil {
		t.Fatalf("owner Claim after foreign attempts: %v", err)
	}
	f.Close()
}

func TestFile_ReaderOpensOnce(t *testing.T) {
	f := &upload.File{Filename: "a", Reader: io.NopCloser(strings.NewReader("x"))}
	rc, err := f.Open()
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()
	if _, err := f.Open(); !errors.Is(err, upload.ErrNoContent) {
		t.Errorf("second Open error = %v, want ErrNoContent", err)
	}
}
