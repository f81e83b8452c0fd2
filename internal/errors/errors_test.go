package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "DW001",
			wantMsg: "Config file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "validation error",
			code:    "DW101",
			wantMsg: "File too large",
			wantCat: CategoryValidation,
		},
		{
			name:    "endpoint error",
			code:    "DW201",
			wantMsg: "Upload request failed",
			wantCat: CategoryEndpoint,
		},
		{
			name:    "unknown error code",
			code:    "DW999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestWidgetError_Error(t *testing.T) {
	err := New("DW202")
	if got, want := err.Error(), "DW202: Upload rejected by server"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("DW201").Wrap(stderrors.New("connection refused"))
	if got, want := wrapped.Error(), "DW201: Upload request failed: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &WidgetError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestWrapSupportsErrorsIs(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("DW203").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var we *WidgetError
	if !stderrors.As(err, &we) {
		t.Fatal("errors.As should find *WidgetError")
	}
	if we.Code != "DW203" {
		t.Errorf("Code = %q, want DW203", we.Code)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "DW201") != nil {
		t.Error("FromError(nil) should be nil")
	}

	existing := New("DW101")
	if got := FromError(existing, "DW201"); got != existing {
		t.Error("FromError should return an existing WidgetError unchanged")
	}

	got := FromError(stderrors.New("io"), "DW201")
	if got.Code != "DW201" || got.Wrapped == nil {
		t.Errorf("FromError = %+v, want DW201 wrapping the cause", got)
	}
}

func TestCode(t *testing.T) {
	inner := New("DW302")
	outer := stderrors.Join(stderrors.New("context"), inner)
	if got := Code(inner); got != "DW302" {
		t.Errorf("Code(inner) = %q, want DW302", got)
	}
	if got := Code(stderrors.New("plain")); got != "" {
		t.Errorf("Code(plain) = %q, want empty", got)
	}
	// Join does not implement the single Unwrap method.
	if got := Code(outer); got != "" {
		t.Errorf("Code(joined) = %q, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("DW003").
		WithDetail("upload.maxFileSize must be positive").
		WithSuggestion("Set upload.maxFileSize in docwidget.json")

	out := err.Format()
	for _, want := range []string{
		"ERROR DW003: Invalid configuration value",
		"upload.maxFileSize must be positive",
		"Hint: Set upload.maxFileSize in docwidget.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("DW101").WithDetail("ktp.pdf")
	if got, want := err.FormatCompact(), "DW101: File too large (ktp.pdf)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestAllCodesHaveTemplates(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) not found", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %q is incomplete: %+v", code, tmpl)
		}
		if !strings.HasPrefix(code, "DW") {
			t.Errorf("code %q should start with DW", code)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four", 9)
	want := []string{"one two", "three", "four"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
