package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/docwidget/pkg/vdom"
)

func TestRenderText(t *testing.T) {
	got, err := HTML(vdom.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello, World!" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTextEscaping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<script>", "&lt;script&gt;"},
		{"a & b", "a &amp; b"},
		{`"quoted"`, "&quot;quoted&quot;"},
		{"it's", "it&#39;s"},
	}

	for _, tt := range tests {
		got := MustHTML(vdom.Text(tt.input))
		if got != tt.expected {
			t.Errorf("render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderElement(t *testing.T) {
	node := vdom.Div(vdom.ID("documentModal"), vdom.Class("modal", "fade"),
		vdom.H5(vdom.Text("Documents")),
	)
	got := MustHTML(node)
	want := `<div class="modal fade" id="documentModal"><h5>Documents</h5></div>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRenderVoidElements(t *testing.T) {
	tests := []struct {
		node *vdom.VNode
		want string
	}{
		{vdom.Input(vdom.Type("file"), vdom.ID("ktp")), `<input id="ktp" type="file">`},
		{vdom.Img(vdom.Src("/x.png"), vdom.Alt("x")), `<img alt="x" src="/x.png">`},
		{vdom.Embed(vdom.Src("/x.pdf"), vdom.Type("application/pdf")), `<embed src="/x.pdf" type="application/pdf">`},
		{vdom.Br(), `<br>`},
	}
	for _, tt := range tests {
		if got := MustHTML(tt.node); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}

func TestRenderBooleanAttributes(t *testing.T) {
	on := MustHTML(vdom.Button(vdom.Disabled(), vdom.Text("Upload")))
	if on != `<button disabled>Upload</button>` {
		t.Errorf("disabled=true: %s", on)
	}

	btn := vdom.Button(vdom.Disabled())
	btn.SetAttr("disabled", false)
	if got := MustHTML(btn); got != `<button></button>` {
		t.Errorf("disabled=false: %s", got)
	}

	if got := MustHTML(vdom.A(vdom.Download(), vdom.Href("/f"))); got != `<a download href="/f"></a>` {
		t.Errorf("bare download: %s", got)
	}
	if got := MustHTML(vdom.A(vdom.Download("ktp.pdf"))); got != `<a download="ktp.pdf"></a>` {
		t.Errorf("named download: %s", got)
	}

	// Non-boolean attributes keep their bool value as text.
	if got := MustHTML(vdom.Div(vdom.AriaHidden(true))); got != `<div aria-hidden="true"></div>` {
		t.Errorf("aria-hidden: %s", got)
	}
}

func TestRenderSkipsInternalProps(t *testing.T) {
	input := vdom.Input(vdom.ID("ktp"))
	input.SetProp("file", struct{}{})
	if got := MustHTML(input); strings.Contains(got, "_file") {
		t.Errorf("internal prop rendered: %s", got)
	}
}

func TestRenderAttributeEscaping(t *testing.T) {
	got := MustHTML(vdom.Div(vdom.Data("name", "Siti \"Aisyah\"\n")))
	want := `<div data-name="Siti &quot;Aisyah&quot;&#10;"></div>`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRenderFragmentAndRaw(t *testing.T) {
	got := MustHTML(vdom.Fragment(vdom.Span("a"), vdom.Raw("<b>b</b>")))
	if got != `<span>a</span><b>b</b>` {
		t.Errorf("got %s", got)
	}
}

func TestRenderNumericAttributes(t *testing.T) {
	got := MustHTML(vdom.Div(vdom.AriaValueNow(45), vdom.Role("progressbar")))
	want := `<div aria-valuenow="45" role="progressbar"></div>`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRenderElementWithoutTag(t *testing.T) {
	if _, err := HTML(&vdom.VNode{Kind: vdom.KindElement}); err == nil {
		t.Error("expected error for element without tag")
	}
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	if err := Page(&buf, vdom.Html(vdom.Body())); err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>\n<html>") {
		t.Errorf("unexpected page: %s", buf.String())
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(vdom.Div(vdom.P(vdom.Text("x"))))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "\n  <p>") {
		t.Errorf("pretty output not indented: %q", got)
	}
}

func TestRendererPage(t *testing.T) {
	page := vdom.Html(vdom.Head(vdom.Title(vdom.Text("t"))), vdom.Body(vdom.Div()))

	tests := []struct {
		name     string
		config   RendererConfig
		indented bool
	}{
		{"compact", RendererConfig{}, false},
		{"pretty", RendererConfig{Pretty: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			if err := NewRenderer(tt.config).Page(&sb, page); err != nil {
				t.Fatal(err)
			}
			got := sb.String()
			if !strings.HasPrefix(got, "<!DOCTYPE html>\n<html>") {
				t.Errorf("missing doctype: %q", got)
			}
			if indented := strings.Contains(got, "\n  <head>"); indented != tt.indented {
				t.Errorf("indented = %v, want %v: %q", indented, tt.indented, got)
			}
		})
	}
}
