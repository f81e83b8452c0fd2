package widget

import (
	"strings"

	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
)

// Jamaah is one pilgrim whose documents can be opened from the page.
type Jamaah struct {
	NIK  string
	Name string
}

// PageData describes the host page around the widget.
type PageData struct {
	Title  string
	Jamaah []Jamaah

	// Stylesheets are linked in the head.
	Stylesheets []string

	// ScriptSrc is the thin client script. Empty omits it.
	ScriptSrc string
}

// DefaultStylesheets are linked when PageData.Stylesheets is nil.
var DefaultStylesheets = []string{
	"https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css",
	"https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css",
}

// BuildPage returns a full HTML document with one trigger per jamaah and the
// document modal.
func BuildPage(cfg Config, data PageData) *vdom.VNode {
	cfg = cfg.withDefaults()
	title := data.Title
	if title == "" {
		title = "Jamaah Documents"
	}
	sheets := data.Stylesheets
	if sheets == nil {
		sheets = DefaultStylesheets
	}

	return vdom.Html(
		vdom.Head(
			vdom.Meta(vdom.Charset("utf-8")),
			vdom.Title(vdom.Text(title)),
			vdom.Range(sheets, func(href string, _ int) *vdom.VNode {
				return vdom.Link(vdom.Rel("stylesheet"), vdom.Href(href))
			}),
		),
		vdom.Body(
			vdom.Main(vdom.Class("container", "py-4"),
				vdom.H1(vdom.Class("h4", "mb-3"), vdom.Text(title)),
				vdom.Range(data.Jamaah, func(j Jamaah, _ int) *vdom.VNode {
					return Trigger(j)
				}),
			),
			Modal(cfg),
			vdom.If(data.ScriptSrc != "", vdom.Script(vdom.Src(data.ScriptSrc))),
		),
	)
}

// Trigger returns the button that opens the modal for j.
func Trigger(j Jamaah) *vdom.VNode {
	return vdom.Button(
		vdom.ID(TriggerID(j.NIK)),
		vdom.Type("button"),
		vdom.Class("btn", "btn-sm", "btn-primary", "me-2"),
		vdom.Data("action", string(ActionOpenDocuments)),
		vdom.Data("nik", j.NIK),
		vdom.Data("name", j.Name),
		vdom.I(vdom.Class("fas", "fa-folder-open")),
		vdom.Textf(" %s", j.Name),
	)
}

// Modal returns the document modal with the upload form.
func Modal(cfg Config) *vdom.VNode {
	cfg = cfg.withDefaults()
	accept := cfg.Rules().Accept()

	return vdom.Div(
		vdom.ID(ModalID),
		vdom.Class("modal", "fade"),
		vdom.TabIndex(-1),
		vdom.Role("dialog"),
		vdom.AriaHidden(true),
		vdom.Div(vdom.Class("modal-dialog", "modal-lg"),
			vdom.Div(vdom.Class("modal-content"),
				vdom.Div(vdom.Class("modal-header"),
					vdom.H5(vdom.Class("modal-title"),
						vdom.Text("Documents: "),
						vdom.Span(vdom.ID(NameID)),
					),
					vdom.Button(
						vdom.Type("button"),
						vdom.Class("btn-close"),
						vdom.Data("dismiss", "modal"),
						vdom.AriaLabel("Close"),
					),
				),
				vdom.Div(vdom.Class("modal-body"),
					vdom.Form(
						vdom.ID(FormID),
						vdom.Method("post"),
						vdom.EncType("multipart/form-data"),
						vdom.Input(vdom.Type("hidden"), vdom.ID(NikID), vdom.Name("nik"), vdom.Value("")),
						vdom.Range(cfg.DocumentTypes, func(dt DocumentType, _ int) *vdom.VNode {
							return documentField(dt, accept)
						}),
						vdom.Small(vdom.Class("form-text", "text-muted"),
							vdom.Textf("Allowed: %s. Max %sMB per file.",
								strings.Join(cfg.Rules().Extensions(), ", "), upload.FormatMB(cfg.MaxFileSize, -1)),
						),
						vdom.Div(
							vdom.ID(ProgressID),
							vdom.Class("progress", "mt-3", "d-none"),
							vdom.Div(
								vdom.Class("progress-bar"),
								vdom.Role("progressbar"),
								vdom.StyleAttr("width: 0%"),
								vdom.AriaValueNow(0),
								vdom.AriaValueMin(0),
								vdom.AriaValueMax(100),
								vdom.Text("0%"),
							),
						),
					),
				),
				vdom.Div(vdom.Class("modal-footer"),
					vdom.Button(
						vdom.Type("button"),
						vdom.Class("btn", "btn-secondary"),
						vdom.Data("dismiss", "modal"),
						vdom.Text("Close"),
					),
					vdom.Button(
						vdom.ID(UploadBtnID),
						vdom.Type("button"),
						vdom.Class("btn", "btn-primary"),
						vdom.I(vdom.Class("fas", "fa-upload")),
						vdom.Text(" Upload"),
					),
				),
			),
		),
	)
}

func documentField(dt DocumentType, accept string) *vdom.VNode {
	return vdom.Div(vdom.Class("mb-3"),
		vdom.Label(vdom.For(dt.ID), vdom.Class("form-label"), vdom.Text(dt.Label)),
		vdom.Input(
			vdom.Type("file"),
			vdom.Class("form-control"),
			vdom.ID(dt.ID),
			vdom.Name(dt.ID),
			vdom.Accept(accept),
		),
		vdom.Div(vdom.ID(PreviewID(dt.ID)), vdom.Class("mt-1", "document-preview"), noFilePlaceholder()),
	)
}
