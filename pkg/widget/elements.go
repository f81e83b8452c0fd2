package widget

import "github.com/vango-dev/docwidget/pkg/vdom"

// DOM contract ids.
const (
	ModalID     = "documentModal"
	FormID      = "documentForm"
	UploadBtnID = "uploadDocumentsBtn"
	ProgressID  = "uploadProgress"
	NikID       = "jamaahNik"
	NameID      = "jamaahName"
)

// PreviewID returns the id of a document type's preview container.
func PreviewID(docType string) string { return docType + "_preview" }

// FeedbackID returns the id of an input's validation message.
func FeedbackID(inputID string) string { return inputID + "_feedback" }

// TriggerID returns the id of the button that opens the modal for nik.
func TriggerID(nik string) string { return "open_" + nik }

// elements caches the nodes the controller works with. It is filled once by
// Init and is not refreshed if the document is replaced.
type elements struct {
	modal       *vdom.VNode
	form        *vdom.VNode
	uploadBtn   *vdom.VNode
	progress    *vdom.VNode
	progressBar *vdom.VNode
	nik         *vdom.VNode
	name        *vdom.VNode

	inputs   map[string]*vdom.VNode
	previews map[string]*vdom.VNode
}

// Init looks up the DOM contract elements. Missing elements are logged and
// the features depending on them become no-ops.
func (c *Controller) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
}

func (c *Controller) init() {
	lookup := func(id string) *vdom.VNode {
		n := c.doc.GetElementByID(id)
		if n == nil {
			c.logger.Warn("element not found", "id", id, "code", "DW302")
		}
		return n
	}

	els := elements{
		modal:     lookup(ModalID),
		form:      lookup(FormID),
		uploadBtn: lookup(UploadBtnID),
		progress:  lookup(ProgressID),
		nik:       lookup(NikID),
		name:      lookup(NameID),
		inputs:    make(map[string]*vdom.VNode, len(c.cfg.DocumentTypes)),
		previews:  make(map[string]*vdom.VNode, len(c.cfg.DocumentTypes)),
	}

	if els.progress != nil {
		els.progressBar = els.progress
		for _, child := range els.progress.Children {
			if child.HasClass("progress-bar") {
				els.progressBar = child
				break
			}
		}
	}

	for _, dt := range c.cfg.DocumentTypes {
		if n := lookup(dt.ID); n != nil {
			els.inputs[dt.ID] = n
		}
		if n := lookup(PreviewID(dt.ID)); n != nil {
			els.previews[dt.ID] = n
		}
	}

	c.els = els
}

// docTypeOf returns the document type of a file input, or "".
func (c *Controller) docTypeOf(node *vdom.VNode) string {
	for docType, input := range c.els.inputs {
		if input == node {
			return docType
		}
	}
	return ""
}
