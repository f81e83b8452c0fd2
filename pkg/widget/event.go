package widget

import "github.com/vango-dev/docwidget/pkg/vdom"

// Event types sent by the browser.
const (
	EventClick  = "click"
	EventChange = "change"
	EventSubmit = "submit"
	EventHidden = "hidden"
	EventAck    = "ack"
)

// Event is one browser event.
type Event struct {
	// Type is click, change, submit, hidden or ack.
	Type string `json:"type"`

	// Target is the id of the element the event fired on.
	Target string `json:"target,omitempty"`

	// File describes the new selection of a file input. Nil clears it.
	File *FileInfo `json:"file,omitempty"`

	// Values carries current values of text inputs, keyed by element id.
	Values map[string]string `json:"values,omitempty"`

	// Notice is the id of the acknowledged notice.
	Notice string `json:"notice,omitempty"`
}

// FileInfo describes a file picked in the browser. TempID is set when the
// file was staged on the server; otherwise only its metadata is known.
type FileInfo struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	TempID string `json:"tempId,omitempty"`
}

// Browser performs navigation side effects in the browser.
type Browser interface {
	// Reload reloads the page.
	Reload()

	// Click clicks an element that exists in the document only for the
	// duration of the call.
	Click(node *vdom.VNode)
}
