package widget

import (
	"errors"
	"net/url"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
)

// handleUpload validates the selections and sends them in one request.
func (c *Controller) handleUpload(x *Context) error {
	selected := c.selected()
	if len(selected) == 0 {
		notify.Warning(c.deps.Notifier, "No files selected", "Please select at least one document to upload.")
		return dwerrors.New("DW103")
	}

	valid := true
	for _, s := range selected {
		if !c.validateField(s.input) {
			valid = false
		}
	}
	if !valid {
		return dwerrors.New("DW502")
	}

	req := c.buildRequest(selected)

	c.uploading = true
	c.disableControls()
	c.progress.start()
	c.changed()

	var err error
	x.unlocked(func() {
		_, err = c.deps.Endpoint.Upload(x.StdContext(), req)
	})

	c.enableControls()
	c.uploading = false

	if err != nil {
		c.progress.fail()
		c.logger.Error("upload failed", "nik", req.Fields.Get("nik"), "parts", len(req.Parts), "error", err)
		notify.Error(c.deps.Notifier, "Upload failed", failureMessage(err))
		return wrapEndpointError(err, "DW201")
	}

	c.progress.complete()
	c.logger.Info("upload complete", "nik", req.Fields.Get("nik"), "parts", len(req.Parts))
	notify.Success(c.deps.Notifier, "Upload successful", "Documents uploaded successfully.", c.deps.Browser.Reload)
	return nil
}

// buildRequest collects the named non-file form fields and one part per
// selected document type.
func (c *Controller) buildRequest(selected []selection) *upload.Request {
	req := &upload.Request{Fields: url.Values{}}

	if c.els.form != nil {
		for _, n := range c.els.form.FindAll(isFormField) {
			name := n.Attr("name")
			if name == "" || n.Attr("type") == "file" {
				continue
			}
			req.Fields.Add(name, n.Attr("value"))
		}
	}

	for _, s := range selected {
		field := s.input.Attr("name")
		if field == "" {
			field = s.docType
		}
		req.Parts = append(req.Parts, upload.Part{Field: field, File: s.file})
	}
	return req
}

// disableControls disables every enabled form control and the upload
// button, remembering which ones to restore.
func (c *Controller) disableControls() {
	c.disabled = c.disabled[:0]
	var controls []*vdom.VNode
	if c.els.form != nil {
		controls = c.els.form.FindAll(isControl)
	}
	if c.els.uploadBtn != nil {
		controls = append(controls, c.els.uploadBtn)
	}
	for _, n := range controls {
		if n.HasAttr("disabled") {
			continue
		}
		n.SetAttr("disabled", true)
		c.disabled = append(c.disabled, n)
	}
}

func (c *Controller) enableControls() {
	for _, n := range c.disabled {
		n.RemoveAttr("disabled")
	}
	c.disabled = c.disabled[:0]
}

// failureMessage is the text of the "Upload failed" notice.
func failureMessage(err error) string {
	var rejected *upload.RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	var status *upload.StatusError
	if errors.As(err, &status) {
		return "The server could not process the upload. Please try again."
	}
	return "The upload could not be completed. Check your connection and try again."
}

// wrapEndpointError picks the registry code for an endpoint failure.
func wrapEndpointError(err error, fallback string) error {
	if errors.Is(err, upload.ErrRejected) {
		return dwerrors.New("DW202").Wrap(err)
	}
	return dwerrors.New(fallback).Wrap(err)
}

func isFormField(n *vdom.VNode) bool {
	switch n.Tag {
	case "input", "select", "textarea":
		return true
	}
	return false
}

func isControl(n *vdom.VNode) bool {
	return isFormField(n) || n.Tag == "button"
}
