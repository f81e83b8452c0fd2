package widget

import "github.com/vango-dev/docwidget/pkg/vdom"

// handleOpenDocuments fills the modal for the trigger's jamaah, shows it and
// loads the stored documents.
func (c *Controller) handleOpenDocuments(x *Context) error {
	trigger := x.Target()
	nik := trigger.Data("nik")
	name := trigger.Data("name")

	if c.els.nik != nil {
		c.els.nik.SetAttr("value", nik)
	}
	if c.els.name != nil {
		c.els.name.SetText(name)
	}
	c.resetForm()
	c.nik = nik
	c.documents = nil
	c.showModal()

	c.fetchSeq++
	seq := c.fetchSeq
	c.changed()

	var (
		docs map[string]string
		err  error
	)
	x.unlocked(func() {
		docs, err = c.deps.Endpoint.Documents(x.StdContext(), nik)
	})

	if seq != c.fetchSeq {
		c.logger.Debug("stale document fetch discarded", "nik", nik)
		return nil
	}
	if err != nil {
		c.logger.Error("fetch documents failed", "nik", nik, "error", err)
		return wrapEndpointError(err, "DW203")
	}

	c.documents = docs
	for _, dt := range c.cfg.DocumentTypes {
		container, ok := c.els.previews[dt.ID]
		if !ok {
			continue
		}
		if path := docs[dt.ID]; path != "" {
			container.ReplaceChildren(documentActions(dt.ID, path))
		} else {
			container.ReplaceChildren(noFilePlaceholder())
		}
	}
	return nil
}

// handleModalHidden resets the form once the modal is closed.
func (c *Controller) handleModalHidden(x *Context) error {
	c.fetchSeq++
	c.resetForm()
	c.hideModal()
	return nil
}

// handleAck routes a notice acknowledgement to the notifier.
func (c *Controller) handleAck(x *Context) error {
	if !c.deps.Notifier.Ack(x.Event().Notice) {
		c.logger.Debug("ack for unknown notice", "notice", x.Event().Notice)
	}
	return nil
}

func (c *Controller) showModal() {
	if m := c.els.modal; m != nil {
		m.AddClass("show")
		m.SetAttr("style", "display: block")
		m.SetAttr("aria-modal", "true")
		m.RemoveAttr("aria-hidden")
	}
}

func (c *Controller) hideModal() {
	if m := c.els.modal; m != nil {
		m.RemoveClass("show")
		m.RemoveAttr("style")
		m.RemoveAttr("aria-modal")
		m.SetAttr("aria-hidden", "true")
	}
}

// documentActions renders the preview and download buttons for a stored file.
func documentActions(docType, path string) *vdom.VNode {
	return vdom.Div(vdom.Class("btn-group", "btn-group-sm"),
		vdom.Button(
			vdom.ID(docType+"_preview_btn"),
			vdom.Type("button"),
			vdom.Class("btn", "btn-outline-primary", "btn-sm"),
			vdom.Data("action", string(ActionPreview)),
			vdom.Data("path", path),
			vdom.Data("type", docType),
			vdom.I(vdom.Class("fas", "fa-eye")),
			vdom.Text(" Preview"),
		),
		vdom.Button(
			vdom.ID(docType+"_download_btn"),
			vdom.Type("button"),
			vdom.Class("btn", "btn-outline-secondary", "btn-sm"),
			vdom.Data("action", string(ActionDownload)),
			vdom.Data("path", path),
			vdom.Data("type", docType),
			vdom.I(vdom.Class("fas", "fa-download")),
			vdom.Text(" Download"),
		),
	)
}

func noFilePlaceholder() *vdom.VNode {
	return vdom.Small(vdom.Class("text-muted"), vdom.Text("No file uploaded"))
}
