package widget

import (
	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
)

const selectionProp = "file"

// selectionOf returns the file held by an input, or nil.
func selectionOf(input *vdom.VNode) *upload.File {
	f, _ := input.Prop(selectionProp).(*upload.File)
	return f
}

// setSelection replaces the input's file, closing the previous one.
func (c *Controller) setSelection(input *vdom.VNode, f *upload.File) {
	if old := selectionOf(input); old != nil && old != f {
		if err := old.Close(); err != nil {
			c.logger.Warn("release selection failed", "input", input.ID(), "error", err)
		}
	}
	if f == nil {
		input.SetProp(selectionProp, nil)
		return
	}
	input.SetProp(selectionProp, f)
}

// handleSelectFile stores the new selection of a file input and validates it.
func (c *Controller) handleSelectFile(x *Context) error {
	input := x.Target()
	info := x.Event().File

	if info == nil {
		c.setSelection(input, nil)
		c.clearFeedback(input)
		return nil
	}

	f := &upload.File{Filename: info.Name, Size: info.Size}
	if info.TempID != "" {
		if c.store == nil {
			c.logger.Warn("temp selection without a store", "input", input.ID())
		} else if claimed, err := c.store.Claim(c.storeOwner, info.TempID); err != nil {
			c.logger.Warn("claim selection failed", "input", input.ID(), "temp_id", info.TempID,
				"error", dwerrors.FromError(err, "DW403"))
		} else {
			f = claimed
		}
	}

	c.setSelection(input, f)
	if !c.validateField(input) {
		return dwerrors.New("DW502").WithDetail(input.ID() + ": " + c.feedbackText(input))
	}
	return nil
}

// validateField checks the input's selection and updates its feedback.
// An input without a selection is valid.
func (c *Controller) validateField(input *vdom.VNode) bool {
	f := selectionOf(input)
	if f == nil {
		c.clearFeedback(input)
		return true
	}
	if err := c.rules.Validate(f.Filename, f.Size); err != nil {
		c.showFeedback(input, err.Error())
		return false
	}
	c.clearFeedback(input)
	return true
}

// showFeedback marks input invalid and puts msg in a feedback node right
// after it, replacing an earlier one.
func (c *Controller) showFeedback(input *vdom.VNode, msg string) {
	input.AddClass("is-invalid")

	id := FeedbackID(input.ID())
	if old := c.doc.GetElementByID(id); old != nil {
		c.doc.Remove(old)
	}
	feedback := vdom.Div(vdom.Class("invalid-feedback"), vdom.ID(id), vdom.Text(msg))
	if !c.doc.InsertAfter(input, feedback) {
		c.logger.Warn("feedback not shown, input detached", "input", input.ID())
	}
}

func (c *Controller) clearFeedback(input *vdom.VNode) {
	input.RemoveClass("is-invalid")
	if old := c.doc.GetElementByID(FeedbackID(input.ID())); old != nil {
		c.doc.Remove(old)
	}
}

func (c *Controller) feedbackText(input *vdom.VNode) string {
	if n := c.doc.GetElementByID(FeedbackID(input.ID())); n != nil {
		return n.TextContent()
	}
	return ""
}

// selected returns the populated document-type inputs in configured order.
func (c *Controller) selected() []selection {
	var out []selection
	for _, dt := range c.cfg.DocumentTypes {
		input, ok := c.els.inputs[dt.ID]
		if !ok {
			continue
		}
		if f := selectionOf(input); f != nil {
			out = append(out, selection{docType: dt.ID, input: input, file: f})
		}
	}
	return out
}

type selection struct {
	docType string
	input   *vdom.VNode
	file    *upload.File
}

// resetForm clears selections, feedback and the progress bar.
func (c *Controller) resetForm() {
	for _, input := range c.els.inputs {
		c.setSelection(input, nil)
		c.clearFeedback(input)
	}
	c.progress.reset()
}
