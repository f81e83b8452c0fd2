package widget

import (
	"context"

	"github.com/vango-dev/docwidget/pkg/vdom"
)

// Action identifies a widget behavior in the dispatch table.
type Action string

const (
	ActionOpenDocuments Action = "open-documents"
	ActionSelectFile    Action = "select-file"
	ActionUpload        Action = "upload"
	ActionSubmit        Action = "submit"
	ActionPreview       Action = "preview"
	ActionDownload      Action = "download"
	ActionModalHidden   Action = "modal-hidden"
	ActionAck           Action = "ack"
)

// Handler runs one action. It is called with the controller lock held.
type Handler func(ctx *Context) error

// Context is passed to handlers and middleware for one dispatched event.
type Context struct {
	std    context.Context
	action Action
	event  *Event
	target *vdom.VNode
	c      *Controller
}

// NewContext returns a Context that is not bound to a controller, for running
// middleware on its own.
func NewContext(std context.Context, action Action, ev *Event) *Context {
	if std == nil {
		std = context.Background()
	}
	if ev == nil {
		ev = &Event{}
	}
	return &Context{std: std, action: action, event: ev}
}

// Action returns the resolved action.
func (x *Context) Action() Action { return x.action }

// Event returns the browser event.
func (x *Context) Event() *Event { return x.event }

// Target returns the event's target node. It is nil for ack events.
func (x *Context) Target() *vdom.VNode { return x.target }

// StdContext returns the context for outbound calls.
func (x *Context) StdContext() context.Context { return x.std }

// SetStdContext replaces the context for outbound calls, e.g. with one
// carrying a trace span.
func (x *Context) SetStdContext(ctx context.Context) {
	if ctx != nil {
		x.std = ctx
	}
}

// unlocked runs fn with the controller lock released.
func (x *Context) unlocked(fn func()) {
	x.c.mu.Unlock()
	defer x.c.mu.Lock()
	fn()
}

// Middleware wraps action handlers.
type Middleware interface {
	Handle(ctx *Context, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx *Context, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx *Context, next func() error) error {
	return f(ctx, next)
}

// Chain composes middleware. The first runs outermost.
func Chain(mw ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx *Context, next func() error) error {
		return compose(ctx, mw, next)
	})
}

func compose(ctx *Context, mw []Middleware, handler func() error) error {
	if len(mw) == 0 {
		return handler()
	}
	next := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m, inner := mw[i], next
		next = func() error { return m.Handle(ctx, inner) }
	}
	return next()
}

func (c *Controller) defaultHandlers() map[Action]Handler {
	return map[Action]Handler{
		ActionOpenDocuments: c.handleOpenDocuments,
		ActionSelectFile:    c.handleSelectFile,
		ActionUpload:        c.handleUpload,
		ActionSubmit:        c.handleUpload,
		ActionPreview:       c.handlePreview,
		ActionDownload:      c.handleDownload,
		ActionModalHidden:   c.handleModalHidden,
		ActionAck:           c.handleAck,
	}
}

// Dispatch resolves ev to an action and runs it. Unresolvable events and
// events on disabled elements are ignored and return nil. The returned
// error describes a failure the UI has already reported.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyValues(ev.Values)

	action, target, ok := c.resolve(&ev)
	if !ok {
		c.logger.Debug("event ignored", "type", ev.Type, "target", ev.Target)
		return nil
	}

	handler := c.handlers[action]
	x := &Context{std: ctx, action: action, event: &ev, target: target, c: c}
	return compose(x, c.middleware, func() error { return handler(x) })
}

// resolve maps an event to an action: ack first, then a data-action
// attribute on the target, then the fixed DOM contract elements.
func (c *Controller) resolve(ev *Event) (Action, *vdom.VNode, bool) {
	if ev.Type == EventAck {
		return ActionAck, nil, true
	}

	target := c.doc.GetElementByID(ev.Target)
	if target == nil {
		return "", nil, false
	}
	if target.HasAttr("disabled") {
		c.logger.Debug("event on disabled element dropped", "target", ev.Target)
		return "", nil, false
	}
	// The form itself is never disabled, so a submit during an upload is
	// dropped here.
	if c.uploading && (ev.Type == EventSubmit || target.Data("action") == string(ActionUpload)) {
		c.logger.Debug("event during upload dropped", "type", ev.Type, "target", ev.Target)
		return "", nil, false
	}

	if ev.Type == EventClick {
		if a := Action(target.Data("action")); a != "" {
			if _, known := c.handlers[a]; known {
				return a, target, true
			}
			c.logger.Debug("unknown action", "action", a, "code", "DW301")
			return "", nil, false
		}
	}

	switch {
	case ev.Type == EventSubmit && target == c.els.form:
		return ActionSubmit, target, true
	case ev.Type == EventClick && target == c.els.uploadBtn:
		return ActionUpload, target, true
	case ev.Type == EventChange && c.docTypeOf(target) != "":
		return ActionSelectFile, target, true
	case ev.Type == EventHidden && target == c.els.modal:
		return ActionModalHidden, target, true
	}
	return "", nil, false
}

// applyValues copies browser-side values of text inputs into the document.
func (c *Controller) applyValues(values map[string]string) {
	for id, v := range values {
		n := c.doc.GetElementByID(id)
		if n == nil || n.Tag != "input" || n.Attr("type") == "file" {
			continue
		}
		n.SetAttr("value", v)
	}
}
