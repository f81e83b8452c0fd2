package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vango-dev/docwidget/pkg/render"
	"github.com/vango-dev/docwidget/pkg/vdom"
)

// Event names dispatched to the browser.
const (
	ModalEvent = "docwidget:modal"
	AlertEvent = "docwidget:alert"
)

// Level represents the notice type.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Kind selects a notifier implementation.
type Kind string

const (
	KindModal Kind = "modal"
	KindAlert Kind = "alert"
)

// Notice is a single message shown to the user.
type Notice struct {
	Level   Level
	Title   string
	Message string

	// Body is rich content such as an embedded preview. Alert can't render
	// it and shows Fallback instead.
	Body     *vdom.VNode
	Fallback string

	// Wide asks for a large dialog (previews).
	Wide bool

	// OnAck runs once when the user dismisses the notice.
	OnAck func()
}

// Notifier shows notices and routes acknowledgements back to them.
type Notifier interface {
	// Show emits the notice and returns its id.
	Show(n Notice) string

	// Ack runs the pending callback for id. It reports false for unknown or
	// already acknowledged ids.
	Ack(id string) bool
}

// Emitter sends a named custom event to the browser.
type Emitter interface {
	Emit(name string, data any)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(name string, data any)

// Emit implements Emitter.
func (f EmitterFunc) Emit(name string, data any) { f(name, data) }

// Option configures a notifier.
type Option func(*base)

// WithAutoAck acknowledges every notice right after it is emitted.
func WithAutoAck() Option {
	return func(b *base) { b.autoAck = true }
}

// WithIDGenerator replaces the uuid-based notice id generator.
func WithIDGenerator(fn func() string) Option {
	return func(b *base) { b.newID = fn }
}

// New returns the notifier for kind.
func New(kind Kind, e Emitter, opts ...Option) (Notifier, error) {
	switch kind {
	case KindModal, "":
		return NewModal(e, opts...), nil
	case KindAlert:
		return NewAlert(e, opts...), nil
	default:
		return nil, fmt.Errorf("notify: unknown notifier kind %q", kind)
	}
}

// base holds the acknowledgement bookkeeping shared by both notifiers.
type base struct {
	emitter Emitter
	autoAck bool
	newID   func() string

	mu      sync.Mutex
	pending map[string]func()
}

func newBase(e Emitter, opts []Option) base {
	b := base{
		emitter: e,
		newID:   uuid.NewString,
		pending: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.emitter == nil {
		b.emitter = EmitterFunc(func(string, any) {})
	}
	return b
}

func (b *base) register(onAck func()) string {
	id := b.newID()
	b.mu.Lock()
	b.pending[id] = onAck
	b.mu.Unlock()
	return id
}

// Ack implements Notifier.
func (b *base) Ack(id string) bool {
	b.mu.Lock()
	fn, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()

	if !ok {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

// Pending returns the number of notices awaiting acknowledgement.
func (b *base) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *base) emit(name, id string, payload map[string]any) string {
	payload["id"] = id
	b.emitter.Emit(name, payload)
	if b.autoAck {
		b.Ack(id)
	}
	return id
}

// Modal is the rich notifier.
type Modal struct {
	base
}

// NewModal creates a Modal notifier emitting through e.
func NewModal(e Emitter, opts ...Option) *Modal {
	return &Modal{base: newBase(e, opts)}
}

// Show implements Notifier.
//
// The browser receives a CustomEvent with:
//   - event.type = "docwidget:modal"
//   - event.detail = { id, level, title, message, html?, wide? }
func (m *Modal) Show(n Notice) string {
	payload := map[string]any{
		"level":   string(levelOrInfo(n.Level)),
		"title":   n.Title,
		"message": n.Message,
	}
	if n.Body != nil {
		payload["html"] = render.MustHTML(n.Body)
	}
	if n.Wide {
		payload["wide"] = true
	}
	return m.emit(ModalEvent, m.register(n.OnAck), payload)
}

// Alert is the plain-text notifier.
type Alert struct {
	base
}

// NewAlert creates an Alert notifier emitting through e.
func NewAlert(e Emitter, opts ...Option) *Alert {
	return &Alert{base: newBase(e, opts)}
}

// Show implements Notifier.
//
// The browser receives a CustomEvent with:
//   - event.type = "docwidget:alert"
//   - event.detail = { id, message }
func (a *Alert) Show(n Notice) string {
	var parts []string
	for _, p := range []string{n.Title, n.Message} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if n.Body != nil && n.Fallback != "" {
		parts = append(parts, n.Fallback)
	}
	text := strings.Join(parts, "\n\n")
	return a.emit(AlertEvent, a.register(n.OnAck), map[string]any{
		"message": text,
	})
}

func levelOrInfo(l Level) Level {
	if l == "" {
		return LevelInfo
	}
	return l
}

// Success shows a success notice.
func Success(n Notifier, title, message string, onAck func()) string {
	return n.Show(Notice{Level: LevelSuccess, Title: title, Message: message, OnAck: onAck})
}

// Error shows an error notice.
func Error(n Notifier, title, message string) string {
	return n.Show(Notice{Level: LevelError, Title: title, Message: message})
}

// Warning shows a warning notice.
func Warning(n Notifier, title, message string) string {
	return n.Show(Notice{Level: LevelWarning, Title: title, Message: message})
}
