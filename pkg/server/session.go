package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/render"
	"github.com/vango-dev/docwidget/pkg/vdom"
	"github.com/vango-dev/docwidget/pkg/widget"
)

// Message types sent to the thin client.
const (
	MessageRender = "render"
	MessageEvent  = "event"
	MessageReload = "reload"
	MessageClick  = "click"
)

const writeTimeout = 10 * time.Second

// Message is one instruction for the thin client.
type Message struct {
	Type string `json:"type"`

	// ID and HTML belong to render: the element to replace and its new
	// outer HTML.
	ID   string `json:"id,omitempty"`
	HTML string `json:"html,omitempty"`

	// Name and Detail belong to event.
	Name   string `json:"name,omitempty"`
	Detail any    `json:"detail,omitempty"`

	// Href and Download belong to click.
	Href     string `json:"href,omitempty"`
	Download string `json:"download,omitempty"`
}

// Session is one browser tab's widget. It is the notifier's emitter and the
// controller's browser: everything they produce is queued as messages, or
// written straight to the WebSocket when one is attached.
type Session struct {
	id     string
	ctrl   *widget.Controller
	logger *slog.Logger

	mu       sync.Mutex
	outbox   []Message
	conn     *websocket.Conn
	lastSeen time.Time
	closed   bool
}

func (s *Server) newSession(nik, name string) (*Session, error) {
	sess := &Session{id: uuid.NewString()}
	sess.logger = s.logger.With("session", sess.id)

	doc := vdom.NewDocument(widget.BuildPage(s.config.Widget, widget.PageData{
		Title:     s.config.Title,
		Jamaah:    []widget.Jamaah{{NIK: nik, Name: name}},
		ScriptSrc: "/client.js",
	}))

	notifier, err := notify.New(s.config.Notifier, sess)
	if err != nil {
		return nil, err
	}

	opts := []widget.Option{
		widget.WithLogger(s.config.Logger),
		widget.WithSelections(s.config.Selections, sess.id),
		widget.WithOnChange(sess.changed),
		widget.WithMiddleware(s.config.Middleware...),
	}
	if s.config.NewScheduler != nil {
		opts = append(opts, widget.WithScheduler(s.config.NewScheduler()))
	}

	ctrl, err := widget.New(doc, s.config.Widget, widget.Deps{
		Endpoint: s.config.Endpoint,
		Resolver: s.config.Resolver,
		Notifier: notifier,
		Browser:  sess,
	}, opts...)
	if err != nil {
		return nil, err
	}
	sess.ctrl = ctrl
	return sess, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Emit implements notify.Emitter.
func (s *Session) Emit(name string, data any) {
	s.push(Message{Type: MessageEvent, Name: name, Detail: data})
}

// Reload implements widget.Browser.
func (s *Session) Reload() {
	s.push(Message{Type: MessageReload})
}

// Click implements widget.Browser.
func (s *Session) Click(node *vdom.VNode) {
	s.push(Message{Type: MessageClick, Href: node.Attr("href"), Download: node.Attr("download")})
}

// changed is the controller's OnChange hook.
func (s *Session) changed(doc *vdom.Document) {
	if m, ok := s.renderModal(doc); ok {
		s.push(m)
	}
}

func (s *Session) renderModal(doc *vdom.Document) (Message, bool) {
	modal := doc.GetElementByID(widget.ModalID)
	if modal == nil {
		return Message{}, false
	}
	html, err := render.HTML(modal)
	if err != nil {
		s.logger.Error("render modal failed", "error", err)
		return Message{}, false
	}
	return Message{Type: MessageRender, ID: widget.ModalID, HTML: html}, true
}

// dispatch runs ev and queues the resulting render.
func (s *Session) dispatch(ctx context.Context, ev widget.Event) error {
	err := s.ctrl.Dispatch(ctx, ev)
	s.ctrl.View(func(doc *vdom.Document) {
		if m, ok := s.renderModal(doc); ok {
			s.push(m)
		}
	})
	return err
}

// push sends m over the WebSocket or queues it. A queued render replaces an
// older render of the same element.
func (s *Session) push(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.conn != nil {
		if err := s.write(m); err == nil {
			return
		}
	}
	if m.Type == MessageRender {
		kept := s.outbox[:0]
		for _, old := range s.outbox {
			if old.Type != MessageRender || old.ID != m.ID {
				kept = append(kept, old)
			}
		}
		s.outbox = kept
	}
	s.outbox = append(s.outbox, m)
}

// write sends m on the attached connection. On failure the connection is
// dropped. Callers hold s.mu.
func (s *Session) write(m Message) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(m); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
		s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// drain returns and clears the queued messages.
func (s *Session) drain() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outbox
	s.outbox = nil
	return out
}

// attach makes conn the session's connection, replacing an older one, and
// flushes queued messages to it.
func (s *Session) attach(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil && s.conn != conn {
		s.conn.Close()
	}
	s.conn = conn

	pending := s.outbox
	s.outbox = nil
	for i, m := range pending {
		if err := s.write(m); err != nil {
			s.outbox = append(s.outbox, pending[i:]...)
			return
		}
	}
}

// detach forgets conn if it is still the session's connection.
func (s *Session) detach(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn = nil
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// close releases the controller's selections and the connection.
func (s *Session) close() {
	s.ctrl.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.outbox = nil
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// sessionManager tracks live sessions and drops idle ones.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl     time.Duration
	onClose func(*Session)
}

func newSessionManager(ttl time.Duration, onClose func(*Session)) *sessionManager {
	return &sessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		onClose:  onClose,
	}
}

func (m *sessionManager) add(s *Session, now time.Time) {
	s.touch(now)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
}

// get returns the session and marks it active.
func (m *sessionManager) get(id string, now time.Time) *Session {
	m.mu.Lock()
	s := m.sessions[id]
	m.mu.Unlock()
	if s != nil {
		s.touch(now)
	}
	return s
}

func (m *sessionManager) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// sweep closes sessions idle for longer than the TTL. Sessions with an open
// WebSocket are kept.
func (m *sessionManager) sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.connected() || now.Sub(s.idleSince()) <= m.ttl {
			continue
		}
		expired = append(expired, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.finish(s)
	}
	return len(expired)
}

func (m *sessionManager) closeAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		m.finish(s)
	}
}

func (m *sessionManager) finish(s *Session) {
	s.close()
	if m.onClose != nil {
		m.onClose(s)
	}
}
