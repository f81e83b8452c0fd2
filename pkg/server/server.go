package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
	"github.com/vango-dev/docwidget/pkg/middleware"
	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/render"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
	"github.com/vango-dev/docwidget/pkg/widget"
)

// SessionCookieName carries the session id.
const SessionCookieName = "docwidget_session"

// maxEventBytes bounds a decoded event body.
const maxEventBytes = 1 << 20

// Config configures a Server.
type Config struct {
	// Widget is the configuration handed to every controller.
	Widget widget.Config

	// Endpoint is the upload endpoint. Required.
	Endpoint upload.Endpoint

	// Resolver builds preview and download URLs. Required.
	Resolver upload.Resolver

	// Selections stages files picked in the browser. Required.
	Selections upload.Store

	// Notifier selects the notice implementation. Default: modal.
	Notifier notify.Kind

	// Title is the host page heading.
	Title string

	// PrettyHTML indents the host page. Fragment renders stay compact.
	PrettyHTML bool

	// SelectionLimit bounds a staged file. Default: 32MB.
	SelectionLimit int64

	// SessionTTL drops sessions idle for longer. Default: 30m.
	SessionTTL time.Duration

	// Middleware wraps every widget action, after metrics.
	Middleware []widget.Middleware

	// Metrics records actions, sessions and selections. Nil disables.
	Metrics *middleware.Metrics

	// MetricsPath mounts the Prometheus handler. Empty disables it.
	MetricsPath string

	// Gatherer backs MetricsPath. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// CheckOrigin validates WebSocket upgrades. Default: same origin.
	CheckOrigin func(r *http.Request) bool

	// NewScheduler returns the timer source for a new controller.
	// Default: widget.RealScheduler.
	NewScheduler func() widget.Scheduler

	// ShutdownTimeout bounds a graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// Server hosts widget sessions.
type Server struct {
	config   Config
	router   chi.Router
	page     *render.Renderer
	sessions *sessionManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time

	httpServer *http.Server

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a Server and starts its session janitor.
func New(config Config) (*Server, error) {
	if config.Endpoint == nil {
		return nil, errors.New("server: Config.Endpoint is required")
	}
	if config.Resolver == nil {
		return nil, errors.New("server: Config.Resolver is required")
	}
	if config.Selections == nil {
		return nil, errors.New("server: Config.Selections is required")
	}
	if config.SelectionLimit <= 0 {
		config.SelectionLimit = 32 << 20
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 30 * time.Minute
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Metrics != nil {
		config.Selections = meteredStore{Store: config.Selections, metrics: config.Metrics}
		config.Middleware = append([]widget.Middleware{config.Metrics.Middleware()}, config.Middleware...)
	}

	logger := config.Logger.With("component", "server")
	s := &Server{
		config: config,
		logger: logger,
		now:    time.Now,
		page:   render.NewRenderer(render.RendererConfig{Pretty: config.PrettyHTML}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		done: make(chan struct{}),
	}
	s.sessions = newSessionManager(config.SessionTTL, s.sessionClosed)
	s.router = s.buildRouter()

	s.wg.Add(1)
	go s.janitor()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Get("/client.js", serveClient)
	r.Head("/client.js", serveClient)

	r.Get("/documents/{nik}", s.handlePage)
	r.Post("/events", s.handleEvents)
	r.Get("/ws", s.handleWebSocket)
	r.With(s.requireSession).Post("/files", upload.SelectionHandler(s.config.Selections, upload.SelectionConfig{
		MaxSize: s.config.SelectionLimit,
		Owner:   sessionID,
		Logger:  s.config.Logger,
	}).ServeHTTP)

	if s.config.MetricsPath != "" {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.len()
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	nik := chi.URLParam(r, "nik")
	name := r.URL.Query().Get("name")
	if name == "" {
		name = nik
	}

	sess, err := s.newSession(nik, name)
	if err != nil {
		s.logger.Error("create session failed", "nik", nik, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.sessions.add(sess, s.now())
	if s.config.Metrics != nil {
		s.config.Metrics.RecordSessionCreate()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	var renderErr error
	sess.ctrl.View(func(doc *vdom.Document) {
		renderErr = s.page.Page(w, doc.Root())
	})
	if renderErr != nil {
		s.logger.Error("render page failed", "session", sess.id, "error", renderErr)
	}
}

// eventResponse is the body of POST /events.
type eventResponse struct {
	Messages []Message `json:"messages"`

	// Error is the code of a failure the messages already report.
	Error string `json:"error,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(r)
	if sess == nil {
		writeError(w, http.StatusNotFound, dwerrors.New("DW401"))
		return
	}

	var ev widget.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err := dec.Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, dwerrors.New("DW402").Wrap(err))
		return
	}

	resp := eventResponse{}
	if err := sess.dispatch(r.Context(), ev); err != nil {
		resp.Error = dwerrors.Code(err)
		s.logger.Debug("action failed", "session", sess.id, "type", ev.Type, "target", ev.Target, "error", err)
	}
	resp.Messages = sess.drain()
	if resp.Messages == nil {
		resp.Messages = []Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// requireSession rejects requests without a live session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessionFor(r) == nil {
			writeError(w, http.StatusNotFound, dwerrors.New("DW401"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionFor(r *http.Request) *Session {
	id := sessionID(r)
	if id == "" {
		return nil
	}
	return s.sessions.get(id, s.now())
}

// sessionID returns the session cookie value, or "".
func sessionID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) sessionClosed(sess *Session) {
	if s.config.Metrics != nil {
		s.config.Metrics.RecordSessionDestroy()
	}
	s.logger.Debug("session closed", "session", sess.id)
}

// janitor drops idle sessions and stale staged files.
func (s *Server) janitor() {
	defer s.wg.Done()

	interval := s.config.SessionTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Server) sweep() {
	if n := s.sessions.sweep(s.now()); n > 0 {
		s.logger.Info("idle sessions closed", "count", n)
	}
	if err := s.config.Selections.Cleanup(s.config.SessionTTL); err != nil {
		s.logger.Warn("selection cleanup failed", "error", err)
	}
}

// Close stops the janitor and closes every session.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.sessions.closeAll()
	})
}

// Run serves on addr until ctx is done or the process is interrupted.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session, then stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err *dwerrors.WidgetError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: err.Code, Message: err.Message})
}

// meteredStore records the size of every staged file.
type meteredStore struct {
	upload.Store
	metrics *middleware.Metrics
}

func (m meteredStore) Save(owner, filename, contentType string, size int64, r io.Reader) (string, error) {
	id, err := m.Store.Save(owner, filename, contentType, size, r)
	if err == nil {
		m.metrics.RecordSelection(size)
	}
	return id, err
}
