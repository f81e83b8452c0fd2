package widget

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
)

// Deps are the collaborators a Controller cannot work without.
type Deps struct {
	// Endpoint is the upload endpoint.
	Endpoint upload.Endpoint

	// Resolver builds preview and download URLs.
	Resolver upload.Resolver

	// Notifier shows blocking notices.
	Notifier notify.Notifier

	// Browser performs reloads and synthetic clicks.
	Browser Browser
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler sets the timer source. Default: RealScheduler().
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithRandom sets the source of progress increments. fn(n) must return a
// value in [0, n).
func WithRandom(fn func(n int) int) Option {
	return func(c *Controller) { c.randIntn = fn }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l.With("component", "widget") }
}

// WithMiddleware appends action middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Controller) { c.middleware = append(c.middleware, mw...) }
}

// WithSelections sets the store temp selections are claimed from, and the
// owner they were staged for.
func WithSelections(s upload.Store, owner string) Option {
	return func(c *Controller) {
		c.store = s
		c.storeOwner = owner
	}
}

// WithOnChange registers a hook run, with the controller lock held, whenever
// the document changes outside of Dispatch's own return path: progress ticks,
// the fade-out, and right before a network call starts. The hook must not
// call back into the controller.
func WithOnChange(fn func(doc *vdom.Document)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the widget document and runs its actions.
type Controller struct {
	mu sync.Mutex

	doc   *vdom.Document
	cfg   Config
	rules upload.Rules
	deps  Deps

	sched      Scheduler
	randIntn   func(n int) int
	logger     *slog.Logger
	middleware []Middleware
	store      upload.Store
	storeOwner string
	onChange   func(doc *vdom.Document)

	els      elements
	handlers map[Action]Handler
	progress progress

	// disabled holds the controls disabled for the running upload.
	disabled  []*vdom.VNode
	uploading bool

	// fetchSeq identifies the latest document fetch; older results are
	// discarded.
	fetchSeq  int
	nik       string
	documents map[string]string
}

// New creates a controller over doc and runs Init.
func New(doc *vdom.Document, cfg Config, deps Deps, opts ...Option) (*Controller, error) {
	if doc == nil {
		return nil, errors.New("widget: nil document")
	}
	if deps.Endpoint == nil {
		return nil, errors.New("widget: Deps.Endpoint is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("widget: Deps.Resolver is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("widget: Deps.Notifier is required")
	}
	if deps.Browser == nil {
		deps.Browser = nopBrowser{}
	}

	cfg = cfg.withDefaults()
	c := &Controller{
		doc:    doc,
		cfg:    cfg,
		rules:  cfg.Rules(),
		deps:   deps,
		sched:  RealScheduler(),
		logger: slog.Default().With("component", "widget"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.randIntn == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		c.randIntn = rng.Intn
	}

	c.progress = progress{c: c}
	c.handlers = c.defaultHandlers()
	c.Init()
	return c, nil
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// View runs fn with the controller lock held. Use it to render the document
// outside of the OnChange hook.
func (c *Controller) View(fn func(doc *vdom.Document)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.doc)
}

// NIK returns the NIK the modal was last opened for.
func (c *Controller) NIK() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nik
}

// Documents returns the stored paths from the last completed fetch.
func (c *Controller) Documents() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.documents))
	for k, v := range c.documents {
		out[k] = v
	}
	return out
}

// SelectFile puts f on the input for docType and validates it, as a change
// event would. It reports whether the file passed validation.
func (c *Controller) SelectFile(docType string, f *upload.File) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	input, ok := c.els.inputs[docType]
	if !ok {
		c.logger.Warn("unknown document type", "type", docType)
		return false
	}
	c.setSelection(input, f)
	return c.validateField(input)
}

// Close stops timers and releases every selection.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress.stop()
	for _, input := range c.els.inputs {
		c.setSelection(input, nil)
	}
}

// changed runs the OnChange hook. Callers hold c.mu.
func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange(c.doc)
	}
}

type nopBrowser struct{}

func (nopBrowser) Reload()           {}
func (nopBrowser) Click(*vdom.VNode) {}
