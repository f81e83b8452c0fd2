package widget_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/docwidget/pkg/notify"
	"github.com/vango-dev/docwidget/pkg/upload"
	"github.com/vango-dev/docwidget/pkg/vdom"
	"github.com/vango-dev/docwidget/pkg/widget"
)

type fakeEndpoint struct {
	docs        map[string]string
	docsErr     error
	docsCalls   []string
	onDocuments func()

	uploadFn func(ctx context.Context, req *upload.Request) (*upload.Response, error)
	uploads  []*upload.Request
}

func (e *fakeEndpoint) Documents(_ context.Context, nik string) (map[string]string, error) {
	e.docsCalls = append(e.docsCalls, nik)
	if e.onDocuments != nil {
		e.onDocuments()
	}
	if e.docsErr != nil {
		return nil, e.docsErr
	}
	return e.docs, nil
}

func (e *fakeEndpoint) Upload(ctx context.Context, req *upload.Request) (*upload.Response, error) {
	e.uploads = append(e.uploads, req)
	if e.uploadFn != nil {
		return e.uploadFn(ctx, req)
	}
	return &upload.Response{Success: true, Message: "ok"}, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
	ids     []string
	pending map[string]func()
}

func (n *fakeNotifier) Show(notice notify.Notice) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := fmt.Sprintf("n%d", len(n.notices)+1)
	n.notices = append(n.notices, notice)
	n.ids = append(n.ids, id)
	if n.pending == nil {
		n.pending = make(map[string]func())
	}
	n.pending[id] = notice.OnAck
	return id
}

func (n *fakeNotifier) Ack(id string) bool {
	n.mu.Lock()
	fn, ok := n.pending[id]
	delete(n.pending, id)
	n.mu.Unlock()
	if !ok {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

type fakeBrowser struct {
	doc          *vdom.Document
	reloads      int
	clicks       []*vdom.VNode
	inDocOnClick []bool
}

func (b *fakeBrowser) Reload() { b.reloads++ }

func (b *fakeBrowser) Click(node *vdom.VNode) {
	b.clicks = append(b.clicks, node)
	b.inDocOnClick = append(b.inDocOnClick, b.doc.Contains(node))
}

type testWidget struct {
	ctrl     *widget.Controller
	doc      *vdom.Document
	endpoint *fakeEndpoint
	notifier *fakeNotifier
	browser  *fakeBrowser
	sched    *widget.ManualScheduler
}

func newTestWidget(t *testing.T, opts ...widget.Option) *testWidget {
	t.Helper()

	cfg := widget.DefaultConfig()
	doc := vdom.NewDocument(widget.BuildPage(cfg, widget.PageData{
		Jamaah: []widget.Jamaah{{NIK: "3201", Name: "Siti Aminah"}},
	}))

	files, err := upload.NewFileServer("https://files.example.com/serve.php")
	if err != nil {
		t.Fatal(err)
	}

	tw := &testWidget{
		doc:      doc,
		endpoint: &fakeEndpoint{},
		notifier: &fakeNotifier{},
		browser:  &fakeBrowser{doc: doc},
		sched:    widget.NewManualScheduler(),
	}

	base := []widget.Option{
		widget.WithScheduler(tw.sched),
		widget.WithRandom(func(int) int { return 9 }),
		widget.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	ctrl, err := widget.New(doc, cfg, widget.Deps{
		Endpoint: tw.endpoint,
		Resolver: files,
		Notifier: tw.notifier,
		Browser:  tw.browser,
	}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tw.ctrl = ctrl
	t.Cleanup(ctrl.Close)
	return tw
}

func (tw *testWidget) dispatch(t *testing.T, ev widget.Event) error {
	t.Helper()
	return tw.ctrl.Dispatch(context.Background(), ev)
}

func (tw *testWidget) selectFile(t *testing.T, docType, name string, size int64) {
	t.Helper()
	err := tw.dispatch(t, widget.Event{
		Type:   widget.EventChange,
		Target: docType,
		File:   &widget.FileInfo{Name: name, Size: size},
	})
	if err != nil {
		t.Logf("select %s: %v", docType, err)
	}
}

func (tw *testWidget) el(t *testing.T, id string) *vdom.VNode {
	t.Helper()
	n := tw.doc.GetElementByID(id)
	if n == nil {
		t.Fatalf("element #%s not found", id)
	}
	return n
}

func (tw *testWidget) progressBar(t *testing.T) *vdom.VNode {
	t.Helper()
	return tw.el(t, widget.ProgressID).Children[0]
}

type closeCounter struct{ n *int }

func (c closeCounter) Read([]byte) (int, error) { return 0, io.EOF }
func (c closeCounter) Close() error             { *c.n++; return nil }

// leakyScheduler hands out timers whose callbacks stay callable after Stop.
type leakyScheduler struct{ fns []func() }

func (s *leakyScheduler) Every(_ time.Duration, fn func()) widget.Timer {
	s.fns = append(s.fns, fn)
	return leakyTimer{}
}

func (s *leakyScheduler) After(_ time.Duration, fn func()) widget.Timer {
	s.fns = append(s.fns, fn)
	return leakyTimer{}
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return true }
