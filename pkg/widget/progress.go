package widget

import (
	"fmt"

	"github.com/vango-dev/docwidget/pkg/vdom"
)

// progress drives the upload progress bar. All methods are called with the
// controller lock held.
type progress struct {
	c     *Controller
	value int

	// gen is bumped on every start and reset; ticks from an older
	// generation are ignored.
	gen     int
	running bool
	ticker  Timer
	fade    Timer
}

func (p *progress) container() *vdom.VNode { return p.c.els.progress }
func (p *progress) bar() *vdom.VNode       { return p.c.els.progressBar }

// start shows the bar at 0% and begins ticking.
func (p *progress) start() {
	p.stop()
	p.gen++
	p.running = true
	p.value = 0

	if n := p.container(); n != nil {
		n.RemoveClass("d-none")
	}
	if bar := p.bar(); bar != nil {
		bar.RemoveClass("bg-success", "bg-danger")
		bar.AddClass("progress-bar-striped", "progress-bar-animated")
	}
	p.render("")

	gen := p.gen
	p.ticker = p.c.sched.Every(p.c.cfg.ProgressInterval, func() { p.c.tick(gen) })
}

// tick adds a random increment, never passing the cap.
func (p *progress) tick(gen int) bool {
	if gen != p.gen || !p.running {
		return false
	}
	limit := p.c.cfg.ProgressCap
	if p.value >= limit {
		return false
	}
	p.value += 1 + p.c.randIntn(15)
	if p.value > limit {
		p.value = limit
	}
	p.render("")
	return true
}

// complete fills the bar and keeps it visible.
func (p *progress) complete() {
	p.stop()
	p.value = 100
	if bar := p.bar(); bar != nil {
		bar.RemoveClass("progress-bar-striped", "progress-bar-animated")
		bar.AddClass("bg-success")
	}
	p.render("")
}

// fail marks the bar as failed and hides it after the fade delay.
func (p *progress) fail() {
	p.stop()
	if bar := p.bar(); bar != nil {
		bar.RemoveClass("progress-bar-striped", "progress-bar-animated")
		bar.AddClass("bg-danger")
	}
	p.render("Upload failed")

	gen := p.gen
	p.fade = p.c.sched.After(p.c.cfg.FadeDelay, func() { p.c.fadeOut(gen) })
}

// reset hides the bar at 0% and cancels everything pending.
func (p *progress) reset() {
	p.stop()
	p.gen++
	p.value = 0
	if n := p.container(); n != nil {
		n.AddClass("d-none")
	}
	if bar := p.bar(); bar != nil {
		bar.RemoveClass("bg-success", "bg-danger", "progress-bar-striped", "progress-bar-animated")
	}
	p.render("")
}

// stop cancels the ticker and the fade timer.
func (p *progress) stop() {
	p.running = false
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
	if p.fade != nil {
		p.fade.Stop()
		p.fade = nil
	}
}

func (p *progress) render(label string) {
	bar := p.bar()
	if bar == nil {
		return
	}
	if label == "" {
		label = fmt.Sprintf("%d%%", p.value)
	}
	bar.SetAttr("style", fmt.Sprintf("width: %d%%", p.value))
	bar.SetAttr("aria-valuenow", p.value)
	bar.SetText(label)
}

func (c *Controller) tick(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress.tick(gen) {
		c.changed()
	}
}

func (c *Controller) fadeOut(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.progress.gen {
		return
	}
	c.progress.fade = nil
	if n := c.progress.container(); n != nil {
		n.AddClass("d-none")
		c.changed()
	}
}

// Progress returns the current progress value.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.value
}
