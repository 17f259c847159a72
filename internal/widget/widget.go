// Package widget composes the generator, gauge mapper and toast into the
// single dashboard tile that shells render.
package widget

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pipegauge/internal/gauge"
	"github.com/Dicklesworthstone/pipegauge/internal/model"
	"github.com/Dicklesworthstone/pipegauge/internal/sampler"
	"github.com/Dicklesworthstone/pipegauge/internal/toast"
)

// Target is the element a click lands on.
type Target int

const (
	TargetTile Target = iota
	TargetToastDismiss
	TargetToastDetails
)

func (t Target) String() string {
	switch t {
	case TargetToastDismiss:
		return "toast-dismiss"
	case TargetToastDetails:
		return "toast-details"
	default:
		return "tile"
	}
}

// Widget is one mounted tile. Methods are safe for concurrent use.
type Widget struct {
	gen *sampler.Generator
	nav toast.Navigator
	log *zap.SugaredLogger

	mu       sync.Mutex
	toast    *toast.Toast
	handle   *sampler.Handle
	expanded bool
	host     model.Host
	hostFn   func() model.Host
}

type Option func(*Widget)

// WithHostInfo replaces the gopsutil host reader, mostly for tests.
func WithHostInfo(fn func() model.Host) Option {
	return func(w *Widget) { w.hostFn = fn }
}

func New(gen *sampler.Generator, t *toast.Toast, nav toast.Navigator, log *zap.SugaredLogger, opts ...Option) *Widget {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w := &Widget{
		gen:    gen,
		nav:    nav,
		log:    log,
		toast:  t,
		hostFn: sampler.HostInfo,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Mount starts ticking. Mounting an already mounted widget does nothing.
func (w *Widget) Mount(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.handle != nil {
		return
	}
	w.host = w.hostFn()
	w.handle = w.gen.Start(ctx)
	w.log.Infow("widget mounted", "host", w.host.Hostname)
}

// Unmount stops the scheduler. It is safe to call more than once.
func (w *Widget) Unmount() {
	w.mu.Lock()
	h := w.handle
	w.handle = nil
	w.mu.Unlock()
	if h == nil {
		return
	}
	h.Stop()
	w.log.Infow("widget unmounted", "seq", w.gen.Snapshot().Seq)
}

// Frame returns the current render triple.
func (w *Widget) Frame() model.Frame {
	st := w.gen.Snapshot()
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.Frame{
		State:    st,
		Gauge:    gauge.Project(st.Pressure),
		Toast:    w.toast.State(),
		Expanded: w.expanded,
		Host:     w.host,
	}
}

// Click delivers a click to target and lets it bubble out to the tile
// unless a handler stops it. The navigation error, if any, is returned;
// it never changes metrics or toast state.
func (w *Widget) Click(target Target) error {
	ev := &toast.Event{}
	var err error

	w.mu.Lock()
	switch target {
	case TargetToastDismiss:
		if w.toast.Dismiss(ev) {
			w.log.Infow("toast dismissed")
		}
	case TargetToastDetails:
		err = w.toast.ViewDetails(ev, w.nav)
	}
	if !ev.Stopped() {
		w.expanded = !w.expanded
	}
	w.mu.Unlock()

	if err != nil && !errors.Is(err, toast.ErrNotVisible) {
		w.log.Warnw("view details failed", "error", err)
	}
	return err
}

// Dismiss hides the toast.
func (w *Widget) Dismiss() { _ = w.Click(TargetToastDismiss) }

// ViewDetails navigates to the toast's lead.
func (w *Widget) ViewDetails() error { return w.Click(TargetToastDetails) }

// ReleasePressure vents the gauge by one release step and returns the
// updated frame. It is a control of its own, not a click target, so the
// tile's expanded state is left alone.
func (w *Widget) ReleasePressure() model.Frame {
	st := w.gen.Release(sampler.ReleaseStep)
	w.log.Infow("pressure release requested", "pressure", st.Pressure)
	return w.Frame()
}
