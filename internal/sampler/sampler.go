package sampler

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pipegauge/internal/model"
)

// DefaultInterval is how often the widget ticks while mounted.
const DefaultInterval = 2500 * time.Millisecond

// ReleaseStep is how far one pressure release lowers the gauge.
const ReleaseStep = 20.0

// Per-tick delta ranges.
const (
	pressureStep   = 2.0
	maxNewLeads    = 3.0
	throughputStep = 0.05
	latencyStep    = 5.0
)

// Tick derives the next state from prev. It never fails: out-of-range
// inputs are clamped. Warm leads, qualified leads and conversion rate
// are carried over untouched, and throughput is rounded but not clamped.
//
// Deltas are drawn from src in a fixed order: pressure, leads,
// throughput, latency.
func Tick(prev model.State, src Source) model.State {
	next := prev
	next.Seq = prev.Seq + 1

	next.Pressure = clamp(prev.Pressure+src.Uniform(-pressureStep, pressureStep), model.PressureMin, model.PressureMax)

	added := math.Floor(src.Uniform(0, maxNewLeads))
	if added < 0 || math.IsNaN(added) {
		added = 0
	}
	next.Metrics.Leads = max(prev.Metrics.Leads, 0) + int(added)

	next.Metrics.ThroughputPerHour = round2(prev.Metrics.ThroughputPerHour + src.Uniform(-throughputStep, throughputStep))

	latency := clamp(float64(prev.Metrics.LatencyMs)+src.Uniform(-latencyStep, latencyStep), model.LatencyMin, model.LatencyMax)
	next.Metrics.LatencyMs = int(latency)

	return next
}

// Generator owns the simulated state and advances it on a timer.
type Generator struct {
	Interval time.Duration

	src Source
	log *zap.SugaredLogger

	mu      sync.RWMutex
	state   model.State
	running bool
	handle  *Handle
}

func New(interval time.Duration, seed model.State, src Source, log *zap.SugaredLogger) *Generator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Generator{
		Interval: interval,
		src:      src,
		log:      log,
		state:    seed,
	}
}

// Snapshot returns a copy of the most recently committed state.
func (g *Generator) Snapshot() model.State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Step runs one tick against the committed state and commits the result.
func (g *Generator) Step(now time.Time) model.State {
	g.mu.Lock()
	next := Tick(g.state, g.src)
	next.Timestamp = now
	g.state = next
	g.mu.Unlock()

	g.log.Debugw("tick",
		"seq", next.Seq,
		"pressure", next.Pressure,
		"leads", next.Metrics.Leads,
		"latency_ms", next.Metrics.LatencyMs,
	)
	return next
}

// Release lowers the committed pressure by delta, flooring at zero. It is
// serialised with Step, so the next tick starts from the released value.
// Release is not a tick and leaves Seq alone.
func (g *Generator) Release(delta float64) model.State {
	g.mu.Lock()
	g.state.Pressure = clamp(g.state.Pressure-delta, model.PressureMin, model.PressureMax)
	st := g.state
	g.mu.Unlock()

	g.log.Infow("pressure released", "delta", delta, "pressure", st.Pressure)
	return st
}

// Handle is the owned scheduler returned by Start.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the recurring tick and waits for the loop to exit. Once it
// returns no further tick will be committed. Stopping twice, or stopping a
// nil handle, does nothing.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}

// Start ticks every Interval until the handle is stopped or ctx is done.
// A generator runs one loop at a time: while Start's loop is alive, Start
// returns the same handle.
func (g *Generator) Start(ctx context.Context) *Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		if g.handle != nil {
			return g.handle
		}
		g.log.Warnw("generator already streaming, start ignored")
		return stoppedHandle()
	}
	g.running = true

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	g.handle = h
	go func() {
		defer close(h.done)
		g.run(ctx, func(model.State) bool { return true })
	}()
	g.log.Infow("generator started", "interval", g.Interval)
	return h
}

// Stream returns a channel that will receive each committed state until ctx
// is done. If a loop is already running the channel is closed immediately.
func (g *Generator) Stream(ctx context.Context) <-chan model.State {
	ch := make(chan model.State)
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		g.log.Warnw("generator already running, stream ignored")
		close(ch)
		return ch
	}
	g.running = true
	g.mu.Unlock()

	go func() {
		defer close(ch)
		g.run(ctx, func(st model.State) bool {
			select {
			case ch <- st:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()
	return ch
}

func stoppedHandle() *Handle {
	done := make(chan struct{})
	close(done)
	return &Handle{cancel: func() {}, done: done}
}

func (g *Generator) run(ctx context.Context, emit func(model.State) bool) {
	defer func() {
		g.mu.Lock()
		g.running = false
		g.handle = nil
		g.mu.Unlock()
	}()
	ticker := time.NewTicker(g.Interval)
	defer ticker.Stop()
	for {
		select {
		case t := <-ticker.C:
			// select picks randomly when both are ready
			if ctx.Err() != nil {
				return
			}
			if !emit(g.Step(t)) {
				return
			}
		case <-ctx.Done():
			g.log.Debugw("generator stopped", "seq", g.Snapshot().Seq)
			return
		}
	}
}

// Helpers
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
