package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Engine is the long-lived primary loop simulation. It steps the plant
// model on a wall-clock ticker in its own goroutine and keeps running
// regardless of which presentation is on screen. Widgets read it
// through Snapshot; they never drive it.
type Engine struct {
	mu       sync.RWMutex
	state    LoopState
	limits   map[Channel]Limits
	ratings  Ratings
	severity map[Channel]Severity

	tickListeners  []func(LoopState)
	alarmListeners []func(AlarmEvent)
	pending        []AlarmEvent

	log     *slog.Logger
	started bool
	done    chan struct{}
}

// NewEngine constructs the engine at warm steady state for the given
// initial power.
func NewEngine(log *slog.Logger, initialPowerMW float64, r Ratings) *Engine {
	return &Engine{
		state:    initialState(initialPowerMW, r),
		limits:   defaultLimits(r),
		ratings:  r,
		severity: map[Channel]Severity{},
		log:      log,
	}
}

// RegisterTickListener registers a callback invoked after every step
// with the new snapshot. Must be called before Start.
func (e *Engine) RegisterTickListener(fn func(LoopState)) {
	e.tickListeners = append(e.tickListeners, fn)
}

// RegisterAlarmListener registers a callback invoked for every alarm
// severity transition. Must be called before Start.
func (e *Engine) RegisterAlarmListener(fn func(AlarmEvent)) {
	e.alarmListeners = append(e.alarmListeners, fn)
}

// Start runs the step loop until ctx is cancelled. Calling Start twice
// is a no-op; the engine's lifetime is owned by whoever anchored it,
// not by any presentation.
func (e *Engine) Start(ctx context.Context, tick time.Duration) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.done = make(chan struct{})
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				e.log.Info("simulation stopped", "tick", e.Snapshot().Tick)
				return
			case <-ticker.C:
				e.Step()
			}
		}
	}()
}

// Done reports loop termination after Start.
func (e *Engine) Done() <-chan struct{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.done
}

// Step advances the model once and fires listeners. Exposed so tests
// can drive the engine deterministically without the ticker.
func (e *Engine) Step() {
	e.mu.Lock()
	e.state = step(e.state, e.ratings)
	events, next := evaluateAlarms(e.state, e.limits, e.severity)
	e.severity = next
	e.pending = append(e.pending, events...)
	snap := e.state
	ticks := e.tickListeners
	alarms := e.alarmListeners
	e.mu.Unlock()

	for _, fn := range ticks {
		fn(snap)
	}
	for _, ev := range events {
		if ev.Raised() {
			e.log.Warn("alarm raised", "channel", string(ev.Channel), "severity", ev.To.String(), "value", ev.Value)
		} else {
			e.log.Info("alarm cleared", "channel", string(ev.Channel), "severity", ev.To.String())
		}
		for _, fn := range alarms {
			fn(ev)
		}
	}
}

// ConsumeAlarms drains the pending alarm transitions accumulated since
// the last call. The console polls this on its refresh tick so chime
// and journal side effects stay on its own loop.
func (e *Engine) ConsumeAlarms() []AlarmEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return nil
	}
	out := e.pending
	e.pending = nil
	return out
}

// Snapshot returns the current loop state.
func (e *Engine) Snapshot() LoopState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Severity returns the current alarm severity for a channel.
func (e *Engine) Severity(c Channel) Severity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.severity[c]
}

// SetPower changes the thermal power setpoint. The model settles to
// the new operating point over the following ticks.
func (e *Engine) SetPower(mw float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if mw < 0 {
		mw = 0
	}
	e.state.PowerMW = mw
}

// Limit returns the configured limits for a channel; used by gauges
// for display ranges and threshold coloring.
func (e *Engine) Limit(c Channel) Limits {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limits[c]
}

// Fraction maps a channel's current reading onto 0..1 of its display
// range.
func (e *Engine) Fraction(c Channel) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	l := e.limits[c]
	return clampFraction(e.state.Value(c), l.DisplayLo, l.DisplayHi)
}
