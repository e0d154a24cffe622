package audio

import "log/slog"

// Arbiter enforces the single-live-sink rule across every loaded
// presentation context. Candidates are enumerated fresh on every pass;
// nothing is cached between passes except the fallback sink, which is
// created at most once and reused. The arbiter is idempotent and cheap
// enough to run on a timer as well as after every load/unload.
type Arbiter struct {
	log *slog.Logger

	// Enumerate yields the current candidate set in stable order.
	enumerate func() []Sink
	// Preferred names the context whose sinks win tie-breaks.
	preferred func() string

	mainID         string
	createFallback bool
	newFallback    func() Sink

	fallback Sink
	winner   Sink
}

// Options configures an Arbiter.
type Options struct {
	// MainSinkID names the sink attached to the designated main output
	// node; it wins over everything when reachable.
	MainSinkID string
	// CreateFallback enables fallback-sink creation when no candidate
	// exists anywhere.
	CreateFallback bool
	// NewFallback constructs the fallback sink. The factory is expected
	// to parent it under a context that survives every transition.
	NewFallback func() Sink
}

// Result summarizes one arbitration pass.
type Result struct {
	WinnerID        string
	Changed         bool
	Disabled        int
	CreatedFallback bool
}

// NewArbiter builds an arbiter over the given candidate enumerator and
// preferred-context resolver.
func NewArbiter(log *slog.Logger, enumerate func() []Sink, preferred func() string, opts Options) *Arbiter {
	return &Arbiter{
		log:            log,
		enumerate:      enumerate,
		preferred:      preferred,
		mainID:         opts.MainSinkID,
		createFallback: opts.CreateFallback,
		newFallback:    opts.NewFallback,
	}
}

// Run performs one arbitration pass: pick a winner by priority, force
// it enabled, and force every other reachable enabled candidate off.
// Unreachable sinks are left untouched.
func (a *Arbiter) Run() Result {
	cands := a.enumerate()

	var res Result
	winner := a.selectWinner(cands)
	if winner == nil && a.createFallback {
		if a.fallback == nil {
			if a.newFallback == nil {
				a.log.Error("fallback sink requested but no factory configured")
				return res
			}
			a.fallback = a.newFallback()
			res.CreatedFallback = true
			a.log.Info("created fallback audio sink", "sink", a.fallback.ID())
		}
		winner = a.fallback
	}
	if winner == nil {
		// legal only when fallback creation is disabled
		a.winner = nil
		return res
	}

	if !winner.Enabled() {
		winner.SetEnabled(true)
	}
	for _, c := range cands {
		if c.ID() == winner.ID() {
			continue
		}
		if c.Enabled() && c.ActiveInHierarchy() {
			c.SetEnabled(false)
			res.Disabled++
		}
	}

	res.WinnerID = winner.ID()
	res.Changed = a.winner == nil || a.winner.ID() != winner.ID()
	if res.Changed {
		a.log.Info("audio sink selected", "sink", winner.ID(), "context", winner.ContextName())
	}
	a.winner = winner
	return res
}

// selectWinner walks the priority order: main sink, enabled sink in the
// preferred context, any enabled sink. First match in enumeration
// order wins.
func (a *Arbiter) selectWinner(cands []Sink) Sink {
	if a.mainID != "" {
		for _, c := range cands {
			if c.ID() == a.mainID && c.ActiveInHierarchy() {
				return c
			}
		}
	}
	pref := a.preferred()
	for _, c := range cands {
		if c.ContextName() == pref && c.ActiveInHierarchy() && c.Enabled() {
			return c
		}
	}
	for _, c := range cands {
		if c.ActiveInHierarchy() && c.Enabled() {
			return c
		}
	}
	return nil
}

// Winner returns the sink chosen by the most recent pass, or nil.
func (a *Arbiter) Winner() Sink { return a.winner }

// Chime sounds the current winner, if any.
func (a *Arbiter) Chime(urgent bool) {
	if a.winner != nil {
		a.winner.Chime(urgent)
	}
}
