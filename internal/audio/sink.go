package audio

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink is one annunciator audio endpoint. Exactly one sink should be
// enabled system-wide; the Arbiter enforces that. A sink that is not
// active in its context hierarchy produces no output and is never
// selected.
type Sink interface {
	ID() string
	ContextName() string
	ActiveInHierarchy() bool
	Enabled() bool
	SetEnabled(bool)
	// Chime emits one audible alert. Disabled sinks stay silent.
	Chime(urgent bool)
}

// BellSink sounds the terminal bell. Chimes are edge-throttled so a
// stream of alarm transitions does not turn into a continuous tone;
// urgent chimes bypass the throttle window.
type BellSink struct {
	mu        sync.Mutex
	id        string
	context   string
	active    bool
	enabled   bool
	out       io.Writer
	lastChime time.Time
	throttle  time.Duration
	now       func() time.Time
}

// NewBellSink creates a sink writing BEL to out, attached to the named
// presentation context. New sinks start enabled; the arbiter is the
// only thing that turns them off.
func NewBellSink(id, contextName string, out io.Writer) *BellSink {
	if id == "" {
		id = uuid.NewString()
	}
	return &BellSink{
		id:       id,
		context:  contextName,
		active:   true,
		enabled:  true,
		out:      out,
		throttle: 2 * time.Second,
		now:      time.Now,
	}
}

func (s *BellSink) ID() string          { return s.id }
func (s *BellSink) ContextName() string { return s.context }

func (s *BellSink) ActiveInHierarchy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive marks the sink reachable or unreachable in its context.
func (s *BellSink) SetActive(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = v
}

func (s *BellSink) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *BellSink) SetEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = v
}

func (s *BellSink) Chime(urgent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || !s.active {
		return
	}
	now := s.now()
	if !urgent && !s.lastChime.IsZero() && now.Sub(s.lastChime) < s.throttle {
		return
	}
	s.lastChime = now
	_, _ = s.out.Write([]byte("\a"))
}
