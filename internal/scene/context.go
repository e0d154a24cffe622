package scene

import "github.com/halden/rcsconsole/internal/audio"

// Context is one independently loadable unit of presentation content.
// A context owns audio sinks and may host named processes (opaque
// handles; the scene layer never drives them).
type Context struct {
	name      string
	active    bool
	sinks     []audio.Sink
	processes map[string]any
}

// NewContext creates an active, empty context.
func NewContext(name string) *Context {
	return &Context{
		name:      name,
		active:    true,
		processes: map[string]any{},
	}
}

// Name returns the context's presentation name.
func (c *Context) Name() string { return c.name }

// Active reports whether the context's content is reachable.
func (c *Context) Active() bool { return c.active }

// SetActive toggles visibility of the context's content.
func (c *Context) SetActive(v bool) { c.active = v }

// AddSink attaches an audio sink to this context.
func (c *Context) AddSink(s audio.Sink) {
	c.sinks = append(c.sinks, s)
}

// Sinks returns the context's sinks in attachment order.
func (c *Context) Sinks() []audio.Sink { return c.sinks }

// HostProcess registers a named process handle in this context.
func (c *Context) HostProcess(name string, handle any) {
	c.processes[name] = handle
}

// Process looks up a hosted process handle.
func (c *Context) Process(name string) (any, bool) {
	h, ok := c.processes[name]
	return h, ok
}

// ReleaseProcess removes a process handle from the context without
// touching the process itself. Used when a process is re-anchored to a
// persistent context.
func (c *Context) ReleaseProcess(name string) (any, bool) {
	h, ok := c.processes[name]
	if ok {
		delete(c.processes, name)
	}
	return h, ok
}
