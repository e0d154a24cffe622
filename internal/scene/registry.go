package scene

import (
	"fmt"

	"github.com/halden/rcsconsole/internal/audio"
)

// Registry tracks which presentation contexts are currently loaded.
// It always holds a persistent root context that survives every
// transition; the fallback audio sink and re-anchored processes live
// there. All mutation happens on the host's single-threaded update
// loop, so the registry needs no locking.
type Registry struct {
	root     *Context
	loaded   []*Context
	builders map[string]func() (*Context, error)
	bound    bool
}

// RootContextName is the name of the persistent root context.
const RootContextName = "root"

// NewRegistry creates a registry holding only the persistent root.
func NewRegistry() *Registry {
	return &Registry{
		root:     NewContext(RootContextName),
		builders: map[string]func() (*Context, error){},
	}
}

// Root returns the persistent root context.
func (r *Registry) Root() *Context { return r.root }

// RegisterBuilder makes a presentation name loadable.
func (r *Registry) RegisterBuilder(name string, build func() (*Context, error)) {
	r.builders[name] = build
}

// Registered reports whether a presentation name can be loaded.
func (r *Registry) Registered(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Loaded reports whether the named context is currently resident.
func (r *Registry) Loaded(name string) bool {
	return r.find(name) != nil
}

// Install adds a built context to the loaded set. Installing a name
// twice replaces the earlier instance.
func (r *Registry) Install(ctx *Context) {
	if ctx == nil {
		return
	}
	r.Remove(ctx.Name())
	r.loaded = append(r.loaded, ctx)
}

// Remove drops a loaded context. Returns the removed context, or nil
// if nothing by that name was loaded.
func (r *Registry) Remove(name string) *Context {
	for i, c := range r.loaded {
		if c.Name() == name {
			r.loaded = append(r.loaded[:i], r.loaded[i+1:]...)
			return c
		}
	}
	return nil
}

// Contexts returns the root followed by every loaded context, in
// load order. Enumeration order is stable, which the audio arbiter
// relies on for deterministic tie-breaks.
func (r *Registry) Contexts() []*Context {
	out := make([]*Context, 0, len(r.loaded)+1)
	out = append(out, r.root)
	out = append(out, r.loaded...)
	return out
}

// Sinks enumerates every audio sink across the root and all loaded
// contexts, in context order. Each sink is wrapped so that
// ActiveInHierarchy also reflects its context's activity: a sink in a
// hidden context is enumerable but unreachable, mirroring how hiding a
// view container silences everything under it.
func (r *Registry) Sinks() []audio.Sink {
	var out []audio.Sink
	for _, c := range r.Contexts() {
		for _, s := range c.Sinks() {
			out = append(out, contextSink{Sink: s, ctx: c})
		}
	}
	return out
}

// Get returns a context by name, including the root.
func (r *Registry) Get(name string) (*Context, bool) {
	if name == RootContextName {
		return r.root, true
	}
	if c := r.find(name); c != nil {
		return c, true
	}
	return nil, false
}

// contextSink scopes a sink's reachability to its owning context.
type contextSink struct {
	audio.Sink
	ctx *Context
}

func (s contextSink) ActiveInHierarchy() bool {
	return s.ctx.Active() && s.Sink.ActiveInHierarchy()
}

// FindProcess searches the root and loaded contexts for a hosted
// process handle.
func (r *Registry) FindProcess(name string) (*Context, any, bool) {
	for _, c := range r.Contexts() {
		if h, ok := c.Process(name); ok {
			return c, h, true
		}
	}
	return nil, nil, false
}

func (r *Registry) find(name string) *Context {
	for _, c := range r.loaded {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// build constructs a registered context. Unregistered names fail.
func (r *Registry) build(name string) (*Context, error) {
	fn, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("presentation %q not registered", name)
	}
	ctx, err := fn()
	if err != nil {
		return nil, fmt.Errorf("build presentation %q: %w", name, err)
	}
	return ctx, nil
}

// Bind reserves the registry for a single coordinator instance.
func (r *Registry) Bind() error {
	if r.bound {
		return fmt.Errorf("a view coordinator is already bound to this registry")
	}
	r.bound = true
	return nil
}
