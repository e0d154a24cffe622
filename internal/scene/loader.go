package scene

import (
	tea "github.com/charmbracelet/bubbletea"
)

// LoadedMsg is delivered on the update loop when an asynchronous load
// completes. Err is set when the context could not be built.
type LoadedMsg struct {
	Name string
	Ctx  *Context
	Err  error
}

// UnloadedMsg is delivered on the update loop when an asynchronous
// unload completes.
type UnloadedMsg struct {
	Name string
}

// Loader performs asynchronous load and unload of presentation
// contexts. Requests return immediately; completion arrives as a typed
// message on a later tick of the host's single-threaded event loop.
// Registry mutation is left to the completion handler so that all
// loaded-set changes are serialized with input dispatch.
type Loader struct {
	reg *Registry
}

// NewLoader builds a loader over the registry.
func NewLoader(reg *Registry) *Loader {
	return &Loader{reg: reg}
}

// Load requests an asynchronous load of the named presentation. A nil
// return signals immediate failure: the name is not registered. The
// returned command builds the context off the update loop and delivers
// a LoadedMsg.
func (l *Loader) Load(name string) tea.Cmd {
	if !l.reg.Registered(name) {
		return nil
	}
	return func() tea.Msg {
		ctx, err := l.reg.build(name)
		if err != nil {
			return LoadedMsg{Name: name, Err: err}
		}
		return LoadedMsg{Name: name, Ctx: ctx}
	}
}

// Unload requests an asynchronous unload. A nil return signals that
// nothing by that name is loaded; callers treat that as an immediate
// no-op rather than waiting for a callback.
func (l *Loader) Unload(name string) tea.Cmd {
	if !l.reg.Loaded(name) {
		return nil
	}
	return func() tea.Msg {
		return UnloadedMsg{Name: name}
	}
}
