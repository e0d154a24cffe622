package console

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding maps keys to a named action within one or more scopes.
type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

// KeyRegistry resolves pressed keys to actions for the active scope.
type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) Register(binding KeyBinding) {
	r.bindings = append(r.bindings, binding)
}

// Action returns the action bound to the pressed key in the given
// scope, or "" when nothing matches. The first matching binding wins.
func (r *KeyRegistry) Action(msg tea.KeyMsg, scope string) string {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return b.Action
			}
		}
	}
	return ""
}

// BindingsForScope lists the bindings visible in a scope, for the
// footer hint line.
func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

// Scopes for key dispatch. The selector and prompt scopes take
// precedence over the view scopes, mirroring the overlay precedence
// chain.
const (
	scopePrimary  = "view:primary"
	scopeOverlay  = "view:overlay"
	scopeSelector = "overlay:selector"
	scopePrompt   = "prompt"
)

// DefaultKeyBindings returns the operator console's built-in keymap.
func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"ctrl+c"}, Action: "quit", Description: "quit", Scopes: []string{"*"}},
		{Keys: []string{"q"}, Action: "quit", Description: "quit", Scopes: []string{scopePrimary}},
		{Keys: []string{"d"}, Action: "diagnostics", Description: "diagnostics", Scopes: []string{scopePrimary}},
		{Keys: []string{"s"}, Action: "selector", Description: "channel selector", Scopes: []string{scopePrimary, scopeOverlay}},
		{Keys: []string{":"}, Action: "prompt", Description: "command", Scopes: []string{scopePrimary, scopeOverlay}},
		{Keys: []string{"+", "="}, Action: "power-up", Description: "raise power", Scopes: []string{scopePrimary}},
		{Keys: []string{"-"}, Action: "power-down", Description: "lower power", Scopes: []string{scopePrimary}},
		{Keys: []string{"esc", "q", "d"}, Action: "operator", Description: "back to panel", Scopes: []string{scopeOverlay}},
		{Keys: []string{"esc", "s"}, Action: "selector-close", Description: "close selector", Scopes: []string{scopeSelector}},
		{Keys: []string{"enter"}, Action: "selector-pick", Description: "inspect channel", Scopes: []string{scopeSelector}},
	}
}
