package console

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyRegistryScopedDispatch(t *testing.T) {
	r := NewKeyRegistry(DefaultKeyBindings())

	if got := r.Action(key("d"), scopePrimary); got != "diagnostics" {
		t.Fatalf("d in primary = %q, want diagnostics", got)
	}
	if got := r.Action(key("d"), scopeOverlay); got != "operator" {
		t.Fatalf("d in overlay = %q, want operator", got)
	}
	if got := r.Action(key("q"), scopeOverlay); got != "operator" {
		t.Fatalf("q in overlay = %q, want operator", got)
	}
	if got := r.Action(key("q"), scopePrimary); got != "quit" {
		t.Fatalf("q in primary = %q, want quit", got)
	}
}

func TestKeyRegistryWildcardScope(t *testing.T) {
	r := NewKeyRegistry(DefaultKeyBindings())
	for _, scope := range []string{scopePrimary, scopeOverlay, scopeSelector, scopePrompt} {
		if got := r.Action(key("ctrl+c"), scope); got != "quit" {
			t.Fatalf("ctrl+c in %s = %q, want quit", scope, got)
		}
	}
}

func TestKeyRegistryUnboundKey(t *testing.T) {
	r := NewKeyRegistry(DefaultKeyBindings())
	if got := r.Action(key("z"), scopePrimary); got != "" {
		t.Fatalf("unbound key resolved to %q", got)
	}
}

func TestBindingsForScopeFiltersWildcardAndScope(t *testing.T) {
	r := NewKeyRegistry(DefaultKeyBindings())
	seen := map[string]bool{}
	for _, b := range r.BindingsForScope(scopeSelector) {
		seen[b.Action] = true
	}
	if !seen["quit"] || !seen["selector-pick"] {
		t.Fatalf("selector scope bindings missing expected actions: %v", seen)
	}
	if seen["diagnostics"] {
		t.Fatalf("primary-only binding leaked into selector scope")
	}
}
