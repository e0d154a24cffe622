package console

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestCommandRegistryDispatch(t *testing.T) {
	r := NewCommandRegistry()
	var got []string
	r.Register(Command{
		Name:    "trip",
		Aliases: []string{"t"},
		Run: func(args []string) tea.Cmd {
			got = args
			return StatusCmd("tripped")
		},
	})

	msg := runCmd(t, r.Dispatch("trip rod-bank a"))
	if len(got) != 2 || got[0] != "rod-bank" {
		t.Fatalf("args = %v", got)
	}
	if st, ok := msg.(StatusMsg); !ok || st.Text != "tripped" {
		t.Fatalf("status = %#v", msg)
	}

	got = nil
	runCmd(t, r.Dispatch("t rod-bank"))
	if len(got) != 1 {
		t.Fatalf("alias did not dispatch, args = %v", got)
	}
}

func TestCommandRegistrySuggestsNearest(t *testing.T) {
	r := NewCommandRegistry()
	r.Register(Command{Name: "power", Run: func([]string) tea.Cmd { return nil }})

	msg := runCmd(t, r.Dispatch("pwoer 2500"))
	st, ok := msg.(StatusMsg)
	if !ok || !st.IsErr {
		t.Fatalf("expected error status, got %#v", msg)
	}
	if !strings.Contains(st.Text, `"power"`) {
		t.Fatalf("suggestion missing from %q", st.Text)
	}
}

func TestCommandRegistryNoSuggestionWhenFar(t *testing.T) {
	r := NewCommandRegistry()
	r.Register(Command{Name: "power", Run: func([]string) tea.Cmd { return nil }})

	msg := runCmd(t, r.Dispatch("journal"))
	st, ok := msg.(StatusMsg)
	if !ok || !st.IsErr {
		t.Fatalf("expected error status, got %#v", msg)
	}
	if strings.Contains(st.Text, "did you mean") {
		t.Fatalf("unexpected suggestion in %q", st.Text)
	}
}

func TestCommandRegistryEmptyLine(t *testing.T) {
	r := NewCommandRegistry()
	if cmd := r.Dispatch("   "); cmd != nil {
		t.Fatalf("blank line should be a no-op")
	}
}
