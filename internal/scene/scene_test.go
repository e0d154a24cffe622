package scene

import (
	"errors"
	"testing"

	"github.com/halden/rcsconsole/internal/audio"
)

type stubSink struct {
	audio.Sink
	id  string
	ctx string
}

func (s stubSink) ID() string          { return s.id }
func (s stubSink) ContextName() string { return s.ctx }

func TestRegistryInstallRemove(t *testing.T) {
	r := NewRegistry()
	ctx := NewContext("diagnostics")
	r.Install(ctx)
	if !r.Loaded("diagnostics") {
		t.Fatalf("context should be loaded after install")
	}
	if got := r.Remove("diagnostics"); got != ctx {
		t.Fatalf("remove should return the installed context")
	}
	if r.Loaded("diagnostics") {
		t.Fatalf("context should be gone after remove")
	}
	if r.Remove("diagnostics") != nil {
		t.Fatalf("removing an absent context should return nil")
	}
}

func TestSinkEnumerationOrderIsStable(t *testing.T) {
	r := NewRegistry()
	r.Root().AddSink(stubSink{id: "root-1", ctx: RootContextName})
	a := NewContext("a")
	a.AddSink(stubSink{id: "a-1", ctx: "a"})
	b := NewContext("b")
	b.AddSink(stubSink{id: "b-1", ctx: "b"})
	r.Install(a)
	r.Install(b)

	want := []string{"root-1", "a-1", "b-1"}
	for pass := 0; pass < 3; pass++ {
		sinks := r.Sinks()
		if len(sinks) != len(want) {
			t.Fatalf("pass %d: got %d sinks, want %d", pass, len(sinks), len(want))
		}
		for i, s := range sinks {
			if s.ID() != want[i] {
				t.Fatalf("pass %d: sink[%d] = %s, want %s", pass, i, s.ID(), want[i])
			}
		}
	}
}

func TestLoaderNilOnUnregisteredName(t *testing.T) {
	r := NewRegistry()
	l := NewLoader(r)
	if cmd := l.Load("nope"); cmd != nil {
		t.Fatalf("unregistered name must fail synchronously with nil")
	}
}

func TestLoaderDeliversLoadedMsg(t *testing.T) {
	r := NewRegistry()
	r.RegisterBuilder("diagnostics", func() (*Context, error) {
		return NewContext("diagnostics"), nil
	})
	l := NewLoader(r)

	cmd := l.Load("diagnostics")
	if cmd == nil {
		t.Fatalf("registered name should return a command")
	}
	msg, ok := cmd().(LoadedMsg)
	if !ok {
		t.Fatalf("expected LoadedMsg")
	}
	if msg.Err != nil || msg.Ctx == nil || msg.Name != "diagnostics" {
		t.Fatalf("unexpected message %+v", msg)
	}
	// the loader does not install; that is the completion handler's job
	if r.Loaded("diagnostics") {
		t.Fatalf("loader must not mutate the registry off the update loop")
	}
}

func TestLoaderReportsBuilderFailure(t *testing.T) {
	r := NewRegistry()
	r.RegisterBuilder("broken", func() (*Context, error) {
		return nil, errors.New("boom")
	})
	l := NewLoader(r)
	msg := l.Load("broken")().(LoadedMsg)
	if msg.Err == nil {
		t.Fatalf("builder failure should surface in LoadedMsg.Err")
	}
}

func TestUnloadNilWhenNotLoaded(t *testing.T) {
	r := NewRegistry()
	l := NewLoader(r)
	if cmd := l.Unload("diagnostics"); cmd != nil {
		t.Fatalf("unload of an absent context must be an immediate no-op")
	}

	r.Install(NewContext("diagnostics"))
	cmd := l.Unload("diagnostics")
	if cmd == nil {
		t.Fatalf("unload of a loaded context should return a command")
	}
	if msg, ok := cmd().(UnloadedMsg); !ok || msg.Name != "diagnostics" {
		t.Fatalf("expected UnloadedMsg for diagnostics")
	}
}

func TestProcessReanchoring(t *testing.T) {
	r := NewRegistry()
	primary := NewContext("primary-panel")
	engine := struct{ name string }{"engine"}
	primary.HostProcess("simulation", engine)
	r.Install(primary)

	ctx, h, ok := r.FindProcess("simulation")
	if !ok || ctx != primary {
		t.Fatalf("process should be found in the hosting context")
	}
	if got, _ := ctx.ReleaseProcess("simulation"); got != h {
		t.Fatalf("release should hand back the same handle")
	}
	r.Root().HostProcess("simulation", h)

	ctx2, _, ok := r.FindProcess("simulation")
	if !ok || ctx2 != r.Root() {
		t.Fatalf("re-anchored process should resolve from the root context")
	}
}
