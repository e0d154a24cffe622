package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halden/rcsconsole/internal/config"
	"github.com/halden/rcsconsole/internal/coordinator"
	"github.com/halden/rcsconsole/internal/logging"
	"github.com/halden/rcsconsole/internal/sim"
)

type captureRec struct {
	entries []string
}

func (r *captureRec) Record(kind, detail string) {
	r.entries = append(r.entries, kind+": "+detail)
}

func (r *captureRec) has(prefix string) bool {
	for _, e := range r.entries {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

func testConfig() config.Config {
	return config.Config{
		Sim: config.SimConfig{
			TickInterval:    250 * time.Millisecond,
			RefreshInterval: 500 * time.Millisecond,
			InitialPowerMW:  2700,
			RatedPowerMW:    3000,
			RatedFlowKgS:    17000,
		},
		Audio: config.AudioConfig{
			ArbiterInterval: 2 * time.Second,
			CreateFallback:  true,
			MainSink:        "console-main",
		},
	}
}

func newTestModel(t *testing.T) (*Model, *captureRec, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig()
	eng := sim.NewEngine(logging.Discard(), cfg.Sim.InitialPowerMW, sim.Ratings{
		RatedPowerMW: cfg.Sim.RatedPowerMW,
		RatedFlowKgS: cfg.Sim.RatedFlowKgS,
	})
	rec := &captureRec{}
	bell := &bytes.Buffer{}
	m, err := New(logging.Discard(), cfg, eng, rec, bell)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, rec, bell
}

// deliver executes a command and feeds resulting messages back into the
// model, the way the runtime would on later ticks. Timer commands are
// never delivered here; tests drive ticks explicitly.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	switch typed := msg.(type) {
	case tea.BatchMsg:
		for _, c := range typed {
			deliver(t, m, c)
		}
		return
	case tea.QuitMsg, RefreshTickMsg, ArbiterTickMsg:
		return
	}
	_, next := m.Update(msg)
	deliver(t, m, next)
}

func press(t *testing.T, m *Model, k string) {
	t.Helper()
	_, cmd := m.Update(key(k))
	deliver(t, m, cmd)
}

func TestDiagnosticsRoundTrip(t *testing.T) {
	m, rec, _ := newTestModel(t)

	if got := m.arb.Winner().ID(); got != "console-main" {
		t.Fatalf("startup winner = %q", got)
	}

	press(t, m, "d")
	if m.coord.CurrentView() != coordinator.ViewOverlay {
		t.Fatalf("view = %v after d", m.coord.CurrentView())
	}
	if m.overlay == nil {
		t.Fatalf("overlay view not captured from loaded context")
	}
	if got := m.arb.Winner().ID(); got != OverlaySinkID {
		t.Fatalf("overlay winner = %q, want %q", got, OverlaySinkID)
	}

	press(t, m, "esc")
	if m.coord.CurrentView() != coordinator.ViewPrimary {
		t.Fatalf("view = %v after esc", m.coord.CurrentView())
	}
	if m.overlay != nil {
		t.Fatalf("overlay view should be dropped on unload")
	}
	if got := m.arb.Winner().ID(); got != "console-main" {
		t.Fatalf("winner after return = %q", got)
	}
	if !rec.has("view: primary -> overlay") || !rec.has("view: overlay -> primary") {
		t.Fatalf("journal missing transitions: %v", rec.entries)
	}
}

func TestSelectorRequestDeferredAcrossLoad(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(t, m, "s")
	if m.coord.CurrentView() != coordinator.ViewOverlay {
		t.Fatalf("selector request should trigger the overlay transition")
	}
	if m.overlay == nil || !m.overlay.SelectorOpen() {
		t.Fatalf("deferred selector toggle did not run after load")
	}
}

func TestSelectorTogglesDirectlyInOverlay(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(t, m, "d")

	press(t, m, "s")
	if !m.overlay.SelectorOpen() {
		t.Fatalf("selector should open on s in overlay")
	}
	press(t, m, "s")
	if m.overlay.SelectorOpen() {
		t.Fatalf("selector should close again")
	}
}

func TestInputSuppressedWhileTransitioning(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, loadCmd := m.Update(key("d"))
	if !m.coord.Transitioning() {
		t.Fatalf("transition should be in flight before completion")
	}

	press(t, m, "s") // must be swallowed: no deferred toggle queued

	deliver(t, m, loadCmd)
	if m.coord.CurrentView() != coordinator.ViewOverlay {
		t.Fatalf("original transition should still complete")
	}
	if m.overlay.SelectorOpen() {
		t.Fatalf("suppressed command must not run after the transition settles")
	}
}

func TestPromptPowerCommand(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(t, m, ":")
	if !m.promptOpen {
		t.Fatalf("prompt did not open")
	}
	m.prompt.SetValue("power 2500")
	press(t, m, "enter")

	if m.promptOpen {
		t.Fatalf("prompt should close on enter")
	}
	if got := m.engine.Snapshot().PowerMW; got != 2500 {
		t.Fatalf("power = %v, want 2500", got)
	}
	if !strings.Contains(m.status, "2500") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestPromptUnknownCommandSuggestion(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(t, m, ":")
	m.prompt.SetValue("pwoer 2500")
	press(t, m, "enter")

	if !m.statusErr {
		t.Fatalf("unknown command should set an error status")
	}
	if !strings.Contains(m.status, `"power"`) {
		t.Fatalf("status %q missing suggestion", m.status)
	}
}

func TestInspectCommandFocusesChannel(t *testing.T) {
	m, _, _ := newTestModel(t)

	press(t, m, ":")
	m.prompt.SetValue("inspect loop-flow")
	press(t, m, "enter")

	if m.coord.CurrentView() != coordinator.ViewOverlay {
		t.Fatalf("inspect should switch to the overlay")
	}
	if got := m.overlay.Focused(); got != sim.ChanFlow {
		t.Fatalf("focused = %v, want %v", got, sim.ChanFlow)
	}
}

func TestAlarmChimesWinnerAndJournals(t *testing.T) {
	m, rec, bell := newTestModel(t)

	m.engine.SetPower(3300)
	for i := 0; i < 300; i++ {
		m.engine.Step()
	}
	m.Update(RefreshTickMsg{Time: time.Now()})

	if !bytes.Contains(bell.Bytes(), []byte("\a")) {
		t.Fatalf("raised alarm should chime the winner sink")
	}
	if !rec.has("alarm:") {
		t.Fatalf("alarm not journaled: %v", rec.entries)
	}
	if !m.statusErr || !strings.Contains(m.status, "ALARM") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("q should quit from the panel")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestAnchorRunsAtConstruction(t *testing.T) {
	m, _, _ := newTestModel(t)
	if !m.coord.Anchored() {
		t.Fatalf("simulation process should be anchored at startup")
	}
	h, ok := m.coord.SimulationProcess()
	if !ok {
		t.Fatalf("anchored process missing")
	}
	if _, ok := h.(*sim.Engine); !ok {
		t.Fatalf("anchored handle is %T", h)
	}
}
