package console

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/halden/rcsconsole/internal/audio"
	"github.com/halden/rcsconsole/internal/config"
	"github.com/halden/rcsconsole/internal/coordinator"
	"github.com/halden/rcsconsole/internal/scene"
	"github.com/halden/rcsconsole/internal/sim"
)

// Presentation context names and well-known sink ids.
const (
	PrimaryContextName = "operator-panel"
	OverlayContextName = "diagnostic-overlay"
	OverlaySinkID      = "overlay-bell"
	FallbackSinkID     = "fallback-bell"
)

// Model is the console host: a single-threaded Bubble Tea update loop
// that owns input dispatch, the view coordinator, and all registry
// mutation. The simulation engine runs in its own goroutine; the model
// only reads snapshots and drains its alarm queue.
type Model struct {
	log *slog.Logger
	cfg config.Config

	engine *sim.Engine
	reg    *scene.Registry
	coord  *coordinator.Coordinator
	arb    *audio.Arbiter
	rec    coordinator.Recorder

	panel   *PanelView
	overlay *OverlayView

	keys       *KeyRegistry
	cmds       *CommandRegistry
	prompt     textinput.Model
	promptOpen bool

	// pendingFocus is a channel to inspect once the overlay finishes
	// loading, set by the :inspect command from the panel view.
	pendingFocus sim.Channel

	status    string
	statusErr bool
	width     int
	height    int
	bellOut   io.Writer
}

// New wires the full console: registry, loader, arbiter, coordinator,
// and both presentations. rec may be nil. bellOut receives terminal
// bell bytes; in production it is the terminal's stderr.
func New(log *slog.Logger, cfg config.Config, engine *sim.Engine, rec coordinator.Recorder, bellOut io.Writer) (*Model, error) {
	prompt := textinput.New()
	prompt.Prompt = ":"
	prompt.Placeholder = "command"

	m := &Model{
		log:     log,
		cfg:     cfg,
		engine:  engine,
		rec:     rec,
		prompt:  prompt,
		keys:    NewKeyRegistry(DefaultKeyBindings()),
		bellOut: bellOut,
	}

	reg := scene.NewRegistry()
	primary := scene.NewContext(PrimaryContextName)
	primary.AddSink(audio.NewBellSink(cfg.Audio.MainSink, PrimaryContextName, bellOut))
	// hosted here at first; AnchorProcess re-parents it to the root
	primary.HostProcess(coordinator.SimulationProcessName, engine)
	reg.Install(primary)
	reg.RegisterBuilder(OverlayContextName, m.buildOverlay)
	m.reg = reg

	loader := scene.NewLoader(reg)
	m.arb = audio.NewArbiter(log, reg.Sinks, m.preferredContext, audio.Options{
		MainSinkID:     cfg.Audio.MainSink,
		CreateFallback: cfg.Audio.CreateFallback,
		NewFallback: func() audio.Sink {
			s := audio.NewBellSink(FallbackSinkID, scene.RootContextName, bellOut)
			reg.Root().AddSink(s)
			return s
		},
	})

	coord, err := coordinator.New(log, reg, loader, m.arb, coordinator.Options{
		PrimaryName:    PrimaryContextName,
		OverlayName:    OverlayContextName,
		Bridge:         m,
		Recorder:       rec,
		ResolveSurface: m.resolveSurface,
	})
	if err != nil {
		return nil, err
	}
	m.coord = coord

	m.panel = NewPanelView(engine)
	m.cmds = newConsoleCommands(m)

	coord.AnchorProcess()
	coord.RunArbiter()
	return m, nil
}

// buildOverlay is the overlay's registered builder. It runs off the
// update loop, so the view is stashed as a hosted process and picked up
// by the LoadedMsg handler rather than registered directly.
func (m *Model) buildOverlay() (*scene.Context, error) {
	ctx := scene.NewContext(OverlayContextName)
	ctx.AddSink(audio.NewBellSink(OverlaySinkID, OverlayContextName, m.bellOut))
	ov := NewOverlayView(m.engine)
	ctx.HostProcess(OverlayProcessName, ov)
	return ctx, nil
}

func (m *Model) resolveSurface() coordinator.ControlSurface {
	if m.overlay == nil {
		return nil
	}
	return m.overlay
}

func (m *Model) preferredContext() string {
	if m.coord == nil {
		return PrimaryContextName
	}
	return m.coord.PreferredContext()
}

// ResolveSources re-discovers the simulation engine from the anchored
// process handle and re-points every display widget at it. Called by
// the coordinator after each overlay load.
func (m *Model) ResolveSources() {
	_, h, ok := m.reg.FindProcess(coordinator.SimulationProcessName)
	if !ok {
		m.log.Warn("simulation process missing; widgets keep stale source")
		return
	}
	e, ok := h.(*sim.Engine)
	if !ok {
		return
	}
	m.engine = e
	m.panel.engine = e
	if m.overlay != nil {
		m.overlay.engine = e
	}
}

// Coordinator exposes the view coordinator for the host process.
func (m *Model) Coordinator() *coordinator.Coordinator { return m.coord }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		refreshTickCmd(m.cfg.Sim.RefreshInterval),
		arbiterTickCmd(m.cfg.Audio.ArbiterInterval),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case scene.LoadedMsg:
		return m.handleLoaded(msg)

	case scene.UnloadedMsg:
		m.coord.HandleUnloaded(msg)
		if msg.Name == OverlayContextName {
			m.overlay = nil
		}
		return m, nil

	case RefreshTickMsg:
		cmd := m.drainAlarms()
		return m, tea.Batch(refreshTickCmd(m.cfg.Sim.RefreshInterval), cmd)

	case ArbiterTickMsg:
		m.coord.RunArbiter()
		return m, arbiterTickCmd(m.cfg.Audio.ArbiterInterval)

	case DiagMsg:
		if m.overlay != nil {
			m.overlay.SetDiag(msg)
		}
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		m.statusErr = msg.IsErr
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoaded(msg scene.LoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Name == OverlayContextName && msg.Err == nil && msg.Ctx != nil {
		if h, ok := msg.Ctx.Process(OverlayProcessName); ok {
			if ov, ok := h.(*OverlayView); ok {
				m.overlay = ov
			}
		}
	}
	m.coord.HandleLoaded(msg)
	if msg.Err != nil {
		m.status = "diagnostics unavailable: " + msg.Err.Error()
		m.statusErr = true
		return m, nil
	}
	if m.overlay != nil && m.pendingFocus != "" {
		m.overlay.focused = m.pendingFocus
		m.pendingFocus = ""
	}
	return m, collectDiagCmd()
}

// drainAlarms consumes the engine's queued alarm transitions on the
// update loop: chime the arbitration winner, journal the event, and
// surface the latest one in the status line.
func (m *Model) drainAlarms() tea.Cmd {
	events := m.engine.ConsumeAlarms()
	if len(events) == 0 {
		return nil
	}
	var last string
	var lastErr bool
	for _, ev := range events {
		detail := fmt.Sprintf("%s %s (%.4g)", ev.Channel, ev.To, ev.Value)
		if m.rec != nil {
			m.rec.Record("alarm", detail)
		}
		if ev.Raised() {
			m.arb.Chime(ev.To == sim.SeverityCritical)
			last = "ALARM " + detail
			lastErr = true
		} else {
			last = "cleared " + string(ev.Channel)
			lastErr = false
		}
	}
	m.status = last
	m.statusErr = lastErr
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	scope := m.scope()
	switch scope {
	case scopePrompt:
		return m.updatePrompt(msg)
	case scopeSelector:
		return m.updateSelector(msg)
	}

	switch m.keys.Action(msg, scope) {
	case "quit":
		return m, tea.Quit
	case "diagnostics":
		return m, m.coord.Dispatch(coordinator.CmdSwitchOverlay)
	case "operator":
		return m, m.coord.Dispatch(coordinator.CmdSwitchPrimary)
	case "selector":
		return m, m.coord.Dispatch(coordinator.CmdToggleSelector)
	case "prompt":
		m.promptOpen = true
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	case "power-up":
		return m, m.nudgePower(+0.05)
	case "power-down":
		return m, m.nudgePower(-0.05)
	}
	return m, nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptOpen = false
		return m, nil
	case "enter":
		line := m.prompt.Value()
		m.promptOpen = false
		return m, m.cmds.Dispatch(line)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) updateSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Action(msg, scopeSelector) {
	case "selector-close":
		m.overlay.ToggleSelector()
		return m, nil
	case "selector-pick":
		m.overlay.PickSelected()
		return m, StatusCmd("inspecting " + channelLabel(m.overlay.Focused()))
	}
	return m, m.overlay.UpdateSelector(msg)
}

func (m *Model) nudgePower(frac float64) tea.Cmd {
	target := m.engine.Snapshot().PowerMW + m.cfg.Sim.RatedPowerMW*frac
	if target < 0 {
		target = 0
	}
	m.engine.SetPower(target)
	return StatusCmd(fmt.Sprintf("power setpoint %.0f MW", target))
}

// scope names the key-dispatch scope owning the next keystroke.
func (m *Model) scope() string {
	if m.promptOpen {
		return scopePrompt
	}
	if m.coord.CurrentView() == coordinator.ViewOverlay {
		if m.overlay != nil && m.overlay.SelectorOpen() {
			return scopeSelector
		}
		return scopeOverlay
	}
	return scopePrimary
}

func (m *Model) View() string {
	var body string
	switch {
	case m.coord.CurrentView() == coordinator.ViewOverlay && m.overlay != nil:
		body = m.overlay.View(m.width, m.height)
	case !m.coord.PrimaryVisible():
		body = dimStyle.Render("switching views...")
	default:
		body = m.panel.View(m.width, m.height)
	}
	if m.promptOpen {
		return body + "\n" + m.prompt.View()
	}
	return body + "\n" + m.statusLine() + "\n" + m.hintLine()
}

func (m *Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errStyle.Render(m.status)
	}
	return m.status
}

func (m *Model) hintLine() string {
	var parts []string
	seen := map[string]bool{}
	for _, b := range m.keys.BindingsForScope(m.scope()) {
		if seen[b.Action] || len(b.Keys) == 0 {
			continue
		}
		seen[b.Action] = true
		parts = append(parts, b.Keys[0]+" "+b.Description)
	}
	return dimStyle.Render(strings.Join(parts, "  "))
}

// newConsoleCommands registers the ":"-prompt command set.
func newConsoleCommands(m *Model) *CommandRegistry {
	r := NewCommandRegistry()
	r.Register(Command{
		Name:        "power",
		Description: "set thermal power setpoint in MW",
		Run: func(args []string) tea.Cmd {
			if len(args) != 1 {
				return ErrorCmd(fmt.Errorf("usage: power <MW>"))
			}
			mw, err := strconv.ParseFloat(args[0], 64)
			if err != nil || mw < 0 {
				return ErrorCmd(fmt.Errorf("invalid power %q", args[0]))
			}
			m.engine.SetPower(mw)
			return StatusCmd(fmt.Sprintf("power setpoint %.0f MW", mw))
		},
	})
	r.Register(Command{
		Name:        "inspect",
		Description: "open diagnostics focused on a channel",
		Run: func(args []string) tea.Cmd {
			if len(args) != 1 {
				return ErrorCmd(fmt.Errorf("usage: inspect <channel>"))
			}
			ch, ok := channelByName(args[0])
			if !ok {
				return ErrorCmd(fmt.Errorf("unknown channel %q", args[0]))
			}
			if m.overlay != nil {
				m.overlay.focused = ch
			} else {
				m.pendingFocus = ch
			}
			return m.coord.Dispatch(coordinator.CmdSwitchOverlay)
		},
	})
	r.Register(Command{
		Name:        "view",
		Aliases:     []string{"v"},
		Description: "switch view: panel or diag",
		Run: func(args []string) tea.Cmd {
			if len(args) != 1 {
				return ErrorCmd(fmt.Errorf("usage: view panel|diag"))
			}
			switch args[0] {
			case "panel":
				return m.coord.Dispatch(coordinator.CmdSwitchPrimary)
			case "diag":
				return m.coord.Dispatch(coordinator.CmdSwitchOverlay)
			}
			return ErrorCmd(fmt.Errorf("unknown view %q", args[0]))
		},
	})
	r.Register(Command{
		Name:        "chime",
		Description: "sound the live annunciator sink",
		Run: func(args []string) tea.Cmd {
			m.arb.Chime(true)
			return StatusCmd("chime test")
		},
	})
	r.Register(Command{
		Name:        "quit",
		Aliases:     []string{"q"},
		Description: "quit the console",
		Run: func(args []string) tea.Cmd {
			return tea.Quit
		},
	})
	return r
}

func channelByName(name string) (sim.Channel, bool) {
	name = strings.ToLower(name)
	for _, ch := range sim.Channels() {
		if string(ch) == name || strings.ToLower(channelLabel(ch)) == name {
			return ch, true
		}
	}
	return "", false
}
