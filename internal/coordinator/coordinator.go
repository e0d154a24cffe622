package coordinator

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halden/rcsconsole/internal/audio"
	"github.com/halden/rcsconsole/internal/scene"
)

// ViewState identifies which presentation is current. Exactly one value
// is current at any instant.
type ViewState int

const (
	ViewPrimary ViewState = iota
	ViewOverlay
)

func (v ViewState) String() string {
	if v == ViewOverlay {
		return "overlay"
	}
	return "primary"
}

// Command is one recognized input command for a tick.
type Command int

const (
	CmdNone Command = iota
	CmdSwitchOverlay
	CmdSwitchPrimary
	CmdToggleSelector
)

// ControlSurface is the overlay presentation's own control surface.
// The overlay registers it into the coordinator when it initializes.
type ControlSurface interface {
	ToggleSelector()
}

// DataBridge lets downstream display widgets re-discover their data
// sources after the overlay loads. The coordinator never inspects the
// result.
type DataBridge interface {
	ResolveSources()
}

// Recorder receives coordinator events for the session journal. A nil
// recorder is valid and drops everything.
type Recorder interface {
	Record(kind, detail string)
}

// Options configures a Coordinator.
type Options struct {
	// PrimaryName and OverlayName are the presentation context names of
	// the two views.
	PrimaryName string
	OverlayName string
	Bridge      DataBridge
	Recorder    Recorder
	// ResolveSurface is the fallback lookup used when the overlay never
	// registered its control surface. May be nil.
	ResolveSurface func() ControlSurface
}

// Coordinator owns which of the two presentations is current and the
// safe asynchronous transition between them. All methods must be
// called from the host's single-threaded update loop; transitions
// issued here complete via Handle* methods on a later tick.
type Coordinator struct {
	log     *slog.Logger
	reg     *scene.Registry
	loader  *scene.Loader
	arbiter *audio.Arbiter

	primaryName    string
	overlayName    string
	bridge         DataBridge
	rec            Recorder
	resolveSurface func() ControlSurface

	view           ViewState
	transitioning  bool
	overlayLoaded  bool
	primaryVisible bool
	surface        ControlSurface
	deferred       DeferredActionQueue
	anchored       bool
}

// New constructs the coordinator and binds it to the registry. A
// second construction attempt against the same registry is a
// configuration error, not a silent self-destruct.
func New(log *slog.Logger, reg *scene.Registry, loader *scene.Loader, arbiter *audio.Arbiter, opts Options) (*Coordinator, error) {
	if err := reg.Bind(); err != nil {
		return nil, fmt.Errorf("construct view coordinator: %w", err)
	}
	if opts.OverlayName == "" {
		return nil, fmt.Errorf("construct view coordinator: overlay presentation name required")
	}
	c := &Coordinator{
		log:            log,
		reg:            reg,
		loader:         loader,
		arbiter:        arbiter,
		primaryName:    opts.PrimaryName,
		overlayName:    opts.OverlayName,
		bridge:         opts.Bridge,
		rec:            opts.Recorder,
		resolveSurface: opts.ResolveSurface,
		view:           ViewPrimary,
		primaryVisible: true,
	}
	return c, nil
}

// CurrentView returns the current view state.
func (c *Coordinator) CurrentView() ViewState { return c.view }

// OverlayLoaded reports whether the overlay's resources are resident.
func (c *Coordinator) OverlayLoaded() bool { return c.overlayLoaded }

// Transitioning reports whether a load or unload is in flight.
func (c *Coordinator) Transitioning() bool { return c.transitioning }

// PrimaryVisible reports whether the primary view container is shown.
func (c *Coordinator) PrimaryVisible() bool { return c.primaryVisible }

// PreferredContext names the context whose audio sinks win arbitration
// tie-breaks: the overlay's while it is current and loaded, otherwise
// the primary's.
func (c *Coordinator) PreferredContext() string {
	if c.view == ViewOverlay && c.overlayLoaded {
		return c.overlayName
	}
	return c.primaryName
}

// RegisterControlSurface is called by the overlay's own initialization
// code to hand its control surface to the coordinator.
func (c *Coordinator) RegisterControlSurface(s ControlSurface) {
	c.surface = s
}

// Dispatch routes the tick's recognized command. While a transition is
// in flight nothing is dispatched.
func (c *Coordinator) Dispatch(cmd Command) tea.Cmd {
	if c.transitioning {
		return nil
	}
	switch cmd {
	case CmdSwitchOverlay:
		return c.RequestOverlay()
	case CmdSwitchPrimary:
		return c.RequestPrimary()
	case CmdToggleSelector:
		return c.toggleSelector()
	}
	return nil
}

// toggleSelector handles the selector-toggle command. From the primary
// view the target is not ready, so the request is queued and the
// overlay transition is triggered independently. From the overlay view
// it is forwarded directly, with one re-resolve attempt before giving
// up.
func (c *Coordinator) toggleSelector() tea.Cmd {
	if c.view == ViewOverlay {
		if c.surface == nil && c.resolveSurface != nil {
			c.surface = c.resolveSurface()
		}
		if c.surface == nil {
			c.log.Warn("selector toggle dropped: overlay control surface unavailable")
			return nil
		}
		c.surface.ToggleSelector()
		return nil
	}
	c.deferred.Set(func() {
		if c.surface != nil {
			c.surface.ToggleSelector()
		}
	})
	return c.RequestOverlay()
}

// RequestOverlay begins the Primary -> Overlay transition. Requests
// made while locked, or while already in the overlay view, are silent
// no-ops.
func (c *Coordinator) RequestOverlay() tea.Cmd {
	if c.transitioning || c.view == ViewOverlay {
		return nil
	}
	c.transitioning = true
	c.setPrimaryVisible(false)

	if c.overlayLoaded {
		// rare: overlay resident without the coordinator having loaded
		// it; flip without an async round-trip
		c.log.Info("overlay already resident; switching synchronously")
		c.enterOverlay()
		return nil
	}

	cmd := c.loader.Load(c.overlayName)
	if cmd == nil {
		c.failLoad(fmt.Errorf("presentation %q not registered", c.overlayName))
		return nil
	}
	c.log.Info("loading overlay presentation", "name", c.overlayName)
	return cmd
}

// RequestPrimary begins the Overlay -> Primary transition; silent
// no-op when locked or already primary.
func (c *Coordinator) RequestPrimary() tea.Cmd {
	if c.transitioning || c.view == ViewPrimary {
		return nil
	}
	c.transitioning = true
	c.setPrimaryVisible(true)

	cmd := c.loader.Unload(c.overlayName)
	if cmd == nil {
		// nothing was loaded to unload; treat as already unloaded
		c.log.Info("overlay already unloaded; switching synchronously")
		c.completeUnload()
		return nil
	}
	c.log.Info("unloading overlay presentation", "name", c.overlayName)
	return cmd
}

// HandleLoaded is the completion edge of the load transition.
func (c *Coordinator) HandleLoaded(msg scene.LoadedMsg) {
	if msg.Name != c.overlayName {
		return
	}
	if msg.Err != nil {
		c.failLoad(msg.Err)
		return
	}
	c.reg.Install(msg.Ctx)
	c.overlayLoaded = true
	c.enterOverlay()
}

// enterOverlay settles the machine in the overlay view: resolve the
// control surface best-effort, re-point display widgets, re-arbitrate
// audio, then drain the deferred action.
func (c *Coordinator) enterOverlay() {
	c.view = ViewOverlay
	c.transitioning = false

	if c.surface == nil && c.resolveSurface != nil {
		c.surface = c.resolveSurface()
	}
	if c.surface == nil {
		c.log.Warn("overlay control surface not registered")
	}
	if c.bridge != nil {
		c.bridge.ResolveSources()
	}
	c.RunArbiter()
	c.record("view", "primary -> overlay")
	c.deferred.DrainIfPending()
}

// failLoad rolls the machine back to the primary view. The pending
// deferred action cannot be satisfied and is discarded.
func (c *Coordinator) failLoad(err error) {
	c.log.Error("overlay load failed", "name", c.overlayName, "err", err)
	c.setPrimaryVisible(true)
	c.transitioning = false
	c.view = ViewPrimary
	c.deferred.Clear()
	c.record("load-failed", err.Error())
}

// HandleUnloaded is the completion edge of the unload transition.
func (c *Coordinator) HandleUnloaded(msg scene.UnloadedMsg) {
	if msg.Name != c.overlayName {
		return
	}
	c.reg.Remove(msg.Name)
	c.completeUnload()
}

func (c *Coordinator) completeUnload() {
	c.overlayLoaded = false
	c.view = ViewPrimary
	c.transitioning = false
	c.setPrimaryVisible(true)
	c.surface = nil
	c.RunArbiter()
	c.record("view", "overlay -> primary")
}

// RunArbiter performs one audio arbitration pass and journals winner
// changes. Called at startup, after every load/unload completion, and
// from the host's arbitration timer.
func (c *Coordinator) RunArbiter() audio.Result {
	res := c.arbiter.Run()
	if res.CreatedFallback {
		c.record("audio", "fallback sink created")
	}
	if res.Changed && res.WinnerID != "" {
		c.record("audio", "sink "+res.WinnerID+" live")
	}
	return res
}

// setPrimaryVisible shows or hides the primary view container. The
// container's context tracks visibility so that its audio sinks become
// unreachable while hidden.
func (c *Coordinator) setPrimaryVisible(v bool) {
	c.primaryVisible = v
	if ctx, ok := c.reg.Get(c.primaryName); ok {
		ctx.SetActive(v)
	}
}

func (c *Coordinator) record(kind, detail string) {
	if c.rec != nil {
		c.rec.Record(kind, detail)
	}
}
