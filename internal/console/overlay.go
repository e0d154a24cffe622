package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halden/rcsconsole/internal/sim"
)

// OverlayProcessName is the process key the overlay builder stashes its
// view under, so the host can retrieve it once the load completes.
const OverlayProcessName = "overlay-view"

type channelItem struct {
	ch sim.Channel
}

func (i channelItem) Title() string       { return channelLabel(i.ch) }
func (i channelItem) Description() string { return string(i.ch) }
func (i channelItem) FilterValue() string { return channelLabel(i.ch) + " " + string(i.ch) }

// OverlayView is the diagnostic presentation: channel detail plus host
// health, with a channel selector as its control surface.
type OverlayView struct {
	engine   *sim.Engine
	selector list.Model
	open     bool
	focused  sim.Channel
	diag     DiagSample
	diagErr  error
	hasDiag  bool
	gauge    Gauge
}

// NewOverlayView builds the overlay over a running engine.
func NewOverlayView(engine *sim.Engine) *OverlayView {
	items := make([]list.Item, 0, len(sim.Channels()))
	for _, ch := range sim.Channels() {
		items = append(items, channelItem{ch: ch})
	}
	sel := list.New(items, list.NewDefaultDelegate(), 40, 12)
	sel.Title = "inspect channel"
	sel.SetShowStatusBar(false)
	sel.SetFilteringEnabled(false)
	sel.SetShowHelp(false)
	return &OverlayView{
		engine:   engine,
		selector: sel,
		focused:  sim.ChanPower,
		gauge:    Gauge{Width: 32},
	}
}

// ToggleSelector opens or closes the channel selector.
func (v *OverlayView) ToggleSelector() {
	v.open = !v.open
}

// SelectorOpen reports whether the selector owns key input.
func (v *OverlayView) SelectorOpen() bool { return v.open }

// PickSelected focuses the highlighted channel and closes the selector.
func (v *OverlayView) PickSelected() {
	if it, ok := v.selector.SelectedItem().(channelItem); ok {
		v.focused = it.ch
	}
	v.open = false
}

// UpdateSelector forwards navigation keys to the selector list.
func (v *OverlayView) UpdateSelector(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.selector, cmd = v.selector.Update(msg)
	return cmd
}

// SetDiag records the latest host diagnostics sample.
func (v *OverlayView) SetDiag(msg DiagMsg) {
	v.diag = msg.Sample
	v.diagErr = msg.Err
	v.hasDiag = true
}

// Focused returns the channel under inspection.
func (v *OverlayView) Focused() sim.Channel { return v.focused }

// View renders the overlay at the given size.
func (v *OverlayView) View(width, height int) string {
	if v.open {
		v.selector.SetWidth(max(40, width-4))
		v.selector.SetHeight(max(8, height-6))
		return v.selector.View()
	}

	snap := v.engine.Snapshot()
	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render("DIAGNOSTICS"))
	b.WriteString("\n\n")

	ch := v.focused
	lim := v.engine.Limit(ch)
	sev := v.engine.Severity(ch)
	b.WriteString(fmt.Sprintf("%s  %s\n", channelLabel(ch), severityBadge(sev)))
	b.WriteString(v.gauge.Render(v.engine.Fraction(ch), sev))
	b.WriteString(fmt.Sprintf("  %s\n", formatReading(ch, snap.Value(ch))))
	b.WriteString(dimStyle.Render(fmt.Sprintf("range %s .. %s  warn >%s  crit >%s",
		formatReading(ch, lim.DisplayLo), formatReading(ch, lim.DisplayHi),
		formatReading(ch, lim.WarnHigh), formatReading(ch, lim.CritHigh))))
	b.WriteString("\n\n")

	b.WriteString(overlaySectionStyle.Render("console host"))
	b.WriteString("\n")
	switch {
	case v.diagErr != nil:
		b.WriteString(errStyle.Render("diagnostics degraded: " + v.diagErr.Error()))
		b.WriteString("\n")
	case !v.hasDiag:
		b.WriteString(dimStyle.Render("collecting..."))
		b.WriteString("\n")
	}
	if v.hasDiag {
		d := v.diag
		b.WriteString(fmt.Sprintf("cpu %5.1f%%   mem %5.1f%% (%s of %s)\n",
			d.CPUPercent, d.MemUsedPercent, formatBytes(d.MemUsedBytes), formatBytes(d.MemTotalBytes)))
		b.WriteString(fmt.Sprintf("load %.2f / %.2f   up %s\n", d.Load1, d.Load5, d.Uptime.Truncate(time.Second)))
	}
	return b.String()
}

var (
	overlayTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	overlaySectionStyle = lipgloss.NewStyle().Bold(true)
	dimStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func severityBadge(sev sim.Severity) string {
	switch sev {
	case sim.SeverityCritical:
		return gaugeCriticalStyle.Render("[CRIT]")
	case sim.SeverityWarning:
		return gaugeWarningStyle.Render("[WARN]")
	default:
		return gaugeNormalStyle.Render("[ OK ]")
	}
}

func channelLabel(ch sim.Channel) string {
	switch ch {
	case sim.ChanHotLeg:
		return "Hot leg temperature"
	case sim.ChanColdLeg:
		return "Cold leg temperature"
	case sim.ChanPressurizer:
		return "Pressurizer pressure"
	case sim.ChanFlow:
		return "Loop flow"
	case sim.ChanPower:
		return "Thermal power"
	}
	return string(ch)
}

func formatReading(ch sim.Channel, v float64) string {
	switch ch {
	case sim.ChanHotLeg, sim.ChanColdLeg:
		return fmt.Sprintf("%.1f °C", v)
	case sim.ChanPressurizer:
		return fmt.Sprintf("%.2f MPa", v)
	case sim.ChanFlow:
		return fmt.Sprintf("%.0f kg/s", v)
	case sim.ChanPower:
		return fmt.Sprintf("%.0f MW", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
