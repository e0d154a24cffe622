package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halden/rcsconsole/internal/sim"
)

// PanelView is the primary operator presentation: one gauge per loop
// channel plus an annunciator row.
type PanelView struct {
	engine *sim.Engine
	gauge  Gauge
}

func NewPanelView(engine *sim.Engine) *PanelView {
	return &PanelView{engine: engine, gauge: Gauge{Width: 28}}
}

func (v *PanelView) View(width, height int) string {
	snap := v.engine.Snapshot()

	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("PRIMARY LOOP"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  tick %d", snap.Tick)))
	b.WriteString("\n\n")

	labelW := 0
	for _, ch := range sim.Channels() {
		if n := len(channelLabel(ch)); n > labelW {
			labelW = n
		}
	}
	for _, ch := range sim.Channels() {
		sev := v.engine.Severity(ch)
		b.WriteString(fmt.Sprintf("%-*s ", labelW, channelLabel(ch)))
		b.WriteString(v.gauge.Render(v.engine.Fraction(ch), sev))
		b.WriteString(fmt.Sprintf("  %s\n", formatReading(ch, snap.Value(ch))))
	}

	b.WriteString("\n")
	b.WriteString(v.annunciators())
	return b.String()
}

// annunciators renders the alarm tile row. Every channel gets a tile so
// operators notice tiles changing, not appearing.
func (v *PanelView) annunciators() string {
	tiles := make([]string, 0, len(sim.Channels()))
	for _, ch := range sim.Channels() {
		tiles = append(tiles, annunciatorTile(string(ch), v.engine.Severity(ch)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func annunciatorTile(name string, sev sim.Severity) string {
	st := tileNormalStyle
	switch sev {
	case sim.SeverityWarning:
		st = tileWarnStyle
	case sim.SeverityCritical:
		st = tileCritStyle
	}
	return st.Render(" " + name + " ")
}

var (
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	tileNormalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238"))
	tileWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("214"))
	tileCritStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("196")).Bold(true).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("196"))
)
