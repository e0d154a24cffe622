package console

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halden/rcsconsole/internal/sim"
)

// Eighth-block runes give the bar sub-cell resolution.
var gaugeBlocks = [9]rune{
	' ',
	'▏', // ▏
	'▎', // ▎
	'▍', // ▍
	'▌', // ▌
	'▋', // ▋
	'▊', // ▊
	'▉', // ▉
	'█', // █
}

// Gauge renders a horizontal channel bar. Fill color follows the
// channel's alarm severity so the bar and the annunciator agree.
type Gauge struct {
	Width int
}

func (g Gauge) width() int {
	if g.Width > 0 {
		return g.Width
	}
	return 24
}

// Render draws the bar for a fill fraction in [0,1] at the given
// severity.
func (g Gauge) Render(fraction float64, sev sim.Severity) string {
	w := g.width()
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = min(max(fraction, 0), 1)

	units := int(math.Round(fraction * float64(w*8)))
	full := units / 8
	partial := units % 8
	empty := w - full
	if partial > 0 {
		empty--
	}

	var b strings.Builder
	if full > 0 {
		b.WriteString(strings.Repeat(string(gaugeBlocks[8]), full))
	}
	if partial > 0 {
		b.WriteRune(gaugeBlocks[partial])
	}
	fill := severityStyle(sev).Render(b.String())

	track := gaugeTrackStyle.Render(strings.Repeat("▁", max(empty, 0)))
	return fill + track
}

var (
	gaugeNormalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	gaugeWarningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	gaugeCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	gaugeTrackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func severityStyle(sev sim.Severity) lipgloss.Style {
	switch sev {
	case sim.SeverityCritical:
		return gaugeCriticalStyle
	case sim.SeverityWarning:
		return gaugeWarningStyle
	default:
		return gaugeNormalStyle
	}
}
