package console

import (
	"strings"
	"testing"

	"github.com/halden/rcsconsole/internal/sim"
)

func TestGaugeFullAndEmpty(t *testing.T) {
	g := Gauge{Width: 10}

	full := g.Render(1.0, sim.SeverityNormal)
	if !strings.Contains(full, strings.Repeat("█", 10)) {
		t.Fatalf("full gauge missing solid bar: %q", full)
	}

	empty := g.Render(0, sim.SeverityNormal)
	if strings.Contains(empty, "█") {
		t.Fatalf("empty gauge should have no filled cells: %q", empty)
	}
}

func TestGaugePartialCell(t *testing.T) {
	g := Gauge{Width: 10}
	// 0.55 of 10 cells = 5 full cells + 4/8 partial
	out := g.Render(0.55, sim.SeverityNormal)
	if !strings.Contains(out, strings.Repeat("█", 5)) {
		t.Fatalf("expected 5 full cells: %q", out)
	}
	if !strings.Contains(out, "▌") {
		t.Fatalf("expected half-cell boundary rune: %q", out)
	}
}

func TestGaugeClampsOutOfRange(t *testing.T) {
	g := Gauge{Width: 8}
	over := g.Render(4.2, sim.SeverityCritical)
	if !strings.Contains(over, strings.Repeat("█", 8)) {
		t.Fatalf("overrange should clamp to full: %q", over)
	}
	under := g.Render(-1, sim.SeverityNormal)
	if strings.Contains(under, "█") {
		t.Fatalf("underrange should clamp to empty: %q", under)
	}
}
