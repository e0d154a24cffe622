package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// DiagSample is a snapshot of the console host's health, shown on the
// diagnostic overlay alongside the loop channels.
type DiagSample struct {
	CPUPercent     float64
	MemUsedPercent float64
	MemUsedBytes   uint64
	MemTotalBytes  uint64
	Load1          float64
	Load5          float64
	Uptime         time.Duration
	CollectedAt    time.Time
}

const diagTimeout = 3 * time.Second

// collectDiagCmd gathers a DiagSample off the update loop. Partial
// failures still produce a sample; only a total miss reports an error.
func collectDiagCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), diagTimeout)
		defer cancel()

		s := DiagSample{CollectedAt: time.Now()}
		var firstErr error
		keep := func(err error) bool {
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return false
			}
			return true
		}

		if pct, err := cpu.PercentWithContext(ctx, 0, false); keep(err) && len(pct) > 0 {
			s.CPUPercent = pct[0]
		}
		if vm, err := mem.VirtualMemoryWithContext(ctx); keep(err) {
			s.MemUsedPercent = vm.UsedPercent
			s.MemUsedBytes = vm.Used
			s.MemTotalBytes = vm.Total
		}
		if avg, err := load.AvgWithContext(ctx); keep(err) {
			s.Load1 = avg.Load1
			s.Load5 = avg.Load5
		}
		if secs, err := host.UptimeWithContext(ctx); keep(err) {
			s.Uptime = time.Duration(secs) * time.Second
		}

		return DiagMsg{Sample: s, Err: firstErr}
	}
}
