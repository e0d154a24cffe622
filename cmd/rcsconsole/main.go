package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halden/rcsconsole/internal/config"
	"github.com/halden/rcsconsole/internal/console"
	"github.com/halden/rcsconsole/internal/journal"
	"github.com/halden/rcsconsole/internal/logging"
	"github.com/halden/rcsconsole/internal/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, logFile, err := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logFile.Close()

	jnl, err := journal.Open(cfg.Journal.Path, logger)
	if err != nil {
		log.Fatalf("journal: %v", err)
	}
	defer jnl.Close()
	logger.Info("session started", "session", jnl.SessionID)

	engine := sim.NewEngine(logger, cfg.Sim.InitialPowerMW, sim.Ratings{
		RatedPowerMW: cfg.Sim.RatedPowerMW,
		RatedFlowKgS: cfg.Sim.RatedFlowKgS,
	})

	m, err := console.New(logger, cfg, engine, jnl, os.Stderr)
	if err != nil {
		log.Fatalf("console: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx, cfg.Sim.TickInterval)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	cancel()
	<-engine.Done()
	logger.Info("session ended", "session", jnl.SessionID)
}
