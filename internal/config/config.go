package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Journal JournalConfig
	Sim     SimConfig
	Audio   AudioConfig
	Log     LogConfig
}

// JournalConfig holds the sqlite shift-log settings.
type JournalConfig struct {
	Path string
}

// SimConfig holds simulation timing and plant rating settings.
type SimConfig struct {
	TickInterval    time.Duration
	RefreshInterval time.Duration
	InitialPowerMW  float64
	RatedPowerMW    float64
	RatedFlowKgS    float64
}

// AudioConfig holds annunciator audio settings.
type AudioConfig struct {
	ArbiterInterval time.Duration
	CreateFallback  bool
	MainSink        string
}

// LogConfig holds log output settings.
type LogConfig struct {
	Path  string
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix RCSCONSOLE_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	dataDir := filepath.Join(home, ".local", "share", "rcsconsole")

	v.SetDefault("journal.path", filepath.Join(dataDir, "journal.db"))
	v.SetDefault("sim.tick_interval", "250ms")
	v.SetDefault("sim.refresh_interval", "500ms")
	v.SetDefault("sim.initial_power_mw", 2700.0)
	v.SetDefault("sim.rated_power_mw", 3000.0)
	v.SetDefault("sim.rated_flow_kgs", 17000.0)
	v.SetDefault("audio.arbiter_interval", "2s")
	v.SetDefault("audio.create_fallback", true)
	v.SetDefault("audio.main_sink", "console-main")
	v.SetDefault("log.path", filepath.Join(dataDir, "rcsconsole.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("RCSCONSOLE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "rcsconsole"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RCSCONSOLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	c := Config{
		Journal: JournalConfig{Path: v.GetString("journal.path")},
		Sim: SimConfig{
			TickInterval:    parseDuration(v.GetString("sim.tick_interval"), 250*time.Millisecond),
			RefreshInterval: parseDuration(v.GetString("sim.refresh_interval"), 500*time.Millisecond),
			InitialPowerMW:  v.GetFloat64("sim.initial_power_mw"),
			RatedPowerMW:    v.GetFloat64("sim.rated_power_mw"),
			RatedFlowKgS:    v.GetFloat64("sim.rated_flow_kgs"),
		},
		Audio: AudioConfig{
			ArbiterInterval: parseDuration(v.GetString("audio.arbiter_interval"), 2*time.Second),
			CreateFallback:  v.GetBool("audio.create_fallback"),
			MainSink:        v.GetString("audio.main_sink"),
		},
		Log: LogConfig{
			Path:  v.GetString("log.path"),
			Level: v.GetString("log.level"),
		},
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations the console cannot run with.
func (c Config) Validate() error {
	if c.Sim.TickInterval <= 0 {
		return fmt.Errorf("sim.tick_interval must be positive")
	}
	if c.Audio.ArbiterInterval <= 0 {
		return fmt.Errorf("audio.arbiter_interval must be positive")
	}
	if c.Sim.RatedPowerMW <= 0 {
		return fmt.Errorf("sim.rated_power_mw must be positive")
	}
	if c.Sim.RatedFlowKgS <= 0 {
		return fmt.Errorf("sim.rated_flow_kgs must be positive")
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
