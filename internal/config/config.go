// Package config holds the tunable constants of the night simulation.
// Every value ships with a compiled-in default so the server runs without a
// config file; a TOML file can override any of them for balancing sessions.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Night    NightConfig    `toml:"night"`
	Power    PowerConfig    `toml:"power"`
	Movement MovementConfig `toml:"movement"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	BindAddress string `toml:"bind_address"`
}

type NightConfig struct {
	// TickInterval is the real-time length of one simulation tick. The
	// clock ticker and the movement scheduler each run on their own timer
	// at this interval.
	TickInterval time.Duration `toml:"tick_interval"`

	// DurationTicks is how many ticks a night lasts (360 ticks = 6 in-game
	// hours at 60 ticks per hour).
	DurationTicks int `toml:"duration_ticks"`

	// FinalNight is the last scripted night; clearing it wins the game.
	FinalNight int `toml:"final_night"`

	// AutoAdvanceDelay is the pause between clearing a night and the next
	// one starting on its own.
	AutoAdvanceDelay time.Duration `toml:"auto_advance_delay"`
}

type PowerConfig struct {
	Full         float64 `toml:"full"`          // starting charge
	BaseDrain    float64 `toml:"base_drain"`    // per tick, unconditional
	DoorDrain    float64 `toml:"door_drain"`    // per tick, per closed door
	MonitorDrain float64 `toml:"monitor_drain"` // per tick while the camera feed is up
}

type MovementConfig struct {
	// Dwell thresholds, in ticks, before an animatronic advances out of a
	// location. Shorter for the first hop, longer for the later ones.
	StageDwell    int `toml:"stage_dwell"`
	SideHallDwell int `toml:"side_hall_dwell"`
	HallwayDwell  int `toml:"hallway_dwell"`

	// StallLimit is how long an animatronic waits at an open door before
	// it gets in. Numerically close to the dwell thresholds but an
	// independent knob.
	StallLimit int `toml:"stall_limit"`

	// BossJumpChance is Deddy's per-tick probability, on the final night,
	// of lunging straight to a random door.
	BossJumpChance float64 `toml:"boss_jump_chance"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Default returns the shipped balance.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress: ":8080",
		},
		Night: NightConfig{
			TickInterval:     100 * time.Millisecond,
			DurationTicks:    360,
			FinalNight:       5,
			AutoAdvanceDelay: 5 * time.Second,
		},
		Power: PowerConfig{
			Full:         100,
			BaseDrain:    0.05,
			DoorDrain:    0.10,
			MonitorDrain: 0.05,
		},
		Movement: MovementConfig{
			StageDwell:     80,
			SideHallDwell:  90,
			HallwayDwell:   100,
			StallLimit:     80,
			BossJumpChance: 0.005,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects balances the engine cannot run on.
func (c *Config) Validate() error {
	if c.Night.TickInterval <= 0 {
		return fmt.Errorf("config: tick_interval must be positive")
	}
	if c.Night.DurationTicks <= 0 {
		return fmt.Errorf("config: duration_ticks must be positive")
	}
	if c.Night.FinalNight < 1 {
		return fmt.Errorf("config: final_night must be at least 1")
	}
	if c.Power.Full <= 0 || c.Power.BaseDrain < 0 || c.Power.DoorDrain < 0 || c.Power.MonitorDrain < 0 {
		return fmt.Errorf("config: power values out of range")
	}
	if c.Movement.StageDwell <= 0 || c.Movement.SideHallDwell <= 0 || c.Movement.HallwayDwell <= 0 {
		return fmt.Errorf("config: dwell thresholds must be positive")
	}
	if c.Movement.StallLimit <= 0 {
		return fmt.Errorf("config: stall_limit must be positive")
	}
	if c.Movement.BossJumpChance < 0 || c.Movement.BossJumpChance >= 1 {
		return fmt.Errorf("config: boss_jump_chance must be in [0,1)")
	}
	return nil
}
