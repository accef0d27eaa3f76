// Package config loads match settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/vortex/internal/game"
	"github.com/peterkuimelis/vortex/internal/log"
)

// Config holds the settings shared by every command. Environment variables
// win over the file.
type Config struct {
	Seed          int64         `yaml:"seed" env:"VORTEX_SEED"`
	ShowdownDelay time.Duration `yaml:"showdown_delay" env:"VORTEX_SHOWDOWN_DELAY"`
	CombatDelay   time.Duration `yaml:"combat_delay" env:"VORTEX_COMBAT_DELAY"`
	AiDelay       time.Duration `yaml:"ai_delay" env:"VORTEX_AI_DELAY"`

	// RosterFile optionally replaces the built-in characters.
	RosterFile string `yaml:"roster" env:"VORTEX_ROSTER"`

	Addr string `yaml:"addr" env:"VORTEX_ADDR"`
}

// DefaultAddr is where the servers listen unless told otherwise.
const DefaultAddr = ":8080"

// MaxDelay caps every pacing delay. A negative delay turns pacing off.
const MaxDelay = time.Minute

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.ShowdownDelay == 0 {
		c.ShowdownDelay = game.DefaultShowdownDelay
	}
	if c.CombatDelay == 0 {
		c.CombatDelay = game.DefaultCombatDelay
	}
	if c.AiDelay == 0 {
		c.AiDelay = game.DefaultAiDelay
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
}

// Load reads path if it is non-empty, then applies environment overrides and
// defaults. A missing file is an error; an empty path is not.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return &c, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings no engine could run with.
func (c *Config) Validate() error {
	var errs []error
	delays := []struct {
		name string
		d    time.Duration
	}{
		{"showdown_delay", c.ShowdownDelay},
		{"combat_delay", c.CombatDelay},
		{"ai_delay", c.AiDelay},
	}
	for _, dl := range delays {
		if dl.d > MaxDelay {
			errs = append(errs, fmt.Errorf("%s must be at most %s, got %s", dl.name, MaxDelay, dl.d))
		}
	}
	return errors.Join(errs...)
}

// Roster returns the configured characters, or nil for the built-in roster.
func (c *Config) Roster() ([]game.Character, error) {
	if c.RosterFile == "" {
		return nil, nil
	}
	roster, err := game.ParseRosterFile(c.RosterFile)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

// EngineConfig builds the engine settings, loading the roster file if one is set.
func (c *Config) EngineConfig(logger log.EventLogger) (game.Config, error) {
	roster, err := c.Roster()
	if err != nil {
		return game.Config{}, err
	}
	return game.Config{
		Roster:        roster,
		Logger:        logger,
		Seed:          c.Seed,
		ShowdownDelay: c.ShowdownDelay,
		CombatDelay:   c.CombatDelay,
		AiDelay:       c.AiDelay,
	}, nil
}
