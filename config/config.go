// Package config loads the single yaml file that carries all game-content
// knowledge: heuristic gates, defensive cards, priority targets and the
// alias table. Everything has a working default, so a missing file just
// means the built-in balanced profile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ldevreaux/gambit/fastpath"
)

type Config struct {
	Profile    fastpath.Profile    `yaml:"profile"`
	Aliases    map[string][]string `yaml:"aliases"`
	MaxActions int                 `yaml:"max_actions"`

	// SourceTimeoutMS bounds the wait on the external intent source.
	SourceTimeoutMS int `yaml:"source_timeout_ms"`
}

func Default() Config {
	return Config{
		Profile:         fastpath.DefaultProfile(),
		MaxActions:      6,
		SourceTimeoutMS: 8000,
	}
}

// Load reads a yaml config. An empty path returns the defaults; a missing
// or malformed file is an error so a typo'd path doesn't silently play
// with a blank profile.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Profile.Validate()
	if cfg.MaxActions <= 0 {
		cfg.MaxActions = 6
	}
	if cfg.SourceTimeoutMS <= 0 {
		cfg.SourceTimeoutMS = 8000
	}
	return cfg, nil
}
