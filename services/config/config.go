package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"zybo-sound/x/logx"
)

// Config is the runtime configuration of the sound card service.
type Config struct {
	Card    Card        `yaml:"card"`
	HWDesc  string      `yaml:"hwdesc"` // path to the board hardware description
	Codec   Codec       `yaml:"codec"`
	Log     logx.Config `yaml:"log"`
	Metrics Metrics     `yaml:"metrics"`
	// Rates are negotiated once at startup as a smoke test.
	Rates []uint32 `yaml:"rates,omitempty"`
}

type Card struct {
	Name       string `yaml:"name"`
	Compatible string `yaml:"compatible"`
}

type Codec struct {
	Address uint16 `yaml:"address"`
}

type Metrics struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// EmbeddedConfigLookup allows overriding how built-in board configs are
// resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// ForBoard returns the built-in configuration of a board.
func ForBoard(board string) (Config, error) {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return Config{}, errors.New("no embedded config for board: " + board)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("config: board %s: %w", board, err)
	}
	return c, nil
}

// Load reads a YAML file over the built-in config of board. Keys absent from
// the file keep the board values.
func Load(board, path string) (Config, error) {
	c, err := ForBoard(board)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return c, c.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Card.Name == "":
		return errors.New("config: card.name is required")
	case c.Card.Compatible == "":
		return errors.New("config: card.compatible is required")
	case c.HWDesc == "":
		return errors.New("config: hwdesc is required")
	}
	return nil
}
