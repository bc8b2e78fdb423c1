package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Driver string   `yaml:"driver"`          // "sio" | "sim"
	Ports  []uint16 `yaml:"ports,omitempty"` // candidate base ports, e.g. [0x4e, 0x2e]
	Listen string   `yaml:"listen"`          // HTTP listen address

	// Startup brightness per channel, 0..15.
	Red   uint8 `yaml:"red"`
	Green uint8 `yaml:"green"`
	Blue  uint8 `yaml:"blue"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
