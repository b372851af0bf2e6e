// Package config loads the optional compiscript.yaml project file that
// configures output paths, the register pool size, and the cache
// backend toggle.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the parsed shape of compiscript.yaml. Every field has a
// zero-value default so a missing file is equivalent to an empty one.
type Config struct {
	Output struct {
		AsmPath string `yaml:"asmPath"`
	} `yaml:"output"`
	Registers struct {
		TempCount  int `yaml:"tempCount"`
		SavedCount int `yaml:"savedCount"`
	} `yaml:"registers"`
	Cache struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"cache"`
	Watch struct {
		Addr string `yaml:"addr"`
	} `yaml:"watch"`
}

// Default returns the configuration used when no compiscript.yaml is
// present.
func Default() *Config {
	c := &Config{}
	c.Output.AsmPath = "program.s"
	c.Registers.TempCount = 10
	c.Registers.SavedCount = 8
	c.Cache.Enabled = true
	c.Cache.Path = ".compiscript-cache.db"
	c.Watch.Addr = ":7777"
	return c
}

// Load reads compiscript.yaml from path, falling back to Default when
// the file does not exist. Any other read or parse error is returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
