package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the shape of .pgen.toml: the handful of build-wide settings
// that apply regardless of which grammar file is being compiled on a
// given invocation, the way vartan's own flags cover per-invocation
// concerns and leaves cross-invocation defaults to a config file.
type Config struct {
	Output struct {
		Dir    string `toml:"dir"`
		Format string `toml:"format"`
	} `toml:"output"`
	Cache struct {
		Enabled bool   `toml:"enabled"`
		Dir     string `toml:"dir"`
	} `toml:"cache"`
}

func defaultConfig() Config {
	var c Config
	c.Output.Format = "json"
	c.Cache.Enabled = true
	c.Cache.Dir = ".pgen-cache"
	return c
}

// loadConfig reads path if it exists, overlaying its values onto the
// defaults; a missing file is not an error.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}
