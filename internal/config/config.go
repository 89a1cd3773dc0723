// Package config loads sealkv settings: defaults, then an optional YAML file,
// then SEALKV_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every sealkv setting.
type Config struct {
	Storage struct {
		Home          string `yaml:"home"`
		MaxValueBytes int    `yaml:"max_value_bytes"`
	} `yaml:"storage"`
	Keyring struct {
		Mode       string `yaml:"mode"` // file | passphrase
		Passphrase string `yaml:"-"`    // env or flag only
	} `yaml:"keyring"`
	Session struct {
		User string `yaml:"user"`
	} `yaml:"session"`
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

func defaultConfig() Config {
	var c Config
	if dir, err := os.UserHomeDir(); err == nil {
		c.Storage.Home = filepath.Join(dir, ".sealkv")
	}
	c.Storage.MaxValueBytes = 16 << 20
	c.Keyring.Mode = "file"
	c.Logging.Level = "warn"
	c.Logging.Pretty = true
	return c
}

// Load builds the configuration. path, when empty, falls back to
// SEALKV_CONFIG; an unset path means defaults plus environment only.
func Load(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		path = os.Getenv("SEALKV_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if v := os.Getenv("SEALKV_HOME"); v != "" {
		c.Storage.Home = v
	}
	if v := os.Getenv("SEALKV_MAX_VALUE_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, errors.Errorf("SEALKV_MAX_VALUE_BYTES: want a positive integer, got %q", v)
		}
		c.Storage.MaxValueBytes = n
	}
	if v := os.Getenv("SEALKV_KEYRING_MODE"); v != "" {
		c.Keyring.Mode = v
	}
	// Passphrases only from env or flags.
	if v := os.Getenv("SEALKV_PASSPHRASE"); v != "" {
		c.Keyring.Passphrase = v
	}
	if v := os.Getenv("SEALKV_USER"); v != "" {
		c.Session.User = v
	}
	if v := os.Getenv("SEALKV_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SEALKV_LOG_PRETTY"); v != "" {
		c.Logging.Pretty = v == "1" || v == "true"
	}
	return c, nil
}
