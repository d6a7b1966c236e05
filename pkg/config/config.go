package config

import (
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

const appName = "kanatafocus"

const (
	WMAuto     = "auto"
	WMSway     = "sway"
	WMHyprland = "hyprland"
)

var ErrInvalid = errors.New("invalid config")

// Source describes where a set of identifiers comes from. At most one field
// may be set; none means unconfigured.
type Source struct {
	File string `yaml:"file"`
	Dir  string `yaml:"dir"`
	// StripExt drops file extensions from directory entries.
	StripExt bool `yaml:"strip_ext"`
	// DB reads the set from the sqlite database.
	DB bool `yaml:"db"`
}

func (s Source) Configured() bool {
	return s.File != "" || s.Dir != "" || s.DB
}

func (s Source) validate(name string) error {
	n := 0
	for _, set := range []bool{s.File != "", s.Dir != "", s.DB} {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("%s: only one of file, dir and db may be set, %w", name, ErrInvalid)
	}
	return nil
}

type Config struct {
	Port           int           `yaml:"port"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ActiveInterval time.Duration `yaml:"active_interval"`
	IdleInterval   time.Duration `yaml:"idle_interval"`
	WM             string        `yaml:"wm"`
	Database       string        `yaml:"database"`
	Debug          bool          `yaml:"debug"`

	// Trace logs every sync cycle and implies Debug.
	Trace bool `yaml:"trace"`

	// AllowList holds the layers that focus tracking may switch away from.
	AllowList Source `yaml:"allow_list"`
	// Layers holds the applications that have a layer of their own.
	Layers Source `yaml:"layers"`
}

func Default() Config {
	return Config{
		Port:           7070,
		ConnectTimeout: 5 * time.Second,
		ActiveInterval: 100 * time.Millisecond,
		IdleInterval:   1500 * time.Millisecond,
		WM:             WMAuto,
	}
}

// DefaultPath is where the config file is looked up when none is given.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(appName + "/config.yaml")
	if err != nil {
		return "", fmt.Errorf("get config path: %w", err)
	}
	return path, nil
}

// DefaultDatabasePath returns the allow-list database location, creating its
// parent directory.
func DefaultDatabasePath() (string, error) {
	path, err := xdg.DataFile(appName + "/allowlist.db")
	if err != nil {
		return "", fmt.Errorf("get database path: %w", err)
	}
	return path, nil
}

// Load reads the yaml file at path on top of the defaults. A missing file is
// not an error unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range, %w", c.Port, ErrInvalid)
	}
	if c.ActiveInterval <= 0 || c.IdleInterval <= 0 {
		return fmt.Errorf("intervals must be positive, %w", ErrInvalid)
	}
	switch c.WM {
	case WMAuto, WMSway, WMHyprland:
	default:
		return fmt.Errorf("unknown wm %q, %w", c.WM, ErrInvalid)
	}
	if err := c.AllowList.validate("allow_list"); err != nil {
		return err
	}
	return c.Layers.validate("layers")
}

func (c Config) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// NeedsDatabase reports whether any source reads from the database.
func (c Config) NeedsDatabase() bool {
	return c.AllowList.DB || c.Layers.DB
}
