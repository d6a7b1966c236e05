package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:7070", cfg.Address())

	_, err = Load(path, true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7171
idle_interval: 3s
wm: sway
allow_list:
  file: /home/me/.config/kanata/allow.txt
layers:
  dir: /home/me/.config/kanata/apps
  strip_ext: true
`), 0644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7171, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.IdleInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.ActiveInterval)
	assert.Equal(t, WMSway, cfg.WM)
	assert.Equal(t, "/home/me/.config/kanata/allow.txt", cfg.AllowList.File)
	assert.True(t, cfg.AllowList.Configured())
	assert.Equal(t, Source{Dir: "/home/me/.config/kanata/apps", StripExt: true}, cfg.Layers)
	assert.False(t, cfg.NeedsDatabase())
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0644))

	_, err := Load(path, true)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":        func(c *Config) { c.Port = 0 },
		"big port":    func(c *Config) { c.Port = 70000 },
		"interval":    func(c *Config) { c.IdleInterval = 0 },
		"wm":          func(c *Config) { c.WM = "kwin" },
		"allow twice": func(c *Config) { c.AllowList = Source{File: "a", Dir: "b"} },
		"layers db":   func(c *Config) { c.Layers = Source{Dir: "b", DB: true} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	cfg := Default()
	cfg.AllowList.DB = true
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.NeedsDatabase())
}
