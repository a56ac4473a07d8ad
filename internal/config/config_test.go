package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":1978", cfg.ListenAddr)
	assert.Equal(t, 7.5, cfg.AccelParams().Gain)
	assert.Equal(t, 0.30, cfg.AccelParams().Blend)
	assert.Equal(t, 2.0, cfg.AccelParams().DecayRate)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.NoError(t, m.Load())
	assert.Equal(t, DefaultConfig(), m.Get())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Backend = "log"
	cfg.IdleTimeout = Duration{90 * time.Second}
	cfg.API.Enabled = true
	m.Set(cfg)
	require.NoError(t, m.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"idle_timeout": "1m30s"`)

	loaded, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Load())
	assert.Equal(t, cfg, loaded.Get())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"listen_addr": ":2000", "backend": "log"}`), 0644))

	t.Setenv("REMOTEMOUSE_LISTEN_ADDR", ":3000")
	t.Setenv("REMOTEMOUSE_IDLE_TIMEOUT", "5s")
	t.Setenv("REMOTEMOUSE_ACCEL_ENABLED", "false")
	t.Setenv("REMOTEMOUSE_API_ADDR", "127.0.0.1:9999")

	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "log", cfg.Backend)
	assert.Equal(t, 5*time.Second, cfg.IdleTimeout.Duration)
	assert.False(t, cfg.Accel.Enabled)
	assert.Equal(t, "127.0.0.1:9999", cfg.API.Addr)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"listen_addr": `), 0644))

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Error(t, m.Load())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"listen addr":  func(c *Config) { c.ListenAddr = "1978" },
		"backend":      func(c *Config) { c.Backend = "xdotool" },
		"idle timeout": func(c *Config) { c.IdleTimeout = Duration{-time.Second} },
		"blend":        func(c *Config) { c.Accel.Blend = 1.5 },
		"decay":        func(c *Config) { c.Accel.DecayRate = -1 },
		"api addr":     func(c *Config) { c.API.Enabled = true; c.API.Addr = "nowhere" },
		"log size":     func(c *Config) { c.Log.File = "relay.log"; c.Log.MaxSizeKB = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
