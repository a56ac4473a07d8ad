// Package config provides configuration management for the relay.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"

	"remotemouse/internal/accel"
	"remotemouse/internal/input"
)

// EnvPrefix prefixes every environment variable the relay reads
const EnvPrefix = "REMOTEMOUSE_"

// Config represents the application configuration
type Config struct {
	// ListenAddr is the relay's TCP address (default ":1978", all interfaces)
	ListenAddr string `json:"listen_addr" env:"LISTEN_ADDR"`

	// Backend selects the input injector: "native" or "log"
	Backend string `json:"backend" env:"BACKEND"`

	// DeviceName names the virtual pointer where the backend creates one
	DeviceName string `json:"device_name" env:"DEVICE_NAME"`

	// IdleTimeout drops a client that sends nothing for this long (0 = never)
	IdleTimeout Duration `json:"idle_timeout" env:"IDLE_TIMEOUT"`

	// FatalOnBadHeader stops the process when a client sends an undecodable
	// frame header, instead of only dropping that client
	FatalOnBadHeader bool `json:"fatal_on_bad_header" env:"FATAL_ON_BAD_HEADER"`

	// Accel tunes pointer acceleration
	Accel AccelConfig `json:"accel" envPrefix:"ACCEL_"`

	// API configures the local status server
	API APIConfig `json:"api" envPrefix:"API_"`

	// Log configures logging output
	Log LogConfig `json:"log" envPrefix:"LOG_"`

	// Tray shows a system tray icon with the connection state
	Tray bool `json:"tray" env:"TRAY"`
}

// AccelConfig contains acceleration settings
type AccelConfig struct {
	// Enabled turns acceleration on; disable it for clients that already accelerate
	Enabled bool `json:"enabled" env:"ENABLED"`

	Gain      float64 `json:"gain" env:"GAIN"`
	Blend     float64 `json:"blend" env:"BLEND"`
	DecayRate float64 `json:"decay_rate" env:"DECAY_RATE"`
}

// APIConfig contains status server settings
type APIConfig struct {
	// Enabled starts the HTTP status server (health, status, metrics, event feed)
	Enabled bool `json:"enabled" env:"ENABLED"`

	// Addr is the status server address; keep it on loopback, it has no authentication
	Addr string `json:"addr" env:"ADDR"`
}

// LogConfig contains logging settings
type LogConfig struct {
	// File is an optional log file, rotated by size, written in addition to stderr
	File string `json:"file,omitempty" env:"FILE"`

	// MaxSizeKB is the size at which the log file is rotated
	MaxSizeKB int `json:"max_size_kb" env:"MAX_SIZE_KB"`

	// MaxRolls is the number of rotated files kept
	MaxRolls int `json:"max_rolls" env:"MAX_ROLLS"`
}

// Duration is a time.Duration that reads and writes as text ("1m30s")
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	params := accel.DefaultParams()
	return &Config{
		ListenAddr: ":1978",
		Backend:    input.BackendNative,
		DeviceName: "remotemouse virtual pointer",
		Accel: AccelConfig{
			Enabled:   true,
			Gain:      params.Gain,
			Blend:     params.Blend,
			DecayRate: params.DecayRate,
		},
		API: APIConfig{
			Enabled: false,
			Addr:    "127.0.0.1:19780",
		},
		Log: LogConfig{
			MaxSizeKB: 10 * 1024,
			MaxRolls:  3,
		},
	}
}

// AccelParams returns the acceleration parameters
func (c *Config) AccelParams() accel.Params {
	return accel.Params{
		Gain:      c.Accel.Gain,
		Blend:     c.Accel.Blend,
		DecayRate: c.Accel.DecayRate,
	}
}

// Validate checks the configuration for values the relay cannot run with
func (c *Config) Validate() error {
	var errs []error

	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		errs = append(errs, fmt.Errorf("listen_addr: %w", err))
	}
	switch c.Backend {
	case input.BackendNative, input.BackendLog:
	default:
		errs = append(errs, fmt.Errorf("backend: unknown backend %q", c.Backend))
	}
	if c.IdleTimeout.Duration < 0 {
		errs = append(errs, errors.New("idle_timeout: must not be negative"))
	}
	if c.Accel.Blend < 0 || c.Accel.Blend > 1 {
		errs = append(errs, fmt.Errorf("accel.blend: %v not in [0, 1]", c.Accel.Blend))
	}
	if c.Accel.DecayRate < 0 {
		errs = append(errs, errors.New("accel.decay_rate: must not be negative"))
	}
	if c.API.Enabled {
		if _, _, err := net.SplitHostPort(c.API.Addr); err != nil {
			errs = append(errs, fmt.Errorf("api.addr: %w", err))
		}
	}
	if c.Log.File != "" && c.Log.MaxSizeKB <= 0 {
		errs = append(errs, errors.New("log.max_size_kb: must be positive"))
	}

	return errors.Join(errs...)
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager for path. An empty path
// selects the per-user default location.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}, nil
}

// DefaultPath returns the per-user configuration file path
func DefaultPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "remotemouse")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "remotemouse")
	default:
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(dir, "remotemouse")
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Path returns the configuration file path
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk, then applies environment
// overrides. A missing file leaves the defaults in place.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	switch {
	case os.IsNotExist(err):
		// No config file, use defaults
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(data, m.config); err != nil {
			return fmt.Errorf("parse %s: %w", m.configPath, err)
		}
	}

	if err := env.ParseWithOptions(m.config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set updates the configuration
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
}
