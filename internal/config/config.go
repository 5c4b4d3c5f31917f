// Package config provides persisted settings and configuration file lookup.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gamemode/internal/remap"

	"github.com/rs/zerolog"
)

// SettingsFile is the name of the persisted settings file in the config dir.
const SettingsFile = "settings.json"

// Settings is the persisted state of the tray application
type Settings struct {
	// Profile is the active remap profile
	Profile remap.Profile `json:"profile"`

	// KeyboardGuard blocks the Windows key and its shortcuts while game mode is on
	KeyboardGuard bool `json:"keyboard_guard"`

	// DebugLogging logs every classification and decision
	DebugLogging bool `json:"debug_logging"`

	// VendorPresets seeds the vendor side-button signatures
	VendorPresets bool `json:"vendor_presets"`

	// SignaturesFile stores learned signatures between runs (.json, .yaml or .toml); empty disables it
	SignaturesFile string `json:"signatures_file,omitempty"`

	// EnableOnStart enables game mode as soon as the service starts
	EnableOnStart bool `json:"enable_on_start"`

	// SwapDelayMs is the pause between the two quick-swap keystrokes
	SwapDelayMs int `json:"swap_delay_ms"`

	// EscapeHotkey turns game mode off from the keyboard (e.g. "Ctrl+Alt+End"); empty disables it
	EscapeHotkey string `json:"escape_hotkey"`
}

// SwapDelay returns SwapDelayMs as a duration.
func (s Settings) SwapDelay() time.Duration {
	return time.Duration(s.SwapDelayMs) * time.Millisecond
}

// DefaultSettings returns a new Settings with sensible defaults
func DefaultSettings() Settings {
	return Settings{
		Profile:       remap.ProfileDisabled,
		KeyboardGuard: true,
		VendorPresets: true,
		SwapDelayMs:   int(remap.DefaultSwapDelay / time.Millisecond),
		EscapeHotkey:  "Ctrl+Alt+End",
	}
}

// Manager handles loading and saving settings
type Manager struct {
	mu         sync.Mutex
	configPath string
	settings   Settings
	lastData   []byte
	onChanged  func(Settings)
	log        *zerolog.Logger
}

var defaultLogger = zerolog.New(os.Stderr).With().Str("subsystem", "config").Logger()

// NewManager creates a manager for settings.json in the default config dir
func NewManager(logger *zerolog.Logger) (*Manager, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return NewManagerAt(filepath.Join(dir, SettingsFile), logger), nil
}

// NewManagerAt creates a manager for the settings file at path
func NewManagerAt(path string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &Manager{
		configPath: path,
		settings:   DefaultSettings(),
		log:        logger,
	}
}

// Path returns the settings file path
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the settings from disk. A missing file keeps the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if bytes.Equal(data, m.lastData) {
		m.mu.Unlock()
		return nil
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("parse %s: %w", m.configPath, err)
	}
	m.settings = s
	m.lastData = data
	fn := m.onChanged
	m.mu.Unlock()

	if fn != nil {
		fn(s)
	}
	return nil
}

// Save writes the settings to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	m.log.Debug().Str("path", m.configPath).Int("bytes", len(data)).Msg("saving settings")
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return err
	}
	m.lastData = data
	return nil
}

// Get returns the current settings
func (m *Manager) Get() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Set replaces the settings and notifies the change callback
func (m *Manager) Set(s Settings) {
	m.mu.Lock()
	m.settings = s
	fn := m.onChanged
	m.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Update applies fn to the settings and saves them. The change callback is
// not invoked; the caller already knows what changed.
func (m *Manager) Update(fn func(*Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.settings)
	return m.saveLocked()
}

// RegisterChangeCallback registers a function to be called when settings change
func (m *Manager) RegisterChangeCallback(fn func(Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}
