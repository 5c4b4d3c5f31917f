// Package hotkey matches key and mouse-button chords seen by the input hooks.
package hotkey

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gamemode/internal/input"

	"github.com/rs/zerolog"
)

// ErrEmptyHotkey is returned when a hotkey string names no keys.
var ErrEmptyHotkey = errors.New("empty hotkey")

var defaultLogger = zerolog.New(os.Stderr).With().Str("subsystem", "hotkey").Logger()

// Manager handles hotkey registration and matching
type Manager struct {
	mu           sync.RWMutex
	hotkeys      []*registeredHotkey
	currentState map[string]bool // map of current keys/buttons pressed
	log          *zerolog.Logger
}

type registeredHotkey struct {
	parts    []string // e.g., ["CTRL", "ALT", "MOUSE4"]
	original string
	callback func()
}

// NewManager creates a new hotkey manager
func NewManager(logger *zerolog.Logger) *Manager {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &Manager{
		currentState: make(map[string]bool),
		log:          logger,
	}
}

// Register registers a hotkey string (e.g. "Ctrl+Alt+End", "Ctrl+Mouse4") and a callback.
func (m *Manager) Register(hotkeyStr string, callback func()) (int, error) {
	parts, err := Parse(hotkeyStr)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hotkeys = append(m.hotkeys, &registeredHotkey{
		parts:    parts,
		original: hotkeyStr,
		callback: callback,
	})

	return len(m.hotkeys) - 1, nil
}

// Parse splits a hotkey string into normalized key names.
func Parse(hotkeyStr string) ([]string, error) {
	var parts []string
	for _, p := range strings.Split(hotkeyStr, "+") {
		p = normalize(p)
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyHotkey, hotkeyStr)
	}
	return parts, nil
}

func normalize(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch name {
	case "CONTROL", "LCTRL", "RCTRL":
		return "CTRL"
	case "LALT", "RALT":
		return "ALT"
	case "LSHIFT", "RSHIFT":
		return "SHIFT"
	case "CMD", "META", "LWIN", "RWIN":
		return "WIN"
	case "ESCAPE":
		return "ESC"
	}
	return name
}

// Clear removes all registered hotkeys
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = nil
}

// Reset forgets which keys are held.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.currentState)
}

// UpdateState updates the internal state of a key or button and checks for
// matches. Only the press that completes a chord triggers it; auto-repeat of
// a held key does not. It reports whether any hotkey fired.
func (m *Manager) UpdateState(key string, isDown bool) bool {
	m.mu.Lock()
	key = normalize(key)
	wasDown := m.currentState[key]
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}
	m.mu.Unlock()

	if isDown && !wasDown {
		return m.checkMatches(key)
	}
	return false
}

func (m *Manager) checkMatches(pressed string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fired := false
	for _, hk := range m.hotkeys {
		match := false
		for _, part := range hk.parts {
			if part == pressed {
				match = true
			}
			if !m.currentState[part] {
				match = false
				break
			}
		}

		if match {
			m.log.Info().Str("hotkey", hk.original).Msg("hotkey triggered")
			// Off the hook thread: callbacks may uninstall the hooks.
			go hk.callback()
			fired = true
		}
	}
	return fired
}

// Observe feeds a decoded hook event into the matcher.
func (m *Manager) Observe(ev input.Event) {
	switch ev.Kind {
	case input.KindKeyDown, input.KindKeyUp:
		if name := KeyName(ev.VirtualCode); name != "" {
			m.UpdateState(name, ev.Kind == input.KindKeyDown)
		}
	case input.KindMouseButtonDown, input.KindMouseButtonUp:
		if name := ButtonName(ev); name != "" {
			m.UpdateState(name, ev.Kind == input.KindMouseButtonDown)
		}
	}
}

// KeyName names a virtual key the way hotkey strings spell it.
func KeyName(vk uint32) string {
	return normalize(input.KeyName(vk))
}

// ButtonName names the mouse button of a button event: MOUSE1 left,
// MOUSE2 right, MOUSE3 middle, MOUSE4 and MOUSE5 the side buttons.
func ButtonName(ev input.Event) string {
	switch ev.Message {
	case input.WM_LBUTTONDOWN, input.WM_LBUTTONUP:
		return "MOUSE1"
	case input.WM_RBUTTONDOWN, input.WM_RBUTTONUP:
		return "MOUSE2"
	case input.WM_MBUTTONDOWN, input.WM_MBUTTONUP:
		return "MOUSE3"
	case input.WM_XBUTTONDOWN, input.WM_XBUTTONUP:
		switch ev.XButton() {
		case input.XBUTTON1:
			return "MOUSE4"
		case input.XBUTTON2:
			return "MOUSE5"
		}
	}
	return ""
}
