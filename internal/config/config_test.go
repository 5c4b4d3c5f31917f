package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gamemode/internal/remap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingKeepsDefaults(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), SettingsFile), nil)
	require.NoError(t, m.Load())
	assert.Equal(t, DefaultSettings(), m.Get())
	assert.Equal(t, time.Millisecond, m.Get().SwapDelay())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SettingsFile)
	m := NewManagerAt(path, nil)
	require.NoError(t, m.Update(func(s *Settings) {
		s.Profile = remap.ProfileShift
		s.KeyboardGuard = false
		s.SwapDelayMs = 5
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"profile": "shift"`)

	other := NewManagerAt(path, nil)
	var got Settings
	other.RegisterChangeCallback(func(s Settings) { got = s })
	require.NoError(t, other.Load())
	assert.Equal(t, remap.ProfileShift, got.Profile)
	assert.False(t, got.KeyboardGuard)
	assert.Equal(t, 5*time.Millisecond, other.Get().SwapDelay())
}

func TestLoadFillsMissingFieldsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"profile":"csgo"}`), 0644))

	m := NewManagerAt(path, nil)
	require.NoError(t, m.Load())
	s := m.Get()
	assert.Equal(t, remap.ProfileQuickSwap, s.Profile)
	assert.True(t, s.KeyboardGuard)
	assert.Equal(t, 1, s.SwapDelayMs)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"profile":"turbo"}`), 0644))

	m := NewManagerAt(path, nil)
	assert.Error(t, m.Load())
	assert.Equal(t, DefaultSettings(), m.Get())
}

func TestSetNotifies(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), SettingsFile), nil)
	calls := 0
	m.RegisterChangeCallback(func(Settings) { calls++ })

	s := m.Get()
	s.DebugLogging = true
	m.Set(s)
	assert.Equal(t, 1, calls)
	assert.True(t, m.Get().DebugLogging)
}

func TestWatchReloadsExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFile)
	m := NewManagerAt(path, nil)
	require.NoError(t, m.Save())

	var profile atomic.Uint32
	m.RegisterChangeCallback(func(s Settings) { profile.Store(uint32(s.Profile)) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"profile":"quickswap"}`), 0644))

	assert.Eventually(t, func() bool {
		return remap.Profile(profile.Load()) == remap.ProfileQuickSwap
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestCandidatePathsRoutesUserPath(t *testing.T) {
	j, y, tm := CandidatePaths("/etc/gm.toml")
	require.NotEmpty(t, tm)
	assert.Equal(t, "/etc/gm.toml", tm[0])
	assert.NotContains(t, j, "/etc/gm.toml")
	assert.NotContains(t, y, "/etc/gm.toml")

	j, _, _ = CandidatePaths("")
	for _, p := range j {
		assert.Equal(t, ".json", filepath.Ext(p))
	}
}

func TestDefaultConfigDirUsesXDG(t *testing.T) {
	if os.Getenv("AppData") != "" {
		t.Skip("windows layout")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), dir)
}
