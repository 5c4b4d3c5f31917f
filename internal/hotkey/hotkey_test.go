package hotkey

import (
	"sync/atomic"
	"testing"
	"time"

	"gamemode/internal/input"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	l := zerolog.Nop()
	return NewManager(&l)
}

func TestParse(t *testing.T) {
	parts, err := Parse(" ctrl + Alt+end ")
	require.NoError(t, err)
	assert.Equal(t, []string{"CTRL", "ALT", "END"}, parts)

	parts, err = Parse("Cmd+Mouse4")
	require.NoError(t, err)
	assert.Equal(t, []string{"WIN", "MOUSE4"}, parts)

	_, err = Parse(" + ")
	assert.ErrorIs(t, err, ErrEmptyHotkey)
}

func TestChordFiresOnceOnCompletion(t *testing.T) {
	m := newTestManager()
	var fired atomic.Int32
	_, err := m.Register("Ctrl+Alt+End", func() { fired.Add(1) })
	require.NoError(t, err)

	assert.False(t, m.UpdateState("CTRL", true))
	assert.False(t, m.UpdateState("ALT", true))
	assert.True(t, m.UpdateState("END", true))
	// Auto-repeat of the last key does not fire again.
	assert.False(t, m.UpdateState("END", true))

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	m.UpdateState("END", false)
	assert.True(t, m.UpdateState("END", true))
}

func TestReleasingBreaksChord(t *testing.T) {
	m := newTestManager()
	_, err := m.Register("Ctrl+End", func() {})
	require.NoError(t, err)

	m.UpdateState("CTRL", true)
	m.UpdateState("CTRL", false)
	assert.False(t, m.UpdateState("END", true))
}

func TestResetAndClear(t *testing.T) {
	m := newTestManager()
	_, err := m.Register("Ctrl+End", func() {})
	require.NoError(t, err)

	m.UpdateState("CTRL", true)
	m.Reset()
	assert.False(t, m.UpdateState("END", true))

	m.UpdateState("CTRL", true)
	m.UpdateState("END", false)
	m.Clear()
	assert.False(t, m.UpdateState("END", true))
}

func TestObserveHookEvents(t *testing.T) {
	m := newTestManager()
	var fired atomic.Int32
	_, err := m.Register("LCtrl+Mouse5", func() { fired.Add(1) })
	require.NoError(t, err)

	m.Observe(input.Event{Kind: input.KindKeyDown, VirtualCode: 0xA2})
	m.Observe(input.Event{Kind: input.KindMouseButtonDown, Message: input.WM_XBUTTONDOWN, Payload: input.XBUTTON2 << 16})

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestButtonName(t *testing.T) {
	tests := []struct {
		ev   input.Event
		want string
	}{
		{input.Event{Message: input.WM_LBUTTONDOWN}, "MOUSE1"},
		{input.Event{Message: input.WM_RBUTTONUP}, "MOUSE2"},
		{input.Event{Message: input.WM_MBUTTONDOWN}, "MOUSE3"},
		{input.Event{Message: input.WM_XBUTTONDOWN, Payload: input.XBUTTON1 << 16}, "MOUSE4"},
		{input.Event{Message: input.WM_XBUTTONUP, Payload: input.XBUTTON2 << 16}, "MOUSE5"},
		{input.Event{Message: input.WM_XBUTTONUP, Payload: 7 << 16}, ""},
		{input.Event{Message: input.WM_MOUSEWHEEL}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ButtonName(tt.ev), tt.ev.String())
	}
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "WIN", KeyName(input.VK_LWIN))
	assert.Equal(t, "CTRL", KeyName(0xA3))
	assert.Equal(t, "F5", KeyName(0x74))
	assert.Equal(t, "", KeyName(0xE8))
}
