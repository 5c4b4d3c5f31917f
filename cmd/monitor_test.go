package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gamemode/internal/input"
	"gamemode/internal/signature"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T, moves bool) (*monitor, *bytes.Buffer) {
	t.Helper()
	catalog, err := signature.NewCatalog()
	require.NoError(t, err)
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	return newMonitor(&l, catalog, moves), &buf
}

func TestMonitorHandlersDoNotLog(t *testing.T) {
	m, buf := newTestMonitor(t, false)

	down := input.DecodeMouseHook(input.WM_XBUTTONDOWN, input.MouseHookRecord{MouseData: 0x00020000})
	assert.Equal(t, input.PassThrough, m.HandleMouse(down))
	assert.Equal(t, input.PassThrough, m.HandleKeyboard(input.DecodeKeyboardHook(input.WM_KEYDOWN, input.KeyboardHookRecord{VkCode: input.VK_1}, 0)))
	m.HandleRaw(input.DecodeRaw(input.RawInput{Payload: input.RawMouse{LastX: 4}}, 0))
	m.HandleRaw(input.DecodeRaw(input.RawInput{Payload: input.RawMouse{ButtonFlags: input.RI_MOUSE_BUTTON_4_DOWN}}, 0))

	assert.Empty(t, buf.String(), "handlers only queue")
	assert.Len(t, m.events, 3, "motion-only raw reports are skipped")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.drain(ctx)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"signature":"XButton2"`)
	assert.Contains(t, lines[1], `"message":"keyboard"`)
	assert.Contains(t, lines[2], `"message":"raw"`)
}

func TestMonitorDropsWhenFull(t *testing.T) {
	m, buf := newTestMonitor(t, true)
	ev := input.DecodeMouseHook(input.WM_MOUSEMOVE, input.MouseHookRecord{})
	for i := 0; i < monitorQueueSize+5; i++ {
		m.HandleMouse(ev)
	}
	assert.Equal(t, uint64(5), m.dropped.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.drain(ctx)
	assert.Contains(t, buf.String(), `"dropped":5`)
	assert.Empty(t, m.events)
}
