// Package guard suppresses the Windows key and its shell shortcuts while
// game mode is active.
package guard

import (
	"sync/atomic"

	"gamemode/internal/input"
	"gamemode/internal/notify"
)

// Guard evaluates keyboard events. It holds no per-event state and is
// toggled by SetArmed.
type Guard struct {
	armed  atomic.Bool
	notify notify.Notifier
}

// New returns a disarmed guard reporting to n. A nil n discards notifications.
func New(n notify.Notifier) *Guard {
	if n == nil {
		n = notify.Nop{}
	}
	return &Guard{notify: n}
}

// SetArmed arms or disarms the guard; the next event observes the change.
func (g *Guard) SetArmed(on bool) {
	g.armed.Store(on)
}

// Armed reports whether the guard is armed.
func (g *Guard) Armed() bool {
	return g.armed.Load()
}

// Evaluate returns Suppress for the Windows keys, and for Tab, D, E, R, S
// and X while a Windows key is held. Everything else passes.
func (g *Guard) Evaluate(ev input.Event) input.Decision {
	if !g.armed.Load() {
		return input.PassThrough
	}
	if ev.Kind != input.KindKeyDown && ev.Kind != input.KindKeyUp {
		return input.PassThrough
	}

	if isMeta(ev.VirtualCode) || (ev.Modifiers.Has(input.ModMeta) && isShortcut(ev.VirtualCode)) {
		g.notify.KeyBlocked(notify.KeyBlocked{
			VK:  ev.VirtualCode,
			Key: input.KeyLabel(ev.VirtualCode),
			Up:  ev.Kind == input.KindKeyUp,
		})
		return input.Suppress
	}
	return input.PassThrough
}

func isMeta(vk uint32) bool {
	return vk == input.VK_LWIN || vk == input.VK_RWIN
}

func isShortcut(vk uint32) bool {
	switch vk {
	case input.VK_TAB, input.VK_D, input.VK_E, input.VK_R, input.VK_S, input.VK_X:
		return true
	}
	return false
}
