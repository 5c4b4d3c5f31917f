// Package input provides system-wide input capture, decoding and keystroke injection.
package input

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies a decoded hardware event.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindKeyDown
	KindKeyUp
	KindMouseButtonDown
	KindMouseButtonUp
	KindMouseWheel
	KindMouseMove
	KindRawMouse
	KindRawKeyboard
	KindRawHID
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindKeyDown:         "key_down",
	KindKeyUp:           "key_up",
	KindMouseButtonDown: "mouse_down",
	KindMouseButtonUp:   "mouse_up",
	KindMouseWheel:      "mouse_wheel",
	KindMouseMove:       "mouse_move",
	KindRawMouse:        "raw_mouse",
	KindRawKeyboard:     "raw_keyboard",
	KindRawHID:          "raw_hid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown event kind %q", s)
}

// IsMouse reports whether the kind comes from the low-level mouse hook.
func (k Kind) IsMouse() bool {
	return k == KindMouseButtonDown || k == KindMouseButtonUp || k == KindMouseWheel || k == KindMouseMove
}

// IsRaw reports whether the kind comes from the raw input path.
func (k Kind) IsRaw() bool {
	return k == KindRawMouse || k == KindRawKeyboard || k == KindRawHID
}

// Modifiers is the OS-reported modifier state sampled when a keyboard event is decoded.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether all bits of m2 are set.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

func (m Modifiers) String() string {
	var parts []string
	for _, mod := range []struct {
		bit  Modifiers
		name string
	}{{ModCtrl, "ctrl"}, {ModAlt, "alt"}, {ModShift, "shift"}, {ModMeta, "win"}} {
		if m.Has(mod.bit) {
			parts = append(parts, mod.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Event is one decoded hardware event. It is produced once per native
// callback and passed by value, so it is never mutated after decoding.
type Event struct {
	Kind    Kind
	Message uint32 // native message id (WM_*), WM_INPUT for raw events

	VirtualCode uint32
	ScanCode    uint32

	// Payload is the mouse-data word: X-button index or wheel delta in the
	// high 16 bits. Raw mouse events pack button data high, button flags low.
	Payload uint32
	Flags   uint32
	// ExtraInfo is the driver-supplied dwExtraInfo / ulExtraInformation.
	ExtraInfo uint64

	X, Y      int32
	Modifiers Modifiers

	// RawButtons is the raw mouse ulRawButtons word.
	RawButtons uint32

	// HIDSize and HIDCount are set for raw HID reports only.
	HIDSize  uint32
	HIDCount uint32

	Time uint32 // OS tick count in milliseconds
}

// XButton returns the X-button index packed in the high word of the payload.
func (e Event) XButton() uint16 { return uint16(e.Payload >> 16) }

// WheelDelta returns the signed wheel delta packed in the high word of the payload.
func (e Event) WheelDelta() int16 { return int16(uint16(e.Payload >> 16)) }

// Injected reports whether the OS flagged the event as synthesized.
func (e Event) Injected() bool {
	switch {
	case e.Kind.IsMouse():
		return e.Flags&LLMHF_INJECTED != 0
	case e.Kind == KindKeyDown || e.Kind == KindKeyUp:
		return e.Flags&LLKHF_INJECTED != 0
	}
	return false
}

// OwnInjection reports whether the event carries the marker this process
// stamps on the keystrokes it injects.
func (e Event) OwnInjection() bool {
	return e.Injected() && e.ExtraInfo == InjectionTag
}

func (e Event) String() string {
	switch {
	case e.Kind == KindKeyDown || e.Kind == KindKeyUp || e.Kind == KindRawKeyboard:
		return fmt.Sprintf("%s vk=0x%02X sc=0x%02X flags=0x%X extra=0x%X", e.Kind, e.VirtualCode, e.ScanCode, e.Flags, e.ExtraInfo)
	case e.Kind == KindRawHID:
		return fmt.Sprintf("%s size=%d count=%d", e.Kind, e.HIDSize, e.HIDCount)
	default:
		return fmt.Sprintf("%s msg=0x%X data=0x%08X flags=0x%X extra=0x%X", e.Kind, e.Message, e.Payload, e.Flags, e.ExtraInfo)
	}
}

// Decision is the verdict a handler returns for the original hardware event.
type Decision uint8

const (
	PassThrough Decision = iota
	Suppress
)

func (d Decision) String() string {
	if d == Suppress {
		return "suppress"
	}
	return "pass"
}

// Handler receives decoded events from a Source on its dispatch thread.
// Implementations must not block.
type Handler interface {
	HandleMouse(ev Event) Decision
	HandleKeyboard(ev Event) Decision
	// HandleRaw observes raw input reports. Raw input cannot be suppressed.
	HandleRaw(ev Event)
}

// Source installs the system-wide hooks that feed a Handler.
type Source interface {
	Install(h Handler) (*Handle, error)
	Uninstall(h *Handle) error
}

// KeyStroke is one press-and-release of a virtual key, sent after Delay.
type KeyStroke struct {
	VK    uint16
	Delay time.Duration
}

// Injector submits synthetic keystrokes. Inject must return without waiting
// for the keystrokes to be delivered.
type Injector interface {
	Inject(strokes []KeyStroke) error
}

// Presser sends one key press (down then up) through the OS.
type Presser interface {
	Press(vk uint16) error
}
