package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeMouseHookKinds(t *testing.T) {
	tests := []struct {
		name string
		msg  uint32
		want Kind
	}{
		{"left down", WM_LBUTTONDOWN, KindMouseButtonDown},
		{"right up", WM_RBUTTONUP, KindMouseButtonUp},
		{"x down", WM_XBUTTONDOWN, KindMouseButtonDown},
		{"x up", WM_XBUTTONUP, KindMouseButtonUp},
		{"wheel", WM_MOUSEWHEEL, KindMouseWheel},
		{"hwheel", WM_MOUSEHWHEEL, KindMouseWheel},
		{"move", WM_MOUSEMOVE, KindMouseMove},
		{"other", 0x02A1, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := DecodeMouseHook(tt.msg, MouseHookRecord{})
			assert.Equal(t, tt.want, ev.Kind)
			assert.Equal(t, tt.msg, ev.Message)
		})
	}
}

func TestDecodeMouseHookFields(t *testing.T) {
	rec := MouseHookRecord{X: 10, Y: -4, MouseData: 0x00020000, Flags: LLMHF_INJECTED, Time: 99, DwExtraInfo: 0x70000000}
	ev := DecodeMouseHook(WM_XBUTTONDOWN, rec)

	assert.Equal(t, uint16(XBUTTON2), ev.XButton())
	assert.Equal(t, uint64(0x70000000), ev.ExtraInfo)
	assert.Equal(t, int32(10), ev.X)
	assert.Equal(t, int32(-4), ev.Y)
	assert.Equal(t, uint32(99), ev.Time)
	assert.True(t, ev.Injected())
	assert.False(t, ev.OwnInjection())
}

func TestWheelDelta(t *testing.T) {
	up := DecodeMouseHook(WM_MOUSEWHEEL, MouseHookRecord{MouseData: 120 << 16})
	assert.Equal(t, int16(120), up.WheelDelta())

	down := DecodeMouseHook(WM_MOUSEWHEEL, MouseHookRecord{MouseData: 0xFF880000})
	assert.Equal(t, int16(-120), down.WheelDelta())
}

func TestDecodeKeyboardHook(t *testing.T) {
	tests := []struct {
		name  string
		msg   uint32
		flags uint32
		want  Kind
	}{
		{"keydown", WM_KEYDOWN, 0, KindKeyDown},
		{"keyup", WM_KEYUP, LLKHF_UP, KindKeyUp},
		{"sysdown", WM_SYSKEYDOWN, 0, KindKeyDown},
		{"sysup", WM_SYSKEYUP, LLKHF_UP, KindKeyUp},
		{"unknown with up flag", 0x0999, LLKHF_UP, KindKeyUp},
		{"unknown without up flag", 0x0999, 0, KindKeyDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := DecodeKeyboardHook(tt.msg, KeyboardHookRecord{VkCode: VK_TAB, ScanCode: 0x0F, Flags: tt.flags}, ModMeta)
			assert.Equal(t, tt.want, ev.Kind)
			assert.Equal(t, uint32(VK_TAB), ev.VirtualCode)
			assert.Equal(t, uint32(0x0F), ev.ScanCode)
			assert.True(t, ev.Modifiers.Has(ModMeta))
			assert.False(t, ev.Modifiers.Has(ModShift))
		})
	}
}

func TestOwnInjection(t *testing.T) {
	ours := DecodeKeyboardHook(WM_KEYDOWN, KeyboardHookRecord{VkCode: VK_2, Flags: LLKHF_INJECTED, DwExtraInfo: InjectionTag}, 0)
	assert.True(t, ours.OwnInjection())

	foreign := DecodeKeyboardHook(WM_KEYDOWN, KeyboardHookRecord{VkCode: VK_2, Flags: LLKHF_INJECTED, DwExtraInfo: 7}, 0)
	assert.True(t, foreign.Injected())
	assert.False(t, foreign.OwnInjection())

	// The tag alone is not enough: hardware events are never flagged injected.
	spoofed := DecodeKeyboardHook(WM_KEYDOWN, KeyboardHookRecord{VkCode: VK_2, DwExtraInfo: InjectionTag}, 0)
	assert.False(t, spoofed.OwnInjection())
}

func TestDecodeRaw(t *testing.T) {
	t.Run("mouse", func(t *testing.T) {
		ev := DecodeRaw(RawInput{Payload: RawMouse{ButtonFlags: RI_MOUSE_BUTTON_4_DOWN, ButtonData: 0, LastX: 3, ExtraInformation: 0x01000000}}, 5)
		assert.Equal(t, KindRawMouse, ev.Kind)
		assert.Equal(t, uint32(WM_INPUT), ev.Message)
		assert.Equal(t, uint32(RI_MOUSE_BUTTON_4_DOWN), ev.Payload)
		assert.Equal(t, uint64(0x01000000), ev.ExtraInfo)
		assert.Equal(t, int32(3), ev.X)
		assert.Equal(t, uint32(5), ev.Time)
		assert.True(t, ev.HasButtonActivity())
	})

	t.Run("mouse motion only", func(t *testing.T) {
		ev := DecodeRaw(RawInput{Payload: RawMouse{LastX: 4, LastY: -2}}, 0)
		assert.False(t, ev.HasButtonActivity())
	})

	t.Run("wheel data in high word", func(t *testing.T) {
		ev := DecodeRaw(RawInput{Payload: RawMouse{ButtonFlags: RI_MOUSE_WHEEL, ButtonData: 0xFF88}}, 0)
		assert.Equal(t, int16(-120), ev.WheelDelta())
	})

	t.Run("keyboard", func(t *testing.T) {
		ev := DecodeRaw(RawInput{Payload: RawKeyboard{MakeCode: 0x1E, Flags: RI_KEY_BREAK, VKey: 0x41, Message: WM_KEYUP}}, 0)
		assert.Equal(t, KindRawKeyboard, ev.Kind)
		assert.Equal(t, uint32(0x41), ev.VirtualCode)
		assert.Equal(t, uint32(0x1E), ev.ScanCode)
		assert.Equal(t, uint32(RI_KEY_BREAK)<<16|0x41, ev.Payload)
	})

	t.Run("hid", func(t *testing.T) {
		ev := DecodeRaw(RawInput{Payload: RawHID{SizeHID: 8, Count: 2}}, 0)
		assert.Equal(t, KindRawHID, ev.Kind)
		assert.Equal(t, uint32(8), ev.HIDSize)
		assert.Equal(t, uint32(2), ev.HIDCount)
	})

	t.Run("unknown", func(t *testing.T) {
		ev := DecodeRaw(RawInput{Header: RawHeader{Type: 9, Size: 40}, Payload: RawUnknown{Type: 9}}, 0)
		assert.Equal(t, KindRawHID, ev.Kind)
		assert.Equal(t, uint32(40), ev.HIDSize)
	})
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "LWIN", KeyName(VK_LWIN))
	assert.Equal(t, "TAB", KeyName(VK_TAB))
	assert.Equal(t, "D", KeyName(VK_D))
	assert.Equal(t, "2", KeyName(VK_2))
	assert.Equal(t, "F12", KeyName(0x7B))
	assert.Equal(t, "", KeyName(0xFF))
	assert.Equal(t, "VK_0xFF", KeyLabel(0xFF))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "mouse_down", KindMouseButtonDown.String())
	assert.Equal(t, "kind(200)", Kind(200).String())
	assert.True(t, KindRawHID.IsRaw())
	assert.False(t, KindRawHID.IsMouse())
}

func TestModifiersString(t *testing.T) {
	assert.Equal(t, "none", Modifiers(0).String())
	assert.Equal(t, "ctrl+alt", (ModAlt | ModCtrl).String())
	assert.Equal(t, "shift+win", (ModMeta | ModShift).String())
}
