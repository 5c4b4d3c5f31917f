package input

// MouseHookRecord mirrors MSLLHOOKSTRUCT.
type MouseHookRecord struct {
	X, Y        int32
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// KeyboardHookRecord mirrors KBDLLHOOKSTRUCT.
type KeyboardHookRecord struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// DecodeMouseHook turns a low-level mouse hook record into an Event.
func DecodeMouseHook(msg uint32, rec MouseHookRecord) Event {
	ev := Event{
		Message:   msg,
		Payload:   rec.MouseData,
		Flags:     rec.Flags,
		ExtraInfo: uint64(rec.DwExtraInfo),
		X:         rec.X,
		Y:         rec.Y,
		Time:      rec.Time,
	}

	switch msg {
	case WM_LBUTTONDOWN, WM_RBUTTONDOWN, WM_MBUTTONDOWN, WM_XBUTTONDOWN:
		ev.Kind = KindMouseButtonDown
	case WM_LBUTTONUP, WM_RBUTTONUP, WM_MBUTTONUP, WM_XBUTTONUP:
		ev.Kind = KindMouseButtonUp
	case WM_MOUSEWHEEL, WM_MOUSEHWHEEL:
		ev.Kind = KindMouseWheel
	case WM_MOUSEMOVE:
		ev.Kind = KindMouseMove
	default:
		ev.Kind = KindUnknown
	}
	return ev
}

// DecodeKeyboardHook turns a low-level keyboard hook record into an Event.
// mods is the modifier state sampled by the caller.
func DecodeKeyboardHook(msg uint32, rec KeyboardHookRecord, mods Modifiers) Event {
	ev := Event{
		Message:     msg,
		VirtualCode: rec.VkCode,
		ScanCode:    rec.ScanCode,
		Flags:       rec.Flags,
		ExtraInfo:   uint64(rec.DwExtraInfo),
		Modifiers:   mods,
		Time:        rec.Time,
	}

	switch msg {
	case WM_KEYDOWN, WM_SYSKEYDOWN:
		ev.Kind = KindKeyDown
	case WM_KEYUP, WM_SYSKEYUP:
		ev.Kind = KindKeyUp
	default:
		if rec.Flags&LLKHF_UP != 0 {
			ev.Kind = KindKeyUp
		} else {
			ev.Kind = KindKeyDown
		}
	}
	return ev
}

// DecodeRaw turns a parsed raw input report into an Event. Report types
// without a decoder become a KindRawHID event carrying size metadata only.
func DecodeRaw(raw RawInput, tick uint32) Event {
	ev := Event{Message: WM_INPUT, Time: tick}

	switch p := raw.Payload.(type) {
	case RawMouse:
		ev.Kind = KindRawMouse
		ev.Payload = uint32(p.ButtonData)<<16 | uint32(p.ButtonFlags)
		ev.Flags = uint32(p.Flags)
		ev.ExtraInfo = uint64(p.ExtraInformation)
		ev.X = p.LastX
		ev.Y = p.LastY
		ev.RawButtons = p.RawButtons
	case RawKeyboard:
		ev.Kind = KindRawKeyboard
		ev.VirtualCode = uint32(p.VKey)
		ev.ScanCode = uint32(p.MakeCode)
		ev.Flags = uint32(p.Flags)
		ev.Payload = uint32(p.Flags)<<16 | uint32(p.VKey)
		ev.ExtraInfo = uint64(p.ExtraInformation)
	case RawHID:
		ev.Kind = KindRawHID
		ev.HIDSize = p.SizeHID
		ev.HIDCount = p.Count
	default:
		ev.Kind = KindRawHID
		ev.HIDSize = raw.Header.Size
	}
	return ev
}

// HasButtonActivity reports whether a raw mouse event carries anything
// beyond relative motion.
func (e Event) HasButtonActivity() bool {
	if e.Kind != KindRawMouse {
		return false
	}
	return uint16(e.Payload) != 0 || e.RawButtons != 0 || e.ExtraInfo != 0
}
