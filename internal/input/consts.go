package input

import "errors"

// Native message ids and flags. These are OS-defined and kept platform
// independent so the decoder can be exercised anywhere.
const (
	WM_INPUT       = 0x00FF
	WM_KEYDOWN     = 0x0100
	WM_KEYUP       = 0x0101
	WM_SYSKEYDOWN  = 0x0104
	WM_SYSKEYUP    = 0x0105
	WM_MOUSEMOVE   = 0x0200
	WM_LBUTTONDOWN = 0x0201
	WM_LBUTTONUP   = 0x0202
	WM_RBUTTONDOWN = 0x0204
	WM_RBUTTONUP   = 0x0205
	WM_MBUTTONDOWN = 0x0207
	WM_MBUTTONUP   = 0x0208
	WM_MOUSEWHEEL  = 0x020A
	WM_XBUTTONDOWN = 0x020B
	WM_XBUTTONUP   = 0x020C
	WM_MOUSEHWHEEL = 0x020E

	XBUTTON1 = 0x0001
	XBUTTON2 = 0x0002

	LLKHF_EXTENDED = 0x01
	LLKHF_INJECTED = 0x10
	LLKHF_UP       = 0x80
	LLMHF_INJECTED = 0x01

	RIM_TYPEMOUSE    = 0
	RIM_TYPEKEYBOARD = 1
	RIM_TYPEHID      = 2

	RI_KEY_BREAK = 0x01

	RI_MOUSE_LEFT_BUTTON_DOWN   = 0x0001
	RI_MOUSE_LEFT_BUTTON_UP     = 0x0002
	RI_MOUSE_RIGHT_BUTTON_DOWN  = 0x0004
	RI_MOUSE_RIGHT_BUTTON_UP    = 0x0008
	RI_MOUSE_MIDDLE_BUTTON_DOWN = 0x0010
	RI_MOUSE_MIDDLE_BUTTON_UP   = 0x0020
	RI_MOUSE_BUTTON_4_DOWN      = 0x0040
	RI_MOUSE_BUTTON_4_UP        = 0x0080
	RI_MOUSE_BUTTON_5_DOWN      = 0x0100
	RI_MOUSE_BUTTON_5_UP        = 0x0200
	RI_MOUSE_WHEEL              = 0x0400
	RI_MOUSE_HWHEEL             = 0x0800
)

// Virtual key codes used by the remap profiles and the keyboard guard.
const (
	VK_TAB   = 0x09
	VK_SHIFT = 0x10
	VK_1     = 0x31
	VK_2     = 0x32
	VK_D     = 0x44
	VK_E     = 0x45
	VK_R     = 0x52
	VK_S     = 0x53
	VK_X     = 0x58
	VK_LWIN  = 0x5B
	VK_RWIN  = 0x5C
)

// InjectionTag is stamped into dwExtraInfo of every keystroke this process
// injects ("GAME").
const InjectionTag = 0x47414D45

var (
	// ErrUnsupportedPlatform is returned when hooks or injection are unavailable
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrHookInstallFailed is returned when the OS refuses a hook registration
	ErrHookInstallFailed = errors.New("hook install failed")

	// ErrAlreadyInstalled is returned when a second concurrent install is attempted
	ErrAlreadyInstalled = errors.New("hooks already installed")

	// ErrInjectionFailed is returned when the OS rejects synthetic input
	ErrInjectionFailed = errors.New("injection failed")

	// ErrQueueFull is returned when the injection queue cannot take more work
	ErrQueueFull = errors.New("injection queue full")

	// ErrQueueClosed is returned after the injection queue has been closed
	ErrQueueClosed = errors.New("injection queue closed")

	// ErrShortRecord is returned when a raw input buffer is smaller than its header claims
	ErrShortRecord = errors.New("raw input record too short")
)
