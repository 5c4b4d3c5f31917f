//go:build windows

package input

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// Windows API constants
const (
	WH_KEYBOARD_LL = 13
	WH_MOUSE_LL    = 14

	WM_QUIT = 0x0012

	RID_INPUT       = 0x10000003
	RIDEV_REMOVE    = 0x00000001
	RIDEV_INPUTSINK = 0x00000100

	usagePageGeneric = 0x01
	usageMouse       = 0x02
	usageKeyboard    = 0x06

	vkControl = 0x11
	vkMenu    = 0x12

	errorClassAlreadyExists = 1410
)

// HWND_MESSAGE parents a message-only window.
var hwndMessage = ^uintptr(2)

// Windows API functions
var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookExW       = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx     = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx          = user32.NewProc("CallNextHookEx")
	procGetMessageW             = user32.NewProc("GetMessageW")
	procTranslateMessage        = user32.NewProc("TranslateMessage")
	procDispatchMessageW        = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW      = user32.NewProc("PostThreadMessageW")
	procRegisterRawInputDevices = user32.NewProc("RegisterRawInputDevices")
	procGetRawInputData         = user32.NewProc("GetRawInputData")
	procRegisterClassExW        = user32.NewProc("RegisterClassExW")
	procCreateWindowExW         = user32.NewProc("CreateWindowExW")
	procDestroyWindow           = user32.NewProc("DestroyWindow")
	procDefWindowProcW          = user32.NewProc("DefWindowProcW")
	procGetAsyncKeyState        = user32.NewProc("GetAsyncKeyState")
	procGetModuleHandleW        = kernel32.NewProc("GetModuleHandleW")
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     uintptr
	HIcon         uintptr
	HCursor       uintptr
	HbrBackground uintptr
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

type rawInputDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	Target    uintptr
}

// Native callbacks are created once per process; syscall.NewCallback has a
// fixed budget. They route to whichever hook thread is currently active.
var (
	active        atomic.Pointer[hookThread]
	callbacksOnce sync.Once
	mouseCallback uintptr
	keyCallback   uintptr
	wndCallback   uintptr

	className = windows.StringToUTF16Ptr("GameModeRawInput")
)

// WindowsSource installs WH_MOUSE_LL and WH_KEYBOARD_LL hooks on a dedicated
// OS thread and, alongside them, a raw input sink for diagnostics.
type WindowsSource struct {
	log *zerolog.Logger
	// Raw disables the raw input sink when false.
	Raw bool
}

// NewSource returns a Source for the current desktop session.
func NewSource(logger *zerolog.Logger) *WindowsSource {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &WindowsSource{log: logger, Raw: true}
}

// Install starts the hook thread and returns once both hooks are registered.
// Only one set of hooks may be active per process.
func (s *WindowsSource) Install(h Handler) (*Handle, error) {
	if h == nil {
		return nil, errors.New("nil handler")
	}
	callbacksOnce.Do(func() {
		mouseCallback = syscall.NewCallback(mouseHookProc)
		keyCallback = syscall.NewCallback(keyboardHookProc)
		wndCallback = syscall.NewCallback(rawWndProc)
	})

	t := &hookThread{
		handler: h,
		log:     s.log,
		raw:     s.Raw,
		ready:   make(chan error, 1),
		done:    make(chan struct{}),
	}
	if !active.CompareAndSwap(nil, t) {
		return nil, ErrAlreadyInstalled
	}

	go t.run()
	if err := <-t.ready; err != nil {
		<-t.done
		active.CompareAndSwap(t, nil)
		return nil, err
	}
	return NewHandle(t.stop), nil
}

// Uninstall releases h. Releasing an already released handle is a no-op.
func (s *WindowsSource) Uninstall(h *Handle) error {
	return h.Release()
}

type hookThread struct {
	handler Handler
	log     *zerolog.Logger
	raw     bool

	tid       uint32
	mouseHook uintptr
	keyHook   uintptr
	hwnd      uintptr
	rawBuf    []byte

	ready chan error
	done  chan struct{}
	err   error
}

// run owns the OS thread for the lifetime of the hooks: low-level hook
// callbacks are delivered through this thread's message loop.
func (t *hookThread) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	t.tid = windows.GetCurrentThreadId()
	hInstance, _, _ := procGetModuleHandleW.Call(0)

	mh, _, err := procSetWindowsHookExW.Call(WH_MOUSE_LL, mouseCallback, hInstance, 0)
	if mh == 0 {
		t.ready <- fmt.Errorf("%w: mouse hook: %v", ErrHookInstallFailed, err)
		return
	}
	t.mouseHook = mh

	kh, _, err := procSetWindowsHookExW.Call(WH_KEYBOARD_LL, keyCallback, hInstance, 0)
	if kh == 0 {
		procUnhookWindowsHookEx.Call(t.mouseHook)
		t.mouseHook = 0
		t.ready <- fmt.Errorf("%w: keyboard hook: %v", ErrHookInstallFailed, err)
		return
	}
	t.keyHook = kh

	if t.raw {
		if err := t.openRawSink(hInstance); err != nil {
			t.log.Warn().Err(err).Msg("raw input unavailable; continuing with hooks only")
		}
	}

	t.log.Info().Uint32("thread", t.tid).Bool("raw", t.hwnd != 0).Msg("input hooks installed")
	t.ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}

	t.err = t.teardown()
	t.log.Info().Msg("input hooks removed")
}

func (t *hookThread) teardown() error {
	var errs []error
	if t.hwnd != 0 {
		t.registerRaw(RIDEV_REMOVE, 0)
		procDestroyWindow.Call(t.hwnd)
		t.hwnd = 0
	}
	if t.keyHook != 0 {
		if r, _, err := procUnhookWindowsHookEx.Call(t.keyHook); r == 0 {
			errs = append(errs, fmt.Errorf("unhook keyboard: %v", err))
		}
		t.keyHook = 0
	}
	if t.mouseHook != 0 {
		if r, _, err := procUnhookWindowsHookEx.Call(t.mouseHook); r == 0 {
			errs = append(errs, fmt.Errorf("unhook mouse: %v", err))
		}
		t.mouseHook = 0
	}
	return errors.Join(errs...)
}

func (t *hookThread) stop() error {
	r, _, err := procPostThreadMessageW.Call(uintptr(t.tid), WM_QUIT, 0, 0)
	if r == 0 {
		active.CompareAndSwap(t, nil)
		return fmt.Errorf("post quit to hook thread: %v", err)
	}
	<-t.done
	active.CompareAndSwap(t, nil)
	return t.err
}

func (t *hookThread) openRawSink(hInstance uintptr) error {
	wc := wndClassEx{
		CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		LpfnWndProc:   wndCallback,
		HInstance:     hInstance,
		LpszClassName: className,
	}
	if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		if errno, ok := err.(syscall.Errno); !ok || errno != errorClassAlreadyExists {
			return fmt.Errorf("RegisterClassEx failed: %v", err)
		}
	}

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		0, 0,
		0, 0, 0, 0,
		hwndMessage, 0, hInstance, 0,
	)
	if hwnd == 0 {
		return fmt.Errorf("CreateWindowEx failed: %v", err)
	}
	t.hwnd = hwnd

	if err := t.registerRaw(RIDEV_INPUTSINK, hwnd); err != nil {
		procDestroyWindow.Call(hwnd)
		t.hwnd = 0
		return err
	}
	return nil
}

func (t *hookThread) registerRaw(flags uint32, target uintptr) error {
	rids := []rawInputDevice{
		{UsagePage: usagePageGeneric, Usage: usageMouse, Flags: flags, Target: target},
		{UsagePage: usagePageGeneric, Usage: usageKeyboard, Flags: flags, Target: target},
	}
	r, _, err := procRegisterRawInputDevices.Call(
		uintptr(unsafe.Pointer(&rids[0])),
		uintptr(len(rids)),
		unsafe.Sizeof(rids[0]),
	)
	if r == 0 {
		return fmt.Errorf("RegisterRawInputDevices(flags=0x%X) failed: %v", flags, err)
	}
	return nil
}

func (t *hookThread) readRaw(lParam uintptr) {
	var size uint32
	r, _, _ := procGetRawInputData.Call(lParam, RID_INPUT, 0, uintptr(unsafe.Pointer(&size)), RawHeaderSize)
	if int32(r) == -1 || size == 0 {
		return
	}
	if cap(t.rawBuf) < int(size) {
		t.rawBuf = make([]byte, size)
	}
	buf := t.rawBuf[:size]
	r, _, _ = procGetRawInputData.Call(lParam, RID_INPUT, uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)), RawHeaderSize)
	if int32(r) <= 0 {
		return
	}

	ev, err := DecodeRawReport(buf[:r], uint32(windows.DurationSinceBoot().Milliseconds()))
	if err != nil {
		t.log.Debug().Err(err).Uint32("size", ev.HIDSize).Msg("raw input report kept as hid")
	}
	t.dispatchRaw(ev)
}

func (t *hookThread) dispatchMouse(ev Event) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Str("event", ev.String()).Msg("mouse handler panicked; passing event through")
			d = PassThrough
		}
	}()
	return t.handler.HandleMouse(ev)
}

func (t *hookThread) dispatchKeyboard(ev Event) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Str("event", ev.String()).Msg("keyboard handler panicked; passing event through")
			d = PassThrough
		}
	}()
	return t.handler.HandleKeyboard(ev)
}

func (t *hookThread) dispatchRaw(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error().Interface("panic", r).Str("event", ev.String()).Msg("raw handler panicked")
		}
	}()
	t.handler.HandleRaw(ev)
}

func mouseHookProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 && uint32(wParam) != WM_MOUSEMOVE {
		if t := active.Load(); t != nil {
			rec := *(*MouseHookRecord)(unsafe.Pointer(lParam))
			if t.dispatchMouse(DecodeMouseHook(uint32(wParam), rec)) == Suppress {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func keyboardHookProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 {
		if t := active.Load(); t != nil {
			rec := *(*KeyboardHookRecord)(unsafe.Pointer(lParam))
			if t.dispatchKeyboard(DecodeKeyboardHook(uint32(wParam), rec, modifierState())) == Suppress {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func rawWndProc(hwnd, message, wParam, lParam uintptr) uintptr {
	if uint32(message) == WM_INPUT {
		if t := active.Load(); t != nil {
			t.readRaw(lParam)
		}
	}
	ret, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
	return ret
}

func keyDown(vk uintptr) bool {
	r, _, _ := procGetAsyncKeyState.Call(vk)
	return r&0x8000 != 0
}

func modifierState() Modifiers {
	var m Modifiers
	if keyDown(VK_SHIFT) {
		m |= ModShift
	}
	if keyDown(vkControl) {
		m |= ModCtrl
	}
	if keyDown(vkMenu) {
		m |= ModAlt
	}
	if keyDown(VK_LWIN) || keyDown(VK_RWIN) {
		m |= ModMeta
	}
	return m
}
