package learn

import (
	"sync"
	"testing"

	"gamemode/internal/input"
	"gamemode/internal/notify"
	"gamemode/internal/signature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detections struct {
	mu  sync.Mutex
	got []notify.ButtonDetected
}

func (d *detections) KeyBlocked(notify.KeyBlocked) {}
func (d *detections) ButtonDetected(n notify.ButtonDetected) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.got = append(d.got, n)
}
func (d *detections) MouseRemapped(notify.MouseRemapped) {}

func newRecorder(t *testing.T) (*Recorder, *signature.Catalog, *detections) {
	t.Helper()
	c, err := signature.NewCatalog()
	require.NoError(t, err)
	d := &detections{}
	return New(c, d), c, d
}

// sideDown is a press of an extended button past XBUTTON2, which no standard
// signature names.
func sideDown(extra uintptr) input.Event {
	return input.DecodeMouseHook(input.WM_XBUTTONDOWN, input.MouseHookRecord{MouseData: 0x00030000, DwExtraInfo: extra})
}

func TestDisarmedIgnoresEverything(t *testing.T) {
	r, c, d := newRecorder(t)
	_, ok := r.Observe(sideDown(0x70000000))
	assert.False(t, ok)
	assert.Empty(t, c.Learned())
	assert.Empty(t, d.got)
}

func TestObserveLearnsUnknownButton(t *testing.T) {
	r, c, d := newRecorder(t)
	r.SetArmed(true)

	ev := sideDown(0x70000000)
	sig, ok := r.Observe(ev)
	require.True(t, ok)
	assert.Equal(t, "signature_20B_30000_70000000", sig.Name)

	name, ok := c.Classify(ev)
	require.True(t, ok)
	assert.Equal(t, sig.Name, name)

	require.Len(t, d.got, 1)
	assert.Equal(t, sig, d.got[0].Signature)
	assert.Equal(t, ev, d.got[0].Event)

	pending := r.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, sig, pending[0].Signature)

	_, ok = r.Observe(ev)
	assert.False(t, ok, "second press of a learned button is recognized")
	assert.Len(t, r.Pending(), 1)
}

func TestObserveSkipsStandardButtons(t *testing.T) {
	r, _, d := newRecorder(t)
	r.SetArmed(true)

	for _, ev := range []input.Event{
		input.DecodeMouseHook(input.WM_XBUTTONDOWN, input.MouseHookRecord{MouseData: 0x00020000}),
		input.DecodeMouseHook(input.WM_XBUTTONDOWN, input.MouseHookRecord{MouseData: 0x00020000, DwExtraInfo: 0x70000000}),
		input.DecodeMouseHook(input.WM_LBUTTONDOWN, input.MouseHookRecord{}),
		input.DecodeMouseHook(input.WM_MOUSEHWHEEL, input.MouseHookRecord{MouseData: 0xFF880000}),
	} {
		_, ok := r.Observe(ev)
		assert.False(t, ok, "%#x", ev.Message)
	}
	assert.Empty(t, d.got)
}

func TestObserveLearnsPastWildcard(t *testing.T) {
	r, c, _ := newRecorder(t)
	require.NoError(t, c.Add(signature.Wildcard("catchall")))
	r.SetArmed(true)

	_, ok := r.Observe(sideDown(0x01000000))
	assert.True(t, ok)
}

func TestLearnable(t *testing.T) {
	tests := []struct {
		name string
		ev   input.Event
		want bool
	}{
		{"button down", sideDown(0), true},
		{"button up", input.DecodeMouseHook(input.WM_XBUTTONUP, input.MouseHookRecord{}), false},
		{"wheel", input.DecodeMouseHook(input.WM_MOUSEWHEEL, input.MouseHookRecord{MouseData: 0x00780000}), true},
		{"move", input.DecodeMouseHook(input.WM_MOUSEMOVE, input.MouseHookRecord{}), false},
		{"key", input.DecodeKeyboardHook(input.WM_KEYDOWN, input.KeyboardHookRecord{VkCode: 0x41}, 0), false},
		{"raw motion", input.DecodeRaw(input.RawInput{Payload: input.RawMouse{LastX: 5}}, 0), false},
		{"raw button", input.DecodeRaw(input.RawInput{Payload: input.RawMouse{ButtonFlags: input.RI_MOUSE_BUTTON_5_DOWN}}, 0), true},
		{"raw keyboard", input.DecodeRaw(input.RawInput{Payload: input.RawKeyboard{VKey: 0x41}}, 0), true},
		{"raw hid", input.DecodeRaw(input.RawInput{Payload: input.RawHID{SizeHID: 4, Count: 1}}, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Learnable(tt.ev))
		})
	}
}

func TestRawNames(t *testing.T) {
	ev := input.DecodeRaw(input.RawInput{Payload: input.RawMouse{ButtonFlags: input.RI_MOUSE_BUTTON_4_DOWN, ExtraInformation: 0x70000000}}, 0)
	assert.Equal(t, "signature_raw_mouse_40_70000000", Name(ev))
}

func TestClearKeepsCatalog(t *testing.T) {
	r, c, _ := newRecorder(t)
	r.SetArmed(true)
	_, ok := r.Observe(sideDown(0x01000000))
	require.True(t, ok)

	r.Clear()
	assert.Empty(t, r.Pending())
	assert.Len(t, c.Learned(), 1)
}

func TestConcurrentObserve(t *testing.T) {
	r, c, d := newRecorder(t)
	r.SetArmed(true)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Observe(sideDown(uintptr(j + 1)))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, c.Learned(), 50)
	assert.Len(t, r.Pending(), 50)
	assert.Len(t, d.got, 50)
}
