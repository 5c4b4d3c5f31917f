// Package learn records signatures for buttons the catalog does not know yet.
package learn

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gamemode/internal/input"
	"gamemode/internal/notify"
	"gamemode/internal/signature"
)

// Detection is one signature learned while armed.
type Detection struct {
	Signature signature.Signature
	Event     input.Event
	At        time.Time
}

// Recorder appends unseen mouse and raw events to the catalog while armed.
// Observe may be called from the hook thread and the raw input thread at once.
type Recorder struct {
	catalog *signature.Catalog
	notify  notify.Notifier
	armed   atomic.Bool
	now     func() time.Time

	mu      sync.Mutex
	pending []Detection
}

// New returns a disarmed recorder.
func New(c *signature.Catalog, n notify.Notifier) *Recorder {
	if n == nil {
		n = notify.Nop{}
	}
	return &Recorder{catalog: c, notify: n, now: time.Now}
}

// SetArmed switches learning mode.
func (r *Recorder) SetArmed(on bool) {
	r.armed.Store(on)
}

// Armed reports whether learning mode is on.
func (r *Recorder) Armed() bool {
	return r.armed.Load()
}

// Name derives a signature name from the event fields. Hook events use their
// message id, raw events their kind.
func Name(ev input.Event) string {
	if ev.Kind.IsRaw() {
		return fmt.Sprintf("signature_%s_%X_%X", ev.Kind, ev.Payload, ev.ExtraInfo)
	}
	return fmt.Sprintf("signature_%X_%X_%X", ev.Message, ev.Payload, ev.ExtraInfo)
}

// Learnable reports whether ev is the kind of event the recorder captures.
// Raw mouse reports carrying only motion are not.
func Learnable(ev input.Event) bool {
	switch ev.Kind {
	case input.KindMouseButtonDown, input.KindMouseWheel, input.KindRawKeyboard, input.KindRawHID:
		return true
	case input.KindRawMouse:
		return ev.HasButtonActivity()
	}
	return false
}

// Observe learns ev when armed and ev matches no non-wildcard signature.
// The new signature is appended to the catalog, kept for review and
// announced with ButtonDetected.
func (r *Recorder) Observe(ev input.Event) (signature.Signature, bool) {
	if !r.armed.Load() || !Learnable(ev) {
		return signature.Signature{}, false
	}
	if r.catalog.Recognized(ev) {
		return signature.Signature{}, false
	}

	sig, err := r.catalog.Learn(ev, Name(ev))
	if err != nil {
		// Another thread learned the same pattern first.
		return signature.Signature{}, false
	}

	r.mu.Lock()
	r.pending = append(r.pending, Detection{Signature: sig, Event: ev, At: r.now()})
	r.mu.Unlock()

	r.notify.ButtonDetected(notify.ButtonDetected{Signature: sig, Event: ev})
	return sig, true
}

// Pending returns the detections since the last Clear, oldest first.
func (r *Recorder) Pending() []Detection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Detection, len(r.pending))
	copy(out, r.pending)
	return out
}

// Clear empties the review list. Learned signatures stay in the catalog.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
}
