// Package notify carries the pipeline's notifications (blocked keys, detected
// buttons, remapped presses) from the hook thread to listeners.
package notify

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"gamemode/internal/input"
	"gamemode/internal/remap"
	"gamemode/internal/signature"

	"github.com/rs/zerolog"
)

// KeyBlocked is emitted when the keyboard guard swallows a key.
type KeyBlocked struct {
	VK  uint32
	Key string
	Up  bool
}

// ButtonDetected is emitted when the learning recorder adds a signature.
type ButtonDetected struct {
	Signature signature.Signature
	Event     input.Event
}

// MouseRemapped is emitted when a press was suppressed and replaced.
type MouseRemapped struct {
	Source   string
	Injected string
	Profile  remap.Profile
}

// Notifier is the publishing side used on the hook thread. Implementations
// must not block.
type Notifier interface {
	KeyBlocked(KeyBlocked)
	ButtonDetected(ButtonDetected)
	MouseRemapped(MouseRemapped)
}

// Listener receives notifications on the bus goroutine.
type Listener interface {
	OnKeyBlocked(KeyBlocked)
	OnButtonDetected(ButtonDetected)
	OnMouseRemapped(MouseRemapped)
}

// Funcs adapts optional callbacks to a Listener.
type Funcs struct {
	KeyBlocked     func(KeyBlocked)
	ButtonDetected func(ButtonDetected)
	MouseRemapped  func(MouseRemapped)
}

func (f Funcs) OnKeyBlocked(n KeyBlocked) {
	if f.KeyBlocked != nil {
		f.KeyBlocked(n)
	}
}

func (f Funcs) OnButtonDetected(n ButtonDetected) {
	if f.ButtonDetected != nil {
		f.ButtonDetected(n)
	}
}

func (f Funcs) OnMouseRemapped(n MouseRemapped) {
	if f.MouseRemapped != nil {
		f.MouseRemapped(n)
	}
}

// Nop discards every notification.
type Nop struct{}

func (Nop) KeyBlocked(KeyBlocked)         {}
func (Nop) ButtonDetected(ButtonDetected) {}
func (Nop) MouseRemapped(MouseRemapped)   {}

// DefaultBusSize is the number of notifications buffered before drops.
const DefaultBusSize = 256

var defaultLogger = zerolog.New(os.Stderr).With().Str("subsystem", "notify").Logger()

// Bus is a single-consumer notification queue. Publishing never blocks; when
// the buffer is full the notification is dropped and counted.
type Bus struct {
	ch      chan any
	log     *zerolog.Logger
	dropped atomic.Uint64

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewBus returns a bus buffering size notifications.
func NewBus(size int, logger *zerolog.Logger) *Bus {
	if size <= 0 {
		size = DefaultBusSize
	}
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &Bus{
		ch:        make(chan any, size),
		log:       logger,
		listeners: make(map[int]Listener),
	}
}

func (b *Bus) KeyBlocked(n KeyBlocked)         { b.publish(n) }
func (b *Bus) ButtonDetected(n ButtonDetected) { b.publish(n) }
func (b *Bus) MouseRemapped(n MouseRemapped)   { b.publish(n) }

func (b *Bus) publish(n any) {
	select {
	case b.ch <- n:
	default:
		b.dropped.Add(1)
	}
}

// Dropped returns how many notifications were discarded.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribe adds l and returns a function that removes it.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Run delivers notifications until ctx is done. Notifications still queued
// at that point are delivered before Run returns.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case n := <-b.ch:
			b.dispatch(n)
		case <-ctx.Done():
			for {
				select {
				case n := <-b.ch:
					b.dispatch(n)
				default:
					return ctx.Err()
				}
			}
		}
	}
}

func (b *Bus) dispatch(n any) {
	b.mu.RLock()
	ls := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.RUnlock()

	for _, l := range ls {
		b.deliver(l, n)
	}
}

func (b *Bus) deliver(l Listener, n any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("notification", fmt.Sprintf("%T", n)).Msg("listener panicked")
		}
	}()
	switch v := n.(type) {
	case KeyBlocked:
		l.OnKeyBlocked(v)
	case ButtonDetected:
		l.OnButtonDetected(v)
	case MouseRemapped:
		l.OnMouseRemapped(v)
	}
}

// LogListener writes notifications to a logger.
type LogListener struct {
	Log *zerolog.Logger
}

func (l LogListener) OnKeyBlocked(n KeyBlocked) {
	l.Log.Info().Str("key", n.Key).Uint32("vk", n.VK).Bool("up", n.Up).Msg("key blocked")
}

func (l LogListener) OnButtonDetected(n ButtonDetected) {
	l.Log.Info().Str("signature", n.Signature.Name).Str("event", n.Event.String()).Msg("button detected")
}

func (l LogListener) OnMouseRemapped(n MouseRemapped) {
	l.Log.Info().Str("button", n.Source).Str("injected", n.Injected).Stringer("profile", n.Profile).Msg("mouse remapped")
}
