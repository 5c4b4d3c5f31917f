package input

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultQueueSize is the number of pending stroke sequences a Queue holds.
const DefaultQueueSize = 64

var defaultLogger = zerolog.New(os.Stderr).With().Str("subsystem", "input").Logger()

// Queue is an Injector that hands stroke sequences to a single worker
// goroutine, so callers on the hook thread never sleep or block on SendInput.
// Sequences are delivered in submission order.
type Queue struct {
	presser Presser
	log     *zerolog.Logger
	onError func(error)
	sleep   func(time.Duration)

	jobs chan []KeyStroke
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

// QueueOption customizes a Queue.
type QueueOption func(*Queue)

// WithQueueSize sets the pending-sequence capacity.
func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.jobs = make(chan []KeyStroke, n)
		}
	}
}

// WithErrorHandler registers a callback for presses the OS rejected.
func WithErrorHandler(fn func(error)) QueueOption {
	return func(q *Queue) { q.onError = fn }
}

// WithSleep replaces time.Sleep for stroke delays.
func WithSleep(fn func(time.Duration)) QueueOption {
	return func(q *Queue) { q.sleep = fn }
}

// NewQueue starts the worker. Close must be called to stop it.
func NewQueue(p Presser, logger *zerolog.Logger, opts ...QueueOption) *Queue {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	q := &Queue{
		presser: p,
		log:     logger,
		sleep:   time.Sleep,
		jobs:    make(chan []KeyStroke, DefaultQueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run()
	return q
}

// Inject enqueues a copy of strokes. It never blocks.
func (q *Queue) Inject(strokes []KeyStroke) error {
	if len(strokes) == 0 {
		return nil
	}
	seq := make([]KeyStroke, len(strokes))
	copy(seq, strokes)

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- seq:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting work, lets the worker drain what is queued and
// waits for it to exit. It is safe to call more than once.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	<-q.done
	return nil
}

func (q *Queue) run() {
	defer close(q.done)
	for seq := range q.jobs {
		q.deliver(seq)
	}
}

func (q *Queue) deliver(seq []KeyStroke) {
	for i, s := range seq {
		if s.Delay > 0 {
			q.sleep(s.Delay)
		}
		if err := q.presser.Press(s.VK); err != nil {
			err = fmt.Errorf("%w: vk 0x%02X (stroke %d/%d): %v", ErrInjectionFailed, s.VK, i+1, len(seq), err)
			q.log.Warn().Err(err).Msg("keystroke injection failed")
			if q.onError != nil {
				q.onError(err)
			}
			// Drop the rest of the sequence.
			return
		}
	}
}
