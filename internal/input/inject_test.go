package input

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPresser struct {
	mu      sync.Mutex
	pressed []uint16
	failOn  uint16
	gate    chan struct{}
}

func (p *recordingPresser) Press(vk uint16) error {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn != 0 && vk == p.failOn {
		return errors.New("rejected")
	}
	p.pressed = append(p.pressed, vk)
	return nil
}

func (p *recordingPresser) keys() []uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint16(nil), p.pressed...)
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestQueueDeliversInOrderWithDelays(t *testing.T) {
	p := &recordingPresser{}
	var slept []time.Duration
	q := NewQueue(p, nopLogger(), WithSleep(func(d time.Duration) { slept = append(slept, d) }))

	require.NoError(t, q.Inject([]KeyStroke{{VK: VK_2}, {VK: VK_1, Delay: time.Millisecond}}))
	require.NoError(t, q.Inject([]KeyStroke{{VK: VK_SHIFT}}))
	require.NoError(t, q.Close())

	assert.Equal(t, []uint16{VK_2, VK_1, VK_SHIFT}, p.keys())
	assert.Equal(t, []time.Duration{time.Millisecond}, slept)
}

func TestQueueInjectCopiesInput(t *testing.T) {
	p := &recordingPresser{gate: make(chan struct{})}
	q := NewQueue(p, nopLogger())

	strokes := []KeyStroke{{VK: VK_2}}
	require.NoError(t, q.Inject(strokes))
	strokes[0].VK = VK_X
	close(p.gate)
	require.NoError(t, q.Close())

	assert.Equal(t, []uint16{VK_2}, p.keys())
}

func TestQueueFull(t *testing.T) {
	p := &recordingPresser{gate: make(chan struct{})}
	q := NewQueue(p, nopLogger(), WithQueueSize(1))

	// First sequence is picked up by the worker and blocks on the gate,
	// the second fills the buffer.
	require.NoError(t, q.Inject([]KeyStroke{{VK: VK_1}}))
	assert.Eventually(t, func() bool { return len(q.jobs) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Inject([]KeyStroke{{VK: VK_2}}))

	err := q.Inject([]KeyStroke{{VK: VK_SHIFT}})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(p.gate)
	require.NoError(t, q.Close())
	assert.Equal(t, []uint16{VK_1, VK_2}, p.keys())
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue(&recordingPresser{}, nopLogger())
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Inject([]KeyStroke{{VK: VK_1}}), ErrQueueClosed)
	assert.NoError(t, q.Inject(nil))
}

func TestQueueReportsFailureAndDropsRest(t *testing.T) {
	p := &recordingPresser{failOn: VK_2}
	var got []error
	q := NewQueue(p, nopLogger(), WithErrorHandler(func(err error) { got = append(got, err) }))

	require.NoError(t, q.Inject([]KeyStroke{{VK: VK_2}, {VK: VK_1}}))
	require.NoError(t, q.Inject([]KeyStroke{{VK: VK_SHIFT}}))
	require.NoError(t, q.Close())

	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0], ErrInjectionFailed)
	assert.Equal(t, []uint16{VK_SHIFT}, p.keys())
}

func TestHandleRelease(t *testing.T) {
	calls := 0
	h := NewHandle(func() error {
		calls++
		return errors.New("boom")
	})
	assert.True(t, h.Active())

	assert.EqualError(t, h.Release(), "boom")
	assert.EqualError(t, h.Release(), "boom")
	assert.Equal(t, 1, calls)
	assert.False(t, h.Active())

	var nilHandle *Handle
	assert.False(t, nilHandle.Active())
	assert.NoError(t, nilHandle.Release())
}
