package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"gamemode/internal/input"
	"gamemode/internal/logging"
	"gamemode/internal/signature"

	"github.com/rs/zerolog"
)

// MonitorCmd installs the hooks with a pass-through handler.
type MonitorCmd struct {
	Duration time.Duration `help:"Stop after this long; zero runs until interrupted." default:"0s"`
	Moves    bool          `help:"Include raw mouse motion reports."`
	NoRaw    bool          `help:"Do not register for raw input."`
}

// monitorQueueSize bounds the events waiting to be logged.
const monitorQueueSize = 1024

// monitor hands every event to a logging goroutine and never suppresses
// anything. Events that arrive while the queue is full are counted and
// dropped so the hook thread never waits on the log writer.
type monitor struct {
	log     *zerolog.Logger
	catalog *signature.Catalog
	moves   bool

	events  chan input.Event
	dropped atomic.Uint64
}

func newMonitor(log *zerolog.Logger, catalog *signature.Catalog, moves bool) *monitor {
	return &monitor{log: log, catalog: catalog, moves: moves, events: make(chan input.Event, monitorQueueSize)}
}

func (m *monitor) enqueue(ev input.Event) {
	select {
	case m.events <- ev:
	default:
		m.dropped.Add(1)
	}
}

func (m *monitor) HandleMouse(ev input.Event) input.Decision {
	m.enqueue(ev)
	return input.PassThrough
}

func (m *monitor) HandleKeyboard(ev input.Event) input.Decision {
	m.enqueue(ev)
	return input.PassThrough
}

func (m *monitor) HandleRaw(ev input.Event) {
	if ev.Kind == input.KindRawMouse && !ev.HasButtonActivity() && !m.moves {
		return
	}
	m.enqueue(ev)
}

// drain logs queued events until ctx is done, then flushes what is left.
func (m *monitor) drain(ctx context.Context) {
	for {
		select {
		case ev := <-m.events:
			m.write(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-m.events:
					m.write(ev)
				default:
					if n := m.dropped.Load(); n > 0 {
						m.log.Warn().Uint64("dropped", n).Msg("monitor queue overflowed")
					}
					return
				}
			}
		}
	}
}

func (m *monitor) write(ev input.Event) {
	switch {
	case ev.Kind.IsRaw():
		m.log.Info().Str("event", ev.String()).Msg("raw")
	case ev.Kind.IsMouse():
		name, _ := m.catalog.Classify(ev)
		m.log.Info().Str("event", ev.String()).Str("signature", name).Bool("injected", ev.Injected()).Msg("mouse")
	default:
		m.log.Info().Str("event", ev.String()).Str("key", input.KeyLabel(ev.VirtualCode)).Stringer("mods", ev.Modifiers).Msg("keyboard")
	}
}

// Run is called by Kong when the monitor command is executed.
func (c *MonitorCmd) Run(logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}

	catalog, err := signature.NewCatalog(signature.VendorPresets()...)
	if err != nil {
		return err
	}
	mon := newMonitor(logging.Sub(logger, "monitor"), catalog, c.Moves)
	src := input.NewSource(logging.Sub(logger, "input"))
	src.Raw = !c.NoRaw
	h, err := src.Install(mon)
	if err != nil {
		return err
	}

	drainCtx, stopDrain := context.WithCancel(context.Background())
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		mon.drain(drainCtx)
	}()

	logger.Info().Dur("duration", c.Duration).Msg("monitoring input; press Ctrl+C to stop")
	<-ctx.Done()
	if err := src.Uninstall(h); err != nil {
		logger.Warn().Err(err).Msg("failed to remove hooks")
	}
	stopDrain()
	<-drained
	return nil
}
