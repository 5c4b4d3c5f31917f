// Package session wires the input pipeline into a game-mode session: it owns
// the installed hooks and routes each event through the guard, the
// signature catalog, the side-button state machine and the remap engine.
package session

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gamemode/internal/disambig"
	"gamemode/internal/guard"
	"gamemode/internal/input"
	"gamemode/internal/learn"
	"gamemode/internal/metrics"
	"gamemode/internal/notify"
	"gamemode/internal/remap"
	"gamemode/internal/signature"

	"github.com/rs/zerolog"
)

var defaultLogger = zerolog.New(os.Stderr).With().Str("subsystem", "session").Logger()

// KeyObserver sees every foreign key and button event before it is judged.
type KeyObserver interface {
	Observe(input.Event)
	Reset()
}

// Options configures a Session. Source and Injector are required.
type Options struct {
	Source   input.Source
	Injector input.Injector
	Catalog  *signature.Catalog
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Hotkeys  KeyObserver
	Logger   *zerolog.Logger
}

// Session implements input.Handler. Its Handle methods run on the hook
// thread (and the raw input path for HandleRaw); the setters may be called
// from any goroutine and take effect on the next event.
type Session struct {
	source   input.Source
	catalog  *signature.Catalog
	machine  *disambig.Machine
	engine   *remap.Engine
	guard    *guard.Guard
	recorder *learn.Recorder
	notify   notify.Notifier
	metrics  *metrics.Metrics
	hotkeys  KeyObserver
	log      *zerolog.Logger

	profile atomic.Uint32
	debug   atomic.Bool

	mu     sync.Mutex
	handle *input.Handle

	// held tracks button-ups to swallow because their press was suppressed.
	// Hook thread only.
	held map[heldButton]struct{}
}

type heldButton struct {
	upMessage uint32
	xbutton   uint16
}

// New builds a session. The catalog defaults to the standard signatures.
func New(opts Options) (*Session, error) {
	if opts.Source == nil {
		return nil, errors.New("session: nil input source")
	}
	if opts.Injector == nil {
		return nil, errors.New("session: nil injector")
	}
	logger := opts.Logger
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	catalog := opts.Catalog
	if catalog == nil {
		var err error
		if catalog, err = signature.NewCatalog(); err != nil {
			return nil, err
		}
	}
	n := opts.Notifier
	if n == nil {
		n = notify.Nop{}
	}

	return &Session{
		source:   opts.Source,
		catalog:  catalog,
		machine:  disambig.New(),
		engine:   remap.NewEngine(opts.Injector, logger),
		guard:    guard.New(n),
		recorder: learn.New(catalog, n),
		notify:   n,
		metrics:  opts.Metrics,
		hotkeys:  opts.Hotkeys,
		log:      logger,
		held:     make(map[heldButton]struct{}),
	}, nil
}

// Install enables game mode by installing the hooks. Installing an already
// installed session is a no-op. On failure the session stays uninstalled
// and the error wraps input.ErrHookInstallFailed.
func (s *Session) Install() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle.Active() {
		return nil
	}
	s.machine.Reset()
	clear(s.held)
	if s.hotkeys != nil {
		s.hotkeys.Reset()
	}

	h, err := s.source.Install(s)
	if err != nil {
		if !errors.Is(err, input.ErrHookInstallFailed) {
			err = fmt.Errorf("%w: %w", input.ErrHookInstallFailed, err)
		}
		return err
	}
	s.handle = h
	s.log.Info().Stringer("profile", s.Profile()).Bool("guard", s.guard.Armed()).Msg("game mode enabled")
	return nil
}

// Uninstall removes the hooks. It is safe to call repeatedly; failures are
// logged.
func (s *Session) Uninstall() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return
	}
	if err := s.source.Uninstall(s.handle); err != nil {
		s.log.Warn().Err(err).Msg("failed to remove input hooks")
	}
	s.handle = nil
	s.log.Info().Msg("game mode disabled")
}

// Installed reports whether the hooks are active.
func (s *Session) Installed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.Active()
}

// Close uninstalls the hooks.
func (s *Session) Close() error {
	s.Uninstall()
	return nil
}

func (s *Session) SetProfile(p remap.Profile) {
	s.profile.Store(uint32(p))
	s.log.Info().Stringer("profile", p).Msg("profile changed")
}

func (s *Session) Profile() remap.Profile {
	return remap.Profile(s.profile.Load())
}

// ArmLearning switches learning mode.
func (s *Session) ArmLearning(on bool) {
	s.recorder.SetArmed(on)
	s.log.Info().Bool("learning", on).Msg("learning mode changed")
}

// Learning reports whether learning mode is on.
func (s *Session) Learning() bool {
	return s.recorder.Armed()
}

func (s *Session) SetKeyboardGuard(on bool) {
	s.guard.SetArmed(on)
	s.log.Info().Bool("guard", on).Msg("keyboard guard changed")
}

func (s *Session) KeyboardGuard() bool {
	return s.guard.Armed()
}

// SetDebug toggles per-event diagnostics.
func (s *Session) SetDebug(on bool) {
	s.debug.Store(on)
}

func (s *Session) Debug() bool {
	return s.debug.Load()
}

func (s *Session) SetSwapDelay(d time.Duration) {
	s.engine.SetSwapDelay(d)
}

func (s *Session) Catalog() *signature.Catalog {
	return s.catalog
}

// Detections returns what learning mode has captured since the last ClearDetections.
func (s *Session) Detections() []learn.Detection {
	return s.recorder.Pending()
}

func (s *Session) ClearDetections() {
	s.recorder.Clear()
}

// HandleMouse decides the fate of one low-level mouse event.
func (s *Session) HandleMouse(ev input.Event) (d input.Decision) {
	defer s.recoverTo(&d, "mouse", ev)
	s.metrics.Event(ev.Kind.String())
	s.observe(ev)

	d = s.mouseDecision(ev)
	s.metrics.Decision("mouse", d.String())
	return d
}

func (s *Session) mouseDecision(ev input.Event) input.Decision {
	if ev.OwnInjection() {
		return input.PassThrough
	}

	switch ev.Kind {
	case input.KindMouseButtonUp:
		return s.release(ev)
	case input.KindMouseButtonDown, input.KindMouseWheel:
	default:
		return input.PassThrough
	}

	if s.recorder.Armed() {
		return s.learnDecision(ev)
	}

	// Wheel and tilt events only take part in learning.
	p := s.Profile()
	if p == remap.ProfileDisabled || ev.Kind != input.KindMouseButtonDown {
		return input.PassThrough
	}

	sig, ok := s.catalog.Match(ev)
	if !ok || !remappable(sig.Name) {
		s.trace(ev, sig.Name, "", input.PassThrough)
		return input.PassThrough
	}

	identity := sig.Name
	if !signature.IsStandard(sig.Name) {
		identity = s.machine.Next().String()
	}

	d, err := s.engine.Handle(identity, p)
	if err != nil {
		s.metrics.InjectionFailed()
	}
	if d == input.Suppress {
		s.hold(ev)
		s.metrics.Remap(p.String())
		s.notify.MouseRemapped(notify.MouseRemapped{Source: identity, Injected: p.Describe(), Profile: p})
	}
	s.trace(ev, sig.Name, identity, d)
	return d
}

// learnDecision swallows presses of new and non-primary buttons while
// learning, without injecting anything.
func (s *Session) learnDecision(ev input.Event) input.Decision {
	if sig, ok := s.recorder.Observe(ev); ok {
		s.metrics.Learned()
		s.hold(ev)
		s.trace(ev, sig.Name, "learned", input.Suppress)
		return input.Suppress
	}
	if name, ok := s.catalog.Classify(ev); ok && remappable(name) {
		s.hold(ev)
		s.trace(ev, name, "learning", input.Suppress)
		return input.Suppress
	}
	return input.PassThrough
}

// remappable excludes the primary buttons and the wheel.
func remappable(name string) bool {
	return name == signature.XButton1 || name == signature.XButton2 || (name != "" && !signature.IsStandard(name))
}

func heldFor(ev input.Event) heldButton {
	var x uint16
	if ev.Message == input.WM_XBUTTONDOWN || ev.Message == input.WM_XBUTTONUP {
		x = ev.XButton()
	}
	up := ev.Message
	if ev.Kind == input.KindMouseButtonDown {
		up++ // WM_*BUTTONUP is WM_*BUTTONDOWN + 1
	}
	return heldButton{upMessage: up, xbutton: x}
}

func (s *Session) hold(ev input.Event) {
	if ev.Kind == input.KindMouseButtonDown {
		s.held[heldFor(ev)] = struct{}{}
	}
}

func (s *Session) release(ev input.Event) input.Decision {
	k := heldFor(ev)
	if _, ok := s.held[k]; ok {
		delete(s.held, k)
		return input.Suppress
	}
	return input.PassThrough
}

// HandleKeyboard applies the keyboard guard.
func (s *Session) HandleKeyboard(ev input.Event) (d input.Decision) {
	defer s.recoverTo(&d, "keyboard", ev)
	s.metrics.Event(ev.Kind.String())

	if ev.OwnInjection() {
		return input.PassThrough
	}
	s.observe(ev)
	d = s.guard.Evaluate(ev)
	if d == input.Suppress {
		s.metrics.KeyBlocked()
	}
	s.metrics.Decision("keyboard", d.String())
	if s.debug.Load() && d == input.Suppress {
		s.log.Debug().Str("key", input.KeyLabel(ev.VirtualCode)).Stringer("kind", ev.Kind).Msg("key suppressed")
	}
	return d
}

func (s *Session) observe(ev input.Event) {
	if s.hotkeys != nil && !ev.OwnInjection() {
		s.hotkeys.Observe(ev)
	}
}

// HandleRaw feeds raw input to the learning recorder.
func (s *Session) HandleRaw(ev input.Event) {
	var d input.Decision
	defer s.recoverTo(&d, "raw", ev)
	s.metrics.Event(ev.Kind.String())

	if s.recorder.Armed() {
		if sig, ok := s.recorder.Observe(ev); ok {
			s.metrics.Learned()
			s.trace(ev, sig.Name, "learned", input.PassThrough)
		}
	}
}

func (s *Session) recoverTo(d *input.Decision, path string, ev input.Event) {
	if r := recover(); r != nil {
		*d = input.PassThrough
		s.metrics.Panicked()
		s.log.Error().Interface("panic", r).Str("path", path).Str("event", ev.String()).Msg("handler failed; passing event through")
	}
}

func (s *Session) trace(ev input.Event, sig, identity string, d input.Decision) {
	if !s.debug.Load() {
		return
	}
	s.log.Debug().
		Str("event", ev.String()).
		Str("signature", sig).
		Str("identity", identity).
		Stringer("decision", d).
		Msg("mouse event")
}
