// Package remap turns recognized button presses into synthetic keystrokes
// according to the active profile.
package remap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"gamemode/internal/input"

	"github.com/rs/zerolog"
)

// ErrUnknownProfile is returned by ParseProfile for unrecognized names.
var ErrUnknownProfile = errors.New("unknown profile")

// DefaultSwapDelay separates the two presses of the quick-swap profile.
const DefaultSwapDelay = time.Millisecond

// Profile is the remap policy. Exactly one is active at a time.
type Profile uint32

const (
	// ProfileDisabled forwards every button unchanged.
	ProfileDisabled Profile = iota
	// ProfileQuickSwap presses "2" then, after the swap delay, "1".
	ProfileQuickSwap
	// ProfileShift presses Shift.
	ProfileShift
)

// Profiles lists every profile in menu order.
func Profiles() []Profile {
	return []Profile{ProfileDisabled, ProfileQuickSwap, ProfileShift}
}

func (p Profile) String() string {
	switch p {
	case ProfileDisabled:
		return "disabled"
	case ProfileQuickSwap:
		return "quickswap"
	case ProfileShift:
		return "shift"
	}
	return fmt.Sprintf("profile(%d)", uint32(p))
}

// ParseProfile accepts the profile names and their short aliases.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "disabled", "off", "none":
		return ProfileDisabled, nil
	case "quickswap", "csgo", "a":
		return ProfileQuickSwap, nil
	case "shift", "ow", "b":
		return ProfileShift, nil
	}
	return ProfileDisabled, fmt.Errorf("%w: %q", ErrUnknownProfile, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Profile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Profile) UnmarshalText(b []byte) error {
	v, err := ParseProfile(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Strokes returns the keystrokes the profile injects for one press.
func (p Profile) Strokes(swapDelay time.Duration) []input.KeyStroke {
	switch p {
	case ProfileQuickSwap:
		return []input.KeyStroke{{VK: input.VK_2}, {VK: input.VK_1, Delay: swapDelay}}
	case ProfileShift:
		return []input.KeyStroke{{VK: input.VK_SHIFT}}
	}
	return nil
}

// Describe renders the injected sequence for notifications, e.g. "2 -> 1".
func (p Profile) Describe() string {
	strokes := p.Strokes(0)
	if len(strokes) == 0 {
		return "none"
	}
	names := make([]string, len(strokes))
	for i, s := range strokes {
		names[i] = input.KeyLabel(uint32(s.VK))
	}
	return strings.Join(names, " -> ")
}

// Engine decides what happens to a recognized press and submits the
// replacement keystrokes.
type Engine struct {
	injector  input.Injector
	log       *zerolog.Logger
	swapDelay atomic.Int64
}

var defaultLogger = zerolog.New(os.Stderr).With().Str("subsystem", "remap").Logger()

// NewEngine returns an engine that injects through inj.
func NewEngine(inj input.Injector, logger *zerolog.Logger) *Engine {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	e := &Engine{injector: inj, log: logger}
	e.swapDelay.Store(int64(DefaultSwapDelay))
	return e
}

// SetSwapDelay changes the quick-swap delay for subsequent presses.
func (e *Engine) SetSwapDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.swapDelay.Store(int64(d))
}

// SwapDelay returns the current quick-swap delay.
func (e *Engine) SwapDelay() time.Duration {
	return time.Duration(e.swapDelay.Load())
}

// Handle returns PassThrough for the disabled profile and otherwise
// Suppress, after queueing the profile's keystrokes. A failed injection is
// returned alongside Suppress: the original press stays swallowed and is
// not retried.
func (e *Engine) Handle(identity string, p Profile) (input.Decision, error) {
	strokes := p.Strokes(e.SwapDelay())
	if len(strokes) == 0 {
		return input.PassThrough, nil
	}
	if err := e.injector.Inject(strokes); err != nil {
		e.log.Warn().Err(err).Str("button", identity).Stringer("profile", p).Msg("replacement keystrokes not injected")
		return input.Suppress, fmt.Errorf("%w: %w", input.ErrInjectionFailed, err)
	}
	return input.Suppress, nil
}
