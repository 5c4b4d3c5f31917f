//go:build !windows

package input

// StubPresser rejects every press.
type StubPresser struct{}

// NewPresser returns the platform Presser.
func NewPresser() *StubPresser { return &StubPresser{} }

// Press is not supported on this platform.
func (p *StubPresser) Press(vk uint16) error {
	return ErrUnsupportedPlatform
}
