//go:build !windows

package input

import "github.com/rs/zerolog"

// WindowsSource is unavailable on this platform; Install always fails.
type WindowsSource struct {
	log *zerolog.Logger
	Raw bool
}

// NewSource returns a Source that reports ErrUnsupportedPlatform.
func NewSource(logger *zerolog.Logger) *WindowsSource {
	if logger == nil {
		l := defaultLogger
		logger = &l
	}
	return &WindowsSource{log: logger}
}

// Install is not supported on this platform.
func (s *WindowsSource) Install(h Handler) (*Handle, error) {
	return nil, ErrUnsupportedPlatform
}

// Uninstall releases h.
func (s *WindowsSource) Uninstall(h *Handle) error {
	return h.Release()
}
