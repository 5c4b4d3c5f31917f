package input

import "sync"

// Handle is an installed set of system-wide hooks. It is owned by whoever
// called Install and must be released on every exit path.
type Handle struct {
	once    sync.Once
	mu      sync.Mutex
	active  bool
	release func() error
	err     error
}

// NewHandle wraps a release function. Release runs it at most once.
func NewHandle(release func() error) *Handle {
	return &Handle{active: true, release: release}
}

// Active reports whether the hooks behind the handle are still installed.
// A nil handle is never active.
func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Release uninstalls the hooks. Later calls return the first call's result
// without touching the OS again.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	h.once.Do(func() {
		if h.release != nil {
			h.err = h.release()
		}
		h.mu.Lock()
		h.active = false
		h.mu.Unlock()
	})
	return h.err
}
