//go:build !windows

package tray

// Run blocks until Stop is called.
func (t *Tray) Run() {
	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()
	<-t.quitCh
	if t.onExit != nil {
		t.onExit()
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	t.stop.Do(func() { close(t.quitCh) })
}

func setNativeTooltip(string) {}
