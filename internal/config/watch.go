package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// Watch reloads the settings file whenever it changes on disk until ctx is
// done. The directory is watched so replace-on-save editors are seen.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(m.configPath)
	if err := w.Add(dir); err != nil {
		return err
	}
	name := filepath.Base(m.configPath)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.log.Warn().Err(err).Msg("settings watcher error")
		case <-fire:
			fire = nil
			if err := m.Load(); err != nil {
				m.log.Warn().Err(err).Str("path", m.configPath).Msg("ignoring invalid settings file")
				continue
			}
			m.log.Info().Str("path", m.configPath).Msg("settings reloaded")
		}
	}
}
