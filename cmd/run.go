package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gamemode/internal/config"
	"gamemode/internal/hotkey"
	"gamemode/internal/input"
	"gamemode/internal/logging"
	"gamemode/internal/metrics"
	"gamemode/internal/notify"
	"gamemode/internal/osutils"
	"gamemode/internal/remap"
	"gamemode/internal/session"
	"gamemode/internal/signature"
	"gamemode/internal/tray"

	"github.com/rs/zerolog"
)

const notifyQueueSize = 256

// RunCmd runs the service until interrupted or quit from the tray.
type RunCmd struct {
	Profile     string `help:"Override the remap profile (disabled, quickswap, shift)." env:"GAMEMODE_PROFILE"`
	Guard       string `help:"Override the Windows-key guard (on or off)." enum:",on,off" default:""`
	Debug       bool   `help:"Trace every classification and decision." env:"GAMEMODE_DEBUG"`
	Enable      bool   `help:"Enable game mode immediately."`
	NoTray      bool   `help:"Run without a tray icon." env:"GAMEMODE_NO_TRAY"`
	MetricsAddr string `help:"Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)." env:"GAMEMODE_METRICS_ADDR"`
}

// Run is called by Kong when the run command is executed.
func (r *RunCmd) Run(g *Globals, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("version", version).Msg("GameMode service starting")
	osutils.WarnIfNotElevated(logger)

	mgr, err := g.settingsManager(logger)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings, err := r.overrides(mgr.Get())
	if err != nil {
		return err
	}

	bus := notify.NewBus(notifyQueueSize, logging.Sub(logger, "notify"))
	bus.Subscribe(notify.LogListener{Log: logging.Sub(logger, "events")})
	go func() { _ = bus.Run(ctx) }()

	m := metrics.New(bus.Dropped)
	if r.MetricsAddr != "" {
		go func() {
			logger.Info().Str("addr", r.MetricsAddr).Msg("serving metrics")
			if err := m.Serve(ctx, r.MetricsAddr); err != nil {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	catalog, err := buildCatalog(settings, logger)
	if err != nil {
		return err
	}

	queue := input.NewQueue(input.NewPresser(), logging.Sub(logger, "inject"),
		input.WithErrorHandler(func(error) { m.InjectionFailed() }))
	defer queue.Close()

	hk := hotkey.NewManager(logging.Sub(logger, "hotkey"))
	sess, err := session.New(session.Options{
		Source:   input.NewSource(logging.Sub(logger, "input")),
		Injector: queue,
		Catalog:  catalog,
		Notifier: bus,
		Metrics:  m,
		Hotkeys:  hk,
		Logger:   sessionLogger(logger),
	})
	if err != nil {
		return err
	}
	defer saveLearned(settings.SignaturesFile, catalog, logger)
	defer sess.Close()

	applySettings(sess, settings)
	if settings.EnableOnStart || r.Enable {
		if err := sess.Install(); err != nil {
			logger.Error().Err(err).Msg("failed to enable game mode")
		}
	}

	var t *tray.Tray
	var menu *tray.Menu
	refresh := func() {
		if menu != nil {
			menu.Refresh()
		}
	}
	if !r.NoTray {
		t = tray.New("GameMode", "")
		menu = tray.NewMenu(t, sess, logger)
		menu.OnChange = func() { persist(mgr, sess, logger) }
		menu.OnQuit = stop
	}

	if settings.EscapeHotkey != "" {
		if _, err := hk.Register(settings.EscapeHotkey, func() {
			logger.Warn().Str("hotkey", settings.EscapeHotkey).Msg("escape hotkey pressed, disabling game mode")
			sess.Uninstall()
			refresh()
		}); err != nil {
			logger.Warn().Err(err).Msg("invalid escape hotkey")
		}
	}

	mgr.RegisterChangeCallback(func(s config.Settings) {
		applySettings(sess, s)
		refresh()
	})
	go func() {
		if err := mgr.Watch(ctx); err != nil {
			logger.Warn().Err(err).Msg("settings watcher stopped")
		}
	}()

	if t == nil {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		return nil
	}

	go func() {
		<-ctx.Done()
		t.Stop()
	}()
	t.Run()
	logger.Info().Msg("shutting down")
	return nil
}

// overrides applies the command-line flags on top of the persisted settings.
func (r *RunCmd) overrides(s config.Settings) (config.Settings, error) {
	if r.Profile != "" {
		p, err := remap.ParseProfile(r.Profile)
		if err != nil {
			return s, err
		}
		s.Profile = p
	}
	if r.Guard != "" {
		s.KeyboardGuard = r.Guard == "on"
	}
	if r.Debug {
		s.DebugLogging = true
	}
	return s, nil
}

// sessionLogger lets debug traces through whenever the debug flag is on,
// whatever the process log level.
func sessionLogger(logger *zerolog.Logger) *zerolog.Logger {
	l := logging.Sub(logger, "session").Level(min(logger.GetLevel(), zerolog.DebugLevel))
	return &l
}

func applySettings(sess *session.Session, s config.Settings) {
	sess.SetProfile(s.Profile)
	sess.SetKeyboardGuard(s.KeyboardGuard)
	sess.SetDebug(s.DebugLogging)
	sess.SetSwapDelay(s.SwapDelay())
}

func persist(mgr *config.Manager, sess *session.Session, logger *zerolog.Logger) {
	err := mgr.Update(func(s *config.Settings) {
		s.Profile = sess.Profile()
		s.KeyboardGuard = sess.KeyboardGuard()
		s.DebugLogging = sess.Debug()
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to save settings")
	}
}

// buildCatalog seeds the catalog from settings and the signatures file.
func buildCatalog(s config.Settings, logger *zerolog.Logger) (*signature.Catalog, error) {
	var seed []signature.Signature
	if s.VendorPresets {
		seed = signature.VendorPresets()
	}
	catalog, err := signature.NewCatalog(seed...)
	if err != nil {
		return nil, err
	}
	if s.SignaturesFile == "" {
		return catalog, nil
	}

	sigs, err := signature.Load(s.SignaturesFile)
	if err != nil {
		return nil, fmt.Errorf("load signatures: %w", err)
	}
	n, err := catalog.Merge(sigs)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", s.SignaturesFile).Int("loaded", n).Msg("signatures loaded")
	return catalog, nil
}

func saveLearned(path string, catalog *signature.Catalog, logger *zerolog.Logger) {
	if path == "" {
		return
	}
	learned := catalog.Learned()
	if err := signature.Save(path, learned); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to save signatures")
		return
	}
	logger.Info().Str("path", path).Int("count", len(learned)).Msg("signatures saved")
}
