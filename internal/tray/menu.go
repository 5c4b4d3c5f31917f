package tray

import (
	"fmt"

	"gamemode/internal/remap"

	"github.com/rs/zerolog"
)

// Controls is the game-mode session as seen from the menu.
type Controls interface {
	Install() error
	Uninstall()
	Installed() bool
	Profile() remap.Profile
	SetProfile(remap.Profile)
	KeyboardGuard() bool
	SetKeyboardGuard(bool)
	Learning() bool
	ArmLearning(bool)
	Debug() bool
	SetDebug(bool)
}

// Menu is the game-mode context menu built on a Tray.
type Menu struct {
	tray *Tray
	ctl  Controls
	log  *zerolog.Logger

	// OnChange runs after any menu action changed the session.
	OnChange func()
	// OnQuit runs when Quit is clicked, before the tray stops.
	OnQuit func()

	enabled  int
	profiles map[remap.Profile]int
	guard    int
	learning int
	debug    int
	quit     int
}

// NewMenu adds the game-mode items to t.
func NewMenu(t *Tray, ctl Controls, logger *zerolog.Logger) *Menu {
	m := &Menu{tray: t, ctl: ctl, log: logger, profiles: make(map[remap.Profile]int)}

	m.enabled = t.AddCheckbox("Game mode", ctl.Installed(), m.toggleEnabled)
	t.AddSeparator()
	for _, p := range remap.Profiles() {
		m.profiles[p] = t.AddCheckbox(profileTitle(p), ctl.Profile() == p, func() { m.selectProfile(p) })
	}
	t.AddSeparator()
	m.guard = t.AddCheckbox("Block Windows key", ctl.KeyboardGuard(), func() {
		ctl.SetKeyboardGuard(!ctl.KeyboardGuard())
		m.changed()
	})
	m.learning = t.AddCheckbox("Learn buttons", ctl.Learning(), func() {
		ctl.ArmLearning(!ctl.Learning())
		m.changed()
	})
	m.debug = t.AddCheckbox("Debug logging", ctl.Debug(), func() {
		ctl.SetDebug(!ctl.Debug())
		m.changed()
	})
	t.AddSeparator()
	m.quit = t.AddMenuItem("Quit", func() {
		if m.OnQuit != nil {
			m.OnQuit()
		}
		t.Stop()
	})

	m.Refresh()
	return m
}

func profileTitle(p remap.Profile) string {
	if p == remap.ProfileDisabled {
		return "No remap"
	}
	return fmt.Sprintf("Side buttons: %s", p.Describe())
}

func (m *Menu) toggleEnabled() {
	if m.ctl.Installed() {
		m.ctl.Uninstall()
	} else if err := m.ctl.Install(); err != nil {
		m.log.Error().Err(err).Msg("failed to enable game mode")
	}
	m.changed()
}

func (m *Menu) selectProfile(p remap.Profile) {
	m.ctl.SetProfile(p)
	m.changed()
}

func (m *Menu) changed() {
	m.Refresh()
	if m.OnChange != nil {
		m.OnChange()
	}
}

// Refresh syncs check marks and the tooltip with the session.
func (m *Menu) Refresh() {
	m.tray.SetItemChecked(m.enabled, m.ctl.Installed())
	current := m.ctl.Profile()
	for p, id := range m.profiles {
		m.tray.SetItemChecked(id, p == current)
	}
	m.tray.SetItemChecked(m.guard, m.ctl.KeyboardGuard())
	m.tray.SetItemChecked(m.learning, m.ctl.Learning())
	m.tray.SetItemChecked(m.debug, m.ctl.Debug())
	m.tray.SetTooltip(m.status())
}

func (m *Menu) status() string {
	if !m.ctl.Installed() {
		return "Game mode: off"
	}
	return fmt.Sprintf("Game mode: on (%s)", m.ctl.Profile().Describe())
}
