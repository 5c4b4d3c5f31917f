// Package tray provides system tray functionality using getlantern/systray.
// Off Windows the tray is headless: the menu exists but nothing is drawn.
package tray

import (
	"sync"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID        int
	Title     string
	Tooltip   string
	Checkable bool
	Checked   bool
	Disabled  bool
	Callback  func()
	item      nativeItem
}

// nativeItem is the platform menu entry behind a MenuItem.
type nativeItem interface {
	Check()
	Uncheck()
	SetTitle(string)
}

// Tray manages the system tray icon and menu
type Tray struct {
	mu      sync.Mutex
	title   string
	tooltip string
	items   []*MenuItem
	ready   bool
	onExit  func()
	quitCh  chan struct{}
	stop    sync.Once
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		items:   make([]*MenuItem, 0),
		quitCh:  make(chan struct{}),
	}
}

// OnExit registers a function run after the tray loop has stopped.
func (t *Tray) OnExit(fn func()) {
	t.onExit = fn
}

// AddMenuItem adds a menu item to the tray
func (t *Tray) AddMenuItem(title string, callback func()) int {
	return t.add(&MenuItem{Title: title, Callback: callback})
}

// AddCheckbox adds a checkable menu item
func (t *Tray) AddCheckbox(title string, checked bool, callback func()) int {
	return t.add(&MenuItem{Title: title, Checkable: true, Checked: checked, Callback: callback})
}

// AddLabel adds a disabled informational item
func (t *Tray) AddLabel(title string) int {
	return t.add(&MenuItem{Title: title, Disabled: true})
}

func (t *Tray) add(mi *MenuItem) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi.ID = len(t.items)
	t.items = append(t.items, mi)
	return mi.ID
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, nil) // nil indicates separator
}

func (t *Tray) lookup(id int) *MenuItem {
	if id >= 0 && id < len(t.items) {
		return t.items[id]
	}
	return nil
}

// SetItemChecked sets the checked state of a menu item
func (t *Tray) SetItemChecked(id int, checked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.lookup(id)
	if mi == nil {
		return
	}
	mi.Checked = checked
	if mi.item != nil {
		if checked {
			mi.item.Check()
		} else {
			mi.item.Uncheck()
		}
	}
}

// ItemChecked reports the checked state of a menu item
func (t *Tray) ItemChecked(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.lookup(id)
	return mi != nil && mi.Checked
}

// SetItemTitle changes the text of a menu item
func (t *Tray) SetItemTitle(id int, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.lookup(id)
	if mi == nil {
		return
	}
	mi.Title = title
	if mi.item != nil {
		mi.item.SetTitle(title)
	}
}

// SetTooltip changes the icon tooltip
func (t *Tray) SetTooltip(tooltip string) {
	t.mu.Lock()
	ready := t.ready
	t.tooltip = tooltip
	t.mu.Unlock()
	if ready {
		setNativeTooltip(tooltip)
	}
}

// Tooltip returns the current icon tooltip
func (t *Tray) Tooltip() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tooltip
}

// Click runs the callback of a menu item as if it had been clicked
func (t *Tray) Click(id int) {
	t.mu.Lock()
	mi := t.lookup(id)
	t.mu.Unlock()
	if mi != nil && mi.Callback != nil && !mi.Disabled {
		mi.Callback()
	}
}
