// Package tray provides a system tray menu for the map reader server.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mapreader/internal/store"
)

// Tray represents the system tray application.
type Tray struct {
	onDashboard func()
	onQuit      func()
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuLastReading *systray.MenuItem
	menuLastSource  *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnDashboard sets the callback function to be called when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu, e.g. on a signal.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("MapReader")
	systray.SetTooltip("Map pointer reader")

	t.mu.Lock()
	t.menuLastReading = systray.AddMenuItem(LastReadingTitle(nil), "Last map reading")
	t.menuLastReading.Disable()
	t.menuLastSource = systray.AddMenuItem("Source: none", "Image of the last reading")
	t.menuLastSource.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in the browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit MapReader")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastReading updates the last reading display in the menu. It matches
// the app's reading callback signature.
func (t *Tray) SetLastReading(rd *store.Reading) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastReading == nil {
		return
	}
	t.menuLastReading.SetTitle(LastReadingTitle(rd))
	if rd != nil {
		t.menuLastSource.SetTitle("Source: " + rd.Source)
	}
}

// LastReadingTitle formats a reading for the menu.
func LastReadingTitle(rd *store.Reading) string {
	switch {
	case rd == nil:
		return "Last: none"
	case !rd.OK():
		return "Last: failed (" + rd.Kind + ")"
	default:
		return fmt.Sprintf("Last: (%.3f, %.3f) %.1f°", rd.TipX, rd.TipY, rd.Bearing)
	}
}
