// Package tray is the resident's foreground host: the system tray icon and
// its menu. Clicks are posted into the event loop; the loop pushes state
// back through Update.
package tray

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"motion-overlay/src/messages"
	"motion-overlay/src/popup"
)

// Config wires a Tray.
type Config struct {
	Title   string
	Tooltip string
	// Post delivers a menu action into the event loop.
	Post func(messages.Message) bool
	// OnExit runs once the tray has shut down (Quit or Destroy).
	OnExit func()
}

// Tray owns the systray menu.
type Tray struct {
	cfg Config

	mu         sync.Mutex
	ready      bool
	pending    *messages.Status
	iconActive *bool
	aboutExtra []string

	status      *systray.MenuItem
	manual      *systray.MenuItem
	sensor      *systray.MenuItem
	disable     *systray.MenuItem
	levelItems  map[int]*systray.MenuItem
	permissions *systray.MenuItem
}

// presetLevels are the manual levels offered in the menu.
var presetLevels = []int{0, 25, 50, 75, 100}

func New(cfg Config) (*Tray, error) {
	if cfg.Post == nil {
		return nil, fmt.Errorf("tray: Post is required")
	}
	if cfg.Title == "" {
		cfg.Title = "Motion Overlay"
	}
	return &Tray{cfg: cfg, levelItems: map[int]*systray.MenuItem{}}, nil
}

// Run starts the tray and blocks until it exits. Call it from the main
// goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy removes the tray icon.
func (t *Tray) Destroy() {
	systray.Quit()
}

// SetAboutExtra adds a line to the About text, e.g. the command port.
func (t *Tray) SetAboutExtra(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.aboutExtra = append(t.aboutExtra, line)
}

func (t *Tray) onReady() {
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)
	systray.SetIcon(iconBytes(false))

	t.status = systray.AddMenuItem("Overlay: off", "Current overlay state")
	t.status.Disable()
	systray.AddSeparator()

	t.manual = systray.AddMenuItem("Manual filter", "Overlay at the chosen level")
	t.sensor = systray.AddMenuItem("Adaptive filter (light sensor)", "Overlay follows ambient light")
	t.disable = systray.AddMenuItem("Turn off", "Remove the overlay")
	t.on(t.manual, messages.EnableRequested{Mode: "manual"})
	t.on(t.sensor, messages.EnableRequested{Mode: "sensor"})
	t.on(t.disable, messages.DisableRequested{})

	levels := systray.AddMenuItem("Level", "Manual level (higher is more transparent)")
	for _, lvl := range presetLevels {
		item := levels.AddSubMenuItem(fmt.Sprintf("%d%%", lvl), "")
		t.levelItems[lvl] = item
		t.on(item, messages.LevelChanged{Level: lvl})
	}
	t.on(levels.AddSubMenuItem("Stronger", "Lower the level by 10"), messages.LevelChanged{Level: -10, Delta: true})
	t.on(levels.AddSubMenuItem("Weaker", "Raise the level by 10"), messages.LevelChanged{Level: 10, Delta: true})

	systray.AddSeparator()
	t.on(systray.AddMenuItem("Toggle filter", "Flip between full and light filter"), messages.ActionRequested{Action: messages.ActionAdjustFilter})
	t.on(systray.AddMenuItem("Toggle brightness", "Flip screen brightness between full and half"), messages.ActionRequested{Action: messages.ActionAdjustBrightness})

	systray.AddSeparator()
	t.permissions = systray.AddMenuItem("", "Grant these in your desktop settings")
	t.permissions.Disable()
	t.permissions.Hide()
	t.on(systray.AddMenuItem("Re-check permissions", "Read permissions again after granting them"), messages.RecheckPermissions{})

	about := systray.AddMenuItem("About", "About this tool")
	quit := systray.AddMenuItem("Quit", "Quit the application")
	go func() {
		for range about.ClickedCh {
			_ = popup.Show(t.aboutText())
		}
	}()
	go func() {
		<-quit.ClickedCh
		log.Printf("tray: quit requested")
		systray.Quit()
	}()

	t.mu.Lock()
	t.ready = true
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	if pending != nil {
		t.Update(*pending)
	}
}

func (t *Tray) onExit() {
	log.Printf("tray: exited")
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// on posts msg every time item is clicked.
func (t *Tray) on(item *systray.MenuItem, msg messages.Message) {
	go func() {
		for range item.ClickedCh {
			if !t.cfg.Post(msg) {
				return
			}
		}
	}()
}

// Update reflects st in the menu. Safe from any goroutine; updates that
// arrive before the tray is ready are applied once it is.
func (t *Tray) Update(st messages.Status) {
	t.mu.Lock()
	if !t.ready {
		t.pending = &st
		t.mu.Unlock()
		return
	}
	changeIcon := t.iconActive == nil || *t.iconActive != st.Attached
	if changeIcon {
		active := st.Attached
		t.iconActive = &active
	}
	t.mu.Unlock()

	if changeIcon {
		systray.SetIcon(iconBytes(st.Attached))
	}
	t.status.SetTitle(statusLabel(st))
	systray.SetTooltip(tooltip(t.cfg.Tooltip, st))

	setChecked(t.manual, st.State == "manual-active")
	setChecked(t.sensor, st.State == "sensor-active")
	if st.SensorAvailable {
		t.sensor.Enable()
	} else {
		t.sensor.Disable()
	}
	for lvl, item := range t.levelItems {
		setChecked(item, lvl == st.Level)
	}

	if label := permissionsLabel(st.Missing); label != "" {
		t.permissions.SetTitle(label)
		t.permissions.Show()
	} else {
		t.permissions.Hide()
	}
}

func (t *Tray) aboutText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := append([]string{t.cfg.Title + ": warm overlay against motion sickness"}, t.aboutExtra...)
	return strings.Join(lines, "\n")
}

func setChecked(item *systray.MenuItem, on bool) {
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func statusLabel(st messages.Status) string {
	switch st.State {
	case "manual-active":
		return fmt.Sprintf("Overlay: manual, level %d%%", st.Level)
	case "sensor-active":
		return "Overlay: adaptive"
	default:
		return "Overlay: off"
	}
}

func tooltip(base string, st messages.Status) string {
	if base == "" {
		base = "Motion Overlay"
	}
	label := strings.TrimPrefix(statusLabel(st), "Overlay: ")
	if st.Background {
		label += ", background on"
	}
	return base + " (" + label + ")"
}

func permissionsLabel(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return "Missing: " + strings.Join(missing, ", ")
}
