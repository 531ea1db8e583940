//go:build unix

package permission

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/godbus/dbus/v5"
	"golang.org/x/sys/unix"
)

const (
	a11yBusName  = "org.a11y.Bus"
	a11yBusPath  = "/org/a11y/bus"
	a11yEnabled  = "org.a11y.Status.IsEnabled"
	backlightDir = "/sys/class/backlight"
)

// errWaylandOnly means a Wayland session without XWayland. The overlay
// window is an X11 window, so nothing can be drawn there.
var errWaylandOnly = errors.New("wayland session without XWayland (DISPLAY unset)")

// probeDrawOverlay checks for an X11 display, native or XWayland.
func probeDrawOverlay() (bool, error) {
	if os.Getenv("DISPLAY") != "" {
		return true, nil
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return false, errWaylandOnly
	}
	return false, nil
}

// probeWriteSettings checks that at least one backlight brightness node is writable.
func probeWriteSettings() (bool, error) {
	nodes, err := filepath.Glob(filepath.Join(backlightDir, "*", "brightness"))
	if err != nil {
		return false, err
	}
	for _, node := range nodes {
		if unix.Access(node, unix.W_OK) == nil {
			return true, nil
		}
	}
	return false, nil
}

// probeAccessibility asks the AT-SPI bus launcher whether assistive
// technologies are enabled for the session.
func probeAccessibility() (bool, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return false, err
	}
	v, err := conn.Object(a11yBusName, dbus.ObjectPath(a11yBusPath)).GetProperty(a11yEnabled)
	if err != nil {
		return false, err
	}
	enabled, ok := v.Value().(bool)
	if !ok {
		return false, errors.New("unexpected IsEnabled type")
	}
	return enabled, nil
}
