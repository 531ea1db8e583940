//go:build windows

package permission

// Windows has no per-application gate for topmost layered windows, backlight
// writes go through the display driver, and the overlay does not need an
// accessibility grant. Every probe reports granted.

func probeDrawOverlay() (bool, error) { return true, nil }

func probeWriteSettings() (bool, error) { return true, nil }

func probeAccessibility() (bool, error) { return true, nil }
