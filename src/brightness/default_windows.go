//go:build windows

package brightness

import "log"

// Default returns the platform toggler.
func Default() Toggler { return unsupported{} }

type unsupported struct{}

// Panel brightness on Windows is owned by the display driver; there is no
// sysfs equivalent to write to.
func (unsupported) Toggle() error {
	log.Printf("brightness: not supported on this platform")
	return ErrNoBacklight
}
