//go:build !windows

package brightness

// Default returns the platform toggler.
func Default() Toggler { return NewBacklight("") }
