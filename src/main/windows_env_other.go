//go:build !windows

package main

import (
	"log"

	"motion-overlay/src/overlay"
)

// X11 has no process DPI mode; the overlay is sized in physical pixels.
func enableDPIAwareness() {}

func logMonitorConfiguration() {
	log.Printf("MONITOR: overlay coverage %v", overlay.Coverage())
}
