//go:build windows

package main

import (
	"log"

	"golang.org/x/sys/windows"

	"motion-overlay/src/overlay"
)

const (
	processPerMonitorDPIAware = 2

	smCMonitors       = 80
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
)

var (
	shcore = windows.NewLazySystemDLL("Shcore.dll")
	user32 = windows.NewLazySystemDLL("user32.dll")
)

// enableDPIAwareness makes the overlay cover physical pixels on scaled displays.
func enableDPIAwareness() {
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor awareness set")
		} else {
			log.Printf("DPI: SetProcessDpiAwareness failed, code %d", ret)
		}
		return
	}

	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		log.Printf("DPI: no DPI awareness API available")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
		log.Printf("DPI: SetProcessDPIAware failed")
		return
	}
	log.Printf("DPI: system awareness set (fallback)")
}

// logMonitorConfiguration compares the OS virtual screen with the area the
// overlay will cover.
func logMonitorConfiguration() {
	metric := user32.NewProc("GetSystemMetrics")
	get := func(idx int) int32 {
		ret, _, _ := metric.Call(uintptr(idx))
		return int32(ret)
	}
	log.Printf("MONITOR: %d monitors, virtual screen x:%d y:%d w:%d h:%d",
		get(smCMonitors), get(smXVirtualScreen), get(smYVirtualScreen),
		get(smCXVirtualScreen), get(smCYVirtualScreen))
	log.Printf("MONITOR: overlay coverage %v", overlay.Coverage())
}
