package permission

import (
	"os"
	"strings"
)

// Environment overrides, mostly for headless machines and tests.
const (
	EnvDrawOverlay   = "MOTION_OVERLAY_PERM_DRAW"
	EnvWriteSettings = "MOTION_OVERLAY_PERM_WRITE_SETTINGS"
	EnvAccessibility = "MOTION_OVERLAY_PERM_ACCESSIBILITY"
)

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// DefaultProbes returns the platform probes, each overridable by its env flag.
func DefaultProbes(lookup LookupEnvFunc) Probes {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return Probes{
		DrawOverlay:   withOverride(lookup, EnvDrawOverlay, probeDrawOverlay),
		WriteSettings: withOverride(lookup, EnvWriteSettings, probeWriteSettings),
		Accessibility: withOverride(lookup, EnvAccessibility, probeAccessibility),
	}
}

func withOverride(lookup LookupEnvFunc, key string, fallback Probe) Probe {
	return func() (bool, error) {
		if value, ok := lookup(key); ok {
			if granted, known := interpretFlag(value); known {
				return granted, nil
			}
		}
		return fallback()
	}
}

func interpretFlag(value string) (granted bool, known bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "granted", "allow", "allowed", "yes", "true", "1":
		return true, true
	case "denied", "no", "false", "blocked", "0":
		return false, true
	default:
		return false, false
	}
}
