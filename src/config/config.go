package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPathEnvVar = "MOTION_OVERLAY_ENV"

	PauseBehaviorEnvVar = "PAUSE_BEHAVIOR"
	PausePersist        = "persist"
	PauseTeardown       = "teardown"

	AmbientSourceEnvVar = "AMBIENT_SOURCE"
	BackendEnvVar       = "OVERLAY_BACKEND"

	DefaultToggleHotkey = "Ctrl+Alt+O"
	DefaultFilterHotkey = "Ctrl+Alt+F"
	DefaultDimHotkey    = "Ctrl+Alt+Up"
	DefaultBrightHotkey = "Ctrl+Alt+Down"
	DefaultAmbientPoll  = time.Second
)

type LoadOptions struct {
	PauseBehaviorOverride string
	AmbientSourceOverride string
	BackendOverride       string
	DisableBackground     bool
}

type Config struct {
	EnableFileLogging    bool
	ToggleHotkey         string
	FilterHotkey         string
	DimHotkey            string
	BrightenHotkey       string
	PauseBehavior        string
	AmbientSource        string
	AmbientPoll          time.Duration
	RequireWriteSettings bool
	BackgroundOverlay    bool
	Backend              string
	StateDir             string
}

// ErrInvalidValue is returned by LoadWithOptions for an unrecognised choice.
var ErrInvalidValue = errors.New("config: invalid value")

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use MOTION_OVERLAY_ENV as a path to a config file
	// Values already in the process environment win over the file.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	pollMs := int(DefaultAmbientPoll / time.Millisecond)
	if v := os.Getenv("AMBIENT_POLL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 100 {
			pollMs = n
		}
	}

	pause, err := resolvePauseBehavior(firstNonEmpty(opts.PauseBehaviorOverride, os.Getenv(PauseBehaviorEnvVar)))
	if err != nil {
		return nil, err
	}
	source, err := resolveChoice(AmbientSourceEnvVar, firstNonEmpty(opts.AmbientSourceOverride, os.Getenv(AmbientSourceEnvVar)), "auto", "dbus", "sysfs", "none")
	if err != nil {
		return nil, err
	}
	backend, err := resolveChoice(BackendEnvVar, firstNonEmpty(opts.BackendOverride, os.Getenv(BackendEnvVar)), "auto", "x11", "windows", "headless")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		EnableFileLogging:    getBool("ENABLE_FILE_LOGGING", false),
		ToggleHotkey:         getEnvWithDefault("HOTKEY_TOGGLE", DefaultToggleHotkey),
		FilterHotkey:         getEnvWithDefault("HOTKEY_FILTER", DefaultFilterHotkey),
		DimHotkey:            getEnvWithDefault("HOTKEY_DIM", DefaultDimHotkey),
		BrightenHotkey:       getEnvWithDefault("HOTKEY_BRIGHTEN", DefaultBrightHotkey),
		PauseBehavior:        pause,
		AmbientSource:        source,
		AmbientPoll:          time.Duration(pollMs) * time.Millisecond,
		RequireWriteSettings: getBool("REQUIRE_WRITE_SETTINGS", false),
		BackgroundOverlay:    getBool("BACKGROUND_OVERLAY", true) && !opts.DisableBackground,
		Backend:              backend,
		StateDir:             resolveStateDir(),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolveStateDir returns STATE_DIR, or <user config dir>/motion-overlay.
func resolveStateDir() string {
	if dir := strings.TrimSpace(os.Getenv("STATE_DIR")); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "motion-overlay")
	}
	return "."
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func resolvePauseBehavior(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case PausePersist, "":
		return PausePersist, nil
	case PauseTeardown, "detach":
		return PauseTeardown, nil
	default:
		return "", fmt.Errorf("%w: %s=%q (want persist or teardown)", ErrInvalidValue, PauseBehaviorEnvVar, value)
	}
}

// resolveChoice returns value lowercased when it is one of allowed. Empty
// means allowed[0].
func resolveChoice(key, value string, allowed ...string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return allowed[0], nil
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s=%q (want one of %s)", ErrInvalidValue, key, value, strings.Join(allowed, ", "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
