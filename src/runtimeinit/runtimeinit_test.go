package runtimeinit

import (
	"path/filepath"
	"testing"

	"motion-overlay/src/config"
	"motion-overlay/src/controller"
	"motion-overlay/src/overlay"
)

func TestBootstrapHeadless(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	t.Setenv("STATE_DIR", dir)
	t.Setenv("PAUSE_BEHAVIOR", "teardown")

	var loggedTo string
	env := map[string]string{
		"MOTION_OVERLAY_PERM_DRAW":          "granted",
		"MOTION_OVERLAY_PERM_ACCESSIBILITY": "denied",
	}
	rt, err := Bootstrap(Options{
		LoadOptions: config.LoadOptions{BackendOverride: "headless", AmbientSourceOverride: "none"},
		SetupLogging: func(enable bool, d string) {
			loggedTo = d
		},
		LookupEnv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if loggedTo != dir {
		t.Errorf("Expected logging in %s, got %s", dir, loggedTo)
	}
	if rt.Backend.Name() != overlay.BackendHeadless {
		t.Errorf("Expected headless backend, got %s", rt.Backend.Name())
	}
	if rt.Sensor.Available() {
		t.Errorf("Expected no sensor with AMBIENT_SOURCE=none")
	}
	if rt.Pause != controller.PauseTeardown {
		t.Errorf("Expected teardown pause behavior, got %v", rt.Pause)
	}
	if rt.Prefs.Level() != 50 {
		t.Errorf("Expected default level 50, got %d", rt.Prefs.Level())
	}
	if rt.Gate.IsAuthorized() {
		t.Errorf("Expected gate to report missing accessibility")
	}
	if !rt.Gate.CanDrawOverlay() {
		t.Errorf("Expected draw-overlay granted by override")
	}
}
