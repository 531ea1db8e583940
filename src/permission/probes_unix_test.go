//go:build unix

package permission

import (
	"errors"
	"testing"
)

func TestProbeDrawOverlay(t *testing.T) {
	tests := []struct {
		name    string
		display string
		wayland string
		granted bool
		err     error
	}{
		{"x11", ":0", "", true, nil},
		{"xwayland", ":1", "wayland-0", true, nil},
		{"wayland only", "", "wayland-0", false, errWaylandOnly},
		{"no display", "", "", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISPLAY", tt.display)
			t.Setenv("WAYLAND_DISPLAY", tt.wayland)
			got, err := probeDrawOverlay()
			if got != tt.granted || !errors.Is(err, tt.err) {
				t.Errorf("probeDrawOverlay() = %v, %v; expected %v, %v", got, err, tt.granted, tt.err)
			}
		})
	}
}
