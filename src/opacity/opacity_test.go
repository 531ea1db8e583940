package opacity

import (
	"math"
	"testing"
)

func TestManualEndpoints(t *testing.T) {
	tests := []struct {
		level int
		want  uint8
	}{
		{0, 255},
		{50, 128},
		{100, 0},
		{25, 191},
		{75, 64},
		{-10, 255},
		{150, 0},
	}
	for _, tt := range tests {
		if got := Manual(tt.level); got != tt.want {
			t.Errorf("Manual(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestManualMatchesFormulaAndIsMonotonic(t *testing.T) {
	prev := Manual(0)
	for level := 0; level <= 100; level++ {
		want := uint8(math.Round(255 * (1 - float64(level)/100)))
		got := Manual(level)
		if got != want {
			t.Fatalf("Manual(%d) = %d, want %d", level, got, want)
		}
		if got > prev {
			t.Fatalf("Manual not monotonic at level %d: %d > %d", level, got, prev)
		}
		prev = got
	}
}

func TestAmbientBuckets(t *testing.T) {
	tests := []struct {
		lux  float64
		want uint8
	}{
		{0, 166},
		{500, 166},
		{999.99, 166},
		{1000, 114},
		{2000, 114},
		{-5, 166},
		{math.NaN(), 166},
		{math.Inf(1), 114},
	}
	for _, tt := range tests {
		if got := Ambient(tt.lux); got != tt.want {
			t.Errorf("Ambient(%v) = %d, want %d", tt.lux, got, tt.want)
		}
	}
}

func TestToggle(t *testing.T) {
	if got := Toggle(255); got != 100 {
		t.Errorf("Toggle(255) = %d, want 100", got)
	}
	if got := Toggle(100); got != 255 {
		t.Errorf("Toggle(100) = %d, want 255", got)
	}
	if got := Toggle(166); got != 255 {
		t.Errorf("Toggle(166) = %d, want 255", got)
	}
}
