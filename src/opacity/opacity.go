// Package opacity maps control inputs to overlay alpha values.
package opacity

import "math"

// RGB is an opaque 8-bit color triple.
type RGB struct {
	R, G, B uint8
}

// Color is the fixed warm-orange tint painted by every overlay.
var Color = RGB{R: 255, G: 100, B: 0}

const (
	// DefaultLevel is the manual level used before anything was persisted.
	DefaultLevel = 50

	// LuxThreshold separates the dim and bright ambient buckets.
	LuxThreshold = 1000.0

	// DimAlpha and BrightAlpha are the ambient bucket values. They are kept
	// as literals: 166 and 114 are the published compatibility values.
	DimAlpha    uint8 = 166
	BrightAlpha uint8 = 114

	// ToggleHigh and ToggleLow are the two anchors of the external dim toggle.
	ToggleHigh uint8 = 255
	ToggleLow  uint8 = 100

	// BackgroundAlpha is the fixed alpha of the background overlay.
	BackgroundAlpha uint8 = 100
)

// ClampLevel bounds a manual level to [0,100].
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// Manual returns round(255*(1-level/100)). Out-of-range levels are clamped.
func Manual(level int) uint8 {
	level = ClampLevel(level)
	return uint8(math.Round(255 * (1 - float64(level)/100)))
}

// Ambient is the two-bucket step used in sensor-adaptive mode:
// 166 below LuxThreshold, 114 at or above it. Negative or NaN readings count as darkness.
func Ambient(lux float64) uint8 {
	if math.IsNaN(lux) || lux < 0 {
		lux = 0
	}
	if lux < LuxThreshold {
		return DimAlpha
	}
	return BrightAlpha
}

// Toggle flips between ToggleHigh and ToggleLow. Any alpha other than
// ToggleHigh goes to ToggleHigh.
func Toggle(current uint8) uint8 {
	if current == ToggleHigh {
		return ToggleLow
	}
	return ToggleHigh
}
