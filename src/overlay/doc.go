// Package overlay manages platform-level, always-on-top, click-through
// translucent windows.
//
// A Surface is owned by exactly one component. The platform window itself
// comes from a Backend: X11 (override-redirect window, compositor opacity,
// empty input shape), Windows (layered transparent popup) or headless.
package overlay
