// Package router delivers external actions to whichever overlay owner is
// currently registered.
package router

import (
	"fmt"
	"log"
	"sync"

	"motion-overlay/src/messages"
)

// Target receives filter toggles. The foreground controller implements it.
type Target interface {
	OnExternalToggle()
}

// BrightnessToggler flips screen brightness between full and half.
type BrightnessToggler interface {
	Toggle() error
}

// Router holds the single registered target. Registration is explicit and
// cleared on teardown; there is no global instance.
type Router struct {
	mu         sync.RWMutex
	target     Target
	brightness BrightnessToggler
}

// NewRouter creates a router. brightness may be nil when the host has no
// adjustable backlight.
func NewRouter(brightness BrightnessToggler) *Router {
	return &Router{brightness: brightness}
}

// Register makes t the current target, replacing any previous one.
func (r *Router) Register(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = t
	log.Printf("Router: registered %T", t)
}

// Unregister clears the target if it is still t.
func (r *Router) Unregister(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == t {
		r.target = nil
		log.Printf("Router: unregistered %T", t)
	}
}

// Registered reports whether a target is present.
func (r *Router) Registered() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.target != nil
}

// Dispatch routes one action. ADJUST_FILTER without a target is a no-op.
func (r *Router) Dispatch(a messages.Action) error {
	r.mu.RLock()
	target, brightness := r.target, r.brightness
	r.mu.RUnlock()

	log.Printf("Router: dispatch %s", a)
	switch a {
	case messages.ActionAdjustFilter:
		if target == nil {
			log.Printf("Router: no target for %s", a)
			return nil
		}
		target.OnExternalToggle()
		return nil
	case messages.ActionAdjustBrightness:
		if brightness == nil {
			log.Printf("Router: no brightness control for %s", a)
			return nil
		}
		if err := brightness.Toggle(); err != nil {
			return fmt.Errorf("adjust brightness: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", messages.ErrUnknownAction, a)
	}
}
