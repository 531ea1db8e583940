// Package background runs the second overlay owner, the one bound to the
// desktop accessibility bus. It keeps its own surface at a fixed alpha and
// never touches the foreground controller.
package background

import (
	"context"
	"errors"
	"log"
	"time"

	"motion-overlay/src/opacity"
	"motion-overlay/src/overlay"
	"motion-overlay/src/permission"
)

// DefaultPollInterval is how often Watch re-reads the accessibility state.
const DefaultPollInterval = 2 * time.Second

// Service is the accessibility-bound overlay owner.
type Service struct {
	surface *overlay.Surface
	notify  func(string)
}

// New returns a service over its own surface. notify may be nil.
func New(surface *overlay.Surface, notify func(string)) *Service {
	if notify == nil {
		notify = func(string) {}
	}
	return &Service{surface: surface, notify: notify}
}

func (s *Service) Name() string { return "background" }

func (s *Service) Surface() *overlay.Surface { return s.surface }

// OnEnabled attaches the overlay at the fixed background alpha. A failure is
// reported to the user and returned, but the service keeps running.
func (s *Service) OnEnabled() error {
	err := s.surface.Attach(opacity.BackgroundAlpha, opacity.Color)
	switch {
	case err == nil:
		log.Printf("background: overlay attached")
		return nil
	case errors.Is(err, overlay.ErrAlreadyAttached):
		return nil
	default:
		log.Printf("background: attach failed: %v", err)
		s.notify("Background overlay unavailable: " + err.Error())
		return err
	}
}

// OnDisabled detaches the overlay. Idempotent.
func (s *Service) OnDisabled() {
	if err := s.surface.Detach(); err != nil {
		log.Printf("background: detach: %v", err)
	}
}

// Watch polls the accessibility probe and calls emit on every edge,
// starting with the initial state when it is enabled. It returns when ctx
// is done. emit typically posts into the event loop.
func Watch(ctx context.Context, a11y permission.Probe, interval time.Duration, emit func(enabled bool)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := false
	check := func() {
		now := probe(a11y)
		if now != last {
			last = now
			log.Printf("background: accessibility enabled=%v", now)
			emit(now)
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

func probe(p permission.Probe) (ok bool) {
	if p == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	granted, err := p()
	return err == nil && granted
}
