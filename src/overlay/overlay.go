package overlay

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"motion-overlay/src/opacity"
)

var (
	// ErrAlreadyAttached is returned by Attach when the surface already holds a handle.
	ErrAlreadyAttached = errors.New("overlay: surface already attached")
	// ErrPermissionDenied is returned by Attach when drawing over other windows is not allowed.
	ErrPermissionDenied = errors.New("overlay: draw-overlay permission denied")
	// ErrPlatformRejected wraps backend failures while creating the platform window.
	ErrPlatformRejected = errors.New("overlay: platform rejected surface")
	// ErrNotAttached is returned by SetColor on a detached surface.
	ErrNotAttached = errors.New("overlay: surface not attached")
)

// Handle is one live platform window. Handles are only used by the Surface
// that opened them.
type Handle interface {
	SetColor(alpha uint8, rgb opacity.RGB) error
	Close() error
}

// lostHandle is implemented by handles whose window can disappear without
// Close, e.g. when the display server restarts.
type lostHandle interface {
	Lost() bool
}

// Backend creates always-on-top, input-transparent, translucent windows
// covering every display.
type Backend interface {
	Name() string
	Open(alpha uint8, rgb opacity.RGB) (Handle, error)
}

// State is a point-in-time view of a Surface.
type State struct {
	Attached bool
	Alpha    uint8
	Color    opacity.RGB
}

// Surface owns at most one platform handle. It moves Detached -> Attached ->
// Detached; SetColor is only allowed while attached.
type Surface struct {
	owner   string
	backend Backend
	canDraw func() bool

	mu     sync.Mutex
	handle Handle
	alpha  uint8
	color  opacity.RGB
}

// NewSurface returns a detached surface. canDraw reports the draw-overlay
// permission at attach time; nil means always allowed.
func NewSurface(owner string, backend Backend, canDraw func() bool) *Surface {
	return &Surface{owner: owner, backend: backend, canDraw: canDraw}
}

// Owner returns the name of the component that owns this surface.
func (s *Surface) Owner() string { return s.owner }

// Attach opens the platform window with the given initial color.
func (s *Surface) Attach(alpha uint8, rgb opacity.RGB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.liveLocked() {
		return ErrAlreadyAttached
	}
	if s.canDraw != nil && !s.canDraw() {
		return ErrPermissionDenied
	}
	h, err := s.backend.Open(alpha, rgb)
	if err != nil {
		log.Printf("overlay[%s]: %s backend refused surface: %v", s.owner, s.backend.Name(), err)
		return fmt.Errorf("%w: %v", ErrPlatformRejected, err)
	}
	s.handle = h
	s.alpha = alpha
	s.color = rgb
	log.Printf("overlay[%s]: attached via %s alpha=%d", s.owner, s.backend.Name(), alpha)
	return nil
}

// SetColor recolors the live window without re-attaching.
func (s *Surface) SetColor(alpha uint8, rgb opacity.RGB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveLocked() {
		return ErrNotAttached
	}
	if alpha == s.alpha && rgb == s.color {
		return nil
	}
	if err := s.handle.SetColor(alpha, rgb); err != nil {
		return fmt.Errorf("overlay[%s]: set color: %w", s.owner, err)
	}
	s.alpha = alpha
	s.color = rgb
	return nil
}

// Detach releases the platform window. Detaching a detached surface is a no-op.
func (s *Surface) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return nil
	}
	h := s.handle
	s.handle = nil
	s.alpha = 0
	log.Printf("overlay[%s]: detached", s.owner)
	if err := h.Close(); err != nil {
		return fmt.Errorf("overlay[%s]: close: %w", s.owner, err)
	}
	return nil
}

// Attached reports whether a platform handle is live.
func (s *Surface) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked()
}

// liveLocked drops a handle whose window the platform destroyed.
func (s *Surface) liveLocked() bool {
	if s.handle == nil {
		return false
	}
	if lh, ok := s.handle.(lostHandle); ok && lh.Lost() {
		log.Printf("overlay[%s]: platform window lost", s.owner)
		s.handle = nil
		s.alpha = 0
		return false
	}
	return true
}

// State returns the current attachment and color. Alpha is zero when detached.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Attached: s.liveLocked(), Alpha: s.alpha, Color: s.color}
}

// Owner is anything that exclusively owns one overlay surface. The foreground
// controller and the background service are both owners; neither touches
// the other's surface.
type Owner interface {
	Name() string
	Surface() *Surface
}
