package overlay

import (
	"fmt"
	"image"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/kbinani/screenshot"

	"motion-overlay/src/opacity"
)

const (
	BackendAuto     = "auto"
	BackendX11      = "x11"
	BackendWindows  = "windows"
	BackendHeadless = "headless"
)

// NewBackend resolves a backend by name. "auto" picks Windows on Windows,
// X11 when DISPLAY is set, and headless otherwise.
func NewBackend(kind string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendAuto:
		if runtime.GOOS == "windows" {
			return newWindowsBackend()
		}
		if os.Getenv("DISPLAY") != "" {
			return newX11Backend(""), nil
		}
		log.Printf("overlay: no display server detected, using headless backend")
		return NewHeadless(), nil
	case BackendX11:
		return newX11Backend(""), nil
	case BackendWindows:
		return newWindowsBackend()
	case BackendHeadless:
		return NewHeadless(), nil
	default:
		return nil, fmt.Errorf("overlay: unknown backend %q", kind)
	}
}

// Coverage returns the union of all active display bounds. It returns an
// empty rectangle when no display can be enumerated.
func Coverage() image.Rectangle {
	var area image.Rectangle
	n := screenshot.NumActiveDisplays()
	for i := 0; i < n; i++ {
		area = area.Union(screenshot.GetDisplayBounds(i))
	}
	return area
}

// Headless is a Backend without a display. It keeps the last color per
// handle and logs changes, which is enough for servers and CI.
type Headless struct {
	mu      sync.Mutex
	handles map[*headlessHandle]struct{}
}

func NewHeadless() *Headless {
	return &Headless{handles: make(map[*headlessHandle]struct{})}
}

func (b *Headless) Name() string { return BackendHeadless }

func (b *Headless) Open(alpha uint8, rgb opacity.RGB) (Handle, error) {
	h := &headlessHandle{backend: b}
	b.mu.Lock()
	b.handles[h] = struct{}{}
	b.mu.Unlock()
	log.Printf("overlay: headless surface opened alpha=%d rgb=%v", alpha, rgb)
	return h, nil
}

// OpenCount reports how many headless handles are currently open.
func (b *Headless) OpenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// Drop destroys every open window behind its owner's back, the way a
// display server restart does.
func (b *Headless) Drop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for h := range b.handles {
		h.lost = true
		delete(b.handles, h)
	}
	log.Printf("overlay: headless surfaces dropped")
}

type headlessHandle struct {
	backend *Headless
	closed  bool
	lost    bool
}

func (h *headlessHandle) SetColor(alpha uint8, rgb opacity.RGB) error {
	if h.closed || h.Lost() {
		return ErrNotAttached
	}
	log.Printf("overlay: headless color alpha=%d rgb=%v", alpha, rgb)
	return nil
}

func (h *headlessHandle) Lost() bool {
	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	return h.lost
}

func (h *headlessHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.backend.mu.Lock()
	delete(h.backend.handles, h)
	h.backend.mu.Unlock()
	return nil
}
