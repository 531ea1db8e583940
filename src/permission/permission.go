// Package permission tracks the OS authorizations an overlay needs.
package permission

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// Permission identifies one required OS authorization.
type Permission int

const (
	DrawOverlay Permission = iota
	WriteSettings
	Accessibility
)

func (p Permission) String() string {
	switch p {
	case DrawOverlay:
		return "draw-overlay"
	case WriteSettings:
		return "write-settings"
	case Accessibility:
		return "accessibility"
	default:
		return fmt.Sprintf("permission(%d)", int(p))
	}
}

// Set is the last observed state of every permission.
type Set struct {
	DrawOverlay   bool
	WriteSettings bool
	Accessibility bool
}

// Probe answers whether one permission is currently granted.
type Probe func() (bool, error)

// Probes bundles one probe per permission. A nil probe reports "not granted".
type Probes struct {
	DrawOverlay   Probe
	WriteSettings Probe
	Accessibility Probe
}

// Gate queries and caches the permission set. Authorization requires
// DrawOverlay and Accessibility, plus WriteSettings when the gate is built
// for the manual-brightness variant.
type Gate struct {
	probes       Probes
	requireWrite bool

	mu  sync.Mutex
	set Set
}

// NewGate builds a gate and performs an initial refresh.
func NewGate(probes Probes, requireWriteSettings bool) *Gate {
	g := &Gate{probes: probes, requireWrite: requireWriteSettings}
	g.Refresh()
	return g
}

// Refresh re-reads every permission from the OS.
func (g *Gate) Refresh() Set {
	set := Set{
		DrawOverlay:   ask(DrawOverlay, g.probes.DrawOverlay),
		WriteSettings: ask(WriteSettings, g.probes.WriteSettings),
		Accessibility: ask(Accessibility, g.probes.Accessibility),
	}
	g.mu.Lock()
	changed := set != g.set
	g.set = set
	g.mu.Unlock()
	if changed {
		log.Printf("permission: refreshed draw=%v write=%v a11y=%v", set.DrawOverlay, set.WriteSettings, set.Accessibility)
	}
	return set
}

// Current returns the set observed by the last Refresh.
func (g *Gate) Current() Set {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.set
}

// IsAuthorized reports whether the last refresh satisfied every required permission.
func (g *Gate) IsAuthorized() bool {
	return len(g.Missing()) == 0
}

// Missing lists required permissions that were not granted at the last refresh.
func (g *Gate) Missing() []Permission {
	set := g.Current()
	var missing []Permission
	if !set.DrawOverlay {
		missing = append(missing, DrawOverlay)
	}
	if g.requireWrite && !set.WriteSettings {
		missing = append(missing, WriteSettings)
	}
	if !set.Accessibility {
		missing = append(missing, Accessibility)
	}
	return missing
}

// CanDrawOverlay reports the cached draw-overlay state.
func (g *Gate) CanDrawOverlay() bool {
	return g.Current().DrawOverlay
}

// Describe renders a permission list for user-facing messages.
func Describe(perms []Permission) string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.String())
	}
	return strings.Join(names, ", ")
}

// ask runs a probe; errors and panics count as not granted.
func ask(p Permission, probe Probe) (granted bool) {
	if probe == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("permission: %s probe panicked: %v", p, r)
			granted = false
		}
	}()
	ok, err := probe()
	if err != nil {
		log.Printf("permission: %s probe failed: %v", p, err)
		return false
	}
	return ok
}
