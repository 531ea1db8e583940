package controller

import (
	"errors"
	"fmt"
	"strings"

	"motion-overlay/src/permission"
)

// Mode selects the control source for the overlay alpha.
type Mode int

const (
	Manual Mode = iota
	SensorAdaptive
)

func (m Mode) String() string {
	switch m {
	case Manual:
		return "manual"
	case SensorAdaptive:
		return "sensor"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "manual" and "sensor" (or "adaptive").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual", "":
		return Manual, nil
	case "sensor", "adaptive", "ambient":
		return SensorAdaptive, nil
	default:
		return Manual, fmt.Errorf("unknown mode %q", s)
	}
}

// State is the controller's position in its state machine.
type State int

const (
	Disabled State = iota
	ManualActive
	SensorActive
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case ManualActive:
		return "manual-active"
	case SensorActive:
		return "sensor-active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func activeState(m Mode) State {
	if m == SensorAdaptive {
		return SensorActive
	}
	return ManualActive
}

// PauseBehavior decides what happens to the overlay when the host pauses.
type PauseBehavior int

const (
	// PausePersist keeps the overlay attached while the host is paused.
	PausePersist PauseBehavior = iota
	// PauseTeardown detaches on pause and restores the prior mode on resume.
	PauseTeardown
)

func (p PauseBehavior) String() string {
	if p == PauseTeardown {
		return "teardown"
	}
	return "persist"
}

// ParsePauseBehavior accepts "persist" and "teardown".
func ParsePauseBehavior(s string) (PauseBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "persist", "":
		return PausePersist, nil
	case "teardown", "detach":
		return PauseTeardown, nil
	default:
		return PausePersist, fmt.Errorf("unknown pause behavior %q", s)
	}
}

// ErrNotAuthorized matches any *NotAuthorizedError.
var ErrNotAuthorized = errors.New("controller: not authorized")

// NotAuthorizedError carries the permissions that blocked an enable.
type NotAuthorizedError struct {
	Missing []permission.Permission
}

func (e *NotAuthorizedError) Error() string {
	return "controller: missing permissions: " + permission.Describe(e.Missing)
}

func (e *NotAuthorizedError) Is(target error) bool { return target == ErrNotAuthorized }
