// Package messages defines what flows into the event loop and over the
// command channel.
package messages

// Message is the base interface for all event loop inputs
type Message interface {
	Type() string
}

// MessageType constants for type identification
const (
	TypeToggleRequested      = "ToggleRequested"
	TypeEnableRequested      = "EnableRequested"
	TypeDisableRequested     = "DisableRequested"
	TypeLevelChanged         = "LevelChanged"
	TypeActionRequested      = "ActionRequested"
	TypeHostPaused           = "HostPaused"
	TypeHostResumed          = "HostResumed"
	TypeAccessibilityChanged = "AccessibilityChanged"
	TypeRecheckPermissions   = "RecheckPermissions"
	TypeDieNow               = "DIENOW"
)

// ToggleRequested - enable in Mode when disabled, otherwise disable (hotkey)
type ToggleRequested struct {
	Mode string
}

func (m ToggleRequested) Type() string { return TypeToggleRequested }

// EnableRequested - turn the foreground overlay on in Mode ("manual" or "sensor")
type EnableRequested struct {
	Mode string
}

func (m EnableRequested) Type() string { return TypeEnableRequested }

// DisableRequested - turn the foreground overlay off
type DisableRequested struct{}

func (m DisableRequested) Type() string { return TypeDisableRequested }

// LevelChanged - the manual level was set (Delta false) or nudged (Delta true)
type LevelChanged struct {
	Level int
	Delta bool
}

func (m LevelChanged) Type() string { return TypeLevelChanged }

// ActionRequested - an external action for the router
type ActionRequested struct {
	Action Action
}

func (m ActionRequested) Type() string { return TypeActionRequested }

// HostPaused - the host session is about to sleep
type HostPaused struct{}

func (m HostPaused) Type() string { return TypeHostPaused }

// HostResumed - the host session woke up
type HostResumed struct{}

func (m HostResumed) Type() string { return TypeHostResumed }

// AccessibilityChanged - the accessibility bus was enabled or disabled
type AccessibilityChanged struct {
	Enabled bool
}

func (m AccessibilityChanged) Type() string { return TypeAccessibilityChanged }

// RecheckPermissions - the user returned from granting permissions
type RecheckPermissions struct{}

func (m RecheckPermissions) Type() string { return TypeRecheckPermissions }

// DIENOW - shut everything down
type DIENOW struct{}

func (m DIENOW) Type() string { return TypeDieNow }
