package messages

import (
	"errors"
	"fmt"
	"strings"
)

// Action is an external request that arrives from outside the foreground
// UI: a tray entry, a hotkey, or a remote command.
type Action string

const (
	ActionAdjustBrightness Action = "ADJUST_BRIGHTNESS"
	ActionAdjustFilter     Action = "ADJUST_FILTER"
)

// ErrUnknownAction is returned for any action outside the known set.
var ErrUnknownAction = errors.New("unknown action")

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionAdjustBrightness || a == ActionAdjustFilter
}

// ParseAction accepts the canonical names and the short forms
// "brightness" and "filter", case-insensitively.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ActionAdjustBrightness), "BRIGHTNESS":
		return ActionAdjustBrightness, nil
	case string(ActionAdjustFilter), "FILTER":
		return ActionAdjustFilter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}
