//go:build !windows

package notification

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = "/org/freedesktop/Notifications"
	notifyCall  = notifyDest + ".Notify"
	expireMs    = 5000
	urgencyCrit = byte(2)
)

func showNative(title, body string) error {
	return notify(title, body, expireMs, nil)
}

func showBlocking(title, message string) error {
	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgencyCrit)}
	return notify(title, message, 0, hints)
}

func notify(title, body string, timeout int32, hints map[string]dbus.Variant) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}
	obj := conn.Object(notifyDest, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyCall, 0,
		appName, uint32(0), "", title, body, []string{}, hints, timeout)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	return nil
}
