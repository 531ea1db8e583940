//go:build !windows

package session

import (
	"context"
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
)

const (
	logindPath      = "/org/freedesktop/login1"
	logindInterface = "org.freedesktop.login1.Manager"
	prepareForSleep = "PrepareForSleep"
)

// Watch subscribes to logind's PrepareForSleep signal on the system bus and
// calls the handlers until ctx is done. It returns once the subscription is
// in place; delivery continues on a background goroutine.
func Watch(ctx context.Context, h Handlers) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("session: system bus: %w", err)
	}
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(logindPath),
		dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(prepareForSleep),
	}
	if err := conn.AddMatchSignal(opts...); err != nil {
		conn.Close()
		return fmt.Errorf("session: subscribe: %w", err)
	}

	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)
	log.Printf("session: watching logind sleep signals")

	go func() {
		defer conn.Close()
		defer conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				_ = conn.RemoveMatchSignal(opts...)
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				dispatch(sig, h)
			}
		}
	}()
	return nil
}

// dispatch decodes one PrepareForSleep signal. Its single argument is true
// before sleep and false after wake.
func dispatch(sig *dbus.Signal, h Handlers) {
	if sig == nil || sig.Name != logindInterface+"."+prepareForSleep || len(sig.Body) != 1 {
		return
	}
	going, ok := sig.Body[0].(bool)
	if !ok {
		log.Printf("session: unexpected %s payload %T", prepareForSleep, sig.Body[0])
		return
	}
	log.Printf("session: prepare for sleep=%v", going)
	h.sleep(going)
}
