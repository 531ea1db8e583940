// Package session reports host sleep and wake so the overlay can pause
// and resume with the desktop session.
package session

import "errors"

var ErrUnsupported = errors.New("session: sleep notifications unsupported on this platform")

// Handlers receives lifecycle edges. Both run on the watcher goroutine and
// should only post into the event loop.
type Handlers struct {
	OnSleep func()
	OnWake  func()
}

func (h Handlers) sleep(going bool) {
	if going {
		if h.OnSleep != nil {
			h.OnSleep()
		}
		return
	}
	if h.OnWake != nil {
		h.OnWake()
	}
}
