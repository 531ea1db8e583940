package notification

import (
	"log"
)

const (
	appName    = "Motion Overlay"
	maxBodyLen = 200
)

// Show displays a transient, non-blocking desktop notification. Delivery
// failures are logged and otherwise ignored.
func Show(title, text string) {
	body := text
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen] + "..."
	}
	go func() {
		if err := showNative(title, body); err != nil {
			log.Printf("notification: %v; message was %q", err, body)
		}
	}()
}

// ShowBlockingError shows an error and returns once it has been delivered
// (on Windows, once the user dismisses the dialog).
func ShowBlockingError(title, message string) {
	if err := showBlocking(title, message); err != nil {
		log.Printf("%s: %s", title, message)
	}
}
