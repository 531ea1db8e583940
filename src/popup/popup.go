package popup

import (
	"log"
	"runtime"
	"sync"
	"time"

	"motion-overlay/src/notification"
)

// Title is the heading used for every popup.
const Title = "Motion Overlay"

// repeatWindow suppresses identical popups fired in quick succession, e.g.
// a hotkey held down against a missing permission.
const repeatWindow = 3 * time.Second

var (
	mu       sync.Mutex
	lastText string
	lastAt   time.Time
	show     = notification.Show
)

// Show displays a transient popup and returns immediately. This is a simple
// adapter on top of the notification package.
func Show(text string) error {
	// Get caller information for debugging
	_, file, line, ok := runtime.Caller(1)
	if ok {
		log.Printf("Popup.Show called from %s:%d with %d characters: %q", file, line, len(text), truncateForLog(text, 50))
	} else {
		log.Printf("Popup.Show called with %d characters: %q", len(text), truncateForLog(text, 50))
	}

	mu.Lock()
	now := time.Now()
	if text == lastText && now.Sub(lastAt) < repeatWindow {
		mu.Unlock()
		log.Printf("Popup.Show suppressed repeat")
		return nil
	}
	lastText, lastAt = text, now
	mu.Unlock()

	// Fire-and-forget: notification layer manages its own lifetime asynchronously.
	show(Title, text)
	return nil
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
