//go:build windows

package session

import (
	"context"
	"log"
)

// Watch is not wired on Windows; the overlay window survives sleep there.
func Watch(ctx context.Context, h Handlers) error {
	log.Printf("session: sleep notifications not available")
	return ErrUnsupported
}
