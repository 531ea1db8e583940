// Package ambient delivers ambient light readings from a sensor source.
package ambient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrSensorUnavailable is returned by Start when no light sensor can be opened.
var ErrSensorUnavailable = errors.New("ambient: light sensor unavailable")

// DefaultInterval is the normal, non-real-time delivery cadence.
const DefaultInterval = time.Second

// Sample is one ambient illuminance reading.
type Sample struct {
	Lux  float64
	Time time.Time
	// Session is stamped by the subscriber to tell subscriptions apart.
	Session uint64
}

// Source produces lux readings. Run must return once ctx is cancelled.
type Source interface {
	Name() string
	Open() error
	Run(ctx context.Context, emit func(lux float64)) error
	Close() error
}

// Monitor wraps a Source with start/stop semantics. Once Stop returns no
// callback runs, and none will run until the next Start.
type Monitor struct {
	source Source

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	deliverMu sync.Mutex
	active    bool
}

// NewMonitor returns a dormant monitor. A nil source always fails to start.
func NewMonitor(source Source) *Monitor {
	return &Monitor{source: source}
}

// Available reports whether a source is configured at all.
func (m *Monitor) Available() bool { return m.source != nil }

// Running reports whether samples are being delivered.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Start opens the source and begins delivering samples to cb. The callback
// runs on the monitor goroutine and must not block on the caller of Stop.
func (m *Monitor) Start(cb func(Sample)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return nil
	}
	if m.source == nil {
		return ErrSensorUnavailable
	}
	if err := m.source.Open(); err != nil {
		if errors.Is(err, ErrSensorUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrSensorUnavailable, m.source.Name(), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	m.deliverMu.Lock()
	m.active = true
	m.deliverMu.Unlock()

	go func() {
		defer close(done)
		err := m.source.Run(ctx, func(lux float64) {
			m.deliver(cb, Sample{Lux: lux, Time: time.Now()})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("ambient: %s stopped: %v", m.source.Name(), err)
		}
	}()
	log.Printf("ambient: started %s", m.source.Name())
	return nil
}

func (m *Monitor) deliver(cb func(Sample), s Sample) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()
	if !m.active {
		return
	}
	cb(s)
}

// Stop ends delivery and waits for the source goroutine. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel == nil {
		return
	}
	m.cancel()

	// Waits out a delivery in flight; later deliveries see active=false.
	m.deliverMu.Lock()
	m.active = false
	m.deliverMu.Unlock()

	<-m.done
	if err := m.source.Close(); err != nil {
		log.Printf("ambient: close %s: %v", m.source.Name(), err)
	}
	m.cancel = nil
	m.done = nil
	log.Printf("ambient: stopped %s", m.source.Name())
}
