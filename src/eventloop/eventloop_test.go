package eventloop

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-overlay/src/ambient"
	"motion-overlay/src/background"
	"motion-overlay/src/controller"
	"motion-overlay/src/messages"
	"motion-overlay/src/overlay"
	"motion-overlay/src/permission"
	"motion-overlay/src/router"
	"motion-overlay/src/singleinstance"
)

// chanSource emits whatever lux values are sent on feed.
type chanSource struct {
	feed chan float64
}

func (s *chanSource) Name() string { return "chan" }
func (s *chanSource) Open() error  { return nil }
func (s *chanSource) Close() error { return nil }

func (s *chanSource) Run(ctx context.Context, emit func(float64)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case lux := <-s.feed:
			emit(lux)
		}
	}
}

type countingBrightness struct{ calls atomic.Int32 }

func (b *countingBrightness) Toggle() error {
	b.calls.Add(1)
	return nil
}

type fixture struct {
	loop       *Loop
	backend    *overlay.Headless
	feed       chan float64
	a11y       atomic.Bool
	brightness *countingBrightness

	mu     sync.Mutex
	last   messages.Status
	notes  []string
	cancel context.CancelFunc
	done   chan error
}

func newFixture(t *testing.T, srv singleinstance.Server) *fixture {
	t.Helper()
	f := &fixture{
		backend:    overlay.NewHeadless(),
		feed:       make(chan float64),
		brightness: &countingBrightness{},
		done:       make(chan error, 1),
	}
	f.a11y.Store(true)

	granted := func() (bool, error) { return true, nil }
	gate := permission.NewGate(permission.Probes{
		DrawOverlay:   granted,
		WriteSettings: granted,
		Accessibility: func() (bool, error) { return f.a11y.Load(), nil },
	}, false)

	notify := func(msg string) {
		f.mu.Lock()
		f.notes = append(f.notes, msg)
		f.mu.Unlock()
	}

	var loop *Loop
	ctl := controller.New(controller.Options{
		Surface:    overlay.NewSurface("foreground", f.backend, gate.CanDrawOverlay),
		Gate:       gate,
		Sensor:     ambient.NewMonitor(&chanSource{feed: f.feed}),
		SampleSink: func(s ambient.Sample) { loop.PostSample(s) },
		Notify:     notify,
	})
	loop = New(Options{
		Controller: ctl,
		Background: background.New(overlay.NewSurface("background", f.backend, nil), notify),
		Router:     router.NewRouter(f.brightness),
		Server:     srv,
		Notify:     notify,
		OnChange: func(st messages.Status) {
			f.mu.Lock()
			f.last = st
			f.mu.Unlock()
		},
	})
	f.loop = loop

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go func() { f.done <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-f.done
	})
	return f
}

func (f *fixture) status() messages.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fixture) waitFor(t *testing.T, what string, cond func(messages.Status) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(f.status()) }, 2*time.Second, 5*time.Millisecond, what)
}

func TestManualFlow(t *testing.T) {
	f := newFixture(t, nil)

	require.True(t, f.loop.Post(messages.EnableRequested{Mode: "manual"}))
	f.waitFor(t, "manual enabled at 128", func(s messages.Status) bool {
		return s.State == "manual-active" && s.Alpha == 128
	})

	f.loop.Post(messages.LevelChanged{Level: 0})
	f.waitFor(t, "level 0 gives 255", func(s messages.Status) bool { return s.Alpha == 255 })

	f.loop.Post(messages.ActionRequested{Action: messages.ActionAdjustFilter})
	f.waitFor(t, "toggle to 100", func(s messages.Status) bool { return s.Alpha == 100 })

	f.loop.Post(messages.LevelChanged{Level: 10, Delta: true})
	f.waitFor(t, "nudged to level 10", func(s messages.Status) bool { return s.Level == 10 && s.Alpha == 230 })

	f.loop.Post(messages.ActionRequested{Action: messages.ActionAdjustBrightness})
	f.loop.Post(messages.DisableRequested{})
	f.waitFor(t, "disabled", func(s messages.Status) bool { return s.State == "disabled" && !s.Attached })
	assert.Equal(t, int32(1), f.brightness.calls.Load())
}

func TestSensorFlow(t *testing.T) {
	f := newFixture(t, nil)

	f.loop.Post(messages.EnableRequested{Mode: "sensor"})
	f.waitFor(t, "sensor enabled", func(s messages.Status) bool {
		return s.State == "sensor-active" && s.Alpha == 166
	})

	f.feed <- 2000
	f.waitFor(t, "bright room", func(s messages.Status) bool { return s.Alpha == 114 })
	f.feed <- 500
	f.waitFor(t, "dim room", func(s messages.Status) bool { return s.Alpha == 166 })

	f.loop.Post(messages.DisableRequested{})
	f.waitFor(t, "disabled", func(s messages.Status) bool { return s.State == "disabled" })
}

func TestToggleRequested(t *testing.T) {
	f := newFixture(t, nil)

	f.loop.Post(messages.ToggleRequested{Mode: "manual"})
	f.waitFor(t, "on", func(s messages.Status) bool { return s.Attached })
	f.loop.Post(messages.ToggleRequested{Mode: "manual"})
	f.waitFor(t, "off", func(s messages.Status) bool { return !s.Attached })
}

func TestUnauthorizedEnableStaysDisabled(t *testing.T) {
	f := newFixture(t, nil)
	f.a11y.Store(false)

	f.loop.Post(messages.EnableRequested{Mode: "manual"})
	f.waitFor(t, "missing accessibility reported", func(s messages.Status) bool {
		return len(s.Missing) == 1 && s.Missing[0] == "accessibility"
	})
	assert.Equal(t, "disabled", f.status().State)
	assert.False(t, f.status().Attached)
	assert.Equal(t, 0, f.backend.OpenCount())
}

func TestBackgroundIndependent(t *testing.T) {
	f := newFixture(t, nil)

	f.loop.Post(messages.AccessibilityChanged{Enabled: true})
	f.waitFor(t, "background on", func(s messages.Status) bool { return s.Background })
	assert.False(t, f.status().Attached, "foreground untouched")

	f.loop.Post(messages.EnableRequested{Mode: "manual"})
	f.waitFor(t, "both on", func(s messages.Status) bool { return s.Attached })
	assert.Equal(t, 2, f.backend.OpenCount())

	f.loop.Post(messages.AccessibilityChanged{Enabled: false})
	f.waitFor(t, "background off", func(s messages.Status) bool { return !s.Background })
	assert.True(t, f.status().Attached)
}

func TestDieNowTearsDown(t *testing.T) {
	f := newFixture(t, nil)

	f.loop.Post(messages.EnableRequested{Mode: "manual"})
	f.loop.Post(messages.AccessibilityChanged{Enabled: true})
	f.waitFor(t, "attached", func(s messages.Status) bool { return s.Attached && s.Background })

	require.True(t, f.loop.Post(messages.DIENOW{}))
	select {
	case err := <-f.done:
		assert.NoError(t, err)
		f.done <- err
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, 0, f.backend.OpenCount())
	assert.False(t, f.loop.Post(messages.DisableRequested{}))
}

func TestPostSampleNeverBlocks(t *testing.T) {
	l := New(Options{})
	for i := 0; i < 100; i++ {
		l.PostSample(ambient.Sample{Lux: float64(i)})
	}
	got := <-l.samples
	assert.Equal(t, float64(99), got.Lux, "only the newest sample is kept")
}

func TestCommandChannel(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("loopback unavailable: %v", err)
	}
	port := lis.Addr().(*net.TCPAddr).Port
	_ = lis.Close()
	t.Setenv("SINGLEINSTANCE_PORT_START", strconv.Itoa(port))
	t.Setenv("SINGLEINSTANCE_PORT_END", strconv.Itoa(port))

	f := newFixture(t, singleinstance.NewServer())
	client := singleinstance.NewClient()
	send := func(verb, arg string) (string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Send(ctx, messages.Command{Verb: verb, Arg: arg})
	}

	var text string
	require.Eventually(t, func() bool {
		text, err = send(messages.VerbStatus, "")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	st, err := messages.ParseStatus(text)
	require.NoError(t, err)
	assert.Equal(t, "disabled", st.State)

	text, err = send(messages.VerbEnable, "manual")
	require.NoError(t, err)
	st, _ = messages.ParseStatus(text)
	assert.True(t, st.Attached)

	text, err = send(messages.VerbLevel, "0")
	require.NoError(t, err)
	st, _ = messages.ParseStatus(text)
	assert.Equal(t, 255, st.Alpha)

	_, err = send(messages.VerbFilter, "")
	require.NoError(t, err)
	f.waitFor(t, "filter toggled", func(s messages.Status) bool { return s.Alpha == 100 })

	_, err = send(messages.VerbLevel, "lots")
	assert.Error(t, err)
	_, err = send("explode", "")
	assert.Error(t, err)

	_, err = send(messages.VerbDisable, "")
	require.NoError(t, err)
	f.waitFor(t, "disabled", func(s messages.Status) bool { return !s.Attached })
}

func TestQueuedSampleDoesNotOutliveSensorStop(t *testing.T) {
	feed := make(chan float64)
	granted := func() (bool, error) { return true, nil }
	gate := permission.NewGate(permission.Probes{
		DrawOverlay: granted, WriteSettings: granted, Accessibility: granted,
	}, false)

	var loop *Loop
	ctl := controller.New(controller.Options{
		Surface:    overlay.NewSurface("foreground", overlay.NewHeadless(), gate.CanDrawOverlay),
		Gate:       gate,
		Sensor:     ambient.NewMonitor(&chanSource{feed: feed}),
		SampleSink: func(s ambient.Sample) { loop.PostSample(s) },
	})
	loop = New(Options{Controller: ctl, Router: router.NewRouter(&countingBrightness{})})

	// The loop is not running, so the reading stays queued.
	require.NoError(t, ctl.Enable(controller.SensorAdaptive))
	feed <- 2000
	require.Eventually(t, func() bool { return len(loop.samples) == 1 }, 2*time.Second, 5*time.Millisecond)

	ctl.Disable()
	require.NoError(t, ctl.Enable(controller.SensorAdaptive))
	defer ctl.Disable()
	require.Equal(t, uint8(166), ctl.Surface().State().Alpha)

	loop.handleSample(<-loop.samples)
	assert.Equal(t, uint8(166), ctl.Surface().State().Alpha, "reading from the stopped subscription applied")

	feed <- 2000
	require.Eventually(t, func() bool { return len(loop.samples) == 1 }, 2*time.Second, 5*time.Millisecond)
	loop.handleSample(<-loop.samples)
	assert.Equal(t, uint8(114), ctl.Surface().State().Alpha)
}
