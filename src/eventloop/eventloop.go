package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"motion-overlay/src/ambient"
	"motion-overlay/src/background"
	"motion-overlay/src/controller"
	"motion-overlay/src/messages"
	"motion-overlay/src/router"
	"motion-overlay/src/singleinstance"
)

// Options wires a Loop. Background and Server are optional.
type Options struct {
	Controller *controller.Controller
	Background *background.Service
	Router     *router.Router
	Server     singleinstance.Server

	// Notify shows a transient message (popup.Show in the resident).
	Notify func(string)
	// OnChange runs on the loop goroutine after every handled event.
	OnChange func(messages.Status)
}

// Loop is the single-threaded coordinator. Every input (tray, hotkeys,
// sensor samples, remote commands, sleep/wake, shutdown) is posted here
// and handled to completion in order.
type Loop struct {
	ctl      *controller.Controller
	bg       *background.Service
	router   *router.Router
	srv      singleinstance.Server
	notify   func(string)
	onChange func(messages.Status)

	events  chan messages.Message
	samples chan ambient.Sample

	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a loop. It does not start anything until Run.
func New(opts Options) *Loop {
	l := &Loop{
		ctl:      opts.Controller,
		bg:       opts.Background,
		router:   opts.Router,
		srv:      opts.Server,
		notify:   opts.Notify,
		onChange: opts.OnChange,
		events:   make(chan messages.Message, 16),
		samples:  make(chan ambient.Sample, 1),
		stopped:  make(chan struct{}),
	}
	if l.notify == nil {
		l.notify = func(string) {}
	}
	if l.router == nil {
		l.router = router.NewRouter(nil)
	}
	return l
}

// Post queues msg. It blocks while the queue is full and returns false once
// the loop has stopped.
func (l *Loop) Post(msg messages.Message) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.events <- msg:
		return true
	case <-l.stopped:
		return false
	}
}

// PostSample hands a sensor reading to the loop without ever blocking.
// Only the newest unprocessed sample is kept.
func (l *Loop) PostSample(s ambient.Sample) {
	select {
	case l.samples <- s:
		return
	default:
	}
	select {
	case <-l.samples:
	default:
	}
	select {
	case l.samples <- s:
	default:
	}
}

// Run processes events until ctx is cancelled or DIENOW is posted. On the
// way out the overlay is torn down as if the host were destroyed.
func (l *Loop) Run(ctx context.Context) error {
	l.router.Register(l.ctl)
	defer l.shutdown()

	var reqCh chan singleinstance.Conn
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return err
		}
		if p := l.srv.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		defer l.srv.Close()

		// Accept loop in background to avoid blocking event handling
		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					close(reqCh)
					return
				}
				select {
				case reqCh <- conn:
				case <-l.stopped:
					_ = conn.Close()
					return
				}
			}
		}()
	}

	l.changed()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-l.events:
			if _, die := msg.(messages.DIENOW); die {
				log.Printf("eventloop: DIENOW received")
				return nil
			}
			if err := l.handle(msg); err != nil {
				log.Printf("eventloop: %s: %v", msg.Type(), err)
			}
		case s := <-l.samples:
			l.handleSample(s)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(conn)
		}
		l.changed()
	}
}

// handleSample applies a queued reading. Readings that outlived their sensor
// subscription are discarded by the controller.
func (l *Loop) handleSample(s ambient.Sample) {
	if l.ctl.State() != controller.SensorActive {
		return
	}
	l.ctl.OnAmbientSample(s)
}

func (l *Loop) shutdown() {
	l.stopOnce.Do(func() {
		close(l.stopped)
		l.ctl.OnHostDestroyed()
		if l.bg != nil {
			l.bg.OnDisabled()
		}
		l.router.Unregister(l.ctl)
		log.Printf("eventloop: stopped")
	})
}

func (l *Loop) handle(msg messages.Message) error {
	switch m := msg.(type) {
	case messages.EnableRequested:
		return l.enable(m.Mode)
	case messages.DisableRequested:
		l.ctl.Disable()
	case messages.ToggleRequested:
		if l.ctl.State() != controller.Disabled {
			l.ctl.Disable()
			return nil
		}
		return l.enable(m.Mode)
	case messages.LevelChanged:
		level := m.Level
		if m.Delta {
			level += l.ctl.Snapshot().Level
		}
		l.ctl.OnManualLevelChanged(level)
	case messages.ActionRequested:
		if err := l.router.Dispatch(m.Action); err != nil {
			l.notify(fmt.Sprintf("Could not %s: %v", actionLabel(m.Action), err))
			return err
		}
	case messages.HostPaused:
		l.ctl.OnHostPaused()
	case messages.HostResumed:
		return l.ctl.OnHostResumed()
	case messages.AccessibilityChanged:
		return l.setBackground(m.Enabled)
	case messages.RecheckPermissions:
		return l.ctl.RecheckPermissions()
	default:
		return fmt.Errorf("unhandled message %T", msg)
	}
	return nil
}

func (l *Loop) enable(mode string) error {
	m, err := controller.ParseMode(mode)
	if err != nil {
		return err
	}
	return l.ctl.Enable(m)
}

func (l *Loop) setBackground(enabled bool) error {
	if l.bg == nil {
		return nil
	}
	if !enabled {
		l.bg.OnDisabled()
		return nil
	}
	return l.bg.OnEnabled()
}

func (l *Loop) handleConn(conn singleinstance.Conn) {
	defer conn.Close()
	text, err := l.handleCommand(conn.Request())
	if err != nil {
		log.Printf("eventloop: command %s failed: %v", conn.Request().Verb, err)
	}
	if rerr := conn.Reply(text, err); rerr != nil {
		log.Printf("eventloop: reply: %v", rerr)
	}
}

var errUnknownVerb = errors.New("unknown command")

func (l *Loop) handleCommand(cmd messages.Command) (string, error) {
	if action, ok := cmd.Action(); ok {
		return "", l.handle(messages.ActionRequested{Action: action})
	}
	switch cmd.Verb {
	case messages.VerbStatus:
		return l.Status().Format(), nil
	case messages.VerbEnable:
		if err := l.enable(cmd.Arg); err != nil {
			return "", err
		}
		return l.Status().Format(), nil
	case messages.VerbDisable:
		l.ctl.Disable()
		return l.Status().Format(), nil
	case messages.VerbLevel:
		n, err := strconv.Atoi(cmd.Arg)
		if err != nil {
			return "", fmt.Errorf("level must be a number 0-100, got %q", cmd.Arg)
		}
		delta := strings.HasPrefix(cmd.Arg, "+") || strings.HasPrefix(cmd.Arg, "-")
		if err := l.handle(messages.LevelChanged{Level: n, Delta: delta}); err != nil {
			return "", err
		}
		return l.Status().Format(), nil
	default:
		return "", fmt.Errorf("%w %q", errUnknownVerb, cmd.Verb)
	}
}

// Status reports the current state. Call it from the loop goroutine only.
func (l *Loop) Status() messages.Status {
	snap := l.ctl.Snapshot()
	st := messages.Status{
		State:           snap.State.String(),
		Mode:            snap.Mode.String(),
		Level:           snap.Level,
		Alpha:           int(snap.Alpha),
		Attached:        snap.Attached,
		SensorAvailable: snap.SensorAvailable,
		Background:      l.bg != nil && l.bg.Surface().Attached(),
	}
	for _, p := range snap.Missing {
		st.Missing = append(st.Missing, p.String())
	}
	return st
}

func (l *Loop) changed() {
	if l.onChange != nil {
		l.onChange(l.Status())
	}
}

func actionLabel(a messages.Action) string {
	switch a {
	case messages.ActionAdjustBrightness:
		return "adjust brightness"
	case messages.ActionAdjustFilter:
		return "toggle filter"
	default:
		return string(a)
	}
}
