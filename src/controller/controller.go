// Package controller owns the foreground overlay and reconciles manual,
// sensor, external and lifecycle inputs into one overlay state.
//
// A Controller is not safe for concurrent use. Every method must be called
// from the single event loop goroutine.
package controller

import (
	"errors"
	"fmt"
	"log"

	"motion-overlay/src/ambient"
	"motion-overlay/src/opacity"
	"motion-overlay/src/overlay"
	"motion-overlay/src/permission"
)

// Gate is the permission view the controller depends on.
type Gate interface {
	Refresh() permission.Set
	IsAuthorized() bool
	Missing() []permission.Permission
}

// LevelStore persists the manual level.
type LevelStore interface {
	Level() int
	SaveLevel(level int) error
}

// SensorMonitor is the ambient light subscription.
type SensorMonitor interface {
	Available() bool
	Start(cb func(ambient.Sample)) error
	Stop()
}

// Options wires a Controller.
type Options struct {
	Surface *overlay.Surface
	Gate    Gate
	Store   LevelStore
	Sensor  SensorMonitor
	Pause   PauseBehavior

	// SampleSink receives sensor samples from the monitor goroutine. It
	// should forward them into the event loop and must not block. When nil,
	// samples are applied directly.
	SampleSink func(ambient.Sample)

	// Notify shows a transient, non-blocking message to the user.
	Notify func(msg string)
}

// Snapshot is a read-only view for UIs and status queries.
type Snapshot struct {
	State           State
	Mode            Mode
	Level           int
	Alpha           uint8
	Attached        bool
	SensorAvailable bool
	Missing         []permission.Permission
}

// Controller is the foreground overlay owner.
type Controller struct {
	surface *overlay.Surface
	gate    Gate
	store   LevelStore
	sensor  SensorMonitor
	pause   PauseBehavior
	sink    func(ambient.Sample)
	notify  func(string)

	state           State
	mode            Mode
	level           int
	lastLux         float64
	haveLux         bool
	sensorAvailable bool
	sensorReported  bool
	resumeMode      *Mode
	// session numbers sensor subscriptions; every Start and Stop bumps it.
	session uint64
}

// New builds a disabled controller. The manual level starts from the store.
func New(opts Options) *Controller {
	c := &Controller{
		surface:         opts.Surface,
		gate:            opts.Gate,
		store:           opts.Store,
		sensor:          opts.Sensor,
		pause:           opts.Pause,
		notify:          opts.Notify,
		level:           opacity.DefaultLevel,
		sensorAvailable: opts.Sensor != nil && opts.Sensor.Available(),
	}
	if c.store != nil {
		c.level = opacity.ClampLevel(c.store.Level())
	}
	c.sink = opts.SampleSink
	if c.sink == nil {
		c.sink = c.OnAmbientSample
	}
	if c.notify == nil {
		c.notify = func(string) {}
	}
	return c
}

// Name identifies this overlay owner.
func (c *Controller) Name() string { return "foreground" }

// Surface returns the controller's own surface.
func (c *Controller) Surface() *overlay.Surface { return c.surface }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// SensorAvailable is false once the sensor failed to start; UIs then offer
// Manual mode only.
func (c *Controller) SensorAvailable() bool { return c.sensorAvailable }

// Enable attaches the overlay in the given mode. Calling it while active in
// another mode switches the control source without detaching. Authorization
// is checked either way; losing it disables an active overlay.
func (c *Controller) Enable(mode Mode) error {
	c.gate.Refresh()
	if !c.gate.IsAuthorized() {
		err := &NotAuthorizedError{Missing: c.gate.Missing()}
		log.Printf("controller: enable(%s) refused: %v", mode, err)
		if c.state != Disabled {
			c.resumeMode = nil
			c.teardown()
			c.notify("Overlay disabled, missing permissions: " + permission.Describe(err.Missing))
			return err
		}
		c.notify("Overlay needs permissions: " + permission.Describe(err.Missing))
		return err
	}
	if c.state != Disabled {
		return c.switchMode(mode)
	}

	if mode == SensorAdaptive {
		if err := c.startSensor(); err != nil {
			return err
		}
	}

	alpha := c.alphaFor(mode)
	if err := c.surface.Attach(alpha, opacity.Color); err != nil {
		if mode == SensorAdaptive {
			c.stopSensor()
		}
		log.Printf("controller: attach failed: %v", err)
		if errors.Is(err, overlay.ErrPlatformRejected) {
			c.notify("Could not show overlay: " + err.Error())
		}
		return err
	}

	c.mode = mode
	c.state = activeState(mode)
	c.resumeMode = nil
	log.Printf("controller: enabled %s alpha=%d", mode, alpha)
	return nil
}

func (c *Controller) switchMode(mode Mode) error {
	if c.mode == mode {
		return nil
	}
	if mode == SensorAdaptive {
		if err := c.startSensor(); err != nil {
			return err
		}
	} else {
		c.stopSensor()
	}
	c.mode = mode
	c.state = activeState(mode)
	c.apply(c.alphaFor(mode))
	log.Printf("controller: switched to %s", mode)
	return nil
}

func (c *Controller) startSensor() error {
	if c.sensor == nil {
		return c.sensorUnavailable(ambient.ErrSensorUnavailable)
	}
	c.session++
	session := c.session
	err := c.sensor.Start(func(s ambient.Sample) {
		s.Session = session
		c.sink(s)
	})
	if err != nil {
		return c.sensorUnavailable(err)
	}
	return nil
}

// stopSensor ends the current subscription. Samples already queued by the
// sink carry its session number and are dropped by OnAmbientSample.
func (c *Controller) stopSensor() {
	if c.sensor == nil {
		return
	}
	c.sensor.Stop()
	c.session++
}

func (c *Controller) sensorUnavailable(err error) error {
	c.sensorAvailable = false
	if !c.sensorReported {
		c.sensorReported = true
		c.notify("Ambient light sensor unavailable, manual mode only")
	}
	log.Printf("controller: sensor unavailable: %v", err)
	if !errors.Is(err, ambient.ErrSensorUnavailable) {
		err = fmt.Errorf("%w: %v", ambient.ErrSensorUnavailable, err)
	}
	return err
}

// Disable detaches the overlay and stops the sensor. Idempotent.
func (c *Controller) Disable() {
	c.resumeMode = nil
	c.teardown()
}

func (c *Controller) teardown() {
	if c.state == SensorActive {
		c.stopSensor()
	}
	if err := c.surface.Detach(); err != nil {
		log.Printf("controller: detach: %v", err)
	}
	if c.state != Disabled {
		log.Printf("controller: disabled (was %s)", c.state)
	}
	c.state = Disabled
}

// OnManualLevelChanged records and persists a new level. It only changes
// the overlay while ManualActive.
func (c *Controller) OnManualLevelChanged(level int) {
	c.level = opacity.ClampLevel(level)
	if c.store != nil {
		if err := c.store.SaveLevel(c.level); err != nil {
			log.Printf("controller: persist level: %v", err)
		}
	}
	if c.state != ManualActive {
		return
	}
	c.apply(opacity.Manual(c.level))
}

// OnAmbientSample applies a sensor reading while SensorActive and ignores it
// otherwise. Readings from a subscription that has since been stopped are
// dropped even if a new one is running.
func (c *Controller) OnAmbientSample(s ambient.Sample) {
	if c.state != SensorActive {
		return
	}
	if s.Session != c.session {
		log.Printf("controller: dropped sample from stopped sensor session %d", s.Session)
		return
	}
	c.lastLux = s.Lux
	c.haveLux = true
	c.apply(opacity.Ambient(s.Lux))
}

// OnExternalToggle flips the alpha between the two toggle anchors without
// touching mode or attachment.
func (c *Controller) OnExternalToggle() {
	st := c.surface.State()
	if !st.Attached {
		log.Printf("controller: toggle ignored, overlay detached")
		return
	}
	c.apply(opacity.Toggle(st.Alpha))
}

// OnHostPaused tears the overlay down in teardown mode and does nothing in
// persist mode.
func (c *Controller) OnHostPaused() {
	if c.pause != PauseTeardown || c.state == Disabled {
		return
	}
	mode := c.mode
	c.teardown()
	c.resumeMode = &mode
	log.Printf("controller: paused, will resume %s", mode)
}

// OnHostResumed re-checks authorization. A mode torn down on pause is
// re-enabled; an attached overlay whose permissions were revoked is disabled.
func (c *Controller) OnHostResumed() error {
	c.gate.Refresh()

	if c.resumeMode != nil {
		mode := *c.resumeMode
		c.resumeMode = nil
		return c.Enable(mode)
	}
	if c.state == Disabled {
		return nil
	}
	if !c.gate.IsAuthorized() {
		err := &NotAuthorizedError{Missing: c.gate.Missing()}
		c.teardown()
		log.Printf("controller: authorization revoked while paused: %v", err)
		c.notify("Overlay disabled, missing permissions: " + permission.Describe(err.Missing))
		return err
	}
	if !c.surface.Attached() {
		// The platform dropped the window while we were away.
		mode := c.mode
		c.teardown()
		return c.Enable(mode)
	}
	return nil
}

// RecheckPermissions re-reads the permission set after the user returns from
// granting permissions. An active overlay that lost authorization is disabled.
func (c *Controller) RecheckPermissions() error {
	c.gate.Refresh()
	if c.state == Disabled || c.gate.IsAuthorized() {
		return nil
	}
	err := &NotAuthorizedError{Missing: c.gate.Missing()}
	c.resumeMode = nil
	c.teardown()
	c.notify("Overlay disabled, missing permissions: " + permission.Describe(err.Missing))
	return err
}

// OnHostDestroyed detaches unconditionally.
func (c *Controller) OnHostDestroyed() {
	c.resumeMode = nil
	c.teardown()
}

// Snapshot returns the current view of the controller.
func (c *Controller) Snapshot() Snapshot {
	st := c.surface.State()
	return Snapshot{
		State:           c.state,
		Mode:            c.mode,
		Level:           c.level,
		Alpha:           st.Alpha,
		Attached:        st.Attached,
		SensorAvailable: c.sensorAvailable,
		Missing:         c.gate.Missing(),
	}
}

func (c *Controller) alphaFor(mode Mode) uint8 {
	if mode == SensorAdaptive {
		if c.haveLux {
			return opacity.Ambient(c.lastLux)
		}
		return opacity.Ambient(0)
	}
	return opacity.Manual(c.level)
}

func (c *Controller) apply(alpha uint8) {
	if err := c.surface.SetColor(alpha, opacity.Color); err != nil {
		log.Printf("controller: set color: %v", err)
	}
}
