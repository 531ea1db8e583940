package ambient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	proxyDest  = "net.hadess.SensorProxy"
	proxyPath  = "/net/hadess/SensorProxy"
	proxyIface = "net.hadess.SensorProxy"
	propsIface = "org.freedesktop.DBus.Properties"
)

// ProxySource reads the light level from iio-sensor-proxy on the system bus.
// Property changes are coalesced and re-emitted at Interval.
type ProxySource struct {
	Interval time.Duration

	conn *dbus.Conn
	obj  dbus.BusObject

	mu    sync.Mutex
	level float64
	known bool
}

func NewProxySource(interval time.Duration) *ProxySource {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &ProxySource{Interval: interval}
}

func (s *ProxySource) Name() string { return "iio-sensor-proxy" }

func (s *ProxySource) Open() error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("%w: system bus: %v", ErrSensorUnavailable, err)
	}
	obj := conn.Object(proxyDest, dbus.ObjectPath(proxyPath))
	has, err := obj.GetProperty(proxyIface + ".HasAmbientLight")
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}
	if ok, _ := has.Value().(bool); !ok {
		conn.Close()
		return fmt.Errorf("%w: proxy reports no ambient light sensor", ErrSensorUnavailable)
	}
	if call := obj.Call(proxyIface+".ClaimLight", 0); call.Err != nil {
		conn.Close()
		return fmt.Errorf("%w: claim light: %v", ErrSensorUnavailable, call.Err)
	}
	s.conn = conn
	s.obj = obj
	if v, err := obj.GetProperty(proxyIface + ".LightLevel"); err == nil {
		if lux, ok := v.Value().(float64); ok {
			s.store(lux)
		}
	}
	return nil
}

func (s *ProxySource) Run(ctx context.Context, emit func(lux float64)) error {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(dbus.ObjectPath(proxyPath)),
		dbus.WithMatchInterface(propsIface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
	if err := s.conn.AddMatchSignal(match...); err != nil {
		return fmt.Errorf("add match: %w", err)
	}
	defer s.conn.RemoveMatchSignal(match...)

	signals := make(chan *dbus.Signal, 8)
	s.conn.Signal(signals)
	defer s.conn.RemoveSignal(signals)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-signals:
			s.handleSignal(sig)
		case <-ticker.C:
			if lux, ok := s.latest(); ok {
				emit(lux)
			}
		}
	}
}

func (s *ProxySource) handleSignal(sig *dbus.Signal) {
	if sig == nil || len(sig.Body) < 2 {
		return
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != proxyIface {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}
	if v, ok := changed["LightLevel"]; ok {
		if lux, ok := v.Value().(float64); ok {
			s.store(lux)
		}
	}
}

func (s *ProxySource) store(lux float64) {
	s.mu.Lock()
	s.level = lux
	s.known = true
	s.mu.Unlock()
}

func (s *ProxySource) latest() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, s.known
}

func (s *ProxySource) Close() error {
	if s.conn == nil {
		return nil
	}
	s.obj.Call(proxyIface+".ReleaseLight", 0)
	err := s.conn.Close()
	s.conn = nil
	s.obj = nil
	return err
}
