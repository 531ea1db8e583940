package ambient

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultIIORoot is where Linux exposes industrial I/O sensors.
const DefaultIIORoot = "/sys/bus/iio/devices"

// SysfsSource polls an IIO illuminance channel.
type SysfsSource struct {
	Root     string
	Interval time.Duration

	input  string
	raw    string
	scale  float64
	offset float64
}

func NewSysfsSource(root string, interval time.Duration) *SysfsSource {
	if root == "" {
		root = DefaultIIORoot
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &SysfsSource{Root: root, Interval: interval}
}

func (s *SysfsSource) Name() string { return "iio-sysfs" }

// Open locates the first device with an illuminance channel. Processed
// (in_illuminance_input) channels are preferred over raw ones.
func (s *SysfsSource) Open() error {
	devices, err := filepath.Glob(filepath.Join(s.Root, "iio:device*"))
	if err != nil {
		return err
	}
	for _, dev := range devices {
		if p := filepath.Join(dev, "in_illuminance_input"); fileExists(p) {
			s.input = p
			return nil
		}
		if p := filepath.Join(dev, "in_illuminance_raw"); fileExists(p) {
			s.raw = p
			s.scale = 1
			if v, err := readFloat(filepath.Join(dev, "in_illuminance_scale")); err == nil {
				s.scale = v
			}
			s.offset = 0
			if v, err := readFloat(filepath.Join(dev, "in_illuminance_offset")); err == nil {
				s.offset = v
			}
			return nil
		}
	}
	return fmt.Errorf("%w: no illuminance channel under %s", ErrSensorUnavailable, s.Root)
}

func (s *SysfsSource) Run(ctx context.Context, emit func(lux float64)) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		if lux, err := s.read(); err == nil {
			emit(lux)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *SysfsSource) read() (float64, error) {
	if s.input != "" {
		return readFloat(s.input)
	}
	v, err := readFloat(s.raw)
	if err != nil {
		return 0, err
	}
	return (v + s.offset) * s.scale, nil
}

func (s *SysfsSource) Close() error { return nil }

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func readFloat(p string) (float64, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
}
