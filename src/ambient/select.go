package ambient

import (
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	SourceAuto  = "auto"
	SourceDBus  = "dbus"
	SourceSysfs = "sysfs"
	SourceNone  = "none"
)

// NewSource resolves a source by name. "auto" prefers iio-sensor-proxy and
// falls back to sysfs polling. "none" yields a nil source.
func NewSource(kind string, interval time.Duration) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", SourceAuto:
		return &fallbackSource{sources: []Source{NewProxySource(interval), NewSysfsSource("", interval)}}, nil
	case SourceDBus:
		return NewProxySource(interval), nil
	case SourceSysfs:
		return NewSysfsSource("", interval), nil
	case SourceNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("ambient: unknown source %q", kind)
	}
}

// fallbackSource uses the first source that opens.
type fallbackSource struct {
	sources []Source
	Source
}

func (f *fallbackSource) Name() string {
	if f.Source != nil {
		return f.Source.Name()
	}
	return SourceAuto
}

func (f *fallbackSource) Open() error {
	var errs []string
	for _, s := range f.sources {
		if err := s.Open(); err != nil {
			log.Printf("ambient: %s unavailable: %v", s.Name(), err)
			errs = append(errs, err.Error())
			continue
		}
		f.Source = s
		return nil
	}
	f.Source = nil
	return fmt.Errorf("%w: %s", ErrSensorUnavailable, strings.Join(errs, "; "))
}

func (f *fallbackSource) Close() error {
	if f.Source == nil {
		return nil
	}
	err := f.Source.Close()
	f.Source = nil
	return err
}
