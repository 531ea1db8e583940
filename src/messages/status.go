package messages

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the resident's state as answered to the status verb and shown
// in the tray.
type Status struct {
	State           string
	Mode            string
	Level           int
	Alpha           int
	Attached        bool
	SensorAvailable bool
	Background      bool
	Missing         []string
}

// Format renders the status as space-separated key=value pairs.
func (s Status) Format() string {
	missing := "none"
	if len(s.Missing) > 0 {
		missing = strings.Join(s.Missing, ",")
	}
	return fmt.Sprintf("state=%s mode=%s level=%d alpha=%d attached=%t sensor=%t background=%t missing=%s",
		s.State, s.Mode, s.Level, s.Alpha, s.Attached, s.SensorAvailable, s.Background, missing)
}

// ParseStatus reads what Format wrote. Unknown keys are ignored.
func ParseStatus(text string) (Status, error) {
	var s Status
	for _, field := range strings.Fields(text) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return Status{}, fmt.Errorf("%w status field %q", ErrMalformed, field)
		}
		var err error
		switch key {
		case "state":
			s.State = value
		case "mode":
			s.Mode = value
		case "level":
			s.Level, err = strconv.Atoi(value)
		case "alpha":
			s.Alpha, err = strconv.Atoi(value)
		case "attached":
			s.Attached, err = strconv.ParseBool(value)
		case "sensor":
			s.SensorAvailable, err = strconv.ParseBool(value)
		case "background":
			s.Background, err = strconv.ParseBool(value)
		case "missing":
			if value != "none" && value != "" {
				s.Missing = strings.Split(value, ",")
			}
		}
		if err != nil {
			return Status{}, fmt.Errorf("%w status field %q: %v", ErrMalformed, field, err)
		}
	}
	if s.State == "" {
		return Status{}, fmt.Errorf("%w status: no state", ErrMalformed)
	}
	return s, nil
}
