package messages

import (
	"errors"
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"ADJUST_FILTER", ActionAdjustFilter, false},
		{"adjust_brightness", ActionAdjustBrightness, false},
		{" filter ", ActionAdjustFilter, false},
		{"brightness", ActionAdjustBrightness, false},
		{"ADJUST_VOLUME", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownAction) {
				t.Errorf("Expected ErrUnknownAction for %q, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Expected %q -> %q, got %q (%v)", tt.in, tt.want, got, err)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr bool
	}{
		{"CMD filter\n", Command{Verb: VerbFilter}, false},
		{"CMD level 40\r\n", Command{Verb: VerbLevel, Arg: "40"}, false},
		{"CMD ENABLE sensor", Command{Verb: VerbEnable, Arg: "sensor"}, false},
		{"PING\n", Command{}, true},
		{"CMD \n", Command{}, true},
		{"CMD level 1 2\n", Command{}, true},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Expected ParseCommand(%q) = %+v, got %+v", tt.line, tt.want, got)
		}
	}
}

func TestCommandLine(t *testing.T) {
	if got := (Command{Verb: VerbLevel, Arg: "7"}).Line(); got != "CMD level 7\n" {
		t.Errorf("Expected 'CMD level 7\\n', got %q", got)
	}
	if got := (Command{Verb: VerbStatus}).Line(); got != "CMD status\n" {
		t.Errorf("Expected 'CMD status\\n', got %q", got)
	}
	if a, ok := (Command{Verb: VerbFilter}).Action(); !ok || a != ActionAdjustFilter {
		t.Errorf("Expected filter verb to map to ADJUST_FILTER, got %q %v", a, ok)
	}
	if _, ok := (Command{Verb: VerbStatus}).Action(); ok {
		t.Errorf("Expected status verb to have no action")
	}
}

func TestReplies(t *testing.T) {
	if got := FormatReply("", nil); got != "OK\n" {
		t.Errorf("Expected OK line, got %q", got)
	}
	if got := FormatReply("state=disabled\nlevel=50", nil); got != "OK state=disabled level=50\n" {
		t.Errorf("Expected flattened OK line, got %q", got)
	}

	text, err := ParseReply("OK level=50\n")
	if err != nil || text != "level=50" {
		t.Errorf("Expected level=50, got %q (%v)", text, err)
	}

	_, err = ParseReply(FormatReply("", errors.New("missing permissions: accessibility")))
	if err == nil || err.Error() != "missing permissions: accessibility" {
		t.Errorf("Expected remote error, got %v", err)
	}

	if _, err := ParseReply("HELLO\n"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestStatusFormatParse(t *testing.T) {
	in := Status{
		State: "manual-active", Mode: "manual", Level: 50, Alpha: 128,
		Attached: true, SensorAvailable: false, Background: true,
		Missing: []string{"write-settings", "accessibility"},
	}
	text := in.Format()
	want := "state=manual-active mode=manual level=50 alpha=128 attached=true sensor=false background=true missing=write-settings,accessibility"
	if text != want {
		t.Errorf("Expected %q, got %q", want, text)
	}

	out, err := ParseStatus(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.State != in.State || out.Level != 50 || out.Alpha != 128 || !out.Attached || out.SensorAvailable || !out.Background {
		t.Errorf("Expected round trip of %+v, got %+v", in, out)
	}
	if len(out.Missing) != 2 || out.Missing[1] != "accessibility" {
		t.Errorf("Expected missing list, got %v", out.Missing)
	}

	none, err := ParseStatus(Status{State: "disabled", Mode: "manual"}.Format())
	if err != nil || len(none.Missing) != 0 {
		t.Errorf("Expected no missing permissions, got %v (%v)", none.Missing, err)
	}

	if _, err := ParseStatus("level=x state=disabled"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed for bad level, got %v", err)
	}
	if _, err := ParseStatus("level=5"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed without state, got %v", err)
	}
}
