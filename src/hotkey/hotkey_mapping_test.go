package hotkey

import (
	"testing"
)

func TestVKRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		// Modifier keys
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"cmd", []uint16{91, 92}},
		{"super", []uint16{91, 92}},

		// Letter keys
		{"q", []uint16{81}},
		{"e", []uint16{69}},
		{"o", []uint16{79}},
		{"f", []uint16{70}},

		// Number keys
		{"0", []uint16{48}},
		{"9", []uint16{57}},

		// Function keys
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},

		// Special keys
		{"space", []uint16{32}},
		{"up", []uint16{38}},
		{"down", []uint16{40}},

		// Unknown key
		{"unknown", nil},
		{"f25", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			assertCodes(t, tt.keyName, vkRawcodes(tt.keyName), tt.expected)
		})
	}
}

func TestKeysymRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		{"ctrl", []uint16{0xffe3, 0xffe4}},
		{"alt", []uint16{0xffe9, 0xffea}},
		{"super", []uint16{0xffeb, 0xffec}},
		{"o", []uint16{'o'}},
		{"7", []uint16{'7'}},
		{"f1", []uint16{0xffbe}},
		{"f12", []uint16{0xffc9}},
		{"up", []uint16{0xff52}},
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			assertCodes(t, tt.keyName, keysymRawcodes(tt.keyName), tt.expected)
		})
	}
}

func assertCodes(t *testing.T, name string, result, expected []uint16) {
	t.Helper()
	if len(result) != len(expected) {
		t.Errorf("rawcodes(%q) returned %d rawcodes, expected %d", name, len(result), len(expected))
		return
	}
	for i := range result {
		if result[i] != expected[i] {
			t.Errorf("rawcodes(%q)[%d] = %d, expected %d", name, i, result[i], expected[i])
		}
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+O", []string{"ctrl", "alt", "o"}},
		{"Ctrl+Alt+F", []string{"ctrl", "alt", "f"}},
		{"Control+alt+up", []string{"ctrl", "alt", "up"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Super+Alt+T", []string{"cmd", "alt", "t"}},
		{"Ctrl++O", []string{"ctrl", "o"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("parseHotkey(%q) returned %d keys, expected %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q",
						tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMatcherFiresOnlyCompletedCombo(t *testing.T) {
	var toggles, filters int
	m := newMatcher([]Binding{
		{Combo: "Ctrl+Alt+O", Callback: func() { toggles++ }},
		{Combo: "Ctrl+Alt+F", Callback: func() { filters++ }},
		{Combo: "", Callback: func() { t.Errorf("empty combo must not bind") }},
	})
	if len(m.combos) != 2 {
		t.Fatalf("Expected 2 combos, got %d", len(m.combos))
	}

	press := func(name string) {
		for _, cb := range m.keyDown(keyNameToRawcodes(name)[0]) {
			cb()
		}
	}
	release := func(name string) { m.keyUp(keyNameToRawcodes(name)[0]) }

	press("ctrl")
	press("alt")
	press("o")
	if toggles != 1 || filters != 0 {
		t.Errorf("Expected toggle only, got toggles=%d filters=%d", toggles, filters)
	}

	release("o")
	release("alt")
	press("f")
	if filters != 0 {
		t.Errorf("Expected no filter without alt held, got %d", filters)
	}

	// Ctrl is still held from before.
	press("alt")
	if filters != 1 || toggles != 1 {
		t.Errorf("Expected filter once all keys are down, got toggles=%d filters=%d", toggles, filters)
	}
}
