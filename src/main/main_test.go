package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-overlay/src/config"
	"motion-overlay/src/messages"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"motion-overlay", "-mode", "sensor", "-no-background"},
			out:  []string{"motion-overlay", "--mode", "sensor", "--no-background"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"motion-overlay", "-pause-behavior=teardown", "-backend=headless"},
			out:  []string{"motion-overlay", "--pause-behavior=teardown", "--backend=headless"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"motion-overlay", "--mode", "manual", "-h", "-modex"},
			out:  []string{"motion-overlay", "--mode", "manual", "-h", "-modex"},
		},
		{
			name: "Empty",
			in:   []string{},
			out:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, normalizeLegacyArgs(tt.in))
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	err := cmd.ParseFlags([]string{
		"--pause-behavior", "teardown",
		"--ambient-source", "sysfs",
		"--backend", "headless",
		"--mode", "sensor",
		"--no-background",
	})
	require.NoError(t, err)

	assert.Equal(t, "teardown", opts.pauseBehavior)
	assert.Equal(t, "sysfs", opts.ambientSource)
	assert.Equal(t, "headless", opts.backend)
	assert.Equal(t, "sensor", opts.mode)
	assert.True(t, opts.noBackground)
}

func TestRootCmdRejectsUnknownMode(t *testing.T) {
	err := runWithArgs([]string{"motion-overlay", "--mode", "turbo"})
	require.Error(t, err)
}

func TestHotkeyBindings(t *testing.T) {
	cfg := &config.Config{
		ToggleHotkey:   "Ctrl+Alt+O",
		FilterHotkey:   "Ctrl+Alt+F",
		DimHotkey:      "Ctrl+Alt+Up",
		BrightenHotkey: "Ctrl+Alt+Down",
	}
	var posted []messages.Message
	post := func(m messages.Message) bool {
		posted = append(posted, m)
		return true
	}

	bindings := hotkeyBindings(cfg, "", post)
	require.Len(t, bindings, 4)
	assert.Equal(t, "Ctrl+Alt+O", bindings[0].Combo)
	assert.Equal(t, "Ctrl+Alt+Down", bindings[3].Combo)

	for _, b := range bindings {
		b.Callback()
	}
	assert.Equal(t, []messages.Message{
		messages.ToggleRequested{Mode: "manual"},
		messages.ActionRequested{Action: messages.ActionAdjustFilter},
		messages.LevelChanged{Level: -10, Delta: true},
		messages.LevelChanged{Level: 10, Delta: true},
	}, posted)

	posted = nil
	hotkeyBindings(cfg, "sensor", post)[0].Callback()
	assert.Equal(t, []messages.Message{messages.ToggleRequested{Mode: "sensor"}}, posted)
}
