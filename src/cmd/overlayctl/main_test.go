package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motion-overlay/src/messages"
	"motion-overlay/src/singleinstance"
)

type recorder struct {
	sent  []messages.Command
	reply string
	err   error
}

func (r *recorder) send(ctx context.Context, cmd messages.Command) (string, error) {
	r.sent = append(r.sent, cmd)
	return r.reply, r.err
}

func execute(t *testing.T, rec *recorder, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&ctlOptions{}, rec.send)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubcommandsSendVerbs(t *testing.T) {
	tests := []struct {
		args []string
		want messages.Command
	}{
		{[]string{"filter"}, messages.Command{Verb: messages.VerbFilter}},
		{[]string{"brightness"}, messages.Command{Verb: messages.VerbBrightness}},
		{[]string{"disable"}, messages.Command{Verb: messages.VerbDisable}},
		{[]string{"enable"}, messages.Command{Verb: messages.VerbEnable, Arg: "manual"}},
		{[]string{"enable", "sensor"}, messages.Command{Verb: messages.VerbEnable, Arg: "sensor"}},
		{[]string{"level", "30"}, messages.Command{Verb: messages.VerbLevel, Arg: "30"}},
		{[]string{"level", "-10"}, messages.Command{Verb: messages.VerbLevel, Arg: "-10"}},
		{[]string{"level", "+5"}, messages.Command{Verb: messages.VerbLevel, Arg: "+5"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			rec := &recorder{}
			_, err := execute(t, rec, tt.args...)
			require.NoError(t, err)
			require.Len(t, rec.sent, 1)
			assert.Equal(t, tt.want, rec.sent[0])
		})
	}
}

func TestInvalidArgumentsSendNothing(t *testing.T) {
	for _, args := range [][]string{
		{"enable", "turbo"},
		{"level", "high"},
		{"level"},
		{"filter", "extra"},
	} {
		rec := &recorder{}
		_, err := execute(t, rec, args...)
		assert.Error(t, err, "args %v", args)
		assert.Empty(t, rec.sent, "args %v", args)
	}
}

func TestNoResident(t *testing.T) {
	rec := &recorder{err: singleinstance.ErrNoResident}
	_, err := execute(t, rec, "filter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestRemoteErrorPassesThrough(t *testing.T) {
	rec := &recorder{err: errors.New("not authorized: missing accessibility")}
	_, err := execute(t, rec, "enable")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accessibility")
}

func TestStatusRendering(t *testing.T) {
	st := messages.Status{
		State: "manual-active", Mode: "manual", Level: 50, Alpha: 128,
		Attached: true, SensorAvailable: true, Missing: []string{"accessibility"},
	}
	rec := &recorder{reply: st.Format()}

	out, err := execute(t, rec, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "manual-active")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "128/255")
	assert.Contains(t, out, "missing accessibility")
}

func TestStatusJSON(t *testing.T) {
	st := messages.Status{State: "disabled", Mode: "manual", Level: 70}
	rec := &recorder{reply: st.Format()}

	out, err := execute(t, rec, "status", "--json")
	require.NoError(t, err)

	var got statusJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "disabled", got.State)
	assert.Equal(t, 70, got.Level)
	assert.False(t, got.Attached)
	assert.Equal(t, []string{}, got.Missing)
}

func TestStatusRejectsGarbage(t *testing.T) {
	rec := &recorder{reply: "nonsense"}
	_, err := execute(t, rec, "status")
	assert.ErrorIs(t, err, messages.ErrMalformed)
}
