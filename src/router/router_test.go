package router

import (
	"errors"
	"testing"

	"motion-overlay/src/messages"
)

type countingTarget struct{ toggles int }

func (c *countingTarget) OnExternalToggle() { c.toggles++ }

type fakeBrightness struct {
	calls int
	err   error
}

func (f *fakeBrightness) Toggle() error {
	f.calls++
	return f.err
}

func TestDispatchFilter(t *testing.T) {
	r := NewRouter(nil)
	if err := r.Dispatch(messages.ActionAdjustFilter); err != nil {
		t.Fatalf("Expected no-op without target, got %v", err)
	}

	target := &countingTarget{}
	r.Register(target)
	if err := r.Dispatch(messages.ActionAdjustFilter); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if target.toggles != 1 {
		t.Errorf("Expected 1 toggle, got %d", target.toggles)
	}

	r.Unregister(target)
	if r.Registered() {
		t.Errorf("Expected no target after unregister")
	}
	_ = r.Dispatch(messages.ActionAdjustFilter)
	if target.toggles != 1 {
		t.Errorf("Expected unregistered target to be left alone, got %d toggles", target.toggles)
	}
}

func TestUnregisterStaleTarget(t *testing.T) {
	r := NewRouter(nil)
	first, second := &countingTarget{}, &countingTarget{}
	r.Register(first)
	r.Register(second)
	r.Unregister(first)
	if !r.Registered() {
		t.Fatalf("Expected second target to stay registered")
	}
	_ = r.Dispatch(messages.ActionAdjustFilter)
	if first.toggles != 0 || second.toggles != 1 {
		t.Errorf("Expected only second target toggled, got first=%d second=%d", first.toggles, second.toggles)
	}
}

func TestDispatchBrightness(t *testing.T) {
	b := &fakeBrightness{}
	r := NewRouter(b)
	if err := r.Dispatch(messages.ActionAdjustBrightness); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if b.calls != 1 {
		t.Errorf("Expected 1 brightness toggle, got %d", b.calls)
	}

	b.err = errors.New("read-only")
	if err := r.Dispatch(messages.ActionAdjustBrightness); err == nil {
		t.Errorf("Expected brightness error to propagate")
	}
}

func TestDispatchUnknown(t *testing.T) {
	r := NewRouter(nil)
	err := r.Dispatch(messages.Action("ADJUST_VOLUME"))
	if !errors.Is(err, messages.ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
}
