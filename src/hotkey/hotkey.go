package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding ties one combination such as "Ctrl+Alt+O" to a callback.
type Binding struct {
	Combo    string
	Callback func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

type combo struct {
	config   string
	keys     []keyState
	callback func()
}

// matcher tracks key state for every configured combination.
type matcher struct {
	mu     sync.Mutex
	combos []*combo
}

func newMatcher(bindings []Binding) *matcher {
	m := &matcher{}
	for _, b := range bindings {
		if strings.TrimSpace(b.Combo) == "" {
			continue
		}
		keys := parseHotkey(b.Combo)
		log.Printf("Parsed hotkey configuration: %v", keys)

		c := &combo{config: b.Combo, callback: b.Callback}
		for _, keyName := range keys {
			rawcodes := keyNameToRawcodes(keyName)
			if len(rawcodes) == 0 {
				log.Printf("ERROR: Cannot map key '%s' to rawcodes, hotkey may not work correctly", keyName)
				continue
			}
			c.keys = append(c.keys, keyState{name: keyName, rawcodes: rawcodes})
		}
		if len(c.keys) == 0 {
			log.Printf("ERROR: No valid keys in hotkey configuration '%s'", b.Combo)
			continue
		}
		m.combos = append(m.combos, c)
	}
	return m
}

// keyDown records a press and returns the callbacks of every combination it
// completes. Callbacks run outside the lock.
func (m *matcher) keyDown(raw uint16) []func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var fired []func()
	for _, c := range m.combos {
		for i := range c.keys {
			if hasRawcode(c.keys[i].rawcodes, raw) {
				c.keys[i].pressed = true
			}
		}
		if c.allPressed() {
			log.Printf("Hotkey activated: %s", c.config)
			for i := range c.keys {
				c.keys[i].pressed = false
			}
			if c.callback != nil {
				fired = append(fired, c.callback)
			}
		}
	}
	return fired
}

func (m *matcher) keyUp(raw uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.combos {
		for i := range c.keys {
			if hasRawcode(c.keys[i].rawcodes, raw) {
				c.keys[i].pressed = false
			}
		}
	}
}

func (c *combo) allPressed() bool {
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	return true
}

func hasRawcode(codes []uint16, raw uint16) bool {
	for _, c := range codes {
		if c == raw {
			return true
		}
	}
	return false
}

// Listen starts one global keyboard hook serving every binding. Callbacks
// run on the hook goroutine and should only post into the event loop.
// The returned function stops the hook.
func Listen(bindings []Binding) (stop func()) {
	m := newMatcher(bindings)
	if len(m.combos) == 0 {
		log.Printf("hotkey: nothing to listen for")
		return func() {}
	}

	evChan := gohook.Start()
	if evChan == nil {
		log.Printf("ERROR: gohook.Start() returned nil channel")
		return func() {}
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				for _, cb := range m.keyDown(ev.Rawcode) {
					cb()
				}
			case gohook.KeyUp:
				m.keyUp(ev.Rawcode)
			}
		}
		log.Printf("Event channel closed")
	}()

	var once sync.Once
	return func() { once.Do(gohook.End) }
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super", "meta":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}
