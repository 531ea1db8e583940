package hotkey

import (
	"log"
	"runtime"
	"strconv"
	"strings"
)

// keyNameToRawcodes maps a key name to the rawcodes the hook reports on
// this platform: Windows virtual key codes, or X11 keysyms elsewhere.
// Modifiers map to both their left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	var codes []uint16
	if runtime.GOOS == "windows" {
		codes = vkRawcodes(keyName)
	} else {
		codes = keysymRawcodes(keyName)
	}
	if codes == nil {
		log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	}
	return codes
}

var vkSpecial = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space": {32}, "enter": {13}, "return": {13}, "esc": {27}, "escape": {27},
	"tab": {9}, "backspace": {8}, "delete": {46}, "del": {46},
	"insert": {45}, "ins": {45}, "home": {36}, "end": {35},
	"pageup": {33}, "pgup": {33}, "pagedown": {34}, "pgdn": {34},
	"left": {37}, "up": {38}, "right": {39}, "down": {40},
}

var keysymSpecial = map[string][]uint16{
	"ctrl":  {0xffe3, 0xffe4}, // Control_L, Control_R
	"alt":   {0xffe9, 0xffea}, // Alt_L, Alt_R
	"shift": {0xffe1, 0xffe2}, // Shift_L, Shift_R
	"cmd":   {0xffeb, 0xffec}, // Super_L, Super_R

	"space": {0x20}, "enter": {0xff0d}, "return": {0xff0d}, "esc": {0xff1b}, "escape": {0xff1b},
	"tab": {0xff09}, "backspace": {0xff08}, "delete": {0xffff}, "del": {0xffff},
	"insert": {0xff63}, "ins": {0xff63}, "home": {0xff50}, "end": {0xff57},
	"pageup": {0xff55}, "pgup": {0xff55}, "pagedown": {0xff56}, "pgdn": {0xff56},
	"left": {0xff51}, "up": {0xff52}, "right": {0xff53}, "down": {0xff54},
}

func vkRawcodes(name string) []uint16 {
	if codes, ok := vkSpecial[name]; ok {
		return codes
	}
	if name == "win" || name == "super" {
		return vkSpecial["cmd"]
	}
	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	if n, ok := functionKey(name); ok {
		return []uint16{uint16(111 + n)} // VK_F1 is 112
	}
	return nil
}

func keysymRawcodes(name string) []uint16 {
	if codes, ok := keysymSpecial[name]; ok {
		return codes
	}
	if name == "win" || name == "super" {
		return keysymSpecial["cmd"]
	}
	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return []uint16{uint16(c)}
		}
	}
	if n, ok := functionKey(name); ok {
		return []uint16{uint16(0xffbd + n)} // XK_F1 is 0xffbe
	}
	return nil
}

// functionKey parses "f1".."f24".
func functionKey(name string) (int, bool) {
	if !strings.HasPrefix(name, "f") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 || n > 24 {
		return 0, false
	}
	return n, true
}
