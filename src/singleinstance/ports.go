package singleinstance

import (
	"os"
	"strconv"
)

// Loopback range the resident binds in; it takes the first free port.
const (
	defaultPortStart = 49600
	defaultPortEnd   = 49620

	minPort = 1024
	maxPort = 65535
)

// PortRange returns the inclusive port range from SINGLEINSTANCE_PORT_START
// and SINGLEINSTANCE_PORT_END, clamped to unprivileged ports.
func PortRange() (start, end int) {
	start = envPort("SINGLEINSTANCE_PORT_START", defaultPortStart)
	end = envPort("SINGLEINSTANCE_PORT_END", defaultPortEnd)
	start = max(start, minPort)
	end = min(end, maxPort)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
