package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

const detectTimeout = 300 * time.Millisecond

// DetectResidentPort returns the port of a resident answering PING, if any.
func DetectResidentPort(ctx context.Context) (int, bool) {
	addr, ok := findResident(ctx, detectTimeout)
	if !ok {
		return 0, false
	}
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, false
	}
	port, err := strconv.Atoi(p)
	return port, err == nil
}

// findResident walks the port range and returns the first address whose
// listener speaks the PING/PONG handshake.
func findResident(ctx context.Context, timeout time.Duration) (string, bool) {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}
	start, end := PortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return "", false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, timeout) {
			return addr, true
		}
	}
	return "", false
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
