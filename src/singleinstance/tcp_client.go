package singleinstance

import (
	"bufio"
	"context"
	"net"
	"time"

	"motion-overlay/src/messages"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd messages.Command) (string, error) {
	deadline := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	addr, ok := findResident(ctx, deadline)
	if !ok {
		return "", ErrNoResident
	}
	return send(addr, cmd, deadline)
}

func send(addr string, cmd messages.Command, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(cmd.Line()); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", err
	}
	return messages.ParseReply(line)
}
