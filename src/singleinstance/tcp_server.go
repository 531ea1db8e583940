package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"motion-overlay/src/messages"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"

	requestTimeout = 3 * time.Second
	replyTimeout   = 5 * time.Second
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	lis       net.Listener
	incoming  chan *tcpConn
	done      chan struct{}
	closeOnce sync.Once
	port      int
}

func newTcpServer() *tcpServer {
	return &tcpServer{incoming: make(chan *tcpConn, 8), done: make(chan struct{})}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := PortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go s.acceptLoop(ctx)
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		tc := s.readRequest(c)
		if tc == nil {
			continue
		}
		select {
		case s.incoming <- tc:
		case <-ctx.Done():
			_ = c.Close()
			return
		case <-s.done:
			_ = c.Close()
			return
		}
	}
}

// readRequest answers PING and malformed lines itself and returns nil for
// them. Commands are handed to the event loop.
func (s *tcpServer) readRequest(c net.Conn) *tcpConn {
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(requestTimeout))
	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	line, _ := br.ReadString('\n')

	if line == pingRequest {
		log.Printf("singleinstance: PING from %s -> PONG", remote)
		_, _ = bw.WriteString(pongResponse)
		_ = bw.Flush()
		_ = c.Close()
		return nil
	}

	cmd, err := messages.ParseCommand(line)
	if err != nil {
		log.Printf("singleinstance: bad request from %s: %v", remote, err)
		_, _ = bw.WriteString(messages.FormatReply("", err))
		_ = bw.Flush()
		_ = c.Close()
		return nil
	}
	log.Printf("singleinstance: command from %s: %s %s", remote, cmd.Verb, cmd.Arg)
	_ = c.SetDeadline(time.Now().Add(replyTimeout))
	return &tcpConn{c: c, r: cmd, w: bw}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, net.ErrClosed
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.lis != nil {
			_ = s.lis.Close()
		}
	})
	return nil
}

type tcpConn struct {
	c net.Conn
	r messages.Command
	w *bufio.Writer
}

func (tc *tcpConn) Request() messages.Command { return tc.r }

func (tc *tcpConn) Reply(text string, err error) error {
	if _, werr := tc.w.WriteString(messages.FormatReply(text, err)); werr != nil {
		return werr
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
