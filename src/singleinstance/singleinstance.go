package singleinstance

// This file defines the API for single-instance ownership and the command channel.

import (
	"context"
	"errors"

	"motion-overlay/src/messages"
)

// ErrNoResident is returned by the client when no resident answers PING.
var ErrNoResident = errors.New("no resident instance is running")

// Server owns the TCP endpoint and answers command requests.
type Server interface {
	// Start begins listening on the first port of the configured range and accepting clients.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted command connection, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection carrying one command.
type Conn interface {
	// Request returns the parsed command.
	Request() messages.Command
	// Reply sends "OK [text]" or, when err is set, "ERROR <msg>".
	Reply(text string, err error) error
	// Close closes the underlying connection.
	Close() error
}

// Client sends commands to a resident server.
type Client interface {
	// Send scans the configured port range, performs the handshake and
	// delivers cmd. It returns ErrNoResident when nothing answers.
	Send(ctx context.Context, cmd messages.Command) (string, error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
