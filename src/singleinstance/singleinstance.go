package singleinstance

// This file defines the API for single-instance ownership and capture delegation.

import (
	"context"
)

// Server owns the TCP endpoint and answers run-once requests.
type Server interface {
	// Start begins listening on first available port in [49500,49550] and accepting client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess reports that the resident accepted the request. text is
	// optional detail for the client.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request asks the resident to start a selection session.
type Request struct {
	CopyMode bool
}

// Name is the wire form of the request line.
func (r Request) Name() string {
	if r.CopyMode {
		return copyRequest
	}
	return captureRequest
}

// Client attempts to delegate a capture to a resident server.
type Client interface {
	// TryRunOnce scans the configured TCP range, performs the PING handshake,
	// and sends the request. If no resident is found, returns delegated=false, err=nil.
	TryRunOnce(ctx context.Context, req Request) (delegated bool, text string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
