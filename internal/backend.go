package internal

import (
	"context"

	"github.com/galacticturtle/galacticd/internal/core/client"
)

// Backend is an interface for a server that handles the conversation with
// connected clients once the frontend has split their input into lines.
//
// The frontend calls every method from a single goroutine, so implementations
// may keep shared state without locking.
type Backend interface {
	// Name returns a uniquely identifying string.
	Identifier() string

	// Init is called before a Backend is started as a hook for the Backend to
	// perform any necessary initialization before it can accept clients.
	Init(ctx context.Context) error

	// Handshake performs any connection initialization necessary to begin
	// communicating with the client. This likely involves sending a welcome text.
	Handshake(c *client.Client) error

	// Handle is the main entry point for processing client input. It's called
	// once per complete line, with surrounding whitespace already trimmed.
	Handle(ctx context.Context, c *client.Client, line string) error

	// Disconnect is called exactly once after the client's connection closed,
	// whoever closed it.
	Disconnect(c *client.Client)
}
