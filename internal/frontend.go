package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/galacticturtle/galacticd/internal/core"
	"github.com/galacticturtle/galacticd/internal/core/client"
	gdebug "github.com/galacticturtle/galacticd/internal/core/debug"
)

const rejectionMessage = "Too many clients. Try again later.\r\n"

type eventType int

const (
	eventConnected eventType = iota
	eventLine
	eventClosed
)

// event is something that happened on one client connection.
type event struct {
	typ    eventType
	client *client.Client
	line   string
}

// frontend implements the concurrent client connection logic.
//
// Every connection gets a goroutine that only reads from it and splits the
// input into lines. Connections, lines and disconnects are all funneled into a
// single event channel drained by one dispatcher goroutine, which is the only
// one that ever calls into the Backend.
type frontend struct {
	Address string
	Backend Backend
	Config  *core.Config
	Logger  *logrus.Logger

	events    chan event
	clients   map[uint64]*client.Client
	connected atomic.Int64
	lastID    uint64
	listener  *net.TCPListener
}

// Start initializes the server backend and opens a TCP socket for the specified server.
// The accept loop and the dispatcher are spun off in their own goroutines and
// added to the WaitGroup. Context cancellations will stop the server.
func (f *frontend) Start(ctx context.Context, wg *sync.WaitGroup) error {
	if err := f.Backend.Init(ctx); err != nil {
		return fmt.Errorf("error initializing %s server: %w", f.Backend.Identifier(), err)
	}

	socket, err := f.createSocket()
	if err != nil {
		return fmt.Errorf("error creating socket on %s: %w", f.Address, err)
	}
	f.listener = socket
	f.events = make(chan event)
	f.clients = make(map[uint64]*client.Client)

	readers := &sync.WaitGroup{}
	wg.Add(2)
	go f.acceptConnections(ctx, socket, readers, wg)
	go f.dispatch(ctx, readers, wg)

	return nil
}

// Addr returns the address the frontend is listening on.
func (f *frontend) Addr() net.Addr {
	return f.listener.Addr()
}

// createSocket opens a TCP socket to listen for client connections on the Address
// provided to the frontend.
func (f *frontend) createSocket() (*net.TCPListener, error) {
	hostAddr, err := net.ResolveTCPAddr("tcp", f.Address)
	if err != nil {
		return nil, fmt.Errorf("error resolving address %w", err)
	}

	socket, err := net.ListenTCP("tcp", hostAddr)
	if err != nil {
		return nil, fmt.Errorf("error listening on socket: %w", err)
	}

	return socket, nil
}

// acceptConnections accepts clients until the context is cancelled, turning
// away anyone over the connection limit, and starts a reader for each client.
func (f *frontend) acceptConnections(ctx context.Context, socket *net.TCPListener, readers *sync.WaitGroup, wg *sync.WaitGroup) {
	defer wg.Done()

	f.Logger.Printf("[%s] waiting for connections on %v", f.Backend.Identifier(), socket.Addr())

	go func() {
		<-ctx.Done()
		_ = socket.Close()
	}()

	for {
		connection, err := socket.AcceptTCP()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			f.Logger.Warnf("failed to accept connection: %s", err.Error())
			continue
		}

		if f.connected.Load() >= int64(f.Config.MaxConnections) {
			f.Logger.Infof("[%s] rejected connection from %s: server full", f.Backend.Identifier(), connection.RemoteAddr())
			_, _ = connection.Write([]byte(rejectionMessage))
			_ = connection.Close()
			continue
		}
		f.connected.Add(1)

		f.lastID++
		c := client.NewClient(f.lastID, connection)
		c.Debug = f.Config.Debugging.LineLoggingEnabled
		c.DebugTags["server_type"] = f.Backend.Identifier()

		// The connect event has to be queued before any of the client's lines.
		readers.Add(1)
		if !f.post(ctx, event{typ: eventConnected, client: c}) {
			readers.Done()
			_ = connection.Close()
			return
		}
		go f.readLines(ctx, c, readers)
	}
}

// readLines starts a blocking loop dedicated to reading data sent from a
// client and only returns once the connection has closed.
func (f *frontend) readLines(ctx context.Context, c *client.Client, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		lines, err := c.ReadLines()
		for _, line := range lines {
			if !f.post(ctx, event{typ: eventLine, client: c, line: line}) {
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				f.Logger.Warnf("[%s] error reading from %s: %s", f.Backend.Identifier(), c, err)
			}
			f.post(ctx, event{typ: eventClosed, client: c})
			return
		}
	}
}

// post hands an event to the dispatcher. It returns false if the frontend is
// shutting down.
func (f *frontend) post(ctx context.Context, e event) bool {
	select {
	case f.events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// dispatch is the only goroutine that touches the Backend. Each event is
// processed to completion before the next one is taken.
func (f *frontend) dispatch(ctx context.Context, readers *sync.WaitGroup, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			f.Logger.Infof("[%v] shutting down (closing %d connections)", f.Backend.Identifier(), len(f.clients))
			for _, c := range f.clients {
				f.disconnect(c)
			}
			readers.Wait()
			f.Logger.Infof("[%v] exited", f.Backend.Identifier())
			return
		case e := <-f.events:
			switch e.typ {
			case eventConnected:
				f.acceptClient(e.client)
			case eventLine:
				f.handleLine(ctx, e.client, e.line)
			case eventClosed:
				f.disconnect(e.client)
			}
		}
	}
}

// acceptClient registers the client and lets the Backend greet it.
func (f *frontend) acceptClient(c *client.Client) {
	defer f.closeConnectionAndRecover(c)

	f.clients[c.ID()] = c
	f.Logger.Infof("[%s] accepted connection from %s", f.Backend.Identifier(), c)

	if err := f.Backend.Handshake(c); err != nil {
		f.Logger.Errorf("Handshake() failed for client %s: %s", c, err)
		f.disconnect(c)
	}
}

func (f *frontend) handleLine(ctx context.Context, c *client.Client, line string) {
	// Lines still queued from a client that is already gone are dropped.
	if _, ok := f.clients[c.ID()]; !ok {
		return
	}
	defer f.closeConnectionAndRecover(c)

	if f.Config.Debugging.LineLoggingEnabled {
		gdebug.PrintLine(gdebug.PrintLineParams{
			Writer:     os.Stdout,
			ServerName: f.Backend.Identifier(),
			Client:     c.String(),
			ClientLine: true,
			Line:       line,
		})
	}

	if err := f.Backend.Handle(ctx, c, line); err != nil {
		f.Logger.Warn("error in client communication: " + err.Error())
		f.disconnect(c)
	}
}

// closeConnectionAndRecover is the failsafe that catches any panics while
// handling a client and disconnects it, leaving every other client connected.
func (f *frontend) closeConnectionAndRecover(c *client.Client) {
	if err := recover(); err != nil {
		f.Logger.Errorf("error in client communication with %s: error=%s, trace: %s",
			c, err, debug.Stack())
		f.disconnect(c)
	}
}

// disconnect closes the client's connection and tells the Backend about it.
// Calling it again for the same client does nothing.
func (f *frontend) disconnect(c *client.Client) {
	if _, ok := f.clients[c.ID()]; !ok {
		return
	}
	delete(f.clients, c.ID())
	f.connected.Add(-1)

	if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		f.Logger.Warnf("failed to close client connection: %s", err)
	}
	f.notifyDisconnect(c)

	f.Logger.Infof("[%s] disconnected client %s", f.Backend.Identifier(), c)
}

// notifyDisconnect tells the Backend a client is gone. It may run inside
// closeConnectionAndRecover, so a panic here is logged instead of propagated.
func (f *frontend) notifyDisconnect(c *client.Client) {
	defer func() {
		if err := recover(); err != nil {
			f.Logger.Errorf("error disconnecting %s: error=%s, trace: %s", c, err, debug.Stack())
		}
	}()
	f.Backend.Disconnect(c)
}
