package client

import (
	"fmt"
	"net"
	"os"

	"github.com/galacticturtle/galacticd/internal/core/debug"
)

const readBufferSize = 1024

// Client represents a user connected through a telnet-like line client.
type Client struct {
	id         uint64
	connection net.Conn
	ipAddr     string
	port       string

	readBuf []byte
	lines   LineBuffer

	// Debugging information used for logging purposes.
	Debug     bool
	DebugTags map[string]interface{}
}

func NewClient(id uint64, connection net.Conn) *Client {
	ipAddr, port, err := net.SplitHostPort(connection.RemoteAddr().String())
	if err != nil {
		ipAddr = connection.RemoteAddr().String()
	}

	return &Client{
		id:         id,
		connection: connection,
		ipAddr:     ipAddr,
		port:       port,
		readBuf:    make([]byte, readBufferSize),
		DebugTags:  make(map[string]interface{}),
	}
}

func (c *Client) ID() uint64     { return c.id }
func (c *Client) IPAddr() string { return c.ipAddr }
func (c *Client) Port() string   { return c.port }

func (c *Client) String() string {
	return fmt.Sprintf("#%d (%s:%s)", c.id, c.ipAddr, c.port)
}

// Read consumes the available bytes directly the client's TCP connection.
func (c *Client) Read(b []byte) (int, error) {
	return c.connection.Read(b)
}

// Write directly sends data to the client over its TCP connection.
func (c *Client) Write(bytes []byte) (int, error) {
	return c.connection.Write(bytes)
}

// Close the TCP connection.
func (c *Client) Close() error {
	return c.connection.Close()
}

// ReadLines blocks until the client sends more data and returns every line
// completed by it. A nil slice with a nil error means the data read did not
// finish a line yet.
func (c *Client) ReadLines() ([]string, error) {
	n, err := c.Read(c.readBuf)
	var lines []string
	if n > 0 {
		lines = c.lines.Feed(c.readBuf[:n])
	}
	return lines, err
}

// Send writes text to the client as-is.
func (c *Client) Send(text string) error {
	if c.Debug {
		serverName, _ := c.DebugTags["server_type"].(string)
		debug.PrintLine(debug.PrintLineParams{
			Writer:     os.Stdout,
			ServerName: serverName,
			Client:     c.String(),
			Line:       text,
		})
	}
	return c.transmit([]byte(text))
}

// transmit writes the contents of data to the TCP connection until every
// byte has been written.
func (c *Client) transmit(data []byte) error {
	bytesSent := 0

	for bytesSent < len(data) {
		b, err := c.Write(data[bytesSent:])
		if err != nil {
			return fmt.Errorf("failed to send to client %v: %w", c.IPAddr(), err)
		}
		bytesSent += b
	}

	return nil
}
