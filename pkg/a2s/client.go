package a2s

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Client performs single-shot queries against one game server. It owns one
// UDP socket bound to the remote endpoint and may be reused for sequential
// queries. A Client is not safe for concurrent use: replies on a shared
// socket carry no request correlation, overlapping queries would demultiplex
// wrongly. Use one Client per goroutine instead.
type Client struct {
	conn *net.UDPConn

	// Timeout bounds the wait for each reply. Zero means DefaultTimeout.
	Timeout time.Duration

	// BufferSize is the receive buffer length for a reply datagram.
	// Zero means DefaultBufferSize.
	BufferSize uint16
}

// New resolves host:port and binds a UDP socket to it. The port must be a
// valid 16-bit value; resolution failures are reported as ErrResolution.
func New(host string, port int) (*Client, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrResolution, port)
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResolution, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResolution, err)
	}

	return &Client{conn: conn}, nil
}

// Close releases the client socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetInfo sends an A2S_INFO request and decodes the reply. If the server
// answers with a challenge, the request is re-sent once with the token
// appended; a second challenge is treated as a protocol error.
func (c *Client) GetInfo() (*Info, error) {
	payload, ping, err := c.query(infoRequest(nil))
	if err != nil {
		return nil, err
	}

	info, err := decodeInfo(payload)
	if err != nil {
		return nil, err
	}
	info.Ping = ping

	return info, nil
}

// query runs one request/reply exchange including the bounded challenge
// handshake and returns the payload past the response-type byte together
// with the observed round-trip time.
func (c *Client) query(request []byte) ([]byte, time.Duration, error) {
	reply, ping, err := c.exchange(request)
	if err != nil {
		return nil, 0, err
	}

	typ, payload, err := splitResponse(reply)
	if err != nil {
		return nil, 0, err
	}

	if typ == challengeType {
		token := newReader(payload)
		challenge := make([]byte, 4)
		for i := range challenge {
			if challenge[i], err = token.readByte("challenge token"); err != nil {
				return nil, 0, err
			}
		}

		if reply, ping, err = c.exchange(append(request, challenge...)); err != nil {
			return nil, 0, err
		}
		if typ, payload, err = splitResponse(reply); err != nil {
			return nil, 0, err
		}
		if typ == challengeType {
			return nil, 0, fmt.Errorf("%w: server answered the challenge with another challenge", ErrProtocol)
		}
	}

	if typ != infoResponseType {
		return nil, 0, fmt.Errorf("%w: unexpected response type 0x%02X", ErrProtocol, typ)
	}

	return payload, ping, nil
}

// exchange writes one request datagram and blocks for a single reply up to
// Timeout. The returned duration is the send-to-receive round trip.
func (c *Client) exchange(request []byte) ([]byte, time.Duration, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	size := c.BufferSize
	if size == 0 {
		size = DefaultBufferSize
	}

	if err := c.conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, 0, err
	}

	start := time.Now()
	if _, err := c.conn.Write(request); err != nil {
		return nil, 0, classifyNetErr(err, timeout)
	}

	buf := make([]byte, size)
	n, err := c.conn.Read(buf)
	if err != nil {
		return nil, 0, classifyNetErr(err, timeout)
	}

	return buf[:n], time.Since(start), nil
}

// classifyNetErr maps socket errors onto the client error kinds. Deadline
// expiry becomes ErrTimeout; everything else (connection refused, socket
// closed) is wrapped as-is so errors.Is still reaches the cause.
func classifyNetErr(err error, timeout time.Duration) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: no reply within %s", ErrTimeout, timeout)
	}
	return fmt.Errorf("a2s: socket error: %w", err)
}
