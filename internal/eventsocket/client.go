// Package eventsocket implements the small slice of the FreeSWITCH
// event socket protocol this system needs: authenticate, run api
// commands, and emit custom events. The protocol is request/response,
// one command awaiting one reply per connection; a mutex enforces that.
package eventsocket

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader

	timeout time.Duration
}

// Dial connects and completes the auth handshake.
func Dial(addr, password string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("event socket dial %s: %w", addr, err)
	}

	c := &Client{conn: conn, r: bufio.NewReader(conn), timeout: timeout}
	if err := c.authenticate(password); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) authenticate(password string) error {
	_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
	defer c.conn.SetDeadline(time.Time{})

	headers, _, err := c.readMessage()
	if err != nil {
		return fmt.Errorf("event socket greeting: %w", err)
	}
	if headers["Content-Type"] != "auth/request" {
		return fmt.Errorf("unexpected greeting %q", headers["Content-Type"])
	}

	if _, err := fmt.Fprintf(c.conn, "auth %s\n\n", password); err != nil {
		return fmt.Errorf("event socket auth write: %w", err)
	}
	headers, _, err = c.readMessage()
	if err != nil {
		return fmt.Errorf("event socket auth reply: %w", err)
	}
	if !strings.HasPrefix(headers["Reply-Text"], "+OK") {
		return fmt.Errorf("event socket auth rejected: %q", headers["Reply-Text"])
	}
	return nil
}

// Connected reports whether the client still holds a live connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Command sends one command line and returns the reply: the body for
// api responses, the Reply-Text otherwise.
func (c *Client) Command(ctx context.Context, cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return "", fmt.Errorf("event socket not connected")
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetDeadline(deadline)
	defer c.conn.SetDeadline(time.Time{})

	if _, err := fmt.Fprintf(c.conn, "%s\n\n", cmd); err != nil {
		c.drop()
		return "", fmt.Errorf("event socket write: %w", err)
	}
	headers, body, err := c.readMessage()
	if err != nil {
		c.drop()
		return "", fmt.Errorf("event socket read: %w", err)
	}

	if headers["Content-Type"] == "api/response" {
		return strings.TrimSpace(body), nil
	}
	reply := headers["Reply-Text"]
	if strings.HasPrefix(reply, "-ERR") {
		return "", fmt.Errorf("event socket command failed: %s", reply)
	}
	return reply, nil
}

// SendEvent emits a generated event with the given subclass, headers
// and body, and waits for the command reply.
func (c *Client) SendEvent(ctx context.Context, name string, headers map[string]string, body string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "sendevent %s", name)
	for k, v := range headers {
		fmt.Fprintf(&b, "\n%s: %s", k, v)
	}
	if body != "" {
		fmt.Fprintf(&b, "\n_body: %s", body)
	}
	_, err := c.Command(ctx, b.String())
	return err
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// readMessage parses one MIME-style message: headers, blank line, and a
// Content-Length body when present.
func (c *Client) readMessage() (map[string]string, string, error) {
	headers := make(map[string]string)
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			return nil, "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}

	var body string
	if cl := headers["Content-Length"]; cl != "" {
		n, err := strconv.Atoi(cl)
		if err != nil {
			return nil, "", fmt.Errorf("bad content length %q", cl)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(c.r, buf); err != nil {
			return nil, "", err
		}
		body = string(buf)
	}
	return headers, body, nil
}
