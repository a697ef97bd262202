package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

// TryRunOnce sends req to the first resident that answers PING. delegated is
// true once a resident has taken the request, even when it answers ERROR.
func (c *tcpClient) TryRunOnce(ctx context.Context, req Request) (delegated bool, text string, err error) {
	timeout := timeoutFrom(ctx, 2*time.Second)
	scan(timeout, func(_ int, addr string) bool {
		var ok bool
		ok, text, err = send(addr, req, timeout)
		if ok {
			delegated = true
		}
		return ok
	})
	return delegated, text, err
}

// send reports ok=false when the connection dropped before a status line
// arrived, so the caller can try the next port.
func send(addr string, req Request, timeout time.Duration) (ok bool, text string, err error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false, "", nil
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := conn.Write([]byte(req.Name() + "\n")); err != nil {
		return true, "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return true, "", err
	}
	rest, _ := io.ReadAll(br)
	switch status {
	case successResponse:
		return true, string(rest), nil
	case errorResponse:
		return true, "", errors.New(strings.TrimSpace(string(rest)))
	}
	return false, "", nil
}
