package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

// DetectResidentPort returns the first port in range whose listener answers PING.
func DetectResidentPort(ctx context.Context) (int, bool) {
	port := 0
	scan(timeoutFrom(ctx, 300*time.Millisecond), func(p int, addr string) bool {
		port = p
		return true
	})
	return port, port != 0
}

// scan calls visit for each port that answers PING until visit returns true.
func scan(timeout time.Duration, visit func(port int, addr string) bool) {
	start, end := PortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, timeout) && visit(port, addr) {
			return
		}
	}
}

func timeoutFrom(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return def
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
