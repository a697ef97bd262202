package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550

	PortStartEnvVar = "SINGLEINSTANCE_PORT_START"
	PortEndEnvVar   = "SINGLEINSTANCE_PORT_END"
)

// PortRange returns the inclusive loopback port range the resident binds
// within and clients scan, clamped to [1024, 65535].
func PortRange() (start, end int) {
	start = envPort(PortStartEnvVar, defaultPortStart)
	end = envPort(PortEndEnvVar, defaultPortEnd)
	start = max(start, 1024)
	end = min(end, 65535)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}
