//go:build linux

package httpclient

import (
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// fastOpenControl enables TCP fast open on outgoing sockets. Kernels without
// support simply ignore the option.
func fastOpenControl(network, _ string, c syscall.RawConn) error {
	if !strings.HasPrefix(network, "tcp") {
		return nil
	}
	return c.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_FASTOPEN_CONNECT, 1)
	})
}
