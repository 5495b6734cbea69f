//go:build !linux

package httpclient

import "syscall"

// fastOpenControl is unset outside Linux; the dialer uses plain sockets.
var fastOpenControl func(network, address string, c syscall.RawConn) error
