package model

import (
	"context"
	"net"
)

// SecurityLayer produces the listener a server binds to, plain or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is the lifecycle contract for the HTTP frontend.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
