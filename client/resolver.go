package client

import "net"

// defaultResolver is swappable in tests.
var defaultResolver = net.DefaultResolver

func resolver() *net.Resolver { return defaultResolver }
