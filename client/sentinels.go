package client

import "errors"

var (
	ErrMissingHost     = errors.New("missing host")
	ErrMissingPorts    = errors.New("missing ports")
	ErrMissingVersions = errors.New("missing protocol versions")
	ErrNoIPv4Address   = errors.New("host has no IPv4 address")
)
