package rderrors

import (
	"context"
	"errors"

	"github.com/kelvare/rakdial/framing/offline"
)

// ClassifyDecodeCode maps an offline codec error to a stable Code.
func ClassifyDecodeCode(err error) Code {
	switch {
	case errors.Is(err, offline.ErrWrongID):
		return CodeUnexpectedResponse
	case errors.Is(err, offline.ErrNotIPv4):
		return CodeUnsupportedAddress
	case errors.Is(err, offline.ErrPacketTooShort),
		errors.Is(err, offline.ErrBadMagic),
		errors.Is(err, offline.ErrBadLength):
		return CodeMalformedPacket
	default:
		return CodeMalformedPacket
	}
}

// ClassifyReceiveCode maps a transport receive error to a stable Code.
func ClassifyReceiveCode(err error) Code {
	return classifyContextCode(err, CodeSocketFailed)
}

func classifyContextCode(err error, fallback Code) Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	default:
		return fallback
	}
}
