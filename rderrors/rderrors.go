package rderrors

import "fmt"

// Stage identifies which step of the offline handshake failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StagePing     Stage = "ping"
	StageRequest1 Stage = "request1"
	StageReply1   Stage = "reply1"
	StageRequest2 Stage = "request2"
	StageReply2   Stage = "reply2"
	StageLogin    Stage = "login"
	StageDrain    Stage = "drain"
	StageConnect  Stage = "connect"
)

// Code is a stable, programmatic error identifier for user-facing operations.
type Code string

const (
	CodeTimeout              Code = "timeout"
	CodeCanceled             Code = "canceled"
	CodeInvalidInput         Code = "invalid_input"
	CodeInvalidOption        Code = "invalid_option"
	CodeMissingHost          Code = "missing_host"
	CodeMissingPorts         Code = "missing_ports"
	CodeMissingVersions      Code = "missing_versions"
	CodeResolveFailed        Code = "resolve_failed"
	CodeRandomFailed         Code = "random_failed"
	CodeSocketFailed         Code = "socket_failed"
	CodeSendFailed           Code = "send_failed"
	CodeMalformedPacket      Code = "malformed_packet"
	CodeUnexpectedResponse   Code = "unexpected_response"
	CodeUnsupportedAddress   Code = "unsupported_address_family"
	CodeMTUBelowMinimum      Code = "mtu_below_minimum"
	CodeExhaustedCandidates  Code = "exhausted_candidates"
	CodeIncompatibleProtocol Code = "incompatible_protocol"
)

// Error is a structured, programmatically identifiable error for user-facing operations.
type Error struct {
	Stage Stage
	Code  Code
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Stage, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func Wrap(stage Stage, code Code, err error) error {
	return &Error{Stage: stage, Code: code, Err: err}
}
