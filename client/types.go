package client

import "github.com/kelvare/rakdial/rderrors"

type Error = rderrors.Error

type Stage = rderrors.Stage

const (
	StageValidate = rderrors.StageValidate
	StagePing     = rderrors.StagePing
	StageRequest1 = rderrors.StageRequest1
	StageReply1   = rderrors.StageReply1
	StageRequest2 = rderrors.StageRequest2
	StageReply2   = rderrors.StageReply2
	StageLogin    = rderrors.StageLogin
	StageDrain    = rderrors.StageDrain
	StageConnect  = rderrors.StageConnect
)

type Code = rderrors.Code

const (
	CodeTimeout              = rderrors.CodeTimeout
	CodeCanceled             = rderrors.CodeCanceled
	CodeInvalidInput         = rderrors.CodeInvalidInput
	CodeInvalidOption        = rderrors.CodeInvalidOption
	CodeMissingHost          = rderrors.CodeMissingHost
	CodeMissingPorts         = rderrors.CodeMissingPorts
	CodeMissingVersions      = rderrors.CodeMissingVersions
	CodeResolveFailed        = rderrors.CodeResolveFailed
	CodeRandomFailed         = rderrors.CodeRandomFailed
	CodeSocketFailed         = rderrors.CodeSocketFailed
	CodeSendFailed           = rderrors.CodeSendFailed
	CodeMalformedPacket      = rderrors.CodeMalformedPacket
	CodeUnexpectedResponse   = rderrors.CodeUnexpectedResponse
	CodeUnsupportedAddress   = rderrors.CodeUnsupportedAddress
	CodeMTUBelowMinimum      = rderrors.CodeMTUBelowMinimum
	CodeExhaustedCandidates  = rderrors.CodeExhaustedCandidates
	CodeIncompatibleProtocol = rderrors.CodeIncompatibleProtocol
)
