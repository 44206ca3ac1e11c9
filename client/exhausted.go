package client

import (
	"fmt"
	"strings"

	"github.com/kelvare/rakdial/rderrors"
)

// CandidateFailure records why one (port, protocol version) candidate did not
// establish. The full list lets callers tell a filtered server (timeouts
// everywhere) apart from a protocol version mismatch (failures after a
// successful ping).
type CandidateFailure struct {
	Port            uint16
	ProtocolVersion byte
	Stage           rderrors.Stage
	Code            rderrors.Code
	Err             error
}

func (f CandidateFailure) String() string {
	return fmt.Sprintf("port=%d version=%d stage=%s code=%s", f.Port, f.ProtocolVersion, f.Stage, f.Code)
}

// ExhaustedError reports that every candidate in the search space failed. It
// always carries one entry per attempted candidate, never just the last.
type ExhaustedError struct {
	Failures []CandidateFailure
}

func (e *ExhaustedError) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "all candidates exhausted"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("all %d candidates exhausted: %s", len(e.Failures), strings.Join(parts, "; "))
}
