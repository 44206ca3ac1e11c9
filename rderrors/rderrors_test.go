package rderrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kelvare/rakdial/framing/offline"
)

func TestErrorFormat(t *testing.T) {
	err := Wrap(StageReply1, CodeTimeout, context.DeadlineExceeded)
	want := "reply1 (timeout): context deadline exceeded"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	bare := &Error{Stage: StageConnect, Code: CodeExhaustedCandidates}
	if got := bare.Error(); got != "connect (exhausted_candidates)" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(StagePing, CodeSocketFailed, fmt.Errorf("dial: %w", inner))
	if !errors.Is(err, inner) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}

	var re *Error
	if !errors.As(err, &re) {
		t.Fatal("errors.As failed")
	}
	if re.Stage != StagePing || re.Code != CodeSocketFailed {
		t.Fatalf("got %s/%s", re.Stage, re.Code)
	}
}

func TestClassifyDecodeCode(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{offline.ErrWrongID, CodeUnexpectedResponse},
		{offline.ErrNotIPv4, CodeUnsupportedAddress},
		{offline.ErrPacketTooShort, CodeMalformedPacket},
		{offline.ErrBadMagic, CodeMalformedPacket},
		{offline.ErrBadLength, CodeMalformedPacket},
		{errors.New("garbled"), CodeMalformedPacket},
	}
	for _, c := range cases {
		if got := ClassifyDecodeCode(c.err); got != c.want {
			t.Errorf("ClassifyDecodeCode(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}

func TestClassifyReceiveCode(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{context.DeadlineExceeded, CodeTimeout},
		{context.Canceled, CodeCanceled},
		{fmt.Errorf("receive: %w", context.DeadlineExceeded), CodeTimeout},
		{errors.New("connection refused"), CodeSocketFailed},
	}
	for _, c := range cases {
		if got := ClassifyReceiveCode(c.err); got != c.want {
			t.Errorf("ClassifyReceiveCode(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}
