package discovery

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/kelvare/rakdial/framing/offline"
	"github.com/kelvare/rakdial/rderrors"
)

// startResponder binds a loopback UDP socket and answers every datagram with
// the bytes produced by respond; a nil response stays silent.
func startResponder(t *testing.T, respond func(req []byte) []byte) netip.AddrPort {
	t.Helper()
	pc, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pc.Close() })
	go func() {
		buf := make([]byte, 2048)
		for {
			n, from, err := pc.ReadFromUDPAddrPort(buf)
			if err != nil {
				return
			}
			if resp := respond(append([]byte(nil), buf[:n]...)); resp != nil {
				_, _ = pc.WriteToUDPAddrPort(resp, from)
			}
		}
	}()
	return pc.LocalAddr().(*net.UDPAddr).AddrPort()
}

func TestPingOnline(t *testing.T) {
	addr := startResponder(t, func(req []byte) []byte {
		if _, _, err := offline.DecodePing(req); err != nil {
			return nil
		}
		return offline.EncodePong(offline.Pong{
			SendTimeMillis: 1,
			ServerGUID:     0xabcdef,
			Description:    []byte("MCPE;Test;649;1.21.71;3;10"),
		})
	})

	online, status, err := Ping(context.Background(), addr, Options{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if !online {
		t.Fatal("expected online")
	}
	if status.ServerGUID != 0xabcdef {
		t.Fatalf("server guid = %x", status.ServerGUID)
	}
	if status.Version != "1.21.71" || status.MOTD != "Test" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.RTT <= 0 {
		t.Fatal("expected positive rtt")
	}
}

func TestPingTimeoutIsNotAnError(t *testing.T) {
	addr := startResponder(t, func([]byte) []byte { return nil })

	online, status, err := Ping(context.Background(), addr, Options{Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("timeout must not be an error, got %v", err)
	}
	if online || status != nil {
		t.Fatalf("expected offline, got online=%v status=%+v", online, status)
	}
}

func TestPingUnexpectedResponse(t *testing.T) {
	addr := startResponder(t, func([]byte) []byte {
		return offline.EncodeOpenConnectionReply1(1, 1400)
	})

	online, _, err := Ping(context.Background(), addr, Options{Timeout: 2 * time.Second})
	if online {
		t.Fatal("expected offline")
	}
	var re *rderrors.Error
	if !errors.As(err, &re) {
		t.Fatalf("expected *rderrors.Error, got %T", err)
	}
	if re.Stage != rderrors.StagePing || re.Code != rderrors.CodeUnexpectedResponse {
		t.Fatalf("unexpected classification: %+v", re)
	}
}

func TestPingMalformedPong(t *testing.T) {
	addr := startResponder(t, func([]byte) []byte {
		return []byte{offline.IDUnconnectedPong, 0x00}
	})

	online, _, err := Ping(context.Background(), addr, Options{Timeout: 2 * time.Second})
	if online {
		t.Fatal("expected offline")
	}
	var re *rderrors.Error
	if !errors.As(err, &re) {
		t.Fatalf("expected *rderrors.Error, got %T", err)
	}
	if re.Code != rderrors.CodeMalformedPacket {
		t.Fatalf("unexpected code: %s", re.Code)
	}
}

func TestPingNonUTF8DescriptionDoesNotFail(t *testing.T) {
	raw := []byte{0xff, 0xfe, '1', '.', '2', '1', '.', '7', '1'}
	addr := startResponder(t, func([]byte) []byte {
		return offline.EncodePong(offline.Pong{ServerGUID: 5, Description: raw})
	})

	online, status, err := Ping(context.Background(), addr, Options{Timeout: 2 * time.Second})
	if err != nil || !online {
		t.Fatalf("unexpected result: online=%v err=%v", online, err)
	}
	if status.Text != "" {
		t.Fatalf("expected raw-bytes form, got text %q", status.Text)
	}
	if status.Version != "1.21.71" {
		t.Fatalf("version marker = %q", status.Version)
	}
}

func TestPingCanceled(t *testing.T) {
	addr := startResponder(t, func([]byte) []byte { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Ping(ctx, addr, Options{Timeout: 2 * time.Second})
	var re *rderrors.Error
	if !errors.As(err, &re) || re.Code != rderrors.CodeCanceled {
		t.Fatalf("expected canceled classification, got %v", err)
	}
}
