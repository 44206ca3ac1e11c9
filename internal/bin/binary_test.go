package bin

import (
	"bytes"
	"testing"
)

func TestBigEndianRoundTrip(t *testing.T) {
	b := make([]byte, 8)

	PutU16BE(b, 0x0102)
	if !bytes.Equal(b[:2], []byte{0x01, 0x02}) {
		t.Fatalf("u16 bytes = %x", b[:2])
	}
	if U16BE(b) != 0x0102 {
		t.Fatal("u16 round trip")
	}

	PutU32BE(b, 0x01020304)
	if U32BE(b) != 0x01020304 {
		t.Fatal("u32 round trip")
	}

	PutU64BE(b, 0x0102030405060708)
	if !bytes.Equal(b, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatalf("u64 bytes = %x", b)
	}
	if U64BE(b) != 0x0102030405060708 {
		t.Fatal("u64 round trip")
	}
}
