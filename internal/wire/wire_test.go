package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func mustDecode(t *testing.T, b []byte) Entry {
	t.Helper()
	e, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return e
}

func TestPlainRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil, // negative marker
		[]byte("hello"),
		{0, 1, 2, 3, 4},
	}
	for _, payload := range cases {
		e := mustDecode(t, EncodePlain(payload))
		if e.Logical {
			t.Fatalf("plain entry decoded as logical")
		}
		if !bytes.Equal(e.Payload, payload) {
			t.Fatalf("payload mismatch: got %x want %x", e.Payload, payload)
		}
	}
}

func TestNegativeMarker(t *testing.T) {
	e := mustDecode(t, EncodePlain(nil))
	if !e.Negative() {
		t.Fatalf("empty plain entry should be the absence marker")
	}
	if mustDecode(t, EncodePlain([]byte("x"))).Negative() {
		t.Fatalf("non-empty entry must not read as absent")
	}
}

func TestLogicalRoundTripAndFreshness(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	e := mustDecode(t, EncodeLogical(exp, []byte("v")))
	if !e.Logical {
		t.Fatalf("logical entry decoded as plain")
	}
	if !e.Expiry.Equal(exp) {
		t.Fatalf("expiry mismatch: got %v want %v", e.Expiry, exp)
	}
	if !e.Fresh(time.Now()) {
		t.Fatalf("future expiry should be fresh")
	}
	if e.Fresh(exp.Add(time.Second)) {
		t.Fatalf("past expiry should be stale")
	}
	// logical entries are never the absence marker, even with empty payload
	if mustDecode(t, EncodeLogical(exp, nil)).Negative() {
		t.Fatalf("logical entry must not read as absent")
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	enc := EncodePlain([]byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	badKind := append([]byte(nil), enc...)
	badKind[5] = 99
	if _, err := Decode(badKind); err == nil {
		t.Fatalf("expected error on unknown kind")
	}

	// vlen disagreeing with the buffer, both directions
	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[6:10], uint32(len("abc")+1))
	if _, err := Decode(tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}
	trailing := append(append([]byte(nil), enc...), 0xDE, 0xAD)
	if _, err := Decode(trailing); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}

	if _, err := Decode(enc[:len(enc)-1]); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
	if _, err := Decode([]byte("not-wire")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}

	// logical header cut off after the kind byte
	logical := EncodeLogical(time.Now(), []byte("p"))
	if _, err := Decode(logical[:8]); err == nil {
		t.Fatalf("expected error on truncated logical header")
	}
}
