package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version     byte = 1
	kindPlain   byte = 1
	kindLogical byte = 2
)

var (
	ErrCorrupt = errors.New("wire: corrupt cache entry")
	magic4     = [...]byte{'N', 'C', 'H', 'E'}
)

// Entry is a decoded cache record. An empty Payload on a plain entry is the
// confirmed-absent marker: the backing store was consulted and had nothing.
// Logical entries additionally carry an application-level expiry; the store's
// own TTL is not used for them.
type Entry struct {
	Expiry  time.Time // zero for plain entries
	Payload []byte
	Logical bool
}

// Negative reports whether the entry marks a confirmed-absent key.
func (e Entry) Negative() bool { return !e.Logical && len(e.Payload) == 0 }

// Fresh reports whether a logical entry's expiry is still in the future.
func (e Entry) Fresh(now time.Time) bool { return e.Logical && e.Expiry.After(now) }

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Plain: magic(4) | ver(1) | kind(1) | vlen(u32 be) | payload(vlen)
func EncodePlain(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindPlain)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Logical: magic(4) | ver(1) | kind(1) | expiry unix sec (u64 be) | vlen(u32 be) | payload(vlen)
func EncodeLogical(expiry time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindLogical)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], uint64(expiry.Unix()))
	buf.Write(u8[:])

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func Decode(b []byte) (Entry, error) {
	const hdr = 4 + 1 + 1
	if len(b) < hdr+4 || !hasMagic(b) || b[4] != version {
		return Entry{}, ErrCorrupt
	}

	off := 6
	e := Entry{}

	switch b[5] {
	case kindPlain:
	case kindLogical:
		if off+8 > len(b) {
			return Entry{}, ErrCorrupt
		}
		e.Logical = true
		e.Expiry = time.Unix(int64(binary.BigEndian.Uint64(b[off:off+8])), 0)
		off += 8
	default:
		return Entry{}, ErrCorrupt
	}

	if off+4 > len(b) {
		return Entry{}, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// strict: the payload must consume the buffer exactly, so truncation and
	// foreign trailing bytes both read as corruption
	if vlen != len(b)-off {
		return Entry{}, ErrCorrupt
	}

	e.Payload = b[off:]
	return e, nil
}
