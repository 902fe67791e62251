package screen

import (
	"encoding/binary"
	"fmt"

	"github.com/turtacn/molscreen/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Record — fingerprint prefix + opaque payload
// ─────────────────────────────────────────────────────────────────────────────

// PrefixBytes is the size of the fingerprint prefix at the head of every
// record.  The fingerprint is written little-endian, so the low fragment
// bits land in the first bytes of the buffer.
const PrefixBytes = 8

// Record is a stored molecule: an 8-byte fingerprint prefix followed by an
// opaque serialized payload whose format belongs to the toolkit that wrote
// it.  A Record owns its buffer exclusively; accessors return copies, and a
// Record is never mutated after construction.
//
// The prefix exists so that searches can screen a record without touching
// the payload.  Deserializing a molecule is orders of magnitude more
// expensive than reading eight bytes.
type Record struct {
	buf []byte
}

// Assemble packs a fingerprint and payload into a Record.  The payload may
// be empty; the resulting record is still valid and carries only the prefix.
// Input bytes are copied, so the caller keeps ownership of payload.
func Assemble(fp Fingerprint, payload []byte) Record {
	buf := make([]byte, PrefixBytes+len(payload))
	binary.LittleEndian.PutUint64(buf, uint64(fp))
	copy(buf[PrefixBytes:], payload)
	return Record{buf: buf}
}

// FromBytes reconstructs a Record from raw stored bytes, copying them.
// Anything shorter than the prefix cannot be a record and is rejected with
// ErrCodeCorruptRecord.
func FromBytes(data []byte) (Record, error) {
	if len(data) < PrefixBytes {
		return Record{}, errors.Newf(errors.ErrCodeCorruptRecord,
			"record is %d bytes, prefix needs %d", len(data), PrefixBytes)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return Record{buf: buf}, nil
}

// valid reports whether the buffer is long enough to be a record.  The zero
// Record is invalid; accessors check rather than index out of bounds.
func (r Record) valid() bool {
	return len(r.buf) >= PrefixBytes
}

// Fingerprint returns the screening fingerprint stored in the prefix.
func (r Record) Fingerprint() (Fingerprint, error) {
	if !r.valid() {
		return 0, errors.New(errors.ErrCodeCorruptRecord, "record has no fingerprint prefix")
	}
	return Fingerprint(binary.LittleEndian.Uint64(r.buf)), nil
}

// PrefixBits returns the first four bytes of the record as a 32-bit word.
// Exact-match comparison uses it as a cheap first-pass filter before any
// payload work.
func (r Record) PrefixBits() (uint32, error) {
	if !r.valid() {
		return 0, errors.New(errors.ErrCodeCorruptRecord, "record has no fingerprint prefix")
	}
	return binary.LittleEndian.Uint32(r.buf), nil
}

// Payload returns a copy of the serialized molecule bytes.
func (r Record) Payload() ([]byte, error) {
	if !r.valid() {
		return nil, errors.New(errors.ErrCodeCorruptRecord, "record has no fingerprint prefix")
	}
	out := make([]byte, len(r.buf)-PrefixBytes)
	copy(out, r.buf[PrefixBytes:])
	return out, nil
}

// PayloadSize returns the payload length in bytes without copying.
func (r Record) PayloadSize() (int, error) {
	if !r.valid() {
		return 0, errors.New(errors.ErrCodeCorruptRecord, "record has no fingerprint prefix")
	}
	return len(r.buf) - PrefixBytes, nil
}

// Bytes returns a copy of the full record buffer, prefix included.  This is
// the form handed to storage.
func (r Record) Bytes() []byte {
	out := make([]byte, len(r.buf))
	copy(out, r.buf)
	return out
}

// Size returns the total record length in bytes.
func (r Record) Size() int {
	return len(r.buf)
}

// String renders a short diagnostic form; the payload is summarized, never
// dumped.
func (r Record) String() string {
	if !r.valid() {
		return fmt.Sprintf("Record(corrupt, %d bytes)", len(r.buf))
	}
	fp := Fingerprint(binary.LittleEndian.Uint64(r.buf))
	return fmt.Sprintf("Record(fp=%s, payload=%dB)", fp, len(r.buf)-PrefixBytes)
}
