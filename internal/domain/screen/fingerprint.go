// Package screen implements the 64-bit substructure screening fingerprint:
// encoding molecules into fingerprints, packing fingerprints into binary
// records with an opaque payload, and the containment screen that lets a
// search discard most non-matching records without deserializing them.
//
// Bit layout of a fingerprint word:
//
//	bits  0-54  fragment threshold flags (FragmentLibrary order)
//	bits 55-58  heavy-atom count bucket (4 bits, non-uniform ranges)
//	bits 59-60  ring count bucket (2 bits, 3 means "3 or more")
//	bit     61  has stereocenters
//	bit     62  has formal charges
//	bit     63  reserved, always zero
package screen

import (
	"fmt"
	"math/bits"
)

// Layout constants.  These define the wire format of stored fingerprints;
// changing any of them invalidates every persisted record.
const (
	// FragmentBitCount is the number of low bits owned by fragment flags.
	FragmentBitCount = 55

	// FragMask selects the fragment flag region of a fingerprint.
	FragMask uint64 = (1 << FragmentBitCount) - 1

	heavyAtomShift = 55
	ringShift      = 59
	stereoBit      = 61
	chargeBit      = 62
)

// Fingerprint is the 64-bit screening fingerprint of a molecule.
// It is a value type; all accessors are pure bit extraction.
type Fingerprint uint64

// FragmentBits returns the low 55 fragment flag bits.
func (fp Fingerprint) FragmentBits() uint64 {
	return uint64(fp) & FragMask
}

// HeavyAtomBucket returns the 4-bit heavy-atom count bucket (0-15).
func (fp Fingerprint) HeavyAtomBucket() uint8 {
	return uint8(uint64(fp)>>heavyAtomShift) & 0xF
}

// RingBucket returns the 2-bit ring count bucket (0-3, 3 meaning "3+").
func (fp Fingerprint) RingBucket() uint8 {
	return uint8(uint64(fp)>>ringShift) & 0x3
}

// HasStereoCenters reports whether the stereo flag (bit 61) is set.
func (fp Fingerprint) HasStereoCenters() bool {
	return uint64(fp)&(1<<stereoBit) != 0
}

// HasCharges reports whether the formal-charge flag (bit 62) is set.
func (fp Fingerprint) HasCharges() bool {
	return uint64(fp)&(1<<chargeBit) != 0
}

// PopCount returns the number of set bits in the full word.
func (fp Fingerprint) PopCount() int {
	return bits.OnesCount64(uint64(fp))
}

// String renders the fingerprint as a fixed-width hexadecimal literal,
// the form used in logs and by the inspect CLI command.
func (fp Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(fp))
}

// HeavyAtomBucket maps a heavy-atom count onto a 4-bit bucket.  The ranges
// are non-uniform: fine-grained through typical drug-like sizes, coarser
// above.  Bucket ordering is monotone in count, which is what makes the
// size check in MightContain valid.
func HeavyAtomBucket(count int) uint8 {
	switch {
	case count <= 5:
		return 0
	case count <= 10:
		return 1
	case count <= 15:
		return 2
	case count <= 20:
		return 3
	case count <= 25:
		return 4
	case count <= 30:
		return 5
	case count <= 35:
		return 6
	case count <= 40:
		return 7
	case count <= 50:
		return 8
	case count <= 60:
		return 9
	case count <= 75:
		return 10
	case count <= 90:
		return 11
	case count <= 110:
		return 12
	case count <= 140:
		return 13
	case count <= 180:
		return 14
	default:
		return 15
	}
}

// RingBucket maps a ring count onto a 2-bit bucket: 0, 1, 2, or 3 for
// "three or more".
func RingBucket(count int) uint8 {
	if count >= 3 {
		return 3
	}
	if count < 0 {
		return 0
	}
	return uint8(count)
}
