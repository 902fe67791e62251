package screen

import (
	"fmt"

	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molscreen/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Encoder — molecule → Fingerprint
// ─────────────────────────────────────────────────────────────────────────────

// compiledFragment is one catalog entry after pattern compilation, with its
// bit range resolved.
type compiledFragment struct {
	smiles     string
	query      Pattern
	thresholds []uint8
	firstBit   uint8
}

// Encoder computes screening fingerprints.  It compiles the fragment catalog
// once at construction; Encode itself performs no compilation and is safe
// for concurrent use.
type Encoder struct {
	counter   MatchCounter
	fragments []compiledFragment
	log       logging.Logger
}

// NewEncoder compiles the fragment catalog against the supplied counter.
// Any compilation failure, or a catalog whose threshold total does not cover
// exactly the fragment bit region, returns ErrCodeFragmentLibraryBuild.
// Both conditions are construction-time defects: an encoder that starts is
// an encoder that can fingerprint anything parseable.
func NewEncoder(counter MatchCounter, log logging.Logger) (*Encoder, error) {
	if counter == nil {
		return nil, errors.New(errors.ErrCodeFragmentLibraryBuild, "match counter is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	fragments := make([]compiledFragment, 0, len(FragmentLibrary))
	bit := 0
	for _, p := range FragmentLibrary {
		q, err := counter.CompilePattern(p.SMILES)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFragmentLibraryBuild,
				fmt.Sprintf("failed to compile fragment %q", p.SMILES))
		}
		fragments = append(fragments, compiledFragment{
			smiles:     p.SMILES,
			query:      q,
			thresholds: p.Thresholds,
			firstBit:   uint8(bit),
		})
		bit += len(p.Thresholds)
	}
	if bit != FragmentBitCount {
		return nil, errors.Newf(errors.ErrCodeFragmentLibraryBuild,
			"fragment catalog defines %d bits, want %d", bit, FragmentBitCount)
	}

	log.Debug("fragment catalog compiled",
		logging.Int("patterns", len(fragments)),
		logging.Int("bits", bit),
	)

	return &Encoder{counter: counter, fragments: fragments, log: log}, nil
}

// Encode computes the screening fingerprint of mol.
//
// Encoding is deterministic: the same molecular graph always yields the same
// word, because the catalog order is fixed and fragment counting runs with
// the pinned ScreeningMatchParams.  Bit 63 is never set.
func (e *Encoder) Encode(mol Molecule) (Fingerprint, error) {
	if mol == nil {
		return 0, errors.New(errors.ErrCodeEncodeFailed, "molecule is nil")
	}

	params := ScreeningMatchParams()
	var fp uint64

	for _, frag := range e.fragments {
		n, err := e.counter.CountMatches(mol, frag.query, params)
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeEncodeFailed,
				fmt.Sprintf("failed to count fragment %q", frag.smiles))
		}
		if n < 0 {
			return 0, errors.Newf(errors.ErrCodeEncodeFailed,
				"negative match count %d for fragment %q", n, frag.smiles)
		}
		bit := frag.firstBit
		for _, t := range frag.thresholds {
			if n >= int(t) {
				fp |= 1 << bit
			}
			bit++
		}
	}

	fp |= uint64(HeavyAtomBucket(mol.NumHeavyAtoms())) << heavyAtomShift
	fp |= uint64(RingBucket(mol.NumRings())) << ringShift
	if mol.HasStereoCenters() {
		fp |= 1 << stereoBit
	}
	if mol.HasFormalCharges() {
		fp |= 1 << chargeBit
	}

	return Fingerprint(fp), nil
}
