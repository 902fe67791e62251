package screen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/molscreen/pkg/errors"
)

// bitOf returns the fingerprint bit index of the i-th threshold of the
// named pattern, derived the same way the encoder derives it.
func bitOf(t *testing.T, smiles string, thresholdIdx int) uint8 {
	t.Helper()
	bit := 0
	for _, p := range FragmentLibrary {
		if p.SMILES == smiles {
			require.Less(t, thresholdIdx, len(p.Thresholds))
			return uint8(bit + thresholdIdx)
		}
		bit += len(p.Thresholds)
	}
	t.Fatalf("pattern %q not in catalog", smiles)
	return 0
}

func newTestEncoder(t *testing.T, tk *fakeToolkit) *Encoder {
	t.Helper()
	enc, err := NewEncoder(tk, logging.NewNopLogger())
	require.NoError(t, err)
	return enc
}

func TestNewEncoder_CompilesWholeCatalog(t *testing.T) {
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)
	assert.Len(t, enc.fragments, len(FragmentLibrary))
	assert.Equal(t, uint8(0), enc.fragments[0].firstBit)
}

func TestNewEncoder_NilCounter(t *testing.T) {
	_, err := NewEncoder(nil, logging.NewNopLogger())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeFragmentLibraryBuild))
}

func TestNewEncoder_CompileFailure(t *testing.T) {
	tk := newFakeToolkit()
	tk.failPatterns["cnc"] = true
	_, err := NewEncoder(tk, logging.NewNopLogger())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeFragmentLibraryBuild))
}

func TestEncode_Benzene(t *testing.T) {
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)

	fp, err := enc.Encode(benzene())
	require.NoError(t, err)

	want := uint64(1)<<bitOf(t, "c1ccccc1", 0) | // ring present once
		uint64(1)<<55 | // 6 heavy atoms -> bucket 1
		uint64(1)<<59 // 1 ring
	assert.Equal(t, Fingerprint(want), fp)
	assert.False(t, fp.HasStereoCenters())
	assert.False(t, fp.HasCharges())
}

func TestEncode_ThresholdStaircase(t *testing.T) {
	// "O" owns five bits for thresholds 2, 3, 1, 4, 5 in that order.
	// A count of 3 satisfies the first three and misses the last two.
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)

	mol := &fakeMol{smiles: "oxygens", heavyAtoms: 3, fragCounts: map[string]int{"O": 3}}
	fp, err := enc.Encode(mol)
	require.NoError(t, err)

	assert.Equal(t, uint64(0b00111), fp.FragmentBits())
}

func TestEncode_Deterministic(t *testing.T) {
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)

	mol := toluene()
	first, err := enc.Encode(mol)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := enc.Encode(mol)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncode_FlagBits(t *testing.T) {
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)

	mol := &fakeMol{
		smiles:     "flagged",
		heavyAtoms: 12,
		rings:      5,
		stereo:     true,
		charged:    true,
		fragCounts: map[string]int{},
	}
	fp, err := enc.Encode(mol)
	require.NoError(t, err)

	assert.Equal(t, uint8(2), fp.HeavyAtomBucket())
	assert.Equal(t, uint8(3), fp.RingBucket(), "ring bucket saturates at 3")
	assert.True(t, fp.HasStereoCenters())
	assert.True(t, fp.HasCharges())
	assert.Zero(t, uint64(fp)>>63, "reserved bit must stay clear")
}

func TestEncode_ReservedBitNeverSet(t *testing.T) {
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)

	// Saturate everything the encoder can set.
	counts := make(map[string]int)
	for _, p := range FragmentLibrary {
		counts[p.SMILES] = 255
	}
	mol := &fakeMol{
		smiles:     "maximal",
		heavyAtoms: 10000,
		rings:      10000,
		stereo:     true,
		charged:    true,
		fragCounts: counts,
	}
	fp, err := enc.Encode(mol)
	require.NoError(t, err)
	assert.Zero(t, uint64(fp)>>63)
	assert.Equal(t, FragMask, fp.FragmentBits())
}

func TestEncode_NilMolecule(t *testing.T) {
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)
	_, err := enc.Encode(nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEncodeFailed))
}

func TestEncode_CountFailure(t *testing.T) {
	tk := newFakeToolkit()
	enc := newTestEncoder(t, tk)
	tk.countErr = errors.New("toolkit exploded")

	_, err := enc.Encode(benzene())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEncodeFailed))
}

func BenchmarkEncode(b *testing.B) {
	tk := newFakeToolkit()
	enc, err := NewEncoder(tk, logging.NewNopLogger())
	if err != nil {
		b.Fatal(err)
	}
	mol := toluene()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.Encode(mol); err != nil {
			b.Fatal(err)
		}
	}
}
