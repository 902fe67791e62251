package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/molscreen/internal/domain/screen"
)

func TestCandidateMask(t *testing.T) {
	tests := []struct {
		name  string
		query screen.Fingerprint
		want  uint64
	}{
		{
			name:  "fragment bits only",
			query: screen.Fingerprint(1<<13 | 1<<24),
			want:  1<<13 | 1<<24,
		},
		{
			name:  "stereo flag carries into mask",
			query: screen.Fingerprint(1<<5 | 1<<61),
			want:  1<<5 | 1<<61,
		},
		{
			name:  "charge flag carries into mask",
			query: screen.Fingerprint(1<<5 | 1<<62),
			want:  1<<5 | 1<<62,
		},
		{
			name:  "bucket bits never enter the mask",
			query: screen.Fingerprint(1<<5 | 7<<55 | 2<<59),
			want:  1 << 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateMask(tt.query))
		})
	}
}

// The mask must stay within int64 range so it can bind to a BIGINT
// parameter without overflow.
func TestCandidateMask_FitsSignedColumn(t *testing.T) {
	full := screen.Fingerprint(screen.FragMask | 1<<61 | 1<<62)
	mask := CandidateMask(full)
	assert.Zero(t, mask>>63, "mask must leave bit 63 clear")
}
