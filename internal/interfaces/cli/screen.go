package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/molscreen/internal/domain/screen"
)

// fingerprintView is the printable breakdown of one fingerprint.
type fingerprintView struct {
	Fingerprint     string `json:"fingerprint"`
	FragmentBits    int    `json:"fragment_bits"`
	HeavyAtomBucket uint8  `json:"heavy_atom_bucket"`
	RingBucket      uint8  `json:"ring_bucket"`
	Stereo          bool   `json:"stereo"`
	Charges         bool   `json:"charges"`
}

func viewOf(fp screen.Fingerprint) fingerprintView {
	return fingerprintView{
		Fingerprint:     fp.String(),
		FragmentBits:    screen.Fingerprint(fp.FragmentBits()).PopCount(),
		HeavyAtomBucket: fp.HeavyAtomBucket(),
		RingBucket:      fp.RingBucket(),
		Stereo:          fp.HasStereoCenters(),
		Charges:         fp.HasCharges(),
	}
}

// screenResult is the output of the screen command.
type screenResult struct {
	Target       fingerprintView `json:"target"`
	Query        fingerprintView `json:"query"`
	MightContain bool            `json:"might_contain"`
	RejectReason string          `json:"reject_reason,omitempty"`
}

func (r screenResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "target: %s  (frag=%d size=%d rings=%d stereo=%v charges=%v)\n",
		r.Target.Fingerprint, r.Target.FragmentBits, r.Target.HeavyAtomBucket,
		r.Target.RingBucket, r.Target.Stereo, r.Target.Charges)
	fmt.Fprintf(&sb, "query:  %s  (frag=%d size=%d rings=%d stereo=%v charges=%v)\n",
		r.Query.Fingerprint, r.Query.FragmentBits, r.Query.HeavyAtomBucket,
		r.Query.RingBucket, r.Query.Stereo, r.Query.Charges)
	if r.MightContain {
		sb.WriteString("verdict: candidate (oracle verification required)")
	} else {
		fmt.Fprintf(&sb, "verdict: rejected (%s)", r.RejectReason)
	}
	return sb.String()
}

// NewScreenCmd creates the screen command: a pure containment screen of two
// hexadecimal fingerprints, no toolkit or storage involved.
func NewScreenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screen TARGET_FP QUERY_FP",
		Short: "Run the containment screen on two hex fingerprints",
		Long:  "Evaluates whether a molecule with fingerprint TARGET_FP can possibly\ncontain one with fingerprint QUERY_FP.  Both arguments are 64-bit\nhexadecimal words as printed by inspect.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseFingerprint(args[0])
			if err != nil {
				return fmt.Errorf("target: %w", err)
			}
			query, err := parseFingerprint(args[1])
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			ok, reason := screen.Screen(target, query)
			return PrintResult(cmd, screenResult{
				Target:       viewOf(target),
				Query:        viewOf(query),
				MightContain: ok,
				RejectReason: string(reason),
			})
		},
	}
}

func parseFingerprint(s string) (screen.Fingerprint, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("not a 64-bit hex fingerprint: %q", s)
	}
	return screen.Fingerprint(v), nil
}
