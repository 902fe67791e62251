package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/molscreen/internal/domain/screen"
)

// inspectResult is the output of the inspect command.
type inspectResult struct {
	File        string          `json:"file"`
	RecordSize  int             `json:"record_size"`
	PayloadSize int             `json:"payload_size"`
	PrefixBits  string          `json:"prefix_bits"`
	Fields      fingerprintView `json:"fingerprint"`
}

func (r inspectResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "record:  %s (%d bytes, %d payload)\n", r.File, r.RecordSize, r.PayloadSize)
	fmt.Fprintf(&sb, "prefix:  %s\n", r.PrefixBits)
	fmt.Fprintf(&sb, "fp:      %s\n", r.Fields.Fingerprint)
	fmt.Fprintf(&sb, "fields:  frag=%d size=%d rings=%d stereo=%v charges=%v",
		r.Fields.FragmentBits, r.Fields.HeavyAtomBucket, r.Fields.RingBucket,
		r.Fields.Stereo, r.Fields.Charges)
	return sb.String()
}

// NewInspectCmd creates the inspect command: decode a binary record file and
// print its fingerprint fields without touching the payload contents.
func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Decode a binary screening record file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			rec, err := screen.FromBytes(data)
			if err != nil {
				return err
			}
			fp, err := rec.Fingerprint()
			if err != nil {
				return err
			}
			prefix, err := rec.PrefixBits()
			if err != nil {
				return err
			}
			payloadSize, err := rec.PayloadSize()
			if err != nil {
				return err
			}

			return PrintResult(cmd, inspectResult{
				File:        args[0],
				RecordSize:  rec.Size(),
				PayloadSize: payloadSize,
				PrefixBits:  fmt.Sprintf("%08x", prefix),
				Fields:      viewOf(fp),
			})
		},
	}
}
