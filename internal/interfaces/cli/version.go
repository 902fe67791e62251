package cli

import (
	"github.com/spf13/cobra"
)

// versionInfo is the version command's printable result.
type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

func (v versionInfo) String() string {
	return "molscreen " + v.Version + " (commit: " + v.GitCommit + ", built: " + v.BuildDate + ")"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return PrintResult(cmd, versionInfo{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
			})
		},
	}
}
