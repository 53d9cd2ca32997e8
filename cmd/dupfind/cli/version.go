package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VersionInfo carries the values main embeds at build time via
// -ldflags, the same pattern the rest of this codebase uses for its
// single binary.
type VersionInfo struct {
	Version string
	Commit  string
}

func NewVersionCommand(info VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dupfind version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("dupfind %s (%s)\n", info.Version, info.Commit)
			return nil
		},
	}
}
