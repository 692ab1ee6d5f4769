package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/grove"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of grove",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grove version %s\n", strings.TrimSpace(grove.Version))
		},
	}
}
