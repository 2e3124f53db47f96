package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"schema-mend/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
