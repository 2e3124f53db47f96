package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	strict    bool
	checkJSON bool
)

var errDrift = errors.New("schema drift detected")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report schema drift without changing anything",
	Long: `Inspects the database and prints what reconcile would do. Nothing is
written. With --strict the command exits non-zero when any drift is found,
which suits CI pipelines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runReconcile(cmd, reconcileRun{dryRun: true, json: checkJSON})
		if err != nil {
			return err
		}
		if strict && !report.Success {
			return errDrift
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when drift is found")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	checkCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Only check these tables (comma-separated)")
	checkCmd.Flags().String("schema", "", "Schema definition YAML (default: built-in QuestEd schema)")
	checkCmd.Flags().String("catalog", "", "Catalog/schema to inspect (default: the connection's current one)")
}
