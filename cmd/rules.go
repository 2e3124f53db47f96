package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"schema-mend/internal/dialect"
	"schema-mend/internal/engine"
)

var rulesDialect string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the column type inference rules",
	Long: `Lists the naming conventions used to pick a type for a missing column,
in the order they are tried, with the column definition each one produces
for the selected database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		driver := rulesDialect
		if driver == "" {
			if conn, err := resolveConnection(); err == nil {
				driver = conn.Driver
			}
		}
		d := dialect.GetDialect(driver)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "#\tRULE\tCOLUMN NAME\tTYPE\t%s\n", d.Name())
		for i, r := range engine.DefaultRules {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Name, r.Pattern, r.Type, d.ColumnDefinition(r.Type))
		}
		return w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVar(&rulesDialect, "dialect", "", "Render for this driver (default: the configured database, else mysql)")
}
