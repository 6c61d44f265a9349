package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/diffevo/internal/objective"
)

var objectivesCmd = &cobra.Command{
	Use:   "objectives",
	Short: "List available benchmark objectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSUGGESTED BOUNDS")

		for _, name := range objective.Names() {
			bench, err := objective.Lookup(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t[%g, %g]\n", bench.Name, bench.LB, bench.UB)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(objectivesCmd)
}
