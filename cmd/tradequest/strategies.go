package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tradequest/tradequest/internal/strategy"
)

var strategiesOutput string

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List built-in strategies and their default parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := strategy.Catalog()
		if strategiesOutput != "text" {
			return writeStructured(cmd.OutOrStdout(), strategiesOutput, catalog)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tNAME\tDESCRIPTION")
		for _, d := range catalog {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Kind, d.Name, d.Description)
		}
		return tw.Flush()
	},
}

func init() {
	strategiesCmd.Flags().StringVarP(&strategiesOutput, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(strategiesCmd)
}
