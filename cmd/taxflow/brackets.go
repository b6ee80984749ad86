package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/taxflow/internal/cli"
	"github.com/Veraticus/taxflow/internal/model"
)

func bracketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brackets",
		Short: "Show the bracket table for a filing status and year",
		Long: `Print each bracket's rate and income range together with the total tax
owed on taxable income exactly at the bracket's lower threshold.`,
		Example: `  taxflow brackets --status hoh --year 2024
  taxflow brackets -j uk`,
		Args: cobra.NoArgs,
		RunE: runBrackets,
	}

	cmd.Flags().StringP("status", "s", "", "filing status (single, mfj, mfs, hoh)")
	cmd.Flags().IntP("year", "y", 0, "tax year (default from config)")
	cmd.Flags().StringP("jurisdiction", "j", "", "jurisdiction (us-federal, uk, ...)")
	addOutputFlag(cmd)

	return cmd
}

func runBrackets(cmd *cobra.Command, _ []string) error {
	output, err := readOutput(cmd)
	if err != nil {
		return err
	}

	settings, catalog, _, err := calculatorFor(cmd.Context())
	if err != nil {
		return err
	}

	in, err := readInput(cmd, settings)
	if err != nil {
		return err
	}

	table, err := catalog.Table(model.TableKey{
		Jurisdiction: in.Jurisdiction,
		Status:       in.FilingStatus,
		Year:         in.Year,
	})
	if err != nil {
		return tableError(err, catalog, in.Jurisdiction)
	}

	w := cmd.OutOrStdout()
	if output == outputJSON {
		return cli.RenderJSON(w, table)
	}
	return cli.RenderBrackets(w, table, currencyFor(catalog, in.Jurisdiction))
}
