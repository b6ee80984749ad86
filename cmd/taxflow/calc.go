package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/taxflow/internal/cli"
)

func calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate tax owed for an income",
		Long: `Calculate income tax for a single return.

The standard deduction for your filing status is applied unless --itemized
is given. Years past the last tabulated one project the standard deduction
forward at the configured inflation rate and reuse the latest brackets.`,
		Example: `  taxflow calc --income 50000
  taxflow calc -i 120000 -s mfj --itemized 35000 --credits 2000
  taxflow calc -i 60000 -j uk -o json`,
		Args: cobra.NoArgs,
		RunE: runCalc,
	}

	addInputFlags(cmd)
	addOutputFlag(cmd)

	return cmd
}

func runCalc(cmd *cobra.Command, _ []string) error {
	output, err := readOutput(cmd)
	if err != nil {
		return err
	}

	settings, catalog, calc, err := calculatorFor(cmd.Context())
	if err != nil {
		return err
	}

	in, err := readInput(cmd, settings)
	if err != nil {
		return err
	}

	result, err := calc.Calculate(in)
	if err != nil {
		return tableError(err, catalog, in.Jurisdiction)
	}

	slog.Debug("Calculation complete", "input", in, "tax_owed", result.TaxOwed)

	w := cmd.OutOrStdout()
	if output == outputJSON {
		return cli.RenderJSON(w, result)
	}
	return cli.RenderResult(w, result, currencyFor(catalog, in.Jurisdiction), settings.InflationRate)
}
