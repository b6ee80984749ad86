package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/taxflow/internal/cli"
	"github.com/Veraticus/taxflow/internal/common"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the standard deduction with itemizing",
		Long: `Run the same return twice, once with the standard deduction and once
with the itemized amount, and recommend whichever owes less. A tie
recommends the standard deduction.`,
		Example: `  taxflow compare --income 90000 --itemized 18000`,
		Args:    cobra.NoArgs,
		RunE:    runCompare,
	}

	addInputFlags(cmd)
	addOutputFlag(cmd)
	_ = cmd.MarkFlagRequired("itemized")

	return cmd
}

func runCompare(cmd *cobra.Command, _ []string) error {
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

	cmp, err := calc.Compare(in)
	if err != nil {
		return tableError(err, catalog, in.Jurisdiction)
	}

	w := cmd.OutOrStdout()
	if output == outputJSON {
		return cli.RenderJSON(w, cmp)
	}
	if err := cli.RenderComparison(w, cmp, currencyFor(catalog, in.Jurisdiction)); err != nil {
		return common.NewUserError("Failed to write comparison", err)
	}
	return nil
}
