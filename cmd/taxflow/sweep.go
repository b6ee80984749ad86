package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/taxflow/internal/cli"
	"github.com/Veraticus/taxflow/internal/common"
	"github.com/Veraticus/taxflow/internal/engine"
)

// progressThreshold is the sweep size above which a progress bar is shown.
const progressThreshold = 10_000

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Tabulate tax over a range of incomes",
		Long: `Evaluate the same return at every income from --from to --to in steps
of --step, print the results, and verify that tax owed never decreases as
income rises.`,
		Example: `  taxflow sweep --from 0 --to 200000 --step 10000
  taxflow sweep --to 1000000 --step 1 --summary`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}

	addInputFlags(cmd)
	addOutputFlag(cmd)
	cmd.Flags().Float64("from", 0, "first gross income")
	cmd.Flags().Float64("to", 100_000, "last gross income")
	cmd.Flags().Float64("step", 5_000, "income increment")
	cmd.Flags().Bool("summary", false, "only report the monotonicity check")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	output, err := readOutput(cmd)
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetFloat64("from")
	to, _ := cmd.Flags().GetFloat64("to")
	step, _ := cmd.Flags().GetFloat64("step")
	summaryOnly, _ := cmd.Flags().GetBool("summary")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	opts := engine.SweepOptions{From: from, To: to, Step: step}
	total, err := opts.Points()
	if err != nil {
		return common.NewUserError("Invalid sweep range", err)
	}

	settings, catalog, calc, err := calculatorFor(cmd.Context())
	if err != nil {
		return err
	}

	in, err := readInput(cmd, settings)
	if err != nil {
		return err
	}

	if !noProgress && total >= progressThreshold {
		bar := cli.NewProgressBar(cmd.ErrOrStderr(), total, "Sweeping incomes")
		opts.OnStep = cli.ProgressFunc(bar)
	}

	slog.Debug("Starting sweep", "from", from, "to", to, "step", step, "points", total)

	points, err := calc.Sweep(cmd.Context(), in, opts)
	if err != nil {
		return tableError(err, catalog, in.Jurisdiction)
	}

	w := cmd.OutOrStdout()
	currency := currencyFor(catalog, in.Jurisdiction)
	bad := engine.CheckMonotonic(points)

	if output == outputJSON {
		return cli.RenderJSON(w, struct {
			Points        []engine.SweepPoint `json:"points,omitempty"`
			Count         int                 `json:"count"`
			Monotonic     bool                `json:"monotonic"`
			FirstDecrease *engine.SweepPoint  `json:"first_decrease,omitempty"`
		}{
			Points:        sweepRows(points, summaryOnly),
			Count:         len(points),
			Monotonic:     bad < 0,
			FirstDecrease: pointAt(points, bad),
		})
	}

	if !summaryOnly {
		if err := cli.RenderSweep(w, points, currency); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if bad >= 0 {
		return common.NewUserError(fmt.Sprintf("Tax decreased from %s to %s at income %s",
			cli.FormatCurrency(points[bad-1].TaxOwed, currency),
			cli.FormatCurrency(points[bad].TaxOwed, currency),
			cli.FormatCurrency(points[bad].GrossIncome, currency)), nil)
	}

	_, err = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s Tax never decreases across %d incomes", cli.ChartIcon, len(points))))
	return err
}

func sweepRows(points []engine.SweepPoint, summaryOnly bool) []engine.SweepPoint {
	if summaryOnly {
		return nil
	}
	return points
}

func pointAt(points []engine.SweepPoint, i int) *engine.SweepPoint {
	if i < 0 || i >= len(points) {
		return nil
	}
	p := points[i]
	return &p
}
