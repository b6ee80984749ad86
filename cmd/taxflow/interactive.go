package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/taxflow/internal/tui"
	"github.com/Veraticus/taxflow/internal/tui/themes"
)

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i", "tui"},
		Short:   "Open the interactive calculator",
		Long: `Open a terminal form that recalculates tax as you type.

Tab moves between fields, Ctrl+S cycles the filing status and Ctrl+D
switches between the standard and itemized deduction.`,
		Args: cobra.NoArgs,
		RunE: runInteractive,
	}

	cmd.Flags().StringP("status", "s", "", "starting filing status")
	cmd.Flags().IntP("year", "y", 0, "starting tax year")
	cmd.Flags().StringP("jurisdiction", "j", "", "jurisdiction (us-federal, uk, ...)")
	cmd.Flags().String("theme", "", "color theme (default, catppuccin)")

	return cmd
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	settings, catalog, calc, err := calculatorFor(cmd.Context())
	if err != nil {
		return err
	}

	in, err := readInput(cmd, settings)
	if err != nil {
		return err
	}

	themeName, _ := cmd.Flags().GetString("theme")
	if themeName == "" {
		themeName = settings.Theme
	}

	cfg := tui.DefaultConfig()
	cfg.Theme = themes.ByName(themeName)
	cfg.Jurisdiction = in.Jurisdiction
	cfg.Status = in.FilingStatus
	cfg.Year = in.Year
	cfg.Currency = currencyFor(catalog, in.Jurisdiction)
	cfg.InflationRate = settings.InflationRate

	return tui.Run(cmd.Context(), calc, cfg)
}
