package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/milbrook/claims-cli/internal/report"
	"github.com/milbrook/claims-cli/internal/waterfall"
)

var waterfallJSON bool

var waterfallCmd = &cobra.Command{
	Use:   "waterfall",
	Short: "Distribute settlement proceeds through the priority waterfall",
	RunE: func(cmd *cobra.Command, _ []string) error {
		gross, err := decimalFlag(cmd, "gross")
		if err != nil {
			return err
		}
		costs, err := decimalFlag(cmd, "outstanding-costs")
		if err != nil {
			return err
		}
		firstTier, err := decimalFlag(cmd, "first-tier-return")
		if err != nil {
			return err
		}
		overrun, err := decimalFlag(cmd, "cost-overrun")
		if err != nil {
			return err
		}

		result, err := waterfall.Compute(gross, waterfall.Deductions{
			OutstandingCosts:        costs,
			FirstTierReturn:         firstTier,
			DistributionCostOverrun: overrun,
		})
		if err != nil {
			return err
		}

		if waterfallJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Rounded())
		}

		report.RenderWaterfall(os.Stdout, *result)
		return nil
	},
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, eris.Errorf("invalid --%s value %q", name, s)
	}
	return d, nil
}

func init() {
	waterfallCmd.Flags().String("gross", "", "gross settlement proceeds (required)")
	waterfallCmd.Flags().String("outstanding-costs", "", "tier 1: outstanding costs owed to the funder")
	waterfallCmd.Flags().String("first-tier-return", "", "tier 2: contractual first-tier funder return")
	waterfallCmd.Flags().String("cost-overrun", "", "tier 3: distribution cost overrun")
	waterfallCmd.Flags().BoolVar(&waterfallJSON, "json", false, "emit JSON instead of a table")

	_ = waterfallCmd.MarkFlagRequired("gross")

	rootCmd.AddCommand(waterfallCmd)
}
