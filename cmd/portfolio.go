package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milbrook/claims-cli/internal/model"
	"github.com/milbrook/claims-cli/internal/report"
	"github.com/milbrook/claims-cli/internal/store"
	"github.com/milbrook/claims-cli/internal/waterfall"
)

var (
	portfolioJSON    bool
	portfolioNoStore bool
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio <report-file>",
	Short: "Assess a full claim portfolio from a report file",
	Long:  "Ingests an XLSX or CSV claim report, evaluates every claim, runs the settlement waterfall over summed proceeds, and stores the assessment.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if !portfolioNoStore {
			if err := cfg.Validate("portfolio"); err != nil {
				return err
			}
		}

		ded, err := deductionFlags(cmd)
		if err != nil {
			return err
		}

		svc, err := initIngest()
		if err != nil {
			return err
		}

		res, err := svc.Load(ctx, args[0])
		if err != nil {
			return err
		}

		runID := ""
		var st store.Store
		if !portfolioNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}

			run, err := st.CreateRun(ctx, args[0])
			if err != nil {
				return err
			}
			runID = run.ID
			if err := st.UpdateRunStatus(ctx, runID, model.RunStatusRunning); err != nil {
				return err
			}
		}

		assessment, err := buildAssessment(ctx, runID, res, ded)
		if err != nil {
			if st != nil {
				if uerr := st.UpdateRunResult(ctx, runID, &model.RunResult{Error: err.Error()}); uerr != nil {
					zap.L().Error("record run failure", zap.Error(uerr))
				}
			}
			return err
		}

		if st != nil {
			persistAssessment(ctx, st, assessment)
		}

		if portfolioJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(assessment)
		}

		report.Render(os.Stdout, assessment)
		return nil
	},
}

func deductionFlags(cmd *cobra.Command) (waterfall.Deductions, error) {
	costs, err := decimalFlag(cmd, "outstanding-costs")
	if err != nil {
		return waterfall.Deductions{}, err
	}
	firstTier, err := decimalFlag(cmd, "first-tier-return")
	if err != nil {
		return waterfall.Deductions{}, err
	}
	overrun, err := decimalFlag(cmd, "cost-overrun")
	if err != nil {
		return waterfall.Deductions{}, err
	}
	return waterfall.Deductions{
		OutstandingCosts:        costs,
		FirstTierReturn:         firstTier,
		DistributionCostOverrun: overrun,
	}, nil
}

func init() {
	portfolioCmd.Flags().String("outstanding-costs", "", "tier 1: outstanding costs owed to the funder")
	portfolioCmd.Flags().String("first-tier-return", "", "tier 2: contractual first-tier funder return")
	portfolioCmd.Flags().String("cost-overrun", "", "tier 3: distribution cost overrun")
	portfolioCmd.Flags().BoolVar(&portfolioJSON, "json", false, "emit JSON instead of a report")
	portfolioCmd.Flags().BoolVar(&portfolioNoStore, "no-store", false, "skip persisting the run")

	rootCmd.AddCommand(portfolioCmd)
}
