package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/milbrook/claims-cli/internal/normalize"
	"github.com/milbrook/claims-cli/internal/report"
	"github.com/milbrook/claims-cli/internal/rules"
)

var evaluateJSON bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single claim against the eligibility rules",
	Long:  "Normalizes the claim fields given as flags and runs the four eligibility checks. Missing optional fields yield INDETERMINATE checks, not failures.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw := map[string]string{}
		for field, flag := range map[string]string{
			normalize.FieldClaimID:        "claim-id",
			normalize.FieldClaimantName:   "claimant",
			normalize.FieldDefendant:      "defendant",
			normalize.FieldProductType:    "product",
			normalize.FieldAgreementDate:  "agreement-date",
			normalize.FieldClaimAmount:    "claim-amount",
			normalize.FieldFundedAmount:   "funded-amount",
			normalize.FieldCommissionPct:  "commission",
			normalize.FieldSubmissionDate: "submission-date",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				raw[field] = v
			}
		}

		rec, warnings, err := normalize.Record(raw)
		if err != nil {
			return err
		}

		rcfg, err := loadRules()
		if err != nil {
			return err
		}

		result := rules.Evaluate(*rec, rcfg)
		result.Warnings = append(result.Warnings, warnings...)

		if evaluateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		report.RenderEligibility(os.Stdout, &result)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().String("claim-id", "", "claim identifier (required)")
	evaluateCmd.Flags().String("claimant", "", "claimant name")
	evaluateCmd.Flags().String("defendant", "", "lender / defendant name")
	evaluateCmd.Flags().String("product", "", "product type (PCP, HP, CS, PCH)")
	evaluateCmd.Flags().String("agreement-date", "", "agreement date (2006-01-02 or 02/01/2006)")
	evaluateCmd.Flags().String("claim-amount", "", "estimated claim value (required)")
	evaluateCmd.Flags().String("funded-amount", "", "amount funded against the claim")
	evaluateCmd.Flags().String("commission", "", "commission percentage (55 or 0.55)")
	evaluateCmd.Flags().String("submission-date", "", "date the claim was submitted")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "emit JSON instead of a table")

	_ = evaluateCmd.MarkFlagRequired("claim-id")
	_ = evaluateCmd.MarkFlagRequired("claim-amount")

	rootCmd.AddCommand(evaluateCmd)
}
