// Package report renders assessments for terminal display. Amounts are
// formatted as GBP with British grouping; all exact arithmetic happens
// upstream and results arrive here already computed.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/milbrook/claims-cli/internal/model"
)

var printer = message.NewPrinter(language.BritishEnglish)

// money formats a decimal amount as grouped GBP, rounding half-to-even at
// the penny for display only. The pounds and pence are printed from the
// decimal's integer parts so large amounts never pass through float64.
func money(d decimal.Decimal) string {
	r := d.RoundBank(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	pounds := r.IntPart()
	pence := r.Sub(decimal.NewFromInt(pounds)).Shift(2).IntPart()
	return sign + printer.Sprintf("£%d.%02d", pounds, pence)
}

// percent formats a fractional rate (0.55 -> "55.0%").
func percent(d decimal.Decimal) string {
	return printer.Sprintf("%.1f%%", d.Mul(decimal.NewFromInt(100)).InexactFloat64())
}

// Render writes the full assessment: portfolio summary, total waterfall,
// lender concentration, and the per-claim eligibility table.
func Render(out io.Writer, a *model.Assessment) {
	if a.RunID != "" {
		fmt.Fprintf(out, "Run %s, generated %s\n\n", a.RunID, a.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}

	RenderSummary(out, &a.Summary, a.ExcludedCount)
	fmt.Fprintln(out)
	RenderWaterfall(out, a.Waterfall)
	fmt.Fprintln(out)
	RenderConcentration(out, a.Summary.LenderConcentration)
	fmt.Fprintln(out)
	RenderClaims(out, a.Claims)

	if len(a.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(a.Warnings))
		for _, warn := range a.Warnings {
			fmt.Fprintf(out, "  - %s\n", warn)
		}
	}
}

// RenderSummary writes the portfolio-level counts and totals.
func RenderSummary(out io.Writer, s *model.PortfolioSummary, excluded int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total claims:\t%d\n", s.TotalClaims)
	if excluded > 0 {
		_, _ = fmt.Fprintf(w, "Excluded (malformed):\t%d\n", excluded)
	}
	_, _ = fmt.Fprintf(w, "Eligible:\t%d (%s)\n", s.EligibleCount, percent(s.EligibilityRate))
	_, _ = fmt.Fprintf(w, "  Approve:\t%d\n", s.RecommendationCounts[model.RecommendApprove])
	_, _ = fmt.Fprintf(w, "  Review:\t%d\n", s.RecommendationCounts[model.RecommendReview])
	_, _ = fmt.Fprintf(w, "  Reject:\t%d\n", s.RecommendationCounts[model.RecommendReject])
	_, _ = fmt.Fprintf(w, "Total claim value:\t%s\n", money(s.TotalClaimValue))
	_, _ = fmt.Fprintf(w, "Total funded:\t%s\n", money(s.TotalFunded))
	if s.FunderMOIC.IsPositive() {
		_, _ = fmt.Fprintf(w, "Funder MOIC:\t%sx\n", s.FunderMOIC.RoundBank(2))
	}
	_ = w.Flush()
}

// RenderWaterfall writes the tiered distribution of proceeds.
func RenderWaterfall(out io.Writer, wf model.WaterfallResult) {
	r := wf.Rounded()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Gross proceeds:\t%s\n", money(r.GrossProceeds))
	_, _ = fmt.Fprintf(w, "  Outstanding costs:\t-%s\n", money(r.OutstandingCosts))
	_, _ = fmt.Fprintf(w, "  First-tier return:\t-%s\n", money(r.FirstTierReturn))
	_, _ = fmt.Fprintf(w, "  Cost overrun:\t-%s\n", money(r.DistributionCostOverrun))
	_, _ = fmt.Fprintf(w, "Net proceeds:\t%s\n", money(r.NetProceeds))
	_, _ = fmt.Fprintf(w, "  Funder share (80%%):\t%s\n", money(r.FunderShare))
	_, _ = fmt.Fprintf(w, "  Firm share (20%%):\t%s\n", money(r.FirmShare))
	_, _ = fmt.Fprintf(w, "    of which processor:\t%s\n", money(r.ProcessorShare))
	if r.Underfunded {
		_, _ = fmt.Fprintln(w, "NOTE: proceeds did not cover all priority tiers")
	}
	_ = w.Flush()
}

// RenderConcentration writes the per-lender exposure table.
func RenderConcentration(out io.Writer, exposures []model.LenderExposure) {
	if len(exposures) == 0 {
		fmt.Fprintln(out, "No lender exposure data.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LENDER\tCLAIMS\tVALUE\tSHARE\tFLAG")
	_, _ = fmt.Fprintln(w, "------\t------\t-----\t-----\t----")
	for _, e := range exposures {
		flag := ""
		if e.Flagged {
			flag = "CONCENTRATED"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			truncate(e.Lender, 30),
			e.ClaimCount,
			money(e.TotalValue),
			percent(e.ValueShare),
			flag,
		)
	}
	_ = w.Flush()
}

// RenderClaims writes the per-claim eligibility table.
func RenderClaims(out io.Writer, claims []model.EvaluatedClaim) {
	if len(claims) == 0 {
		fmt.Fprintln(out, "No claims evaluated.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLAIM\tCLAIMANT\tLENDER\tVALUE\tRECOMMENDATION")
	_, _ = fmt.Fprintln(w, "-----\t--------\t------\t-----\t--------------")
	for _, c := range claims {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Record.ClaimID,
			truncate(c.Record.ClaimantName, 24),
			truncate(c.Record.Defendant, 24),
			money(c.Record.ClaimAmount),
			c.Eligibility.Recommendation,
		)
	}
	_ = w.Flush()
}

// RenderEligibility writes one claim's full check breakdown.
func RenderEligibility(out io.Writer, res *model.EligibilityResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Claim:\t%s\n", res.ClaimID)
	_, _ = fmt.Fprintf(w, "Recommendation:\t%s\n", res.Recommendation)
	for _, c := range res.Checks {
		_, _ = fmt.Fprintf(w, "  %s:\t%s\t%s\n", c.Name, c.Status, c.Reason)
	}
	for _, warn := range res.Warnings {
		_, _ = fmt.Fprintf(w, "  warning:\t%s\n", warn)
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
