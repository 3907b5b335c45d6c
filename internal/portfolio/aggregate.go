// Package portfolio rolls per-claim eligibility and financial results up
// into portfolio-level statistics and assembles the response object handed
// to reporting collaborators.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/milbrook/claims-cli/internal/model"
)

// Aggregate reduces evaluated claims and a portfolio-level waterfall into a
// PortfolioSummary. It is purely additive: sums, counts, and shares, with
// no business rules beyond flagging lenders whose value share exceeds the
// caller-supplied concentration threshold.
//
// The waterfall is computed once over summed proceeds rather than summing
// per-claim waterfalls, so rounding never compounds across claims.
func Aggregate(claims []model.EvaluatedClaim, wf *model.WaterfallResult, concentrationThreshold decimal.Decimal) *model.PortfolioSummary {
	summary := &model.PortfolioSummary{
		TotalClaims:          len(claims),
		RecommendationCounts: make(map[model.Recommendation]int),
		EligibilityRate:      decimal.Zero,
		TotalClaimValue:      decimal.Zero,
		TotalFunded:          decimal.Zero,
		FunderMOIC:           decimal.Zero,
	}
	if wf != nil {
		summary.TotalWaterfall = *wf
	}

	type lenderAcc struct {
		count int
		value decimal.Decimal
	}
	lenders := make(map[string]*lenderAcc)

	for _, c := range claims {
		if c.Eligibility.Eligible {
			summary.EligibleCount++
		}
		summary.RecommendationCounts[c.Eligibility.Recommendation]++
		summary.TotalClaimValue = summary.TotalClaimValue.Add(c.Record.ClaimAmount)
		if c.Record.FundedAmount != nil {
			summary.TotalFunded = summary.TotalFunded.Add(*c.Record.FundedAmount)
		}

		// Exact string grouping; lender name variants are not merged.
		acc := lenders[c.Record.Defendant]
		if acc == nil {
			acc = &lenderAcc{value: decimal.Zero}
			lenders[c.Record.Defendant] = acc
		}
		acc.count++
		acc.value = acc.value.Add(c.Record.ClaimAmount)
	}

	if summary.TotalClaims > 0 {
		summary.EligibilityRate = decimal.NewFromInt(int64(summary.EligibleCount)).
			Div(decimal.NewFromInt(int64(summary.TotalClaims)))
	}

	for name, acc := range lenders {
		exp := model.LenderExposure{
			Lender:     name,
			ClaimCount: acc.count,
			TotalValue: acc.value,
			ValueShare: decimal.Zero,
		}
		if summary.TotalClaimValue.IsPositive() {
			exp.ValueShare = acc.value.Div(summary.TotalClaimValue)
			exp.Flagged = exp.ValueShare.GreaterThan(concentrationThreshold)
		}
		summary.LenderConcentration = append(summary.LenderConcentration, exp)
	}

	// Largest exposure first; name breaks ties so output is deterministic.
	sort.Slice(summary.LenderConcentration, func(i, j int) bool {
		a, b := summary.LenderConcentration[i], summary.LenderConcentration[j]
		if !a.TotalValue.Equal(b.TotalValue) {
			return a.TotalValue.GreaterThan(b.TotalValue)
		}
		return a.Lender < b.Lender
	})

	if wf != nil && summary.TotalFunded.IsPositive() {
		summary.FunderMOIC = wf.FunderShare.Div(summary.TotalFunded)
	}

	return summary
}
