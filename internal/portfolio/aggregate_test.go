package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milbrook/claims-cli/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func evaluated(id, lender, amount string, rec model.Recommendation) model.EvaluatedClaim {
	return model.EvaluatedClaim{
		Record: model.ClaimRecord{
			ClaimID:     id,
			Defendant:   lender,
			ClaimAmount: dec(amount),
		},
		Eligibility: model.EligibilityResult{
			ClaimID:        id,
			Eligible:       rec == model.RecommendApprove,
			Recommendation: rec,
		},
	}
}

func TestAggregateCountsAndRate(t *testing.T) {
	t.Parallel()

	claims := []model.EvaluatedClaim{
		evaluated("CLM-001", "Black Horse Ltd", "1000", model.RecommendApprove),
		evaluated("CLM-002", "Santander", "2000", model.RecommendApprove),
		evaluated("CLM-003", "Black Horse Ltd", "500", model.RecommendReject),
	}

	summary := Aggregate(claims, &model.WaterfallResult{}, dec("0.5"))

	assert.Equal(t, 3, summary.TotalClaims)
	assert.Equal(t, 2, summary.EligibleCount)
	wantRate := decimal.NewFromInt(2).Div(decimal.NewFromInt(3))
	assert.True(t, summary.EligibilityRate.Equal(wantRate), "rate %s", summary.EligibilityRate)
	assert.Equal(t, map[model.Recommendation]int{
		model.RecommendApprove: 2,
		model.RecommendReject:  1,
	}, summary.RecommendationCounts)
	assert.True(t, summary.TotalClaimValue.Equal(dec("3500")))
}

func TestAggregateEmptyPortfolio(t *testing.T) {
	t.Parallel()

	summary := Aggregate(nil, &model.WaterfallResult{}, dec("0.3"))

	assert.Equal(t, 0, summary.TotalClaims)
	assert.True(t, summary.EligibilityRate.IsZero())
	assert.True(t, summary.TotalClaimValue.IsZero())
	assert.Empty(t, summary.LenderConcentration)
}

func TestAggregateLenderConcentration(t *testing.T) {
	t.Parallel()

	claims := []model.EvaluatedClaim{
		evaluated("CLM-001", "Black Horse Ltd", "6000", model.RecommendApprove),
		evaluated("CLM-002", "Black Horse Ltd", "1000", model.RecommendApprove),
		evaluated("CLM-003", "Santander", "2000", model.RecommendReview),
		evaluated("CLM-004", "MotoNovo", "1000", model.RecommendReject),
	}

	summary := Aggregate(claims, &model.WaterfallResult{}, dec("0.5"))

	require.Len(t, summary.LenderConcentration, 3)

	top := summary.LenderConcentration[0]
	assert.Equal(t, "Black Horse Ltd", top.Lender)
	assert.Equal(t, 2, top.ClaimCount)
	assert.True(t, top.TotalValue.Equal(dec("7000")))
	assert.True(t, top.ValueShare.Equal(dec("0.7")), "share %s", top.ValueShare)
	assert.True(t, top.Flagged)

	for _, exp := range summary.LenderConcentration[1:] {
		assert.False(t, exp.Flagged, exp.Lender)
	}
}

func TestAggregateExactLenderGrouping(t *testing.T) {
	t.Parallel()

	// Case and punctuation variants stay separate groups.
	claims := []model.EvaluatedClaim{
		evaluated("CLM-001", "Black Horse Ltd", "100", model.RecommendApprove),
		evaluated("CLM-002", "Black Horse Ltd.", "100", model.RecommendApprove),
		evaluated("CLM-003", "BLACK HORSE LTD", "100", model.RecommendApprove),
	}

	summary := Aggregate(claims, &model.WaterfallResult{}, dec("0.9"))
	assert.Len(t, summary.LenderConcentration, 3)
}

func TestAggregateFundedAndMOIC(t *testing.T) {
	t.Parallel()

	claims := []model.EvaluatedClaim{
		evaluated("CLM-001", "Santander", "10000", model.RecommendApprove),
		evaluated("CLM-002", "Santander", "5000", model.RecommendApprove),
	}
	claims[0].Record.FundedAmount = decPtr("400")
	claims[1].Record.FundedAmount = decPtr("100")

	wf := &model.WaterfallResult{FunderShare: dec("1000")}
	summary := Aggregate(claims, wf, dec("0.9"))

	assert.True(t, summary.TotalFunded.Equal(dec("500")))
	assert.True(t, summary.FunderMOIC.Equal(dec("2")), "moic %s", summary.FunderMOIC)
}

func TestAggregateZeroFundedMOIC(t *testing.T) {
	t.Parallel()

	claims := []model.EvaluatedClaim{
		evaluated("CLM-001", "Santander", "10000", model.RecommendApprove),
	}
	summary := Aggregate(claims, &model.WaterfallResult{FunderShare: dec("1000")}, dec("0.9"))
	assert.True(t, summary.FunderMOIC.IsZero())
}
