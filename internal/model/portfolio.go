package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LenderExposure is one lender's slice of the portfolio. Grouping is by
// exact defendant string; no canonicalization of lender name variants.
type LenderExposure struct {
	Lender     string          `json:"lender"`
	ClaimCount int             `json:"claim_count"`
	TotalValue decimal.Decimal `json:"total_value"`
	ValueShare decimal.Decimal `json:"value_share"` // fraction of portfolio claim value
	Flagged    bool            `json:"flagged"`     // share exceeds the concentration threshold
}

// PortfolioSummary aggregates a full portfolio run. Constructed once by the
// aggregator and never mutated afterwards.
type PortfolioSummary struct {
	TotalClaims          int                    `json:"total_claims"`
	EligibleCount        int                    `json:"eligible_count"`
	EligibilityRate      decimal.Decimal        `json:"eligibility_rate"`
	RecommendationCounts map[Recommendation]int `json:"recommendation_counts"`
	TotalClaimValue      decimal.Decimal        `json:"total_claim_value"`
	TotalFunded          decimal.Decimal        `json:"total_funded"`
	LenderConcentration  []LenderExposure       `json:"lender_concentration"`
	TotalWaterfall       WaterfallResult        `json:"total_waterfall"`
	FunderMOIC           decimal.Decimal        `json:"funder_moic"` // funder share / total funded
}

// EvaluatedClaim pairs a normalized record with its eligibility verdict.
type EvaluatedClaim struct {
	Record      ClaimRecord       `json:"record"`
	Eligibility EligibilityResult `json:"eligibility"`
}

// Assessment is the assembled response object handed to reporting and
// display collaborators. Claims are sorted by claim ID so downstream
// rendering is deterministic.
type Assessment struct {
	RunID         string           `json:"run_id,omitempty"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Claims        []EvaluatedClaim `json:"claims"`
	Waterfall     WaterfallResult  `json:"waterfall"`
	Summary       PortfolioSummary `json:"summary"`
	ExcludedCount int              `json:"excluded_count"` // records dropped as malformed
	Warnings      []string         `json:"warnings,omitempty"`
}
