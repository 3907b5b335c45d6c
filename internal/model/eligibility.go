package model

// CheckStatus is the outcome of a single eligibility sub-check.
type CheckStatus string

const (
	CheckPass          CheckStatus = "pass"
	CheckFail          CheckStatus = "fail"
	CheckIndeterminate CheckStatus = "indeterminate" // required input absent
)

// Recommendation is the derived disposition for a claim.
type Recommendation string

const (
	RecommendApprove Recommendation = "APPROVE"
	RecommendReview  Recommendation = "REVIEW"
	RecommendReject  Recommendation = "REJECT"
)

// Check names, in evaluation order.
const (
	CheckDateEligibility     = "date_eligibility"
	CheckProductType         = "product_type"
	CheckCommissionThreshold = "commission_threshold"
	CheckLimitationPeriod    = "limitation_period"
)

// Check records one named sub-check with its specific reason string.
type Check struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Reason string      `json:"reason"`
}

// EligibilityResult is the immutable outcome of evaluating one ClaimRecord
// against a rule configuration. Re-evaluation builds a new instance.
type EligibilityResult struct {
	ClaimID        string         `json:"claim_id"`
	Eligible       bool           `json:"is_eligible"`
	Recommendation Recommendation `json:"recommendation"`
	Checks         []Check        `json:"checks"`
	Warnings       []string       `json:"warnings,omitempty"`
}
