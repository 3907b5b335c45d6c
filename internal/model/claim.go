package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType is the finance product behind a claim. The set is closed;
// anything we cannot match maps to ProductUnknown.
type ProductType string

const (
	ProductPCP     ProductType = "PCP" // Personal Contract Purchase
	ProductHP      ProductType = "HP"  // Hire Purchase
	ProductCS      ProductType = "CS"  // Conditional Sale
	ProductPCH     ProductType = "PCH" // Personal Contract Hire
	ProductUnknown ProductType = "unknown"
)

// ClaimRecord is one normalized claim under assessment. Optional fields are
// pointers so that "absent" stays distinguishable from a genuine zero; the
// rule engine turns absence into INDETERMINATE, never into a pass or fail.
type ClaimRecord struct {
	ClaimID        string           `json:"claim_id"`
	ClaimantName   string           `json:"claimant_name,omitempty"`
	Defendant      string           `json:"defendant,omitempty"`
	ProductType    ProductType      `json:"product_type"`
	AgreementDate  *time.Time       `json:"agreement_date,omitempty"`
	ClaimAmount    decimal.Decimal  `json:"claim_amount"`
	FundedAmount   *decimal.Decimal `json:"funded_amount,omitempty"`
	CommissionPct  *decimal.Decimal `json:"commission_pct,omitempty"` // fraction of cost of credit, [0,1]
	SubmissionDate *time.Time       `json:"submission_date,omitempty"`
	Status         string           `json:"status,omitempty"`
}
