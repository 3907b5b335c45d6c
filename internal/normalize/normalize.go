// Package normalize coerces raw field-value maps extracted from monthly
// reports into typed ClaimRecords. Unparseable optional values become
// absent fields plus a downstream warning; unparseable required values fail
// the record with a MalformedRecordError.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/milbrook/claims-cli/internal/model"
)

// Raw field keys recognized by Record.
const (
	FieldClaimID        = "claim_id"
	FieldClaimantName   = "claimant_name"
	FieldDefendant      = "defendant"
	FieldProductType    = "product_type"
	FieldAgreementDate  = "agreement_date"
	FieldClaimAmount    = "claim_amount"
	FieldFundedAmount   = "funded_amount"
	FieldCommissionPct  = "commission_percentage"
	FieldSubmissionDate = "submission_date"
	FieldStatus         = "status"
)

// MalformedRecordError reports a required field that could not be parsed.
// The record carrying it is excluded from the run; the rest of the
// portfolio is unaffected.
type MalformedRecordError struct {
	Field string
	Value string
}

func (e *MalformedRecordError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("malformed record: required field %q is missing", e.Field)
	}
	return fmt.Sprintf("malformed record: field %q has unparseable value %q", e.Field, e.Value)
}

// dateLayouts accepted for agreement and submission dates: ISO first, then
// the day-first forms common in UK report exports.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

// productAliases maps upper-cased product labels to the closed product set.
var productAliases = map[string]model.ProductType{
	"PCP":                        model.ProductPCP,
	"PERSONAL CONTRACT PURCHASE": model.ProductPCP,
	"HP":                         model.ProductHP,
	"HIRE PURCHASE":              model.ProductHP,
	"CS":                         model.ProductCS,
	"CONDITIONAL SALE":           model.ProductCS,
	"PCH":                        model.ProductPCH,
	"PERSONAL CONTRACT HIRE":     model.ProductPCH,
}

// Record builds a ClaimRecord from a raw field map. It returns the record
// plus warnings for optional fields that were present but unusable. A nil
// record with a *MalformedRecordError means the record must be excluded.
func Record(raw map[string]string) (*model.ClaimRecord, []string, error) {
	var warnings []string

	claimID := strings.TrimSpace(raw[FieldClaimID])
	if claimID == "" {
		return nil, nil, &MalformedRecordError{Field: FieldClaimID}
	}

	amountRaw := strings.TrimSpace(raw[FieldClaimAmount])
	amount, ok := Currency(amountRaw)
	if !ok {
		return nil, nil, &MalformedRecordError{Field: FieldClaimAmount, Value: amountRaw}
	}

	rec := &model.ClaimRecord{
		ClaimID:      claimID,
		ClaimantName: strings.TrimSpace(raw[FieldClaimantName]),
		Defendant:    strings.TrimSpace(raw[FieldDefendant]),
		ClaimAmount:  amount,
		Status:       strings.TrimSpace(raw[FieldStatus]),
	}

	rec.ProductType = Product(raw[FieldProductType])
	if rec.ProductType == model.ProductUnknown && strings.TrimSpace(raw[FieldProductType]) != "" {
		warnings = append(warnings, fmt.Sprintf("claim %s: unrecognized product type %q", claimID, strings.TrimSpace(raw[FieldProductType])))
	}

	if v := strings.TrimSpace(raw[FieldFundedAmount]); v != "" {
		if d, ok := Currency(v); ok {
			rec.FundedAmount = &d
		} else {
			warnings = append(warnings, fmt.Sprintf("claim %s: unparseable funded_amount %q treated as absent", claimID, v))
		}
	}

	if v := strings.TrimSpace(raw[FieldCommissionPct]); v != "" {
		if d, ok := Percent(v); ok {
			rec.CommissionPct = &d
		} else {
			warnings = append(warnings, fmt.Sprintf("claim %s: unparseable commission_percentage %q treated as absent", claimID, v))
		}
	}

	if v := strings.TrimSpace(raw[FieldAgreementDate]); v != "" {
		if t, ok := Date(v); ok {
			rec.AgreementDate = &t
		} else {
			warnings = append(warnings, fmt.Sprintf("claim %s: unparseable agreement_date %q treated as absent", claimID, v))
		}
	}

	if v := strings.TrimSpace(raw[FieldSubmissionDate]); v != "" {
		if t, ok := Date(v); ok {
			rec.SubmissionDate = &t
		} else {
			warnings = append(warnings, fmt.Sprintf("claim %s: unparseable submission_date %q treated as absent", claimID, v))
		}
	}

	return rec, warnings, nil
}

// Currency parses a currency-like string into a non-negative decimal.
// Symbols, thousands separators, and surrounding whitespace are stripped.
// Returns false for anything that does not parse as a number, or parses
// negative; callers decide whether that means absent or malformed.
func Currency(s string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(s)
	for _, sym := range []string{"£", "$", "€", ",", " "} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// Percent parses a percentage-like value into a fraction in [0,1]. A value
// already in [0,1] is kept as-is (exactly 1.0 is treated as
// already-fractional); a value above 1 is assumed to be on the 0-100 scale
// and divided by 100.
func Percent(s string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	one := decimal.NewFromInt(1)
	if d.GreaterThan(one) {
		d = d.Div(decimal.NewFromInt(100))
	}
	if d.GreaterThan(one) {
		return decimal.Zero, false
	}
	return d, true
}

// Date parses a date in ISO or day-first layout. The zero value plus false
// signals an unparseable date; callers warn, they never substitute a
// default date.
func Date(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Product matches a product label against the closed product set,
// case-insensitively and including long-form names. Unmatched labels map to
// ProductUnknown.
func Product(s string) model.ProductType {
	key := strings.ToUpper(strings.TrimSpace(s))
	if key == "" {
		return model.ProductUnknown
	}
	if p, ok := productAliases[key]; ok {
		return p
	}
	return model.ProductUnknown
}
