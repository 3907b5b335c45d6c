// Package rules evaluates normalized claims against the redress scheme
// eligibility criteria. Evaluation is a pure function of the record and the
// rule configuration: no I/O, no shared state, identical inputs always
// produce identical results.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/milbrook/claims-cli/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Evaluate runs the four scheme checks against one claim and derives the
// recommendation. A single FAIL rejects the claim regardless of any
// indeterminate checks; otherwise any INDETERMINATE sends it to review;
// only a clean sheet of passes approves.
func Evaluate(rec model.ClaimRecord, cfg RuleConfig) model.EligibilityResult {
	checks := []model.Check{
		checkDate(rec, cfg),
		checkProduct(rec, cfg),
		checkCommission(rec, cfg),
		checkLimitation(rec, cfg),
	}

	var warnings []string
	anyFail := false
	anyIndeterminate := false
	for _, c := range checks {
		switch c.Status {
		case model.CheckFail:
			anyFail = true
		case model.CheckIndeterminate:
			anyIndeterminate = true
			warnings = append(warnings, c.Reason)
		}
	}

	result := model.EligibilityResult{
		ClaimID:  rec.ClaimID,
		Checks:   checks,
		Warnings: warnings,
	}

	switch {
	case anyFail:
		result.Recommendation = model.RecommendReject
	case anyIndeterminate:
		result.Recommendation = model.RecommendReview
	default:
		result.Recommendation = model.RecommendApprove
		result.Eligible = true
	}

	return result
}

func checkDate(rec model.ClaimRecord, cfg RuleConfig) model.Check {
	c := model.Check{Name: model.CheckDateEligibility}

	if rec.AgreementDate == nil {
		c.Status = model.CheckIndeterminate
		c.Reason = "agreement_date is missing; cannot verify the agreement falls in the eligible period"
		return c
	}

	start := cfg.ValidDateRange.Start.Format("2006-01-02")
	end := cfg.ValidDateRange.End.Format("2006-01-02")
	agreed := rec.AgreementDate.Format("2006-01-02")

	if cfg.ValidDateRange.Contains(*rec.AgreementDate) {
		c.Status = model.CheckPass
		c.Reason = fmt.Sprintf("agreement date %s is within the eligible period %s to %s", agreed, start, end)
	} else {
		c.Status = model.CheckFail
		c.Reason = fmt.Sprintf("agreement date %s is outside the eligible period %s to %s", agreed, start, end)
	}
	return c
}

func checkProduct(rec model.ClaimRecord, cfg RuleConfig) model.Check {
	c := model.Check{Name: model.CheckProductType}

	if cfg.EligibleProductTypes[rec.ProductType] {
		c.Status = model.CheckPass
		c.Reason = fmt.Sprintf("product type %s is covered by the scheme", rec.ProductType)
		return c
	}

	eligible := make([]string, 0, len(cfg.EligibleProductTypes))
	for p := range cfg.EligibleProductTypes {
		eligible = append(eligible, string(p))
	}
	sort.Strings(eligible)

	c.Status = model.CheckFail
	c.Reason = fmt.Sprintf("product type %s is not covered by the scheme (covered: %s)", rec.ProductType, strings.Join(eligible, ", "))
	return c
}

func checkCommission(rec model.ClaimRecord, cfg RuleConfig) model.Check {
	c := model.Check{Name: model.CheckCommissionThreshold}

	if rec.CommissionPct == nil {
		c.Status = model.CheckIndeterminate
		c.Reason = "commission_percentage is missing; cannot verify the commission threshold"
		return c
	}

	pct := rec.CommissionPct.Mul(hundred)
	threshold := cfg.CommissionThreshold.Mul(hundred)

	if rec.CommissionPct.GreaterThanOrEqual(cfg.CommissionThreshold) {
		c.Status = model.CheckPass
		c.Reason = fmt.Sprintf("commission %s%% meets the %s%% threshold", pct, threshold)
	} else {
		c.Status = model.CheckFail
		c.Reason = fmt.Sprintf("commission %s%% is below the %s%% threshold", pct, threshold)
	}
	return c
}

func checkLimitation(rec model.ClaimRecord, cfg RuleConfig) model.Check {
	c := model.Check{Name: model.CheckLimitationPeriod}

	if rec.AgreementDate == nil {
		c.Status = model.CheckIndeterminate
		c.Reason = "agreement_date is missing; cannot verify the limitation period"
		return c
	}
	if rec.SubmissionDate == nil {
		c.Status = model.CheckIndeterminate
		c.Reason = "submission_date is missing; cannot verify the limitation period"
		return c
	}

	// The period runs from the agreement date; claims submitted on the
	// deadline day are still in time.
	deadline := rec.AgreementDate.AddDate(cfg.LimitationPeriodYears, 0, 0)
	if !rec.SubmissionDate.After(deadline) {
		c.Status = model.CheckPass
		c.Reason = fmt.Sprintf("claim submitted %s, within %d years of the agreement", rec.SubmissionDate.Format("2006-01-02"), cfg.LimitationPeriodYears)
	} else {
		c.Status = model.CheckFail
		c.Reason = fmt.Sprintf("claim submitted %s, more than %d years after the agreement date %s", rec.SubmissionDate.Format("2006-01-02"), cfg.LimitationPeriodYears, rec.AgreementDate.Format("2006-01-02"))
	}
	return c
}
