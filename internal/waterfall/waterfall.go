// Package waterfall applies the priorities-deed distribution to settlement
// proceeds. Tiers execute in strict order, each consuming from the running
// remainder: outstanding costs, then the first tier funder return, then the
// distribution cost overrun, with the surviving net proceeds split 80/20
// between funder and firm. Half of the firm share is carved out for the
// claims processor.
//
// All arithmetic is fixed-precision decimal. Nothing here rounds; callers
// round at the display boundary via WaterfallResult.Rounded.
package waterfall

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/milbrook/claims-cli/internal/model"
)

var (
	funderSplit = decimal.RequireFromString("0.80")
	firmSplit   = decimal.RequireFromString("0.20")
	half        = decimal.RequireFromString("0.5")
)

// InvalidWaterfallInputError reports a negative monetary input. Zero inputs
// are valid; a zero-proceeds waterfall distributes zero everywhere.
type InvalidWaterfallInputError struct {
	Field string
	Value decimal.Decimal
}

func (e *InvalidWaterfallInputError) Error() string {
	return fmt.Sprintf("waterfall: %s must not be negative, got %s", e.Field, e.Value)
}

// Deductions are the tier inputs consumed ahead of the 80/20 split.
type Deductions struct {
	OutstandingCosts        decimal.Decimal `json:"outstanding_costs"`
	FirstTierReturn         decimal.Decimal `json:"first_tier_return"`
	DistributionCostOverrun decimal.Decimal `json:"distribution_cost_overrun"`
}

// Compute distributes gross proceeds through the tier waterfall. A tier
// larger than the running remainder consumes what is left and marks the
// result underfunded; it never drives the remainder negative and it is not
// an error.
func Compute(gross decimal.Decimal, d Deductions) (*model.WaterfallResult, error) {
	for _, in := range []struct {
		field string
		value decimal.Decimal
	}{
		{"gross_proceeds", gross},
		{"outstanding_costs", d.OutstandingCosts},
		{"first_tier_return", d.FirstTierReturn},
		{"distribution_cost_overrun", d.DistributionCostOverrun},
	} {
		if in.value.IsNegative() {
			return nil, &InvalidWaterfallInputError{Field: in.field, Value: in.value}
		}
	}

	remainder := gross
	underfunded := false

	take := func(requested decimal.Decimal) decimal.Decimal {
		paid := decimal.Min(remainder, requested)
		if paid.LessThan(requested) {
			underfunded = true
		}
		remainder = remainder.Sub(paid)
		return paid
	}

	costs := take(d.OutstandingCosts)
	firstTier := take(d.FirstTierReturn)
	overrun := take(d.DistributionCostOverrun)

	net := remainder
	funder := net.Mul(funderSplit)
	firm := net.Mul(firmSplit)
	processor := firm.Mul(half)

	return &model.WaterfallResult{
		GrossProceeds:           gross,
		OutstandingCosts:        costs,
		FirstTierReturn:         firstTier,
		DistributionCostOverrun: overrun,
		NetProceeds:             net,
		FunderShare:             funder,
		FirmShare:               firm,
		ProcessorShare:          processor,
		Underfunded:             underfunded,
	}, nil
}

// GrossFromClaims derives gross scheme proceeds from settled claim value at
// the contractual DBA rate (30% of settlements under the standard deed).
func GrossFromClaims(totalClaimValue, dbaRate decimal.Decimal) decimal.Decimal {
	return totalClaimValue.Mul(dbaRate)
}
