package model

import "github.com/shopspring/decimal"

// WaterfallResult is the distribution of settlement proceeds for one claim
// or a portfolio total. Tier fields hold the amounts actually consumed by
// each tier, which may be less than requested when proceeds run out.
// Amounts are exact decimals; call Rounded before display.
type WaterfallResult struct {
	GrossProceeds           decimal.Decimal `json:"gross_proceeds"`
	OutstandingCosts        decimal.Decimal `json:"outstanding_costs"`
	FirstTierReturn         decimal.Decimal `json:"first_tier_return"`
	DistributionCostOverrun decimal.Decimal `json:"distribution_cost_overrun"`
	NetProceeds             decimal.Decimal `json:"net_proceeds"`
	FunderShare             decimal.Decimal `json:"funder_share"`
	FirmShare               decimal.Decimal `json:"firm_share"`
	ProcessorShare          decimal.Decimal `json:"processor_share"`
	Underfunded             bool            `json:"underfunded"`
}

// Rounded returns a copy with every amount rounded half-to-even at the
// smallest currency unit. Rounding happens only here, at the output
// boundary, never between tiers.
func (w WaterfallResult) Rounded() WaterfallResult {
	return WaterfallResult{
		GrossProceeds:           w.GrossProceeds.RoundBank(2),
		OutstandingCosts:        w.OutstandingCosts.RoundBank(2),
		FirstTierReturn:         w.FirstTierReturn.RoundBank(2),
		DistributionCostOverrun: w.DistributionCostOverrun.RoundBank(2),
		NetProceeds:             w.NetProceeds.RoundBank(2),
		FunderShare:             w.FunderShare.RoundBank(2),
		FirmShare:               w.FirmShare.RoundBank(2),
		ProcessorShare:          w.ProcessorShare.RoundBank(2),
		Underfunded:             w.Underfunded,
	}
}
