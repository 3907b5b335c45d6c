package rules

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/milbrook/claims-cli/internal/model"
)

// DateRange is an inclusive agreement-date window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, inclusive at both ends.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RuleConfig is the full rule set for eligibility evaluation. It is data,
// not code: the engine takes it as an argument so alternative schemes can
// be substituted in tests and per-portfolio overrides.
type RuleConfig struct {
	ValidDateRange        DateRange
	EligibleProductTypes  map[model.ProductType]bool
	CommissionThreshold   decimal.Decimal // Plevin minimum, fraction of cost of credit
	LimitationPeriodYears int
}

// Default returns the scheme rules as published: agreements between the
// 2007 CCA amendments and the 2021 review announcement, the four covered
// product types, a 50% commission threshold, and a six year limitation
// period.
func Default() RuleConfig {
	return RuleConfig{
		ValidDateRange: DateRange{
			Start: time.Date(2007, 4, 6, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2021, 1, 28, 0, 0, 0, 0, time.UTC),
		},
		EligibleProductTypes: map[model.ProductType]bool{
			model.ProductPCP: true,
			model.ProductHP:  true,
			model.ProductCS:  true,
			model.ProductPCH: true,
		},
		CommissionThreshold:   decimal.RequireFromString("0.5"),
		LimitationPeriodYears: 6,
	}
}

// rulesFile is the YAML shape of a rule configuration file.
type rulesFile struct {
	Rules struct {
		ValidDateRange struct {
			Start string `yaml:"start"`
			End   string `yaml:"end"`
		} `yaml:"valid_date_range"`
		EligibleProductTypes  []string `yaml:"eligible_product_types"`
		CommissionThreshold   string   `yaml:"commission_threshold"`
		LimitationPeriodYears int      `yaml:"limitation_period_years"`
	} `yaml:"rules"`
}

// LoadConfig reads a rule configuration from a YAML file. Omitted sections
// keep their Default values.
func LoadConfig(path string) (RuleConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "rules: read config %s", path)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return cfg, eris.Wrap(err, "rules: parse config")
	}

	if f.Rules.ValidDateRange.Start != "" {
		t, err := time.Parse("2006-01-02", f.Rules.ValidDateRange.Start)
		if err != nil {
			return cfg, eris.Wrapf(err, "rules: parse valid_date_range.start %q", f.Rules.ValidDateRange.Start)
		}
		cfg.ValidDateRange.Start = t
	}
	if f.Rules.ValidDateRange.End != "" {
		t, err := time.Parse("2006-01-02", f.Rules.ValidDateRange.End)
		if err != nil {
			return cfg, eris.Wrapf(err, "rules: parse valid_date_range.end %q", f.Rules.ValidDateRange.End)
		}
		cfg.ValidDateRange.End = t
	}
	if len(f.Rules.EligibleProductTypes) > 0 {
		set := make(map[model.ProductType]bool, len(f.Rules.EligibleProductTypes))
		for _, p := range f.Rules.EligibleProductTypes {
			set[model.ProductType(p)] = true
		}
		cfg.EligibleProductTypes = set
	}
	if f.Rules.CommissionThreshold != "" {
		d, err := decimal.NewFromString(f.Rules.CommissionThreshold)
		if err != nil {
			return cfg, eris.Wrapf(err, "rules: parse commission_threshold %q", f.Rules.CommissionThreshold)
		}
		cfg.CommissionThreshold = d
	}
	if f.Rules.LimitationPeriodYears > 0 {
		cfg.LimitationPeriodYears = f.Rules.LimitationPeriodYears
	}

	return cfg, nil
}
