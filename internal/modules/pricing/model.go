// README: Pricing inputs/outputs and the revenue-split rule table.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Per-order constants applied by the calculator.
var (
	LessDeduction = decimal.NewFromInt(40)
	SSSFee        = decimal.NewFromInt(2)
	VacFee        = decimal.NewFromInt(5)
)

// ShareRule splits a service price between the business and the washer.
type ShareRule struct {
	Business decimal.Decimal `json:"business"`
	Worker   decimal.Decimal `json:"worker"`
}

func rule(business, worker string) ShareRule {
	return ShareRule{
		Business: decimal.RequireFromString(business),
		Worker:   decimal.RequireFromString(worker),
	}
}

// RuleSet resolves the share rule of a service by name. Base services
// without an explicit entry use BaseDefault; anything else unknown uses
// Fallback.
type RuleSet struct {
	BaseDefault ShareRule
	Fallback    ShareRule
	Services    map[string]ShareRule
}

// DefaultRules returns the house split table.
func DefaultRules() RuleSet {
	return RuleSet{
		BaseDefault: rule("0.7", "0.3"),
		Fallback:    rule("0.5", "0.5"),
		Services: map[string]ShareRule{
			"Bodywash":      rule("0.7", "0.3"),
			"Wax":           rule("0.4", "0.6"),
			"Buffing":       rule("0.5", "0.5"),
			"Deep Cleaning": rule("0.5", "0.5"),
			"Engine Wash":   rule("0.5", "0.5"),
			"Seat Cover":    rule("0.4", "0.6"),
		},
	}
}

func (rs RuleSet) ForBase(name string) ShareRule {
	if r, ok := rs.Services[name]; ok {
		return r
	}
	return rs.BaseDefault
}

func (rs RuleSet) ForAddon(name string) ShareRule {
	if r, ok := rs.Services[name]; ok {
		return r
	}
	return rs.Fallback
}

// Validate checks that every rule's fractions sum to exactly one.
func (rs RuleSet) Validate() error {
	one := decimal.NewFromInt(1)
	check := func(name string, r ShareRule) error {
		if !r.Business.Add(r.Worker).Equal(one) {
			return fmt.Errorf("share rule %q sums to %s, want 1", name, r.Business.Add(r.Worker))
		}
		return nil
	}
	if err := check("base default", rs.BaseDefault); err != nil {
		return err
	}
	if err := check("fallback", rs.Fallback); err != nil {
		return err
	}
	for name, r := range rs.Services {
		if err := check(name, r); err != nil {
			return err
		}
	}
	return nil
}

// Input is an order draft to price.
type Input struct {
	VehicleType string
	BaseService string
	Addons      []string
	// Vacuum overrides the base service's vacuum flag when set.
	Vacuum *bool
}

type AddonLine struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Known bool            `json:"known"`
}

type Result struct {
	BasePrice      decimal.Decimal `json:"base_price"`
	AddonTotal     decimal.Decimal `json:"addon_total"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	AfterDeduction decimal.Decimal `json:"after_deduction"`
	BusinessShare  decimal.Decimal `json:"business_share"`
	WorkerShare    decimal.Decimal `json:"worker_share"`
	SSS            decimal.Decimal `json:"sss"`
	Vac            decimal.Decimal `json:"vac"`
	Less40         decimal.Decimal `json:"less_40"`
	HasVacuum      bool            `json:"has_vacuum"`
	Addons         []AddonLine     `json:"addons"`
}
