// README: Order price and share computation. Pure: no I/O, no shared state.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"carwash/internal/modules/catalog"
	"carwash/internal/types"
)

// ComputeOrderPricing prices an order with the default rule table.
func ComputeOrderPricing(cat catalog.Catalog, in Input) (Result, error) {
	return DefaultRules().Compute(cat, in)
}

// Compute prices an order draft against cat. An unknown vehicle type or
// base service is an error; unknown add-ons are priced at zero.
func (rs RuleSet) Compute(cat catalog.Catalog, in Input) (Result, error) {
	vehicle, err := cat.Vehicle(in.VehicleType)
	if err != nil {
		return Result{}, err
	}
	base, err := vehicle.Base(in.BaseService)
	if err != nil {
		return Result{}, err
	}

	hasVacuum := base.IncludesVacuum
	if in.Vacuum != nil {
		hasVacuum = *in.Vacuum
	}

	baseRule := rs.ForBase(in.BaseService)
	afterDeduction := base.Price.Sub(LessDeduction)
	business := afterDeduction.Mul(baseRule.Business)
	worker := afterDeduction.Mul(baseRule.Worker)

	addonTotal := decimal.Zero
	names := uniqueNames(in.Addons)
	lines := make([]AddonLine, 0, len(names))
	for _, name := range names {
		price, known := vehicle.AddonPrice(name)
		r := rs.ForAddon(name)
		addonTotal = addonTotal.Add(price)
		business = business.Add(price.Mul(r.Business))
		worker = worker.Add(price.Mul(r.Worker))
		lines = append(lines, AddonLine{Name: name, Price: types.Round2(price), Known: known})
	}

	vac := decimal.Zero
	if hasVacuum {
		vac = VacFee
	}
	worker = worker.Sub(SSSFee).Sub(vac)

	return Result{
		BasePrice:      types.Round2(base.Price),
		AddonTotal:     types.Round2(addonTotal),
		TotalPrice:     types.Round2(base.Price.Add(addonTotal)),
		AfterDeduction: types.Round2(afterDeduction),
		BusinessShare:  types.Round2(business),
		WorkerShare:    types.Round2(worker),
		SSS:            SSSFee,
		Vac:            vac,
		Less40:         LessDeduction,
		HasVacuum:      hasVacuum,
		Addons:         lines,
	}, nil
}

// uniqueNames trims names and drops duplicates and blanks, keeping
// first-seen order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
