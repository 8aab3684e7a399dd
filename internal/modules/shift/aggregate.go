// README: Shift aggregator. One formula for every surface that shows a grand total.
package shift

import (
	"github.com/shopspring/decimal"

	"carwash/internal/modules/order"
	"carwash/internal/types"
)

// ComputeShiftSummary folds a shift's priced orders and line items into
// its settlement. Orders that failed pricing still count toward the
// per-order fees. Totals do not depend on the order of orders; only the
// add-on breakdown indices do.
func ComputeShiftSummary(orders []order.Priced, otherIncome, expenses []LineItem, cashTransfer types.Amount) Summary {
	n := decimal.NewFromInt(int64(len(orders)))

	gross := decimal.Zero
	addonSales := decimal.Zero
	vacOrders := int64(0)
	for _, o := range orders {
		gross = gross.Add(o.Pricing.BusinessShare)
		addonSales = addonSales.Add(o.Pricing.AddonTotal)
		if o.Pricing.HasVacuum {
			vacOrders++
		}
	}

	fortyX := n.Mul(FortyXPerOrder)
	pos := n.Mul(POSPerOrder)
	vac := decimal.NewFromInt(vacOrders).Mul(VacPerOrder)
	income := sumItems(SanitizeLineItems(otherIncome))
	spent := sumItems(SanitizeLineItems(expenses))
	transfer := cashTransfer.Decimal

	grand := gross.Add(fortyX).Add(addonSales).Add(income).
		Sub(spent).Sub(WagesPerShift).Sub(pos).Sub(vac).Sub(transfer)

	return Summary{
		OrderCount:       len(orders),
		GrossSales:       types.Round2(gross),
		FortyX:           types.Round2(fortyX),
		AddonSales:       types.Round2(addonSales),
		POSPayment:       types.Round2(pos),
		VacTotal:         types.Round2(vac),
		TotalOtherIncome: types.Round2(income),
		TotalExpenses:    types.Round2(spent),
		Wages:            types.Round2(WagesPerShift),
		CashTransfer:     types.Round2(transfer),
		GrandTotal:       types.Round2(grand),
		Addons:           BreakdownAddons(orders),
	}
}

// BreakdownAddons groups add-ons by name in first-seen order. Revenue is
// the sum of the prices actually charged, so an add-on priced differently
// per vehicle type is still totalled correctly.
func BreakdownAddons(orders []order.Priced) []AddonBreakdown {
	out := []AddonBreakdown{}
	pos := map[string]int{}
	for i, o := range orders {
		for _, line := range o.Pricing.Addons {
			idx, ok := pos[line.Name]
			if !ok {
				idx = len(out)
				pos[line.Name] = idx
				out = append(out, AddonBreakdown{Name: line.Name, Price: line.Price, Revenue: decimal.Zero})
			}
			b := &out[idx]
			b.Count++
			b.Revenue = b.Revenue.Add(line.Price)
			b.OrderIndices = append(b.OrderIndices, i+1)
		}
	}
	return out
}
