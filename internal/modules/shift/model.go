// README: Shift settlement types: free-form line items and the computed summary.
package shift

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"carwash/internal/types"
)

var (
	// WagesPerShift is the flat crew wage deducted from every shift.
	WagesPerShift = decimal.NewFromInt(400)
	// FortyXPerOrder is the per-order deduction added back to the till.
	FortyXPerOrder = decimal.NewFromInt(40)
	// POSPerOrder is the per-order point-of-sale fee.
	POSPerOrder = decimal.NewFromInt(5)
	// VacPerOrder is charged for each order that included a vacuum.
	VacPerOrder = decimal.NewFromInt(5)
)

// LineItem is an other-income or expense row entered by the shift in-charge.
type LineItem struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Amount      types.Amount `json:"amount"`
}

// SanitizeLineItems keeps rows with a name and a positive amount.
func SanitizeLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		it.Description = strings.TrimSpace(it.Description)
		if it.Name == "" || !it.Amount.IsPositive() {
			continue
		}
		out = append(out, it)
	}
	return out
}

func sumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount.Decimal)
	}
	return total
}

// Record is the manually entered part of a shift settlement.
type Record struct {
	Date         time.Time
	Shift        types.Shift
	OtherIncome  []LineItem
	Expenses     []LineItem
	CashTransfer types.Amount
	UpdatedAt    time.Time
}

// AddonBreakdown groups one add-on across a shift. OrderIndices are the
// 1-based positions of the orders that carried it.
type AddonBreakdown struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Count        int             `json:"count"`
	Revenue      decimal.Decimal `json:"revenue"`
	OrderIndices []int           `json:"order_indices"`
}

type Summary struct {
	OrderCount       int              `json:"order_count"`
	GrossSales       decimal.Decimal  `json:"gross_sales"`
	FortyX           decimal.Decimal  `json:"forty_x"`
	AddonSales       decimal.Decimal  `json:"addon_sales"`
	POSPayment       decimal.Decimal  `json:"pos_payment"`
	VacTotal         decimal.Decimal  `json:"vac_total"`
	TotalOtherIncome decimal.Decimal  `json:"total_other_income"`
	TotalExpenses    decimal.Decimal  `json:"total_expenses"`
	Wages            decimal.Decimal  `json:"wages"`
	CashTransfer     decimal.Decimal  `json:"gcash"`
	GrandTotal       decimal.Decimal  `json:"grand_total"`
	Addons           []AddonBreakdown `json:"addons"`
}
