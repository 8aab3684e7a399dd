// README: Calendar sales reports built from per-shift grand totals.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"carwash/internal/types"
)

type DailySales struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthSales struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type Monthly struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Days  []DailySales    `json:"days"`
	Total decimal.Decimal `json:"total"`
}

type Yearly struct {
	Year   int             `json:"year"`
	Months []MonthSales    `json:"months"`
	Total  decimal.Decimal `json:"total"`
}

// MonthlySales lays daily amounts (keyed by YYYY-MM-DD) over every day of
// the month. Days without an entry are zero; keys outside the month are
// ignored.
func MonthlySales(year int, month time.Month, daily map[string]decimal.Decimal) Monthly {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	out := Monthly{Year: year, Month: int(month), Total: decimal.Zero}
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		key := d.Format(types.DateLayout)
		amount := types.Round2(daily[key])
		out.Days = append(out.Days, DailySales{Date: key, Amount: amount})
		out.Total = out.Total.Add(amount)
	}
	return out
}

// YearlySales returns January through December with zero for missing months.
func YearlySales(year int, monthly map[time.Month]decimal.Decimal) Yearly {
	out := Yearly{Year: year, Months: make([]MonthSales, 0, 12), Total: decimal.Zero}
	for m := time.January; m <= time.December; m++ {
		amount := types.Round2(monthly[m])
		out.Months = append(out.Months, MonthSales{Month: m.String(), Amount: amount})
		out.Total = out.Total.Add(amount)
	}
	return out
}
