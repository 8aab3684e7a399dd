// README: Money helpers shared across modules. Amounts are pesos held as decimals.
package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary value for display and wire output.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatPeso renders an amount like "₱1,234.50".
func FormatPeso(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("₱")
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Amount is a lenient money value for hand-entered line items. It accepts
// JSON numbers and numeric strings; anything else decodes to zero instead
// of failing the whole payload.
type Amount struct {
	decimal.Decimal
}

func NewAmount(v float64) Amount {
	return Amount{decimal.NewFromFloat(v)}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Decimal = decimal.Zero
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	a.Decimal = d
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.StringFixed(2)), nil
}
