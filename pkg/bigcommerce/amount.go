package bigcommerce

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Amount is a money value. It decodes both v2 quoted decimals ("5.0000") and
// v3 JSON numbers, and always encodes as a JSON number.
type Amount struct {
	decimal.Decimal
}

func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

func AmountFromDecimal(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON treats null and "" as zero; v2 sends "" for unset amounts.
func (a *Amount) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" || string(trimmed) == `""` {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(trimmed)
}
