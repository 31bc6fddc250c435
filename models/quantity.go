package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Quantity is a lenient decimal used for hand-entered delivery quantities.
// JSON numbers and numeric strings are accepted; anything else decodes to 0.
type Quantity struct {
	decimal.Decimal
}

func NewQuantity(v int64) Quantity {
	return Quantity{decimal.NewFromInt(v)}
}

func QuantityFromDecimal(d decimal.Decimal) Quantity {
	return Quantity{d}
}

// IsPositive reports whether the quantity is billable.
func (q Quantity) IsPositive() bool {
	return q.Decimal.GreaterThan(decimal.Zero)
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.Decimal.String()), nil
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	q.Decimal = parseLenient(data)
	return nil
}

func parseLenient(data []byte) decimal.Decimal {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return decimal.Zero
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return decimal.Zero
		}
		raw = s
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
