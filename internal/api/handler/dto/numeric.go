package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	maxIntegerDigits  = 15
	maxFractionDigits = 10
)

// maxMagnitude is the first value with more than maxIntegerDigits digits
// before the decimal point.
var maxMagnitude = decimal.New(1, maxIntegerDigits)

// Numeric is a request field that accepts either a JSON number or a numeric
// string. Set is false when the field was absent or null.
type Numeric struct {
	Value decimal.Decimal
	Set   bool
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Numeric{}
		return nil
	}

	raw := data
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = bytes.TrimSpace([]byte(s))
		if len(raw) == 0 {
			*n = Numeric{}
			return nil
		}
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("%q is not a number", string(raw))
	}
	if err := checkRange(d); err != nil {
		return fmt.Errorf("%q %w", string(raw), err)
	}
	*n = Numeric{Value: d, Set: true}
	return nil
}

// checkRange only compares values once the exponent is known to be small,
// so inputs like 1e2000000 are rejected without being expanded.
func checkRange(d decimal.Decimal) error {
	if d.Exponent() < -maxFractionDigits {
		return fmt.Errorf("has more than %d decimal places", maxFractionDigits)
	}
	if d.Exponent() > maxIntegerDigits || d.Abs().GreaterThanOrEqual(maxMagnitude) {
		return fmt.Errorf("exceeds %d integer digits", maxIntegerDigits)
	}
	return nil
}

func NewNumeric(v string) Numeric {
	return Numeric{Value: decimal.RequireFromString(v), Set: true}
}

// Amount is a money value in a response. It is written as a JSON number
// rounded to two decimals.
type Amount decimal.Decimal

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}
