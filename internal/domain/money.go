package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of fraction digits stored for every amount and balance
	MoneyScale = 2
	// moneyIntegerDigits matches the decimal(20,2) column type
	moneyIntegerDigits = 18
)

var maxMoney = decimal.New(1, moneyIntegerDigits) // 10^18, exclusive upper bound

// ParseAmount parses a caller supplied amount. The literal must be a positive
// decimal that is exactly representable with two fraction digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, Validation("Missing required fields: amount")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, Validation("Invalid amount")
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount.Round(MoneyScale), nil
}

// ValidateAmount checks an already parsed amount
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return Validation("Amount must be positive")
	}
	if !amount.Equal(amount.Round(MoneyScale)) {
		return Validation("Amount must have at most 2 decimal places")
	}
	if amount.GreaterThanOrEqual(maxMoney) {
		return Validation("Amount is too large")
	}
	return nil
}

// WithinLimit reports whether a balance fits the decimal(20,2) column
func WithinLimit(balance decimal.Decimal) bool {
	return balance.LessThan(maxMoney)
}

// Money renders a decimal as a JSON number with exactly two fraction digits
type Money decimal.Decimal

// MarshalJSON writes the fixed-point literal, e.g. 150.00
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(MoneyScale)), nil
}

// UnmarshalJSON accepts a JSON number or string
func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// String returns the fixed-point representation
func (m Money) String() string {
	return decimal.Decimal(m).StringFixed(MoneyScale)
}

// RawAmount keeps the literal text of a request amount so it is never routed
// through float64. Both 12.5 and "12.5" are accepted.
type RawAmount string

// UnmarshalJSON stores the literal of a number or the content of a string
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return Validation("Invalid amount")
	}
	*a = RawAmount(n.String())
	return nil
}
