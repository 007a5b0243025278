package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount with a canonical two-decimal string form.
// Arithmetic runs at full precision; rounding happens only at the storage
// and transport boundaries.
type Money struct {
	d decimal.Decimal
}

var ZeroMoney = Money{}

// Amounts live in decimal(20,2) columns: at most 18 integer digits.
const (
	maxMoneyInputLen = 64
	minMoneyExponent = -20
	maxMoneyExponent = 20
)

var (
	maxMoneyMagnitude  = decimal.New(1, 18)
	errMoneyOutOfRange = errors.New("amount out of range")
)

// NewMoney builds a Money from numeric or string input. Invalid or missing
// input normalizes to zero.
func NewMoney(v any) Money {
	switch x := v.(type) {
	case nil:
		return ZeroMoney
	case Money:
		return x
	case *Money:
		if x == nil {
			return ZeroMoney
		}
		return *x
	case decimal.Decimal:
		return Money{d: x}
	case string:
		return MoneyFromString(x)
	case json.Number:
		return MoneyFromString(x.String())
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ZeroMoney
		}
		d := decimal.NewFromFloat(x)
		if d.Abs().GreaterThanOrEqual(maxMoneyMagnitude) {
			return ZeroMoney
		}
		return Money{d: d}
	case float32:
		return NewMoney(float64(x))
	case int:
		return Money{d: decimal.NewFromInt(int64(x))}
	case int32:
		return Money{d: decimal.NewFromInt32(x)}
	case int64:
		return Money{d: decimal.NewFromInt(x)}
	default:
		return ZeroMoney
	}
}

// MoneyFromString accepts plain or thousands-separated decimals ("1,000.50").
// Input beyond the decimal(20,2) range, or with an extreme exponent, is zero.
func MoneyFromString(s string) Money {
	d, err := parseDecimalString(s)
	if err != nil {
		return ZeroMoney
	}
	return Money{d: d}
}

func parseDecimalString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if len(s) > maxMoneyInputLen {
		return decimal.Zero, errMoneyOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp < minMoneyExponent || exp > maxMoneyExponent {
		return decimal.Zero, errMoneyOutOfRange
	}
	if d.Abs().GreaterThanOrEqual(maxMoneyMagnitude) {
		return decimal.Zero, errMoneyOutOfRange
	}
	return d, nil
}

func (m Money) Decimal() decimal.Decimal { return m.d }

// String is the canonical transport form: exactly two fraction digits.
func (m Money) String() string { return m.d.StringFixed(2) }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

func (m Money) Round2() Money { return Money{d: m.d.Round(2)} }

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }

func (m Money) GreaterThanOrEqual(o Money) bool { return m.d.GreaterThanOrEqual(o.d) }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON takes a quoted decimal string or a bare JSON number. The
// number is parsed from its literal text, never through float64.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = ZeroMoney
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*m = ZeroMoney
			return nil
		}
		*m = MoneyFromString(s)
		return nil
	}
	*m = MoneyFromString(string(b))
	return nil
}

// Value stores exactly two fraction digits.
func (m Money) Value() (driver.Value, error) {
	return m.d.StringFixed(2), nil
}

func (m *Money) Scan(value interface{}) error {
	if value == nil {
		*m = ZeroMoney
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.d = d
	return nil
}
