package dividends

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value as reported by a market data provider.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns a Money of value in the currency cur (ISO 4217 code).
func M(value float64, cur string) Money {
	return Money{value: decimal.NewFromFloat(value), cur: cur}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// Currency returns the ISO code of the currency.
func (m Money) Currency() string { return m.cur }

// Decimal returns the value in major units.
func (m Money) Decimal() decimal.Decimal { return m.value }

// String returns the string representation of the money value, like "R$12.34".
func (m Money) String() string {
	if m.cur == "" {
		return m.value.StringFixed(2)
	}
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// Short returns a compact representation for large amounts like market
// capitalizations: "BRL 412.35B".
func (m Money) Short() string {
	units := []struct {
		suffix string
		exp    int32
	}{{"T", 12}, {"B", 9}, {"M", 6}, {"K", 3}}
	abs := m.value.Abs()
	for _, u := range units {
		if limit := decimal.New(1, u.exp); abs.GreaterThanOrEqual(limit) {
			return fmt.Sprintf("%s %s%s", m.cur, m.value.Div(limit).StringFixed(2), u.suffix)
		}
	}
	return fmt.Sprintf("%s %s", m.cur, m.value.StringFixed(2))
}

// Price formats f as a Money in cur, or NotAvailable.
func Price(f Figure, cur string) string {
	v, ok := f.Get()
	if !ok {
		return NotAvailable
	}
	return M(v, cur).String()
}

// Capitalization formats f as a compact Money in cur, or NotAvailable.
func Capitalization(f Figure, cur string) string {
	v, ok := f.Get()
	if !ok {
		return NotAvailable
	}
	return M(v, cur).Short()
}
