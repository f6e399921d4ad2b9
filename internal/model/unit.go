package model

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Unit is the mass unit a record is tagged with. Units are never converted,
// one portfolio is expected to stick to a single unit.
type Unit string

const (
	UnitOz Unit = "oz"
	UnitG  Unit = "g"
	UnitKg Unit = "kg"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitOz, UnitG, UnitKg:
		return true
	}
	return false
}

func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if u == "" {
		return UnitOz, nil
	}
	if !u.Valid() {
		return "", fmt.Errorf("unknown unit %q", s)
	}
	return u, nil
}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	}
	return false
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if c == "" {
		return CurrencyUSD, nil
	}
	if !c.Valid() {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}

// FormatMoney renders amount with the currency symbol and grouping, e.g. -$1,960.00.
func FormatMoney(amount decimal.Decimal, cur Currency) string {
	c := *money.New(0, string(cur)).Currency()
	minor := amount.Shift(int32(c.Fraction)).Round(0)
	return c.Formatter().Format(minor.IntPart())
}

// FormatSignedMoney is FormatMoney with an explicit plus sign for positive amounts.
func FormatSignedMoney(amount decimal.Decimal, cur Currency) string {
	if amount.IsNegative() {
		return FormatMoney(amount, cur)
	}
	return "+" + FormatMoney(amount, cur)
}

// FormatPercent renders a fraction (0.018) as a percentage without trailing zeros (1.8).
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}
