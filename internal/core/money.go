// Package core holds the persistent record types of the well ledger.
//
// This file contains the peso amount type. Colombian peso prices are kept as
// whole-peso integers; any currency formatting is a display concern layered
// on top of the raw values.
package core

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is a whole-peso amount. Use integer arithmetic for sums; formatting
// belongs to the presentation layer.
type Money struct {
	Pesos int64
}

func (m Money) Validate() error {
	if m.Pesos <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Pesos: m.Pesos + o.Pesos}
}

func (m Money) IsZero() bool {
	return m.Pesos == 0
}

// PerGallon divides the amount by a gallon quantity, returning zero for a
// zero quantity rather than an error.
func (m Money) PerGallon(gallons decimal.Decimal) decimal.Decimal {
	if gallons.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Pesos).Div(gallons)
}

// MarshalJSON renders the amount as a bare number so API consumers see plain
// peso values instead of a nested object.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Pesos, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Pesos = v
	return nil
}
