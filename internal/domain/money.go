package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places money carries on the wire.
// Aggregations keep full precision; rounding happens only when encoding.
const MoneyScale = 2

// RoundMoney rounds half away from zero to MoneyScale places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

func (b BillRecord) MarshalJSON() ([]byte, error) {
	type wire BillRecord
	w := wire(b)
	w.Amount = RoundMoney(b.Amount)
	return json.Marshal(w)
}

func (m SummaryMetrics) MarshalJSON() ([]byte, error) {
	type wire SummaryMetrics
	return json.Marshal(wire{
		Receitas:       RoundMoney(m.Receitas),
		Despesas:       RoundMoney(m.Despesas),
		SaldoPrevisto:  RoundMoney(m.SaldoPrevisto),
		SaldoRealizado: RoundMoney(m.SaldoRealizado),
	})
}

func (c CategoryShare) MarshalJSON() ([]byte, error) {
	type wire CategoryShare
	w := wire(c)
	w.Value = RoundMoney(c.Value)
	return json.Marshal(w)
}

func (s DueSection) MarshalJSON() ([]byte, error) {
	type wire DueSection
	w := wire(s)
	w.Total = RoundMoney(s.Total)
	return json.Marshal(w)
}

func (d DayBucket) MarshalJSON() ([]byte, error) {
	type wire DayBucket
	w := wire(d)
	w.Receitas = RoundMoney(d.Receitas)
	w.Despesas = RoundMoney(d.Despesas)
	return json.Marshal(w)
}

func (m MonthBucket) MarshalJSON() ([]byte, error) {
	type wire MonthBucket
	w := wire(m)
	w.Receitas = RoundMoney(m.Receitas)
	w.Despesas = RoundMoney(m.Despesas)
	return json.Marshal(w)
}
