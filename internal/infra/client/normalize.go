package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/aggregator"
	"github.com/carlosvigna/finhawk-bff/internal/domain"

	"github.com/shopspring/decimal"
)

// RawBill is a bill exactly as the FinHawk API sends it. Amounts may come as
// numbers or strings, ids as numbers or strings, dates with or without time.
//
// The current installment arrives as currentInstallment or, from older
// endpoints, as parcelNumber.
type RawBill struct {
	ID                 looseString  `json:"id"`
	Description        string       `json:"description"`
	Emission           looseString  `json:"emission"`
	Maturity           looseString  `json:"maturity"`
	Value              looseAmount  `json:"value"`
	InstallmentAmount  looseAmount  `json:"installmentAmount"`
	Status             string       `json:"status"`
	Type               string       `json:"type"`
	Category           *rawCategory `json:"category"`
	InstallmentCount   looseAmount  `json:"installmentCount"`
	CurrentInstallment looseAmount  `json:"currentInstallment"`
	ParcelNumber       looseAmount  `json:"parcelNumber"`
	Periodicity        string       `json:"periodicity"`
}

type rawCategory struct {
	ID   looseString `json:"id"`
	Name string      `json:"name"`
	Type string      `json:"type"`
}

type rawAccount struct {
	ID          looseString `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
}

// Normalize converts raw bills into canonical records. It never fails: bad
// amounts become zero, bad dates become the zero time.
func Normalize(raw []RawBill, loc *time.Location) []domain.BillRecord {
	out := make([]domain.BillRecord, 0, len(raw))
	for _, r := range raw {
		out = append(out, normalizeOne(r, loc))
	}
	return out
}

func normalizeOne(r RawBill, loc *time.Location) domain.BillRecord {
	b := domain.BillRecord{
		ID:                 string(r.ID),
		Description:        strings.TrimSpace(r.Description),
		Emission:           aggregator.NormalizeDate(string(r.Emission), loc),
		Maturity:           aggregator.NormalizeDate(string(r.Maturity), loc),
		Amount:             pickAmount(r.InstallmentAmount, r.Value),
		Status:             domain.ParseBillStatus(r.Status),
		Type:               upperType(r.Type),
		InstallmentCount:   r.InstallmentCount.count(),
		CurrentInstallment: r.CurrentInstallment.count(),
		Periodicity:        strings.TrimSpace(r.Periodicity),
	}
	if b.CurrentInstallment == 0 {
		b.CurrentInstallment = r.ParcelNumber.count()
	}
	if r.Category != nil {
		b.Category = &domain.Category{
			ID:   string(r.Category.ID),
			Name: strings.TrimSpace(r.Category.Name),
			Type: upperType(r.Category.Type),
		}
	}
	return b
}

// pickAmount prefers a non-zero installment amount, then value, then zero.
func pickAmount(installment, value looseAmount) decimal.Decimal {
	if installment.ok && !installment.d.IsZero() {
		return installment.d
	}
	if value.ok {
		return value.d
	}
	return decimal.Zero
}

// upperType keeps unknown values so that an unrecognised category type does
// not silently fall back to the top-level type.
func upperType(s string) domain.TxType {
	return domain.TxType(strings.ToUpper(strings.TrimSpace(s)))
}

// looseAmount accepts a JSON number, a numeric string ("1234.56", "1.234,56",
// "1,234.56", "12,5") or null. Anything else decodes to "absent" without an error.
type looseAmount struct {
	d  decimal.Decimal
	ok bool
}

func (a *looseAmount) UnmarshalJSON(data []byte) error {
	*a = looseAmount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	if d, ok := parseAmount(s); ok {
		*a = looseAmount{d: d, ok: true}
	}
	return nil
}

// count reads the value as a positive integer, 0 when absent or not positive.
func (a looseAmount) count() int {
	if !a.ok || !a.d.IsPositive() {
		return 0
	}
	return int(a.d.IntPart())
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(canonicalAmount(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// canonicalAmount rewrites s with "." as the only decimal separator. When
// both separators appear the last one is the decimal mark; a separator that
// repeats is a thousands mark. Anything else is left for the parser to reject.
func canonicalAmount(s string) string {
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// looseString accepts a JSON string or number.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(data)
	return nil
}
