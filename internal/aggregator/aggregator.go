// Package aggregator turns a flat bill list into the dashboard projections:
// month summaries, expense breakdown, due-date buckets and day/month groupings.
//
// Every function is pure. Inputs are never mutated, nil and empty slices yield
// empty or zero results, and "today" is always passed in by the caller.
package aggregator

import (
	"slices"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/format"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FilterByMonth returns the bills whose maturity falls in the given 0-indexed
// month of year, in input order. Bills without maturity are skipped.
func FilterByMonth(bills []domain.BillRecord, month, year int) []domain.BillRecord {
	window := domain.MonthWindow{Month: month, Year: year}
	out := make([]domain.BillRecord, 0)
	for _, b := range bills {
		if b.HasMaturity() && window.Contains(b.Maturity) {
			out = append(out, b)
		}
	}
	return out
}

// ResolveType reads the category type, falling back to the top-level type.
// It returns "" when neither resolves to RECEIPT or PAYMENT.
func ResolveType(b domain.BillRecord) domain.TxType {
	if b.Category != nil && b.Category.Type != "" {
		return domain.ParseTxType(string(b.Category.Type))
	}
	return domain.ParseTxType(string(b.Type))
}

func sumByType(bills []domain.BillRecord, want domain.TxType) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if ResolveType(b) == want {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// CalculateReceitas sums the amounts of RECEIPT bills.
func CalculateReceitas(bills []domain.BillRecord) decimal.Decimal {
	return sumByType(bills, domain.TxReceipt)
}

// CalculateDespesas sums the amounts of PAYMENT bills.
func CalculateDespesas(bills []domain.BillRecord) decimal.Decimal {
	return sumByType(bills, domain.TxPayment)
}

// CalculateSaldoPrevisto is receitas minus despesas, regardless of status.
func CalculateSaldoPrevisto(bills []domain.BillRecord) decimal.Decimal {
	return CalculateReceitas(bills).Sub(CalculateDespesas(bills))
}

// CalculateSaldoRealizado only counts PAID or RECEIVED bills: receipts add,
// payments subtract. Either settled status is accepted for either side.
func CalculateSaldoRealizado(bills []domain.BillRecord) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if !b.Status.IsSettled() {
			continue
		}
		switch ResolveType(b) {
		case domain.TxReceipt:
			total = total.Add(b.Amount)
		case domain.TxPayment:
			total = total.Sub(b.Amount)
		}
	}
	return total
}

// Summarize computes the summary cards for one month window.
func Summarize(bills []domain.BillRecord, window domain.MonthWindow) domain.SummaryMetrics {
	monthly := FilterByMonth(bills, window.Month, window.Year)
	receitas := CalculateReceitas(monthly)
	despesas := CalculateDespesas(monthly)
	return domain.SummaryMetrics{
		Receitas:       receitas,
		Despesas:       despesas,
		SaldoPrevisto:  receitas.Sub(despesas),
		SaldoRealizado: CalculateSaldoRealizado(monthly),
	}
}

// GroupByCategory breaks PAYMENT bills down by category name. Groups are sorted
// by value descending; equal values keep their order of first appearance.
func GroupByCategory(bills []domain.BillRecord) []domain.CategoryShare {
	index := make(map[string]int)
	groups := make([]domain.CategoryShare, 0)
	total := decimal.Zero

	for _, b := range bills {
		if ResolveType(b) != domain.TxPayment {
			continue
		}
		name := domain.UncategorizedLabel
		if b.Category != nil && b.Category.Name != "" {
			name = b.Category.Name
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, domain.CategoryShare{Name: name, Value: decimal.Zero})
		}
		groups[i].Value = groups[i].Value.Add(b.Amount)
		total = total.Add(b.Amount)
	}

	for i := range groups {
		if total.IsPositive() {
			groups[i].Percentage = groups[i].Value.Div(total).Mul(hundred).InexactFloat64()
		}
	}

	slices.SortStableFunc(groups, func(a, b domain.CategoryShare) int {
		return b.Value.Cmp(a.Value)
	})
	return groups
}

// pendingBetween returns PENDING bills whose maturity day d satisfies
// from <= d < to (zero bounds are open), sorted by maturity ascending.
func pendingBetween(bills []domain.BillRecord, loc *time.Location, from, to time.Time) []domain.BillRecord {
	out := make([]domain.BillRecord, 0)
	for _, b := range bills {
		if b.Status != domain.StatusPending || !b.HasMaturity() {
			continue
		}
		day := startOfDay(b.Maturity, loc)
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && !day.Before(to) {
			continue
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b domain.BillRecord) int {
		return a.Maturity.Compare(b.Maturity)
	})
	return out
}

// GetOverdueBills returns pending bills that matured before today, oldest first.
func GetOverdueBills(bills []domain.BillRecord, today time.Time) []domain.BillRecord {
	loc := today.Location()
	return pendingBetween(bills, loc, time.Time{}, startOfDay(today, loc))
}

// GetBillsDueToday returns pending bills maturing today or tomorrow.
func GetBillsDueToday(bills []domain.BillRecord, today time.Time) []domain.BillRecord {
	loc := today.Location()
	day := startOfDay(today, loc)
	return pendingBetween(bills, loc, day, addDays(day, 2))
}

// GetBillsNext7Days returns pending bills maturing after tomorrow and up to
// seven days from today, inclusive.
func GetBillsNext7Days(bills []domain.BillRecord, today time.Time) []domain.BillRecord {
	loc := today.Location()
	day := startOfDay(today, loc)
	return pendingBetween(bills, loc, addDays(day, 2), addDays(day, 8))
}

func dueSection(bucket domain.DueBucket, bills []domain.BillRecord) domain.DueSection {
	total := decimal.Zero
	for _, b := range bills {
		total = total.Add(b.Amount)
	}
	return domain.DueSection{Bucket: bucket, Count: len(bills), Total: total, Bills: bills}
}

// TrafficLight classifies pending bills into the three due buckets.
func TrafficLight(bills []domain.BillRecord, today time.Time) domain.TrafficLight {
	return domain.TrafficLight{
		Overdue:   dueSection(domain.DueOverdue, GetOverdueBills(bills, today)),
		DueSoon:   dueSection(domain.DueTodayOrTomorrow, GetBillsDueToday(bills, today)),
		Next7Days: dueSection(domain.DueNext7Days, GetBillsNext7Days(bills, today)),
	}
}

// GroupByDay returns exactly days consecutive buckets starting at today,
// each holding every bill (any status) that matures on that day.
func GroupByDay(bills []domain.BillRecord, today time.Time, days int) []domain.DayBucket {
	if days < 0 {
		days = 0
	}
	loc := today.Location()
	start := startOfDay(today, loc)

	byDay := make(map[string][]domain.BillRecord)
	for _, b := range bills {
		if !b.HasMaturity() {
			continue
		}
		key := dayKey(startOfDay(b.Maturity, loc))
		byDay[key] = append(byDay[key], b)
	}

	out := make([]domain.DayBucket, 0, days)
	for i := 0; i < days; i++ {
		date := addDays(start, i)
		dayBills := byDay[dayKey(date)]
		if dayBills == nil {
			dayBills = []domain.BillRecord{}
		}
		out = append(out, domain.DayBucket{
			Date:     date,
			DayName:  format.DayName(date),
			IsToday:  i == 0,
			Receitas: CalculateReceitas(dayBills),
			Despesas: CalculateDespesas(dayBills),
			Bills:    dayBills,
		})
	}
	return out
}

// GroupByMonth returns monthsBack+monthsForward+1 consecutive month buckets
// with today's month at index monthsBack.
func GroupByMonth(bills []domain.BillRecord, today time.Time, monthsBack, monthsForward int) []domain.MonthBucket {
	if monthsBack < 0 {
		monthsBack = 0
	}
	if monthsForward < 0 {
		monthsForward = 0
	}
	current := domain.WindowOf(today)
	total := monthsBack + monthsForward + 1

	out := make([]domain.MonthBucket, 0, total)
	for i := 0; i < total; i++ {
		first := time.Date(current.Year, time.Month(current.Month+1-monthsBack+i), 1, middayHour, 0, 0, 0, today.Location())
		w := domain.WindowOf(first)
		monthly := FilterByMonth(bills, w.Month, w.Year)
		out = append(out, domain.MonthBucket{
			Month:     w.Month,
			Year:      w.Year,
			MonthName: format.ShortMonthName(w.Month),
			Receitas:  CalculateReceitas(monthly),
			Despesas:  CalculateDespesas(monthly),
			IsCurrent: w == current,
		})
	}
	return out
}

// Inspect counts records that the projections had to degrade or skip.
func Inspect(bills []domain.BillRecord) domain.DataQuality {
	q := domain.DataQuality{Total: len(bills)}
	for _, b := range bills {
		if ResolveType(b) == "" {
			q.UnresolvedType++
		}
		if !b.HasMaturity() {
			q.MissingMaturity++
		}
		if b.Category == nil {
			q.Uncategorized++
		}
	}
	return q
}
