package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Dashboard projections
// ============================================================

// MonthWindow selects the reporting period. Month is 0-indexed (0 = January).
type MonthWindow struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// WindowOf returns the window containing t.
func WindowOf(t time.Time) MonthWindow {
	return MonthWindow{Month: int(t.Month()) - 1, Year: t.Year()}
}

// Contains reports whether t falls in the window's calendar month.
func (w MonthWindow) Contains(t time.Time) bool {
	return int(t.Month())-1 == w.Month && t.Year() == w.Year
}

// SummaryMetrics backs the four summary cards.
type SummaryMetrics struct {
	Receitas       decimal.Decimal `json:"receitas"`
	Despesas       decimal.Decimal `json:"despesas"`
	SaldoPrevisto  decimal.Decimal `json:"saldoPrevisto"`
	SaldoRealizado decimal.Decimal `json:"saldoRealizado"`
}

// CategoryShare is one slice of the expense breakdown.
type CategoryShare struct {
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
}

// DueBucket classifies pending bills by maturity relative to today.
type DueBucket string

const (
	DueOverdue         DueBucket = "OVERDUE"
	DueTodayOrTomorrow DueBucket = "DUE_TODAY_OR_TOMORROW"
	DueNext7Days       DueBucket = "NEXT_7_DAYS"
)

// DueSection is one lamp of the traffic light.
type DueSection struct {
	Bucket DueBucket       `json:"bucket"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Bills  []BillRecord    `json:"bills"`
}

// TrafficLight groups the three due buckets.
type TrafficLight struct {
	Overdue   DueSection `json:"overdue"`
	DueSoon   DueSection `json:"dueSoon"`
	Next7Days DueSection `json:"next7Days"`
}

// DayBucket is one day of the weekly timeline.
type DayBucket struct {
	Date     time.Time       `json:"date"`
	DayName  string          `json:"dayName"`
	IsToday  bool            `json:"isToday"`
	Receitas decimal.Decimal `json:"receitas"`
	Despesas decimal.Decimal `json:"despesas"`
	Bills    []BillRecord    `json:"bills"`
}

// MonthBucket is one bar pair of the annual chart.
type MonthBucket struct {
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	MonthName string          `json:"monthName"`
	Receitas  decimal.Decimal `json:"receitas"`
	Despesas  decimal.Decimal `json:"despesas"`
	IsCurrent bool            `json:"isCurrent"`
}

// DataQuality counts records the aggregator could not fully use.
type DataQuality struct {
	Total           int `json:"total"`
	UnresolvedType  int `json:"unresolvedType"`
	MissingMaturity int `json:"missingMaturity"`
	Uncategorized   int `json:"uncategorized"`
}

// HasIssues reports whether any record was degraded.
func (q DataQuality) HasIssues() bool {
	return q.UnresolvedType > 0 || q.MissingMaturity > 0 || q.Uncategorized > 0
}

// Dashboard is the full payload rendered by the front-end dashboard page.
type Dashboard struct {
	AccountID    string          `json:"accountId"`
	Account      *Account        `json:"account,omitempty"`
	Window       MonthWindow     `json:"window"`
	WindowLabel  string          `json:"windowLabel"`
	Summary      SummaryMetrics  `json:"summary"`
	Categories   []CategoryShare `json:"categories"`
	TrafficLight TrafficLight    `json:"trafficLight"`
	Timeline     []DayBucket     `json:"timeline"`
	Annual       []MonthBucket   `json:"annual"`
	DataQuality  DataQuality     `json:"dataQuality"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// SummaryView is the payload of the summary widget.
type SummaryView struct {
	AccountID   string         `json:"accountId"`
	Window      MonthWindow    `json:"window"`
	WindowLabel string         `json:"windowLabel"`
	Summary     SummaryMetrics `json:"summary"`
}

// CategoriesView is the payload of the expense breakdown widget.
type CategoriesView struct {
	AccountID   string          `json:"accountId"`
	Window      MonthWindow     `json:"window"`
	WindowLabel string          `json:"windowLabel"`
	Categories  []CategoryShare `json:"categories"`
}
