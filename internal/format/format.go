// Package format renders dashboard values the way the pt-BR front-end shows them.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var shortMonthNames = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

var dayNames = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// Currency formats d as BRL, e.g. "R$ 1.234,56" or "-R$ 10,00".
func Currency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "R$ " + groupThousands(intPart) + "," + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date formats t as dd/mm/yyyy. The zero time renders as "-".
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// MonthName returns the pt-BR name of a 0-indexed month.
func MonthName(month int) string {
	if month < 0 || month > 11 {
		return ""
	}
	return monthNames[month]
}

// ShortMonthName returns the three-letter pt-BR name of a 0-indexed month.
func ShortMonthName(month int) string {
	if month < 0 || month > 11 {
		return ""
	}
	return shortMonthNames[month]
}

// MonthYear renders "Janeiro 2024".
func MonthYear(month, year int) string {
	return fmt.Sprintf("%s %d", MonthName(month), year)
}

// DayName returns the abbreviated pt-BR weekday of t.
func DayName(t time.Time) string {
	return dayNames[t.Weekday()]
}

// Percentage renders f with one decimal place, e.g. "12.5%".
func Percentage(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}
