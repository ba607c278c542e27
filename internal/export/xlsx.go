// Package export renders a dashboard as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/format"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Resumo"
	SheetCategories = "Categorias"
	SheetDue        = "Vencimentos"
	SheetWeek       = "Semana"
	SheetAnnual     = "Anual"
)

const moneyFormat = `"R$" #,##0.00;-"R$" #,##0.00`

type workbook struct {
	f      *excelize.File
	header int
	money  int
}

// WriteDashboard writes the dashboard workbook to w.
func WriteDashboard(w io.Writer, dash *domain.Dashboard) error {
	f, err := build(dash)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveDashboard writes the dashboard workbook to path.
func SaveDashboard(path string, dash *domain.Dashboard) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteDashboard(out, dash); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func build(dash *domain.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()
	wb := &workbook{f: f}

	var err error
	if wb.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	fmtCode := moneyFormat
	if wb.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode}); err != nil {
		f.Close()
		return nil, fmt.Errorf("money style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetCategories, SheetDue, SheetWeek, SheetAnnual} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	steps := []func(*domain.Dashboard) error{
		wb.summary,
		wb.categories,
		wb.due,
		wb.week,
		wb.annual,
	}
	for _, step := range steps {
		if err := step(dash); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// rows writes a header row plus data rows starting at A1. moneyCols are
// 1-based column indexes that get the currency format.
func (wb *workbook) rows(sheet string, header []any, data [][]any, moneyCols ...int) error {
	if err := wb.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := wb.f.SetCellStyle(sheet, "A1", last, wb.header); err != nil {
		return err
	}

	for i, row := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := wb.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	if len(data) > 0 {
		for _, col := range moneyCols {
			top, _ := excelize.CoordinatesToCellName(col, 2)
			bottom, _ := excelize.CoordinatesToCellName(col, len(data)+1)
			if err := wb.f.SetCellStyle(sheet, top, bottom, wb.money); err != nil {
				return err
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return wb.f.SetColWidth(sheet, "A", lastCol, 18)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func (wb *workbook) summary(dash *domain.Dashboard) error {
	account := dash.AccountID
	if dash.Account != nil && dash.Account.Name != "" {
		account = dash.Account.Name
	}
	s := dash.Summary
	data := [][]any{
		{"Conta", account},
		{"Período", dash.WindowLabel},
		{"Receitas", money(s.Receitas)},
		{"Despesas", money(s.Despesas)},
		{"Saldo Previsto", money(s.SaldoPrevisto)},
		{"Saldo Realizado", money(s.SaldoRealizado)},
		{"Gerado em", dash.GeneratedAt.Format("02/01/2006 15:04")},
	}
	if err := wb.rows(SheetSummary, []any{"Indicador", "Valor"}, data); err != nil {
		return err
	}
	return wb.f.SetCellStyle(SheetSummary, "B4", "B7", wb.money)
}

func (wb *workbook) categories(dash *domain.Dashboard) error {
	data := make([][]any, 0, len(dash.Categories))
	for _, c := range dash.Categories {
		data = append(data, []any{c.Name, money(c.Value), format.Percentage(c.Percentage)})
	}
	return wb.rows(SheetCategories, []any{"Categoria", "Valor", "Percentual"}, data, 2)
}

var bucketLabels = map[domain.DueBucket]string{
	domain.DueOverdue:         "Vencidas",
	domain.DueTodayOrTomorrow: "Hoje/Amanhã",
	domain.DueNext7Days:       "Próximos 7 dias",
}

func (wb *workbook) due(dash *domain.Dashboard) error {
	var data [][]any
	for _, section := range []domain.DueSection{
		dash.TrafficLight.Overdue,
		dash.TrafficLight.DueSoon,
		dash.TrafficLight.Next7Days,
	} {
		for _, b := range section.Bills {
			category := domain.UncategorizedLabel
			if b.Category != nil && b.Category.Name != "" {
				category = b.Category.Name
			}
			data = append(data, []any{
				bucketLabels[section.Bucket],
				format.Date(b.Maturity),
				b.Description,
				category,
				b.Installment(),
				money(b.Amount),
			})
		}
	}
	return wb.rows(SheetDue, []any{"Situação", "Vencimento", "Descrição", "Categoria", "Parcela", "Valor"}, data, 6)
}

func (wb *workbook) week(dash *domain.Dashboard) error {
	data := make([][]any, 0, len(dash.Timeline))
	for _, d := range dash.Timeline {
		label := d.DayName
		if d.IsToday {
			label += " (hoje)"
		}
		data = append(data, []any{format.Date(d.Date), label, len(d.Bills), money(d.Receitas), money(d.Despesas)})
	}
	return wb.rows(SheetWeek, []any{"Data", "Dia", "Títulos", "Receitas", "Despesas"}, data, 4, 5)
}

func (wb *workbook) annual(dash *domain.Dashboard) error {
	data := make([][]any, 0, len(dash.Annual))
	for _, m := range dash.Annual {
		label := fmt.Sprintf("%s/%d", m.MonthName, m.Year)
		if m.IsCurrent {
			label += " *"
		}
		data = append(data, []any{label, money(m.Receitas), money(m.Despesas), money(m.Receitas.Sub(m.Despesas))})
	}
	return wb.rows(SheetAnnual, []any{"Mês", "Receitas", "Despesas", "Saldo"}, data, 2, 3, 4)
}
