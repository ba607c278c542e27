// Package report renders a dashboard for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/format"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by Reporter.Render.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Reporter writes dashboards to a writer.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a reporter. A nil writer means stdout.
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

// Render writes dash in the given format.
func (r *Reporter) Render(dash *domain.Dashboard, outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case "", FormatTable:
		return r.table(dash)
	case FormatJSON:
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(dash)
	case FormatYAML:
		enc := yaml.NewEncoder(r.writer)
		enc.SetIndent(2)
		if err := enc.Encode(dash); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
	}
}

func (r *Reporter) table(dash *domain.Dashboard) error {
	tw := tabwriter.NewWriter(r.writer, 0, 0, 2, ' ', 0)

	title := dash.AccountID
	if dash.Account != nil && dash.Account.Name != "" {
		title = dash.Account.Name
	}
	fmt.Fprintf(tw, "Dashboard Financeiro: %s (%s)\n\n", title, dash.WindowLabel)

	s := dash.Summary
	fmt.Fprintln(tw, "== Resumo ==")
	fmt.Fprintf(tw, "Receitas\t%s\n", format.Currency(s.Receitas))
	fmt.Fprintf(tw, "Despesas\t%s\n", format.Currency(s.Despesas))
	fmt.Fprintf(tw, "Saldo Previsto\t%s\n", format.Currency(s.SaldoPrevisto))
	fmt.Fprintf(tw, "Saldo Realizado\t%s\n\n", format.Currency(s.SaldoRealizado))

	fmt.Fprintln(tw, "== Despesas por Categoria ==")
	if len(dash.Categories) == 0 {
		fmt.Fprintln(tw, "Nenhuma despesa no período")
	}
	for _, c := range dash.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, format.Currency(c.Value), format.Percentage(c.Percentage))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "== Vencimentos ==")
	for _, section := range []struct {
		label string
		due   domain.DueSection
	}{
		{"Vencidas", dash.TrafficLight.Overdue},
		{"Hoje/Amanhã", dash.TrafficLight.DueSoon},
		{"Próximos 7 dias", dash.TrafficLight.Next7Days},
	} {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", section.label, section.due.Count, format.Currency(section.due.Total))
		for _, b := range section.due.Bills {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", format.Date(b.Maturity), b.Description, format.Currency(b.Amount))
		}
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "== Próximos Dias ==")
	for _, d := range dash.Timeline {
		marker := ""
		if d.IsToday {
			marker = "hoje"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t+%s\t-%s\n",
			format.Date(d.Date), d.DayName, marker, format.Currency(d.Receitas), format.Currency(d.Despesas))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "== Visão Anual ==")
	for _, m := range dash.Annual {
		marker := ""
		if m.IsCurrent {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s/%d%s\t%s\t%s\n", m.MonthName, m.Year, marker, format.Currency(m.Receitas), format.Currency(m.Despesas))
	}

	if dash.DataQuality.HasIssues() {
		q := dash.DataQuality
		fmt.Fprintf(tw, "\nAtenção: %d de %d títulos com dados incompletos (tipo: %d, vencimento: %d, categoria: %d)\n",
			q.UnresolvedType+q.MissingMaturity+q.Uncategorized, q.Total, q.UnresolvedType, q.MissingMaturity, q.Uncategorized)
	}

	return tw.Flush()
}
