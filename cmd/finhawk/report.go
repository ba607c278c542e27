package main

import (
	"fmt"
	"os"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/export"
	"github.com/carlosvigna/finhawk-bff/internal/infra/observability"
	"github.com/carlosvigna/finhawk-bff/internal/report"
	"github.com/carlosvigna/finhawk-bff/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type reportOptions struct {
	account  string
	token    string
	month    int
	year     int
	days     int
	output   string
	xlsxPath string
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the dashboard of an account once and print it",
		Example: `  finhawk report --account 42 --token $FINHAWK_TOKEN
  finhawk report --account 42 --month 0 --year 2024 --output yaml
  finhawk report --account 42 --xlsx dashboard.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.token == "" {
				opts.token = os.Getenv("FINHAWK_TOKEN")
			}
			return runReport(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.account, "account", "a", "", "Account id (required)")
	flags.StringVarP(&opts.token, "token", "t", "", "Bearer token for the FinHawk API (default $FINHAWK_TOKEN)")
	flags.IntVar(&opts.month, "month", -1, "Month, 0-indexed (default current month)")
	flags.IntVar(&opts.year, "year", 0, "Year (default current year)")
	flags.IntVar(&opts.days, "days", 0, "Days in the timeline (default TIMELINE_DAYS)")
	flags.StringVarP(&opts.output, "output", "o", report.FormatTable, "Output format: table, json or yaml")
	flags.StringVar(&opts.xlsxPath, "xlsx", "", "Also write an Excel workbook to this path")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Keep stdout clean for the report itself.
	logger := observability.NewLogger("error")
	defer logger.Sync()

	a := newApp(cfg, logger)
	defer a.Close()

	req := service.DashboardRequest{
		AccountID: opts.account,
		Token:     opts.token,
	}
	if cmd.Flags().Changed("month") || cmd.Flags().Changed("year") {
		w := domain.WindowOf(a.service.Today())
		if cmd.Flags().Changed("month") {
			w.Month = opts.month
		}
		if cmd.Flags().Changed("year") {
			w.Year = opts.year
		}
		req.Window = &w
	}
	if cmd.Flags().Changed("days") {
		req.Days = &opts.days
	}

	dash, err := a.service.BuildDashboard(cmd.Context(), req)
	if err != nil {
		logger.Error("report failed", zap.String("account_id", opts.account), zap.Error(err))
		return fmt.Errorf("build dashboard: %w", err)
	}

	if err := report.NewReporter(cmd.OutOrStdout()).Render(dash, opts.output); err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		if err := export.SaveDashboard(opts.xlsxPath, dash); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "workbook written to %s\n", opts.xlsxPath)
	}
	return nil
}
