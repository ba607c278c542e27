package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/aggregator"
	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/format"
	"github.com/carlosvigna/finhawk-bff/internal/infra/observability"
	"github.com/carlosvigna/finhawk-bff/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/dashboard")

const billsCache = "bills"

// Validation bounds for dashboard queries.
const (
	minYear       = 1900
	maxYear       = 9999
	maxDays       = 31
	maxMonthsSpan = 24
)

// Options tunes the dashboard defaults and the clock.
type Options struct {
	Location      *time.Location
	TimelineDays  int
	MonthsBack    int
	MonthsForward int
	// Now defaults to time.Now.
	Now func() time.Time
}

// DashboardRequest selects what to aggregate. Nil fields take the defaults:
// today's month for Window, Options values for the rest.
type DashboardRequest struct {
	AccountID     string
	Token         string
	Subject       string // verified token subject, "" when tokens are forwarded unchecked
	Window        *domain.MonthWindow
	Days          *int
	MonthsBack    *int
	MonthsForward *int
	Refresh       bool
}

// DashboardService fetches an account's bills and runs the aggregations.
type DashboardService struct {
	bills    port.BillsFetcher
	accounts port.AccountFetcher
	cache    port.Cache[[]domain.BillRecord]
	metrics  *observability.Metrics
	logger   *zap.Logger
	opts     Options
}

// NewDashboardService creates the dashboard service with all dependencies injected.
func NewDashboardService(
	bills port.BillsFetcher,
	accounts port.AccountFetcher,
	cache port.Cache[[]domain.BillRecord],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts Options,
) *DashboardService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TimelineDays <= 0 {
		opts.TimelineDays = 7
	}
	return &DashboardService{
		bills:    bills,
		accounts: accounts,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
	}
}

// Today returns the current instant in the dashboard location.
func (s *DashboardService) Today() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func cacheKey(accountID, token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("bills:%s:%s", accountID, hex.EncodeToString(sum[:8]))
}

// GetBills returns the account's normalized bills, served from cache when fresh.
// Cache entries are scoped to the token so one caller never sees another's data.
func (s *DashboardService) GetBills(ctx context.Context, accountID, token string) ([]domain.BillRecord, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.GetBills")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	if strings.TrimSpace(accountID) == "" {
		return nil, &domain.ErrValidation{Field: "accountId", Message: "is required"}
	}

	key := cacheKey(accountID, token)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit(billsCache)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}
	s.metrics.IncrCacheMiss(billsCache)

	bills, err := s.bills.ListBills(ctx, accountID, token)
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err != nil {
		s.recordUpstreamError(err)
		s.logger.Error("failed to fetch bills",
			zap.String("account_id", accountID),
			zap.String("correlation_id", observability.CorrelationID(ctx)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("bills fetch: %w", err)
	}
	s.cache.Set(key, bills)
	return bills, nil
}

// InvalidateBills drops the cached bill list of (accountID, token).
func (s *DashboardService) InvalidateBills(accountID, token string) {
	s.cache.Delete(cacheKey(accountID, token))
}

// params is a validated DashboardRequest with defaults applied.
type params struct {
	window        domain.MonthWindow
	days          int
	monthsBack    int
	monthsForward int
}

func (s *DashboardService) resolve(req DashboardRequest, today time.Time) (params, error) {
	p := params{
		window:        domain.WindowOf(today),
		days:          s.opts.TimelineDays,
		monthsBack:    s.opts.MonthsBack,
		monthsForward: s.opts.MonthsForward,
	}

	var errs []error
	if req.Window != nil {
		if req.Window.Month < 0 || req.Window.Month > 11 {
			errs = append(errs, &domain.ErrValidation{Field: "month", Message: "must be between 0 and 11"})
		}
		if req.Window.Year < minYear || req.Window.Year > maxYear {
			errs = append(errs, &domain.ErrValidation{Field: "year", Message: fmt.Sprintf("must be between %d and %d", minYear, maxYear)})
		}
		p.window = *req.Window
	}
	if req.Days != nil {
		if *req.Days < 1 || *req.Days > maxDays {
			errs = append(errs, &domain.ErrValidation{Field: "days", Message: fmt.Sprintf("must be between 1 and %d", maxDays)})
		}
		p.days = *req.Days
	}
	if req.MonthsBack != nil {
		if *req.MonthsBack < 0 || *req.MonthsBack > maxMonthsSpan {
			errs = append(errs, &domain.ErrValidation{Field: "back", Message: fmt.Sprintf("must be between 0 and %d", maxMonthsSpan)})
		}
		p.monthsBack = *req.MonthsBack
	}
	if req.MonthsForward != nil {
		if *req.MonthsForward < 0 || *req.MonthsForward > maxMonthsSpan {
			errs = append(errs, &domain.ErrValidation{Field: "forward", Message: fmt.Sprintf("must be between 0 and %d", maxMonthsSpan)})
		}
		p.monthsForward = *req.MonthsForward
	}
	if len(errs) > 0 {
		// The handler reports the first offending field.
		return p, errs[0]
	}
	return p, nil
}

// load validates the request and returns the bills plus the resolved params.
func (s *DashboardService) load(ctx context.Context, req DashboardRequest) ([]domain.BillRecord, params, time.Time, error) {
	today := s.Today()
	p, err := s.resolve(req, today)
	if err != nil {
		return nil, p, today, err
	}
	if req.Refresh {
		s.InvalidateBills(req.AccountID, req.Token)
	}
	bills, err := s.GetBills(ctx, req.AccountID, req.Token)
	if err != nil {
		return nil, p, today, err
	}
	s.inspect(ctx, req, bills)
	return bills, p, today, nil
}

// BuildDashboard returns every widget of the dashboard page in one payload.
// Bills and account details are fetched concurrently; an account failure
// only leaves the header empty.
func (s *DashboardService) BuildDashboard(ctx context.Context, req DashboardRequest) (_ *domain.Dashboard, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "DashboardService.BuildDashboard")
	defer span.End()
	span.SetAttributes(requestAttributes(req)...)

	start := time.Now()
	defer s.observe("dashboard", start, &err)

	today := s.Today()
	p, err := s.resolve(req, today)
	if err != nil {
		return nil, err
	}
	if req.Refresh {
		s.InvalidateBills(req.AccountID, req.Token)
	}

	var (
		bills   []domain.BillRecord
		account *domain.Account
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := s.GetBills(gCtx, req.AccountID, req.Token)
		if err != nil {
			return err
		}
		bills = b
		return nil
	})

	g.Go(func() error {
		a, err := s.accounts.GetAccount(gCtx, req.AccountID, req.Token)
		if err != nil {
			if errors.Is(gCtx.Err(), context.Canceled) {
				return nil
			}
			s.recordUpstreamError(err)
			s.logger.Warn("account details unavailable, rendering dashboard without header",
				zap.String("account_id", req.AccountID),
				zap.String("subject", req.Subject),
				zap.Error(err),
			)
			return nil
		}
		account = a
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	quality := s.inspect(ctx, req, bills)
	monthly := aggregator.FilterByMonth(bills, p.window.Month, p.window.Year)

	return &domain.Dashboard{
		AccountID:    req.AccountID,
		Account:      account,
		Window:       p.window,
		WindowLabel:  format.MonthYear(p.window.Month, p.window.Year),
		Summary:      aggregator.Summarize(bills, p.window),
		Categories:   aggregator.GroupByCategory(monthly),
		TrafficLight: aggregator.TrafficLight(bills, today),
		Timeline:     aggregator.GroupByDay(bills, today, p.days),
		Annual:       aggregator.GroupByMonth(bills, today, p.monthsBack, p.monthsForward),
		DataQuality:  quality,
		GeneratedAt:  s.opts.Now().UTC(),
	}, nil
}

// Summary returns the summary cards for the requested month.
func (s *DashboardService) Summary(ctx context.Context, req DashboardRequest) (_ *domain.SummaryView, err error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Summary")
	defer span.End()
	defer s.observe("summary", time.Now(), &err)

	bills, p, _, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return &domain.SummaryView{
		AccountID:   req.AccountID,
		Window:      p.window,
		WindowLabel: format.MonthYear(p.window.Month, p.window.Year),
		Summary:     aggregator.Summarize(bills, p.window),
	}, nil
}

// Categories returns the expense breakdown for the requested month.
func (s *DashboardService) Categories(ctx context.Context, req DashboardRequest) (_ *domain.CategoriesView, err error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Categories")
	defer span.End()
	defer s.observe("categories", time.Now(), &err)

	bills, p, _, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	monthly := aggregator.FilterByMonth(bills, p.window.Month, p.window.Year)
	return &domain.CategoriesView{
		AccountID:   req.AccountID,
		Window:      p.window,
		WindowLabel: format.MonthYear(p.window.Month, p.window.Year),
		Categories:  aggregator.GroupByCategory(monthly),
	}, nil
}

// TrafficLight returns the due buckets over all bills, ignoring the month window.
func (s *DashboardService) TrafficLight(ctx context.Context, req DashboardRequest) (_ *domain.TrafficLight, err error) {
	ctx, span := tracer.Start(ctx, "DashboardService.TrafficLight")
	defer span.End()
	defer s.observe("due", time.Now(), &err)

	bills, _, today, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	tl := aggregator.TrafficLight(bills, today)
	return &tl, nil
}

// Timeline returns the per-day buckets starting today.
func (s *DashboardService) Timeline(ctx context.Context, req DashboardRequest) (_ []domain.DayBucket, err error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Timeline")
	defer span.End()
	defer s.observe("timeline", time.Now(), &err)

	bills, p, today, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return aggregator.GroupByDay(bills, today, p.days), nil
}

// Annual returns the month buckets around the current month.
func (s *DashboardService) Annual(ctx context.Context, req DashboardRequest) (_ []domain.MonthBucket, err error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Annual")
	defer span.End()
	defer s.observe("annual", time.Now(), &err)

	bills, p, today, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return aggregator.GroupByMonth(bills, today, p.monthsBack, p.monthsForward), nil
}

// inspect logs and counts records the aggregations had to degrade.
func (s *DashboardService) inspect(ctx context.Context, req DashboardRequest, bills []domain.BillRecord) domain.DataQuality {
	q := aggregator.Inspect(bills)
	s.metrics.RecordDataQuality(q)
	if q.HasIssues() {
		s.logger.Warn("bills with data quality issues",
			zap.String("account_id", req.AccountID),
			zap.String("subject", req.Subject),
			zap.String("correlation_id", observability.CorrelationID(ctx)),
			zap.Int("total", q.Total),
			zap.Int("unresolved_type", q.UnresolvedType),
			zap.Int("missing_maturity", q.MissingMaturity),
			zap.Int("uncategorized", q.Uncategorized),
		)
	}
	return q
}

func requestAttributes(req DashboardRequest) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("account.id", req.AccountID)}
	if req.Subject != "" {
		attrs = append(attrs, attribute.String("enduser.id", req.Subject))
	}
	return attrs
}

func (s *DashboardService) observe(operation string, start time.Time, err *error) {
	s.metrics.RecordRequestDuration(operation, time.Since(start))
	if *err != nil {
		s.metrics.IncrRequest("error")
		return
	}
	s.metrics.IncrRequest("success")
}

func (s *DashboardService) recordUpstreamError(err error) {
	var (
		unauthorized *domain.ErrUnauthorized
		notFound     *domain.ErrNotFound
		timeout      *domain.ErrTimeout
		circuitOpen  *domain.ErrCircuitOpen
	)
	switch {
	case errors.As(err, &unauthorized):
		s.metrics.IncrUpstreamError("unauthorized")
	case errors.As(err, &notFound):
		s.metrics.IncrUpstreamError("not_found")
	case errors.As(err, &timeout):
		s.metrics.IncrUpstreamError("timeout")
	case errors.As(err, &circuitOpen):
		s.metrics.IncrUpstreamError("circuit_open")
	default:
		s.metrics.IncrUpstreamError("upstream")
	}
}
