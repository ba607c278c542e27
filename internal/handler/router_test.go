package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/handler"
	"github.com/carlosvigna/finhawk-bff/internal/infra/cache"
	"github.com/carlosvigna/finhawk-bff/internal/infra/observability"
	"github.com/carlosvigna/finhawk-bff/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBills struct {
	bills []domain.BillRecord
	err   error
	token string
}

func (s *stubBills) ListBills(_ context.Context, _ string, token string) ([]domain.BillRecord, error) {
	s.token = token
	return s.bills, s.err
}

type stubAccounts struct{}

func (stubAccounts) GetAccount(_ context.Context, id, _ string) (*domain.Account, error) {
	return &domain.Account{ID: id, Name: "Carteira"}, nil
}

type stubProber struct{ err error }

func (p stubProber) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, bills *stubBills, prober stubProber, secret string) (http.Handler, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	c := cache.New[[]domain.BillRecord](time.Minute)
	t.Cleanup(c.Close)

	svc := service.NewDashboardService(bills, stubAccounts{}, c, metrics, zap.NewNop(), service.Options{
		Location:      time.UTC,
		TimelineDays:  7,
		MonthsBack:    6,
		MonthsForward: 5,
		Now:           func() time.Time { return time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC) },
	})
	return handler.NewRouter(svc, prober, service.NewTokenVerifier(secret), metrics, zap.NewNop()), metrics
}

func do(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	rec := do(router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health domain.HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Len(t, health.Services, 2)
}

func TestHealthz_Degraded(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{err: errors.New("down")}, "")

	rec := do(router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health domain.HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "degraded", health.Status)
}

func TestHealthz_NoProber(t *testing.T) {
	metrics := observability.NewMetrics()
	router := handler.NewRouter(nil, nil, service.NewTokenVerifier(""), metrics, zap.NewNop())

	rec := do(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	rec := do(router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPing(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	rec := do(router, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	// Produce at least one sample so the families are exported.
	do(router, http.MethodGet, "/v1/accounts/1/dashboard/summary", "tok")

	rec := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "finhawk_requests_total")
}

func TestBFFMetrics(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	do(router, http.MethodGet, "/v1/accounts/1/dashboard/summary", "tok")
	do(router, http.MethodGet, "/v1/accounts/1/dashboard/summary", "tok")

	rec := do(router, http.MethodGet, "/v1/metrics/bff", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.BFFMetrics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.InDelta(t, 0.5, snap.CacheHitRate, 1e-9)
}

func TestCorrelationHeaderEchoed(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	rec := do(router, http.MethodGet, "/readyz", "")
	assert.NotEmpty(t, rec.Header().Get(observability.CorrelationHeader))
}

func TestBearerToken_Missing(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	rec := do(router, http.MethodGet, "/v1/accounts/1/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken_BadScheme(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts/1/dashboard", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken_ForwardedWhenNotVerified(t *testing.T) {
	bills := &stubBills{}
	router, _ := newTestRouter(t, bills, stubProber{}, "")

	rec := do(router, http.MethodGet, "/v1/accounts/1/dashboard/due", "opaque-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "opaque-token", bills.token)
}

func TestBearerToken_RejectedWhenSecretSet(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "s3cret")

	rec := do(router, http.MethodGet, "/v1/accounts/1/dashboard", "opaque-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboard_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", &domain.ErrUnauthorized{}, http.StatusUnauthorized},
		{"not found", &domain.ErrNotFound{Resource: "account bills", ID: "1"}, http.StatusNotFound},
		{"circuit open", &domain.ErrCircuitOpen{Service: "finhawk-api"}, http.StatusServiceUnavailable},
		{"timeout", &domain.ErrTimeout{Operation: "GET"}, http.StatusGatewayTimeout},
		{"upstream", &domain.ErrExternalService{Service: "finhawk-api", StatusCode: 500, Err: errors.New("x")}, http.StatusBadGateway},
		{"client gone", context.Canceled, 499},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &stubBills{err: tt.err}, stubProber{}, "")
			rec := do(router, http.MethodGet, "/v1/accounts/1/dashboard/summary", "tok")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDashboard_ValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t, &stubBills{}, stubProber{}, "")

	tests := map[string]string{
		"/v1/accounts/1/dashboard?month=12":          "month",
		"/v1/accounts/1/dashboard?month=abc":         "month",
		"/v1/accounts/1/dashboard?year=99":           "year",
		"/v1/accounts/1/dashboard/timeline?days=0":   "days",
		"/v1/accounts/1/dashboard/annual?back=-1":    "back",
		"/v1/accounts/1/dashboard/annual?forward=99": "forward",
	}
	for target, field := range tests {
		t.Run(target, func(t *testing.T) {
			rec := do(router, http.MethodGet, target, "tok")
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Error string `json:"error"`
				Field string `json:"field"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, field, body.Field)
			assert.True(t, strings.Contains(body.Error, field))
		})
	}
}
