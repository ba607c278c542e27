package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/infra/client"
	"github.com/carlosvigna/finhawk-bff/internal/infra/observability"
	"github.com/carlosvigna/finhawk-bff/internal/infra/resilience"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var brt = time.FixedZone("BRT", -3*60*60)

func newAPI(t *testing.T, h http.Handler) *client.API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}
	guard := resilience.NewGuard(resilience.NewCircuitBreaker(t.Name(), zap.NewNop()), cfg)
	return client.NewAPI(srv.Client(), srv.URL+"/", guard)
}

const billsJSON = `[
  {"id": 1, "description": "Salário", "maturity": "2024-01-05", "value": "5000.00",
   "status": "RECEIVED", "category": {"id": 10, "name": "Salário", "type": "RECEIPT"}},
  {"id": "b-2", "description": "Aluguel", "maturity": "2024-01-10T00:00:00", "installmentAmount": 1500.5,
   "value": 9999, "status": "pendente", "category": {"id": 11, "name": "Moradia", "type": "pagamento"}},
  {"id": 3, "description": "Sem data", "maturity": null, "value": "12,50", "status": "PAID", "type": "PAYMENT"}
]`

func TestBillsClient_ListBills(t *testing.T) {
	var gotAuth, gotCID, gotPath string
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCID = r.Header.Get(observability.CorrelationHeader)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(billsJSON))
	}))

	ctx := observability.WithCorrelationID(context.Background(), "cid-1")
	bills, err := client.NewBillsClient(api, brt).ListBills(ctx, "42", "tok")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "cid-1", gotCID)
	assert.Equal(t, "/bill/account/42", gotPath)

	require.Len(t, bills, 3)
	assert.Equal(t, "1", bills[0].ID)
	assert.True(t, decimal.RequireFromString("5000").Equal(bills[0].Amount))
	assert.Equal(t, domain.StatusReceived, bills[0].Status)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, brt), bills[0].Maturity)

	assert.Equal(t, "b-2", bills[1].ID)
	assert.True(t, decimal.RequireFromString("1500.5").Equal(bills[1].Amount))
	assert.Equal(t, domain.StatusPending, bills[1].Status)
	assert.Equal(t, domain.TxType("PAGAMENTO"), bills[1].Category.Type)

	assert.False(t, bills[2].HasMaturity())
	assert.Nil(t, bills[2].Category)
	assert.True(t, decimal.RequireFromString("12.5").Equal(bills[2].Amount))
	assert.Equal(t, domain.TxPayment, bills[2].Type)
}

func TestBillsClient_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.NewBillsClient(api, brt).ListBills(context.Background(), "42", "bad")
	var unauthorized *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestBillsClient_NotFound(t *testing.T) {
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.NewBillsClient(api, brt).ListBills(context.Background(), "404", "tok")
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "404", notFound.ID)
}

func TestBillsClient_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	bills, err := client.NewBillsClient(api, brt).ListBills(context.Background(), "1", "tok")
	require.NoError(t, err)
	assert.Empty(t, bills)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBillsClient_ServerErrorExhausted(t *testing.T) {
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.NewBillsClient(api, brt).ListBills(context.Background(), "1", "tok")
	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
	assert.Equal(t, http.StatusInternalServerError, external.StatusCode)
}

func TestBillsClient_MalformedBody(t *testing.T) {
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}))

	_, err := client.NewBillsClient(api, brt).ListBills(context.Background(), "1", "tok")
	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
}

func TestBillsClient_CircuitOpen(t *testing.T) {
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	bc := client.NewBillsClient(api, brt)

	var err error
	for i := 0; i < 10; i++ {
		_, err = bc.ListBills(context.Background(), "1", "tok")
	}
	var open *domain.ErrCircuitOpen
	require.ErrorAs(t, err, &open)
}

func TestAccountsClient_GetAccount(t *testing.T) {
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 7, "name": "Carteira Pessoal", "description": "Conta do dia a dia"}`))
	}))

	acc, err := client.NewAccountsClient(api).GetAccount(context.Background(), "7", "tok")
	require.NoError(t, err)
	assert.Equal(t, &domain.Account{ID: "7", Name: "Carteira Pessoal", Description: "Conta do dia a dia"}, acc)
}

func TestAPI_Ping(t *testing.T) {
	up := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	assert.NoError(t, up.Ping(context.Background()))

	down := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	assert.Error(t, down.Ping(context.Background()))
}

func TestBillsClient_CallerCancelled(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	api := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := client.NewBillsClient(api, brt).ListBills(ctx, "42", "tok")
	require.ErrorIs(t, err, context.Canceled)

	var external *domain.ErrExternalService
	assert.False(t, errors.As(err, &external))
}
