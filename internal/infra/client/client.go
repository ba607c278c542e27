// Package client talks to the FinHawk REST API. Every call goes through the
// resilience guard (bulkhead, circuit breaker, retry) and carries an otel span.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/infra/observability"
	"github.com/carlosvigna/finhawk-bff/internal/infra/resilience"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("client")

const serviceName = "finhawk-api"

// maxErrorBody caps how much of an upstream error body ends up in logs.
const maxErrorBody = 512

// API is the shared transport for the FinHawk endpoints.
type API struct {
	httpClient *http.Client
	baseURL    string
	guard      *resilience.Guard
}

// NewAPI creates the shared transport. baseURL must not end with a slash.
func NewAPI(httpClient *http.Client, baseURL string, guard *resilience.Guard) *API {
	return &API{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		guard:      guard,
	}
}

// getJSON performs an authenticated GET and decodes the body into out.
// resource and id only feed error messages.
func (a *API) getJSON(ctx context.Context, path, token, resource, id string, out any) error {
	err := a.guard.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
		if err != nil {
			return resilience.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if cid := observability.CorrelationID(ctx); cid != "" {
			req.Header.Set(observability.CorrelationHeader, cid)
		}

		resp, err := a.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return resilience.Permanent(&domain.ErrUnauthorized{Message: "FinHawk API rejected the token"})
		case resp.StatusCode == http.StatusNotFound:
			return resilience.Permanent(&domain.ErrNotFound{Resource: resource, ID: id})
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return resilience.Permanent(&domain.ErrExternalService{
				Service:    serviceName,
				StatusCode: resp.StatusCode,
				Err:        errors.New(readSnippet(resp.Body)),
			})
		case resp.StatusCode != http.StatusOK:
			return &domain.ErrExternalService{
				Service:    serviceName,
				StatusCode: resp.StatusCode,
				Err:        errors.New(readSnippet(resp.Body)),
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resilience.Permanent(&domain.ErrExternalService{
				Service: serviceName,
				Err:     fmt.Errorf("decode %s: %w", resource, err),
			})
		}
		return nil
	})
	return mapError(path, err)
}

// Ping checks that the API answers at all. Any status below 500 counts as up.
func (a *API) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "API.Ping")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		traceError(span, err)
		return &domain.ErrExternalService{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &domain.ErrExternalService{Service: serviceName, StatusCode: resp.StatusCode, Err: errors.New("upstream unhealthy")}
	}
	return nil
}

func mapError(path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, resilience.ErrOpen) {
		return &domain.ErrCircuitOpen{Service: serviceName}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.ErrTimeout{Operation: "GET " + path}
	}

	var (
		unauthorized *domain.ErrUnauthorized
		notFound     *domain.ErrNotFound
		external     *domain.ErrExternalService
	)
	switch {
	case errors.As(err, &unauthorized):
		return unauthorized
	case errors.As(err, &notFound):
		return notFound
	case errors.As(err, &external):
		return external
	}
	return &domain.ErrExternalService{Service: serviceName, Err: err}
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "empty response body"
	}
	return s
}

func traceError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
