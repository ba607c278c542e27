// Package port defines the interfaces (ports) for external dependencies.
// They decouple the dashboard service from the FinHawk API client and the
// cache implementation.
package port

import (
	"context"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
)

// BillsFetcher retrieves every bill of an account on behalf of the caller's token.
type BillsFetcher interface {
	ListBills(ctx context.Context, accountID, token string) ([]domain.BillRecord, error)
}

// AccountFetcher retrieves the account shown in the dashboard header.
type AccountFetcher interface {
	GetAccount(ctx context.Context, accountID, token string) (*domain.Account, error)
}

// HealthProber checks whether the upstream API is reachable.
type HealthProber interface {
	Ping(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
