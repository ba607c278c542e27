package client

import (
	"context"
	"net/url"

	"github.com/carlosvigna/finhawk-bff/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// AccountsClient fetches account (carteira) details.
type AccountsClient struct {
	api *API
}

// NewAccountsClient creates an AccountsClient.
func NewAccountsClient(api *API) *AccountsClient {
	return &AccountsClient{api: api}
}

// GetAccount fetches the account shown in the dashboard header.
func (c *AccountsClient) GetAccount(ctx context.Context, accountID, token string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "AccountsClient.GetAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	var raw rawAccount
	path := "/account/" + url.PathEscape(accountID)
	if err := c.api.getJSON(ctx, path, token, "account", accountID, &raw); err != nil {
		traceError(span, err)
		return nil, err
	}

	acc := &domain.Account{
		ID:          string(raw.ID),
		Name:        raw.Name,
		Description: raw.Description,
	}
	if acc.ID == "" {
		acc.ID = accountID
	}
	return acc, nil
}
