package client

import (
	"context"
	"net/url"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// BillsClient lists the bills (títulos) of an account.
type BillsClient struct {
	api *API
	loc *time.Location
}

// NewBillsClient creates a BillsClient. Dates are normalized into loc.
func NewBillsClient(api *API, loc *time.Location) *BillsClient {
	return &BillsClient{api: api, loc: loc}
}

// ListBills fetches every bill of the account and normalizes it.
func (c *BillsClient) ListBills(ctx context.Context, accountID, token string) ([]domain.BillRecord, error) {
	ctx, span := tracer.Start(ctx, "BillsClient.ListBills")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	var raw []RawBill
	path := "/bill/account/" + url.PathEscape(accountID)
	if err := c.api.getJSON(ctx, path, token, "account bills", accountID, &raw); err != nil {
		traceError(span, err)
		return nil, err
	}

	bills := Normalize(raw, c.loc)
	span.SetAttributes(attribute.Int("bills.count", len(bills)))
	return bills, nil
}
