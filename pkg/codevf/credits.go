package codevf

import (
	"context"
	"net/http"
)

// GetCreditBalance retrieves the account's credit balance.
func (c *Client) GetCreditBalance(ctx context.Context) (*CreditBalance, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "credits/balance", nil)
	if err != nil {
		return nil, err
	}

	body, err := c.send(req)
	if err != nil {
		return nil, err
	}

	return decodeCreditBalance(body)
}
