package api

import (
	"context"
	"net/http"
)

// ListPools returns the liquidity pools.
func (c *Client) ListPools(ctx context.Context, p ListParams) ([]Pool, *Pagination, error) {
	var out []Pool
	page, err := c.RequestPage(ctx, http.MethodGet, "/pools"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// GetPool fetches one pool by ID.
func (c *Client) GetPool(ctx context.Context, id string) (*Pool, error) {
	var out Pool
	if err := c.Request(ctx, http.MethodGet, "/pools/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deposit adds liquidity to a pool. The chain transaction is executed
// server-side; the returned transaction carries its hash once submitted.
func (c *Client) Deposit(ctx context.Context, poolID string, amount float64) (*PoolTransaction, error) {
	body := map[string]float64{"amount": amount}
	var out PoolTransaction
	if err := c.Request(ctx, http.MethodPost, "/pools/"+poolID+"/deposit", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdraw removes liquidity from a pool.
func (c *Client) Withdraw(ctx context.Context, poolID string, amount float64) (*PoolTransaction, error) {
	body := map[string]float64{"amount": amount}
	var out PoolTransaction
	if err := c.Request(ctx, http.MethodPost, "/pools/"+poolID+"/withdraw", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPoolTransactions returns the ledger of a pool.
func (c *Client) ListPoolTransactions(ctx context.Context, poolID string, p ListParams) ([]PoolTransaction, *Pagination, error) {
	var out []PoolTransaction
	page, err := c.RequestPage(ctx, http.MethodGet, "/pools/"+poolID+"/transactions"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}
