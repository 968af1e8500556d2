package api

import (
	"context"
	"net/http"
	"time"
)

// PolicyInput is the create payload for a policy. Premium is computed
// server-side from coverage, crop and location.
type PolicyInput struct {
	FarmerID       string    `json:"farmerId"`
	CropType       string    `json:"cropType"`
	CoverageAmount float64   `json:"coverageAmount"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// ListPolicies returns policies visible to the caller.
func (c *Client) ListPolicies(ctx context.Context, p ListParams) ([]Policy, *Pagination, error) {
	var out []Policy
	page, err := c.RequestPage(ctx, http.MethodGet, "/policies"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// GetPolicy fetches one policy by ID.
func (c *Client) GetPolicy(ctx context.Context, id string) (*Policy, error) {
	var out Policy
	if err := c.Request(ctx, http.MethodGet, "/policies/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePolicy underwrites a new policy for a farmer.
func (c *Client) CreatePolicy(ctx context.Context, in PolicyInput) (*Policy, error) {
	var out Policy
	if err := c.Request(ctx, http.MethodPost, "/policies", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelPolicy cancels an active policy.
func (c *Client) CancelPolicy(ctx context.Context, id, reason string) (*Policy, error) {
	body := map[string]string{"reason": reason}
	var out Policy
	if err := c.Request(ctx, http.MethodPost, "/policies/"+id+"/cancel", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
