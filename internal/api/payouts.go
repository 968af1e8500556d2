package api

import (
	"context"
	"net/http"
)

// ListPayouts returns payouts visible to the caller.
func (c *Client) ListPayouts(ctx context.Context, p ListParams) ([]Payout, *Pagination, error) {
	var out []Payout
	page, err := c.RequestPage(ctx, http.MethodGet, "/payouts"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// GetPayout fetches one payout by ID.
func (c *Client) GetPayout(ctx context.Context, id string) (*Payout, error) {
	var out Payout
	if err := c.Request(ctx, http.MethodGet, "/payouts/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetryPayout re-queues a failed payout settlement.
func (c *Client) RetryPayout(ctx context.Context, id string) (*Payout, error) {
	var out Payout
	if err := c.Request(ctx, http.MethodPost, "/payouts/"+id+"/retry", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAssessments returns damage assessments, optionally filtered by policy.
func (c *Client) ListAssessments(ctx context.Context, policyID string, p ListParams) ([]DamageAssessment, *Pagination, error) {
	path := "/assessments" + p.encode()
	if policyID != "" {
		path = "/policies/" + policyID + "/assessments" + p.encode()
	}
	var out []DamageAssessment
	page, err := c.RequestPage(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// GetAssessment fetches one damage assessment by ID.
func (c *Client) GetAssessment(ctx context.Context, id string) (*DamageAssessment, error) {
	var out DamageAssessment
	if err := c.Request(ctx, http.MethodGet, "/assessments/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
