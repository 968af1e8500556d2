package api

import (
	"context"
	"net/http"
)

// GetPlatformDashboard returns platform-wide aggregates (platform admin only).
func (c *Client) GetPlatformDashboard(ctx context.Context) (*PlatformDashboard, error) {
	var out PlatformDashboard
	if err := c.Request(ctx, http.MethodGet, "/analytics/platform", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrgDashboard returns aggregates scoped to the caller's organization.
func (c *Client) GetOrgDashboard(ctx context.Context) (*OrgDashboard, error) {
	var out OrgDashboard
	if err := c.Request(ctx, http.MethodGet, "/analytics/organization", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportFarmersCSV downloads the farmer roster as CSV bytes.
func (c *Client) ExportFarmersCSV(ctx context.Context) ([]byte, error) {
	return c.Download(ctx, "/exports/farmers")
}

// ExportPoliciesCSV downloads the policy book as CSV bytes.
func (c *Client) ExportPoliciesCSV(ctx context.Context) ([]byte, error) {
	return c.Download(ctx, "/exports/policies")
}

// ExportPayoutsCSV downloads the payout history as CSV bytes.
func (c *Client) ExportPayoutsCSV(ctx context.Context) ([]byte, error) {
	return c.Download(ctx, "/exports/payouts")
}
