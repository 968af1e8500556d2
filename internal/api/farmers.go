package api

import (
	"context"
	"io"
	"net/http"
)

// FarmerInput is the create/update payload for a farmer record.
type FarmerInput struct {
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Phone            string   `json:"phone,omitempty"`
	NationalID       string   `json:"nationalId,omitempty"`
	Latitude         float64  `json:"latitude,omitempty"`
	Longitude        float64  `json:"longitude,omitempty"`
	FarmSizeHectares float64  `json:"farmSizeHectares,omitempty"`
	CropTypes        []string `json:"cropTypes,omitempty"`
}

// ImportReport summarizes a bulk farmer import.
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ListFarmers returns the farmers of the caller's organization.
func (c *Client) ListFarmers(ctx context.Context, p ListParams) ([]Farmer, *Pagination, error) {
	var out []Farmer
	page, err := c.RequestPage(ctx, http.MethodGet, "/farmers"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// GetFarmer fetches one farmer by ID.
func (c *Client) GetFarmer(ctx context.Context, id string) (*Farmer, error) {
	var out Farmer
	if err := c.Request(ctx, http.MethodGet, "/farmers/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFarmer registers a farmer under the caller's organization.
func (c *Client) CreateFarmer(ctx context.Context, in FarmerInput) (*Farmer, error) {
	var out Farmer
	if err := c.Request(ctx, http.MethodPost, "/farmers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFarmer applies a partial update to a farmer record.
func (c *Client) UpdateFarmer(ctx context.Context, id string, in FarmerInput) (*Farmer, error) {
	var out Farmer
	if err := c.Request(ctx, http.MethodPatch, "/farmers/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateFarmer removes a farmer from the active roster.
func (c *Client) DeactivateFarmer(ctx context.Context, id string) error {
	return c.Request(ctx, http.MethodDelete, "/farmers/"+id, nil, nil)
}

// ImportFarmers uploads a CSV roster for bulk registration.
func (c *Client) ImportFarmers(ctx context.Context, fileName string, csv io.Reader) (*ImportReport, error) {
	form := NewForm().AddFile("file", fileName, csv)
	var out ImportReport
	if err := c.Upload(ctx, "/farmers/import", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
