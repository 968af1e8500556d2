package api

import (
	"context"
	"io"
	"net/http"
)

// OrganizationUpdate carries the mutable organization fields; nil pointers are
// omitted from the request body.
type OrganizationUpdate struct {
	Name         *string `json:"name,omitempty"`
	Country      *string `json:"country,omitempty"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// ListOrganizations returns organizations visible to a platform admin.
func (c *Client) ListOrganizations(ctx context.Context, p ListParams) ([]Organization, *Pagination, error) {
	var out []Organization
	page, err := c.RequestPage(ctx, http.MethodGet, "/organizations"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// GetOrganization fetches one organization by ID.
func (c *Client) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var out Organization
	if err := c.Request(ctx, http.MethodGet, "/organizations/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyOrganization fetches the organization of the current org-scoped user.
func (c *Client) GetMyOrganization(ctx context.Context) (*Organization, error) {
	var out Organization
	if err := c.Request(ctx, http.MethodGet, "/organizations/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrganization applies a partial update.
func (c *Client) UpdateOrganization(ctx context.Context, id string, upd OrganizationUpdate) (*Organization, error) {
	var out Organization
	if err := c.Request(ctx, http.MethodPatch, "/organizations/"+id, upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadKYBDocument attaches a verification document to the caller's
// organization.
func (c *Client) UploadKYBDocument(ctx context.Context, documentType, fileName string, file io.Reader) (*KYBDocument, error) {
	form := NewForm().
		AddField("documentType", documentType).
		AddFile("file", fileName, file)
	var out KYBDocument
	if err := c.Upload(ctx, "/organizations/me/kyb/documents", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListKYBDocuments returns the verification documents of an organization.
func (c *Client) ListKYBDocuments(ctx context.Context, orgID string) ([]KYBDocument, error) {
	var out []KYBDocument
	if err := c.Request(ctx, http.MethodGet, "/organizations/"+orgID+"/kyb/documents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveKYB marks an organization's verification as approved.
func (c *Client) ApproveKYB(ctx context.Context, orgID, notes string) (*Organization, error) {
	body := map[string]string{"notes": notes}
	var out Organization
	if err := c.Request(ctx, http.MethodPost, "/organizations/"+orgID+"/kyb/approve", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectKYB marks an organization's verification as rejected.
func (c *Client) RejectKYB(ctx context.Context, orgID, reason string) (*Organization, error) {
	body := map[string]string{"reason": reason}
	var out Organization
	if err := c.Request(ctx, http.MethodPost, "/organizations/"+orgID+"/kyb/reject", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
