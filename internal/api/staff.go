package api

import (
	"context"
	"net/http"
)

// ListStaff returns the operator accounts of the caller's organization.
func (c *Client) ListStaff(ctx context.Context, p ListParams) ([]StaffMember, *Pagination, error) {
	var out []StaffMember
	page, err := c.RequestPage(ctx, http.MethodGet, "/staff"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// DeactivateStaff disables an operator account.
func (c *Client) DeactivateStaff(ctx context.Context, id string) error {
	return c.Request(ctx, http.MethodDelete, "/staff/"+id, nil, nil)
}

// CreateInvitation invites a new operator by email.
func (c *Client) CreateInvitation(ctx context.Context, email, role string) (*Invitation, error) {
	body := map[string]string{"email": email, "role": role}
	var out Invitation
	if err := c.Request(ctx, http.MethodPost, "/invitations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInvitations returns pending and consumed invitations.
func (c *Client) ListInvitations(ctx context.Context, p ListParams) ([]Invitation, *Pagination, error) {
	var out []Invitation
	page, err := c.RequestPage(ctx, http.MethodGet, "/invitations"+p.encode(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, page, nil
}

// RevokeInvitation cancels a pending invitation.
func (c *Client) RevokeInvitation(ctx context.Context, id string) error {
	return c.Request(ctx, http.MethodDelete, "/invitations/"+id, nil, nil)
}

// AcceptInvitation redeems an invitation token into a new account.
func (c *Client) AcceptInvitation(ctx context.Context, token, password, firstName, lastName string) (*AuthResponse, error) {
	body := map[string]string{
		"token":     token,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	}
	var out AuthResponse
	if err := c.Request(ctx, http.MethodPost, "/invitations/accept", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
