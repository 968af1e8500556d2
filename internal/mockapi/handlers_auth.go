package mockapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/microcrop/console/internal/api"
)

// mockTokenLifetime is reported to clients as expiresIn (seconds).
const mockTokenLifetime = 3600

// issueTokens mints an opaque token pair for a user. Caller holds s.mu.
func (s *Server) issueTokens(userID string) (access, refresh string) {
	access = "mock-access-" + uuid.NewString()
	refresh = "mock-refresh-" + uuid.NewString()
	s.state.accessTokens[access] = userID
	s.state.refreshTokens[refresh] = userID
	return access, refresh
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	password, ok := s.state.passwords[req.Email]
	if !ok || password != req.Password {
		writeError(w, http.StatusUnauthorized, "AUTH_ERROR", "Invalid credentials")
		return
	}

	var user api.User
	for i := range s.state.users {
		if s.state.users[i].Email == req.Email {
			user = s.state.users[i]
		}
	}
	access, refresh := s.issueTokens(user.ID)

	writeData(w, api.AuthResponse{
		User:         &user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    mockTokenLifetime,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" || req.OrganizationName == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "email, password and organizationName are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.state.passwords[req.Email]; exists {
		writeError(w, http.StatusConflict, "CONFLICT", "Email already registered")
		return
	}

	now := time.Now().UTC()
	org := api.Organization{
		ID:           uuid.NewString(),
		Name:         req.OrganizationName,
		Country:      req.Country,
		ContactEmail: req.Email,
		KYBStatus:    api.KYBPending,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user := api.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           api.RoleOrgAdmin,
		OrganizationID: org.ID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.state.organizations = append(s.state.organizations, org)
	s.state.users = append(s.state.users, user)
	s.state.passwords[req.Email] = req.Password

	access, refresh := s.issueTokens(user.ID)
	writeData(w, api.AuthResponse{
		User:         &user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    mockTokenLifetime,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.state.refreshTokens[req.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH_ERROR", "Invalid refresh token")
		return
	}
	// Rotate: the presented refresh token is single-use.
	delete(s.state.refreshTokens, req.RefreshToken)
	access, refresh := s.issueTokens(userID)

	writeData(w, api.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    mockTokenLifetime,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.userForRequest(r))
}

// handleAcceptInvitation redeems an invitation into a staff account. The mock
// uses the invitation ID as the mailed token.
func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var inv *api.Invitation
	for i := range s.state.invitations {
		if s.state.invitations[i].ID == req.Token {
			inv = &s.state.invitations[i]
		}
	}
	if inv == nil || inv.Status != "PENDING" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Invitation not found or no longer valid")
		return
	}

	now := time.Now().UTC()
	user := api.User{
		ID:             uuid.NewString(),
		Email:          inv.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           inv.Role,
		OrganizationID: inv.OrganizationID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	inv.Status = "ACCEPTED"
	s.state.users = append(s.state.users, user)
	s.state.passwords[user.Email] = req.Password
	s.state.staff = append(s.state.staff, api.StaffMember{
		ID: user.ID, OrganizationID: user.OrganizationID, Email: user.Email,
		FirstName: user.FirstName, LastName: user.LastName,
		Role: user.Role, IsActive: true, CreatedAt: now,
	})

	access, refresh := s.issueTokens(user.ID)
	writeData(w, api.AuthResponse{
		User:         &user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    mockTokenLifetime,
	})
}
