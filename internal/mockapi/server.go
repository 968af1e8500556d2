// Package mockapi is an in-process mock of the MicroCrop backend. It speaks
// the same response envelope as the real API over seeded in-memory fixtures,
// so the console can run end-to-end with MICROCROP_USE_MOCK_API=true and the
// test suite has a realistic peer to talk to.
package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/microcrop/console/internal/api"
)

// Server is the mock backend. Create with NewServer and mount via Handler.
type Server struct {
	mu     sync.Mutex
	state  *state
	logger zerolog.Logger
	router *mux.Router
}

// NewServer creates a mock backend seeded with fixture data.
func NewServer(logger zerolog.Logger) *Server {
	s := &Server{
		state:  seed(),
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	apiR := r.PathPrefix("/api").Subrouter()

	// Auth endpoints sit outside the bearer-token requirement.
	apiR.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	apiR.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	apiR.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	apiR.HandleFunc("/auth/password-reset", s.handleNoop).Methods(http.MethodPost)
	apiR.HandleFunc("/auth/password-reset/confirm", s.handleNoop).Methods(http.MethodPost)
	apiR.HandleFunc("/invitations/accept", s.handleAcceptInvitation).Methods(http.MethodPost)

	authed := apiR.NewRoute().Subrouter()
	authed.Use(s.requireAuth)

	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)

	authed.HandleFunc("/organizations", s.handleListOrganizations).Methods(http.MethodGet)
	authed.HandleFunc("/organizations/me", s.handleMyOrganization).Methods(http.MethodGet)
	authed.HandleFunc("/organizations/me/kyb/documents", s.handleUploadKYBDocument).Methods(http.MethodPost)
	authed.HandleFunc("/organizations/{id}", s.handleGetOrganization).Methods(http.MethodGet)
	authed.HandleFunc("/organizations/{id}", s.handleUpdateOrganization).Methods(http.MethodPatch)
	authed.HandleFunc("/organizations/{id}/kyb/documents", s.handleListKYBDocuments).Methods(http.MethodGet)
	authed.HandleFunc("/organizations/{id}/kyb/approve", s.handleReviewKYB(api.KYBApproved)).Methods(http.MethodPost)
	authed.HandleFunc("/organizations/{id}/kyb/reject", s.handleReviewKYB(api.KYBRejected)).Methods(http.MethodPost)

	authed.HandleFunc("/farmers", s.handleListFarmers).Methods(http.MethodGet)
	authed.HandleFunc("/farmers", s.handleCreateFarmer).Methods(http.MethodPost)
	authed.HandleFunc("/farmers/import", s.handleImportFarmers).Methods(http.MethodPost)
	authed.HandleFunc("/farmers/{id}", s.handleGetFarmer).Methods(http.MethodGet)
	authed.HandleFunc("/farmers/{id}", s.handleUpdateFarmer).Methods(http.MethodPatch)
	authed.HandleFunc("/farmers/{id}", s.handleDeactivateFarmer).Methods(http.MethodDelete)

	authed.HandleFunc("/policies", s.handleListPolicies).Methods(http.MethodGet)
	authed.HandleFunc("/policies", s.handleCreatePolicy).Methods(http.MethodPost)
	authed.HandleFunc("/policies/{id}", s.handleGetPolicy).Methods(http.MethodGet)
	authed.HandleFunc("/policies/{id}/cancel", s.handleCancelPolicy).Methods(http.MethodPost)
	authed.HandleFunc("/policies/{id}/assessments", s.handleListAssessments).Methods(http.MethodGet)

	authed.HandleFunc("/payouts", s.handleListPayouts).Methods(http.MethodGet)
	authed.HandleFunc("/payouts/{id}", s.handleGetPayout).Methods(http.MethodGet)
	authed.HandleFunc("/payouts/{id}/retry", s.handleRetryPayout).Methods(http.MethodPost)
	authed.HandleFunc("/assessments", s.handleListAssessments).Methods(http.MethodGet)
	authed.HandleFunc("/assessments/{id}", s.handleGetAssessment).Methods(http.MethodGet)

	authed.HandleFunc("/pools", s.handleListPools).Methods(http.MethodGet)
	authed.HandleFunc("/pools/{id}", s.handleGetPool).Methods(http.MethodGet)
	authed.HandleFunc("/pools/{id}/deposit", s.handlePoolTx(api.PoolTxDeposit)).Methods(http.MethodPost)
	authed.HandleFunc("/pools/{id}/withdraw", s.handlePoolTx(api.PoolTxWithdrawal)).Methods(http.MethodPost)
	authed.HandleFunc("/pools/{id}/transactions", s.handleListPoolTransactions).Methods(http.MethodGet)

	authed.HandleFunc("/staff", s.handleListStaff).Methods(http.MethodGet)
	authed.HandleFunc("/staff/{id}", s.handleDeactivateStaff).Methods(http.MethodDelete)
	authed.HandleFunc("/invitations", s.handleCreateInvitation).Methods(http.MethodPost)
	authed.HandleFunc("/invitations", s.handleListInvitations).Methods(http.MethodGet)
	authed.HandleFunc("/invitations/{id}", s.handleRevokeInvitation).Methods(http.MethodDelete)

	authed.HandleFunc("/analytics/platform", s.handlePlatformDashboard).Methods(http.MethodGet)
	authed.HandleFunc("/analytics/organization", s.handleOrgDashboard).Methods(http.MethodGet)

	authed.HandleFunc("/exports/farmers", s.handleExportFarmers).Methods(http.MethodGet)
	authed.HandleFunc("/exports/policies", s.handleExportPolicies).Methods(http.MethodGet)
	authed.HandleFunc("/exports/payouts", s.handleExportPayouts).Methods(http.MethodGet)

	return r
}

// =============================================================================
// Auth plumbing
// =============================================================================

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("mock api request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.userForRequest(r) == nil {
			writeError(w, http.StatusUnauthorized, "AUTH_ERROR", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userForRequest resolves the bearer token to a fixture user, nil when the
// token is absent or unknown.
func (s *Server) userForRequest(r *http.Request) *api.User {
	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.state.accessTokens[parts[1]]
	if !ok {
		return nil
	}
	for i := range s.state.users {
		if s.state.users[i].ID == userID {
			u := s.state.users[i]
			return &u
		}
	}
	return nil
}

// =============================================================================
// Envelope helpers
// =============================================================================

type errorBody struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writePage(w http.ResponseWriter, data any, page *api.Pagination) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data, "pagination": page})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": errorBody{Code: code, Message: message}})
}

// paginate slices items for the requested page and builds the pagination
// block. Page and limit default to 1 and 20.
func paginate[T any](r *http.Request, items []T) ([]T, *api.Pagination) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	total := len(items)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], &api.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	return true
}

func (s *Server) handleNoop(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"status": "ok"})
}
