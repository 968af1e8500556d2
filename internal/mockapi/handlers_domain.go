package mockapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/microcrop/console/internal/api"
)

// =============================================================================
// Organizations & KYB
// =============================================================================

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	orgs := make([]api.Organization, 0, len(s.state.organizations))
	search := strings.ToLower(r.URL.Query().Get("search"))
	status := r.URL.Query().Get("status")
	for _, o := range s.state.organizations {
		if search != "" && !strings.Contains(strings.ToLower(o.Name), search) {
			continue
		}
		if status != "" && o.KYBStatus != status {
			continue
		}
		orgs = append(orgs, o)
	}
	s.mu.Unlock()

	page, p := paginate(r, orgs)
	writePage(w, page, p)
}

func (s *Server) findOrg(id string) *api.Organization {
	for i := range s.state.organizations {
		if s.state.organizations[i].ID == id {
			return &s.state.organizations[i]
		}
	}
	return nil
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.findOrg(mux.Vars(r)["id"])
	if org == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Organization not found")
		return
	}
	writeData(w, org)
}

func (s *Server) handleMyOrganization(w http.ResponseWriter, r *http.Request) {
	user := s.userForRequest(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.findOrg(user.OrganizationID)
	if org == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "No organization for this account")
		return
	}
	writeData(w, org)
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var upd api.OrganizationUpdate
	if !decodeBody(w, r, &upd) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	org := s.findOrg(mux.Vars(r)["id"])
	if org == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Organization not found")
		return
	}
	if upd.Name != nil {
		org.Name = *upd.Name
	}
	if upd.Country != nil {
		org.Country = *upd.Country
	}
	if upd.ContactEmail != nil {
		org.ContactEmail = *upd.ContactEmail
	}
	if upd.ContactPhone != nil {
		org.ContactPhone = *upd.ContactPhone
	}
	if upd.IsActive != nil {
		org.IsActive = *upd.IsActive
	}
	org.UpdatedAt = time.Now().UTC()
	writeData(w, org)
}

func (s *Server) handleUploadKYBDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid multipart payload")
		return
	}
	user := s.userForRequest(r)
	_, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "file part is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := api.KYBDocument{
		ID:             uuid.NewString(),
		OrganizationID: user.OrganizationID,
		DocumentType:   r.FormValue("documentType"),
		FileName:       header.Filename,
		Status:         "SUBMITTED",
		UploadedAt:     time.Now().UTC(),
	}
	s.state.kybDocs = append(s.state.kybDocs, doc)
	if org := s.findOrg(user.OrganizationID); org != nil && org.KYBStatus == api.KYBPending {
		org.KYBStatus = api.KYBInReview
	}
	writeData(w, doc)
}

func (s *Server) handleListKYBDocuments(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := []api.KYBDocument{}
	for _, d := range s.state.kybDocs {
		if d.OrganizationID == orgID {
			docs = append(docs, d)
		}
	}
	writeData(w, docs)
}

func (s *Server) handleReviewKYB(decision string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user := s.userForRequest(r); user.Role != api.RolePlatformAdmin {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Platform admin role required")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		org := s.findOrg(mux.Vars(r)["id"])
		if org == nil {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Organization not found")
			return
		}
		org.KYBStatus = decision
		org.UpdatedAt = time.Now().UTC()
		writeData(w, org)
	}
}

// =============================================================================
// Farmers
// =============================================================================

func (s *Server) handleListFarmers(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	s.mu.Lock()
	farmers := make([]api.Farmer, 0, len(s.state.farmers))
	for _, f := range s.state.farmers {
		name := strings.ToLower(f.FirstName + " " + f.LastName)
		if search != "" && !strings.Contains(name, search) {
			continue
		}
		farmers = append(farmers, f)
	}
	s.mu.Unlock()

	page, p := paginate(r, farmers)
	writePage(w, page, p)
}

func (s *Server) findFarmer(id string) *api.Farmer {
	for i := range s.state.farmers {
		if s.state.farmers[i].ID == id {
			return &s.state.farmers[i]
		}
	}
	return nil
}

func (s *Server) handleGetFarmer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFarmer(mux.Vars(r)["id"])
	if f == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Farmer not found")
		return
	}
	writeData(w, f)
}

func (s *Server) handleCreateFarmer(w http.ResponseWriter, r *http.Request) {
	var in api.FarmerInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.FirstName == "" || in.LastName == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "firstName and lastName are required")
		return
	}
	user := s.userForRequest(r)
	now := time.Now().UTC()
	f := api.Farmer{
		ID:               uuid.NewString(),
		OrganizationID:   user.OrganizationID,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Phone:            in.Phone,
		NationalID:       in.NationalID,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		FarmSizeHectares: in.FarmSizeHectares,
		CropTypes:        in.CropTypes,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.mu.Lock()
	s.state.farmers = append(s.state.farmers, f)
	s.mu.Unlock()
	writeData(w, f)
}

func (s *Server) handleUpdateFarmer(w http.ResponseWriter, r *http.Request) {
	var in api.FarmerInput
	if !decodeBody(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFarmer(mux.Vars(r)["id"])
	if f == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Farmer not found")
		return
	}
	if in.FirstName != "" {
		f.FirstName = in.FirstName
	}
	if in.LastName != "" {
		f.LastName = in.LastName
	}
	if in.Phone != "" {
		f.Phone = in.Phone
	}
	if in.FarmSizeHectares > 0 {
		f.FarmSizeHectares = in.FarmSizeHectares
	}
	if len(in.CropTypes) > 0 {
		f.CropTypes = in.CropTypes
	}
	f.UpdatedAt = time.Now().UTC()
	writeData(w, f)
}

func (s *Server) handleDeactivateFarmer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.findFarmer(mux.Vars(r)["id"])
	if f == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Farmer not found")
		return
	}
	f.IsActive = false
	writeData(w, nil)
}

// handleImportFarmers accepts a CSV of firstName,lastName,phone rows.
func (s *Server) handleImportFarmers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid multipart payload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "file part is required")
		return
	}
	defer file.Close()

	user := s.userForRequest(r)
	report := api.ImportReport{}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // rows are validated individually
	rows, err := reader.ReadAll()
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid CSV payload")
		return
	}

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range rows {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			report.Skipped++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: firstName and lastName are required", i+1))
			continue
		}
		f := api.Farmer{
			ID:             uuid.NewString(),
			OrganizationID: user.OrganizationID,
			FirstName:      row[0],
			LastName:       row[1],
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if len(row) > 2 {
			f.Phone = row[2]
		}
		s.state.farmers = append(s.state.farmers, f)
		report.Imported++
	}
	writeData(w, report)
}

// =============================================================================
// Policies, payouts, assessments
// =============================================================================

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	s.mu.Lock()
	policies := make([]api.Policy, 0, len(s.state.policies))
	for _, p := range s.state.policies {
		if status != "" && p.Status != status {
			continue
		}
		policies = append(policies, p)
	}
	s.mu.Unlock()

	page, p := paginate(r, policies)
	writePage(w, page, p)
}

func (s *Server) findPolicy(id string) *api.Policy {
	for i := range s.state.policies {
		if s.state.policies[i].ID == id {
			return &s.state.policies[i]
		}
	}
	return nil
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPolicy(mux.Vars(r)["id"])
	if p == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Policy not found")
		return
	}
	writeData(w, p)
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var in api.PolicyInput
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	farmer := s.findFarmer(in.FarmerID)
	if farmer == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Farmer not found")
		return
	}
	if in.CoverageAmount <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "coverageAmount must be positive")
		return
	}

	now := time.Now().UTC()
	p := api.Policy{
		ID:             uuid.NewString(),
		FarmerID:       in.FarmerID,
		OrganizationID: farmer.OrganizationID,
		CropType:       in.CropType,
		CoverageAmount: in.CoverageAmount,
		// Flat mock rate; the real backend prices premiums server-side.
		Premium:   in.CoverageAmount * 0.08,
		Status:    api.PolicyActive,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		CreatedAt: now,
	}
	if len(s.state.pools) > 0 {
		p.PoolID = s.state.pools[0].ID
	}
	s.state.policies = append(s.state.policies, p)
	writeData(w, p)
}

func (s *Server) handleCancelPolicy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPolicy(mux.Vars(r)["id"])
	if p == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Policy not found")
		return
	}
	if p.Status != api.PolicyActive {
		writeError(w, http.StatusConflict, "CONFLICT", "Only active policies can be cancelled")
		return
	}
	p.Status = api.PolicyCancelled
	writeData(w, p)
}

func (s *Server) handleListPayouts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	payouts := append([]api.Payout{}, s.state.payouts...)
	s.mu.Unlock()
	page, p := paginate(r, payouts)
	writePage(w, page, p)
}

func (s *Server) handleGetPayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.payouts {
		if p.ID == mux.Vars(r)["id"] {
			writeData(w, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Payout not found")
}

func (s *Server) handleRetryPayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.payouts {
		if s.state.payouts[i].ID == mux.Vars(r)["id"] {
			if s.state.payouts[i].Status != "FAILED" {
				writeError(w, http.StatusConflict, "CONFLICT", "Only failed payouts can be retried")
				return
			}
			s.state.payouts[i].Status = "PENDING"
			writeData(w, s.state.payouts[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Payout not found")
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	policyID := mux.Vars(r)["id"]
	s.mu.Lock()
	items := make([]api.DamageAssessment, 0, len(s.state.assessments))
	for _, a := range s.state.assessments {
		if policyID != "" && a.PolicyID != policyID {
			continue
		}
		items = append(items, a)
	}
	s.mu.Unlock()
	page, p := paginate(r, items)
	writePage(w, page, p)
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.assessments {
		if a.ID == mux.Vars(r)["id"] {
			writeData(w, a)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Assessment not found")
}

// =============================================================================
// Pools
// =============================================================================

func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pools := append([]api.Pool{}, s.state.pools...)
	s.mu.Unlock()
	page, p := paginate(r, pools)
	writePage(w, page, p)
}

func (s *Server) findPool(id string) *api.Pool {
	for i := range s.state.pools {
		if s.state.pools[i].ID == id {
			return &s.state.pools[i]
		}
	}
	return nil
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pool := s.findPool(mux.Vars(r)["id"])
	if pool == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Pool not found")
		return
	}
	writeData(w, pool)
}

func (s *Server) handlePoolTx(txType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount float64 `json:"amount"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be positive")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		pool := s.findPool(mux.Vars(r)["id"])
		if pool == nil {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Pool not found")
			return
		}
		if txType == api.PoolTxWithdrawal && req.Amount > pool.AvailableLiquidity {
			writeError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_LIQUIDITY", "Withdrawal exceeds available liquidity")
			return
		}

		switch txType {
		case api.PoolTxDeposit:
			pool.TotalLiquidity += req.Amount
			pool.AvailableLiquidity += req.Amount
		case api.PoolTxWithdrawal:
			pool.TotalLiquidity -= req.Amount
			pool.AvailableLiquidity -= req.Amount
		}

		tx := api.PoolTransaction{
			ID:        uuid.NewString(),
			PoolID:    pool.ID,
			Type:      txType,
			Amount:    req.Amount,
			TxHash:    "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""),
			Status:    "CONFIRMED",
			CreatedAt: time.Now().UTC(),
		}
		s.state.poolTxs = append(s.state.poolTxs, tx)
		writeData(w, tx)
	}
}

func (s *Server) handleListPoolTransactions(w http.ResponseWriter, r *http.Request) {
	poolID := mux.Vars(r)["id"]
	s.mu.Lock()
	txs := []api.PoolTransaction{}
	for _, tx := range s.state.poolTxs {
		if tx.PoolID == poolID {
			txs = append(txs, tx)
		}
	}
	s.mu.Unlock()
	page, p := paginate(r, txs)
	writePage(w, page, p)
}

// =============================================================================
// Staff & invitations
// =============================================================================

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	staff := append([]api.StaffMember{}, s.state.staff...)
	s.mu.Unlock()
	page, p := paginate(r, staff)
	writePage(w, page, p)
}

func (s *Server) handleDeactivateStaff(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.staff {
		if s.state.staff[i].ID == mux.Vars(r)["id"] {
			s.state.staff[i].IsActive = false
			writeData(w, nil)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Staff member not found")
}

func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "email and role are required")
		return
	}

	user := s.userForRequest(r)
	inv := api.Invitation{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Role:           req.Role,
		OrganizationID: user.OrganizationID,
		Status:         "PENDING",
		ExpiresAt:      time.Now().UTC().AddDate(0, 0, 7),
		CreatedAt:      time.Now().UTC(),
	}
	s.mu.Lock()
	s.state.invitations = append(s.state.invitations, inv)
	s.mu.Unlock()
	writeData(w, inv)
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	invs := append([]api.Invitation{}, s.state.invitations...)
	s.mu.Unlock()
	page, p := paginate(r, invs)
	writePage(w, page, p)
}

func (s *Server) handleRevokeInvitation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.invitations {
		if s.state.invitations[i].ID == mux.Vars(r)["id"] {
			s.state.invitations[i].Status = "REVOKED"
			writeData(w, nil)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Invitation not found")
}

// =============================================================================
// Analytics & exports
// =============================================================================

func (s *Server) handlePlatformDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := api.PlatformDashboard{
		TotalOrganizations: len(s.state.organizations),
		TotalFarmers:       len(s.state.farmers),
	}
	for _, o := range s.state.organizations {
		if o.KYBStatus == api.KYBPending || o.KYBStatus == api.KYBInReview {
			d.PendingKYB++
		}
	}
	for _, p := range s.state.policies {
		if p.Status == api.PolicyActive {
			d.ActivePolicies++
			d.TotalCoverage += p.CoverageAmount
		}
	}
	for _, p := range s.state.payouts {
		d.TotalPayouts += p.Amount
	}
	for _, pool := range s.state.pools {
		d.PoolLiquidity += pool.TotalLiquidity
	}
	writeData(w, d)
}

func (s *Server) handleOrgDashboard(w http.ResponseWriter, r *http.Request) {
	user := s.userForRequest(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	d := api.OrgDashboard{}
	for _, f := range s.state.farmers {
		if f.OrganizationID == user.OrganizationID {
			d.TotalFarmers++
		}
	}
	for _, p := range s.state.policies {
		if p.OrganizationID != user.OrganizationID {
			continue
		}
		if p.Status == api.PolicyActive {
			d.ActivePolicies++
			d.TotalCoverage += p.CoverageAmount
		}
	}
	for _, p := range s.state.payouts {
		if p.Status == "PENDING" {
			d.PendingPayouts++
		}
		d.TotalPayouts += p.Amount
	}
	writeData(w, d)
}

func writeCSV(w http.ResponseWriter, header []string, rows [][]string) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write(header)
	cw.WriteAll(rows)
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleExportFarmers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := make([][]string, 0, len(s.state.farmers))
	for _, f := range s.state.farmers {
		rows = append(rows, []string{f.ID, f.FirstName, f.LastName, f.Phone, strconv.FormatFloat(f.FarmSizeHectares, 'f', -1, 64)})
	}
	s.mu.Unlock()
	writeCSV(w, []string{"id", "firstName", "lastName", "phone", "farmSizeHectares"}, rows)
}

func (s *Server) handleExportPolicies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := make([][]string, 0, len(s.state.policies))
	for _, p := range s.state.policies {
		rows = append(rows, []string{p.ID, p.FarmerID, p.CropType, strconv.FormatFloat(p.CoverageAmount, 'f', 2, 64), p.Status})
	}
	s.mu.Unlock()
	writeCSV(w, []string{"id", "farmerId", "cropType", "coverageAmount", "status"}, rows)
}

func (s *Server) handleExportPayouts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := make([][]string, 0, len(s.state.payouts))
	for _, p := range s.state.payouts {
		rows = append(rows, []string{p.ID, p.PolicyID, strconv.FormatFloat(p.Amount, 'f', 2, 64), p.Status, p.TxHash})
	}
	s.mu.Unlock()
	writeCSV(w, []string{"id", "policyId", "amount", "status", "txHash"}, rows)
}
