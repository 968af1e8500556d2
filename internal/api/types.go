package api

import "time"

// =============================================================================
// Identity
// =============================================================================

// Role values assigned by the backend. A platform admin operates the whole
// platform; org roles are scoped to a single organization.
const (
	RolePlatformAdmin = "PLATFORM_ADMIN"
	RoleOrgAdmin      = "ORG_ADMIN"
	RoleOrgStaff      = "ORG_STAFF"
)

// User is the authenticated identity record.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organizationId,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AuthResponse is the payload of login, register and refresh calls.
// ExpiresIn is the access-token lifetime in seconds; zero when the backend
// does not report one.
type AuthResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

// =============================================================================
// Organizations
// =============================================================================

// KYB review states for an organization.
const (
	KYBPending  = "PENDING"
	KYBInReview = "IN_REVIEW"
	KYBApproved = "APPROVED"
	KYBRejected = "REJECTED"
)

// Organization is an insurer or cooperative onboarded on the platform.
type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country,omitempty"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	KYBStatus    string    `json:"kybStatus"`
	IsActive     bool      `json:"isActive"`
	FarmerCount  int       `json:"farmerCount,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// KYBDocument is a verification document attached to an organization.
type KYBDocument struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	DocumentType   string    `json:"documentType"`
	FileName       string    `json:"fileName"`
	Status         string    `json:"status"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

// =============================================================================
// Farmers & policies
// =============================================================================

// Farmer is an insured smallholder registered by an organization.
type Farmer struct {
	ID               string    `json:"id"`
	OrganizationID   string    `json:"organizationId"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Phone            string    `json:"phone,omitempty"`
	NationalID       string    `json:"nationalId,omitempty"`
	Latitude         float64   `json:"latitude,omitempty"`
	Longitude        float64   `json:"longitude,omitempty"`
	FarmSizeHectares float64   `json:"farmSizeHectares,omitempty"`
	CropTypes        []string  `json:"cropTypes,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Policy states reported by the backend.
const (
	PolicyActive    = "ACTIVE"
	PolicyExpired   = "EXPIRED"
	PolicyCancelled = "CANCELLED"
	PolicyPaidOut   = "PAID_OUT"
)

// Policy is a parametric crop-insurance policy. Premium and payout amounts are
// computed server-side; the console only displays them.
type Policy struct {
	ID             string    `json:"id"`
	FarmerID       string    `json:"farmerId"`
	OrganizationID string    `json:"organizationId"`
	PoolID         string    `json:"poolId,omitempty"`
	CropType       string    `json:"cropType"`
	CoverageAmount float64   `json:"coverageAmount"`
	Premium        float64   `json:"premium"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	CreatedAt      time.Time `json:"createdAt"`
}

// =============================================================================
// Payouts & damage assessments
// =============================================================================

// Payout is a triggered claim payment against a policy.
type Payout struct {
	ID          string     `json:"id"`
	PolicyID    string     `json:"policyId"`
	FarmerID    string     `json:"farmerId"`
	Amount      float64    `json:"amount"`
	TriggerType string     `json:"triggerType,omitempty"`
	Status      string     `json:"status"`
	TxHash      string     `json:"txHash,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
}

// DamageAssessment records observed or satellite-derived crop damage that can
// trigger a payout.
type DamageAssessment struct {
	ID          string    `json:"id"`
	PolicyID    string    `json:"policyId"`
	Source      string    `json:"source"`
	DamageRatio float64   `json:"damageRatio"`
	Notes       string    `json:"notes,omitempty"`
	AssessedAt  time.Time `json:"assessedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// =============================================================================
// Liquidity pools
// =============================================================================

// Pool is a blockchain-backed liquidity pool funding payouts. Chain access is
// entirely server-side; contract address and tx hashes are opaque strings here.
type Pool struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	ContractAddress    string    `json:"contractAddress,omitempty"`
	Currency           string    `json:"currency"`
	TotalLiquidity     float64   `json:"totalLiquidity"`
	AvailableLiquidity float64   `json:"availableLiquidity"`
	APY                float64   `json:"apy,omitempty"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Pool transaction kinds.
const (
	PoolTxDeposit    = "DEPOSIT"
	PoolTxWithdrawal = "WITHDRAWAL"
	PoolTxPayout     = "PAYOUT"
)

// PoolTransaction is a ledger entry of a pool.
type PoolTransaction struct {
	ID        string    `json:"id"`
	PoolID    string    `json:"poolId"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	TxHash    string    `json:"txHash,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// =============================================================================
// Staff & invitations
// =============================================================================

// StaffMember is an operator account inside an organization.
type StaffMember struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Invitation is a pending invite to join an organization or the platform team.
type Invitation struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organizationId,omitempty"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// =============================================================================
// Analytics
// =============================================================================

// PlatformDashboard aggregates platform-wide figures for the operator console.
type PlatformDashboard struct {
	TotalOrganizations int     `json:"totalOrganizations"`
	PendingKYB         int     `json:"pendingKyb"`
	TotalFarmers       int     `json:"totalFarmers"`
	ActivePolicies     int     `json:"activePolicies"`
	TotalCoverage      float64 `json:"totalCoverage"`
	TotalPayouts       float64 `json:"totalPayouts"`
	PoolLiquidity      float64 `json:"poolLiquidity"`
}

// OrgDashboard aggregates figures scoped to one organization.
type OrgDashboard struct {
	TotalFarmers   int     `json:"totalFarmers"`
	ActivePolicies int     `json:"activePolicies"`
	TotalCoverage  float64 `json:"totalCoverage"`
	PendingPayouts int     `json:"pendingPayouts"`
	TotalPayouts   float64 `json:"totalPayouts"`
}
