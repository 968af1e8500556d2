package mockapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/microcrop/console/internal/api"
)

// state is the in-memory world of the mock backend.
type state struct {
	users         []api.User
	passwords     map[string]string // email -> password
	organizations []api.Organization
	farmers       []api.Farmer
	policies      []api.Policy
	payouts       []api.Payout
	assessments   []api.DamageAssessment
	pools         []api.Pool
	poolTxs       []api.PoolTransaction
	staff         []api.StaffMember
	invitations   []api.Invitation
	kybDocs       []api.KYBDocument

	accessTokens  map[string]string // access token -> user ID
	refreshTokens map[string]string // refresh token -> user ID
}

// seed builds a deterministic-enough fixture world: one platform operator, two
// organizations (one mid-KYB), a handful of farmers and policies, one settled
// payout and two liquidity pools.
func seed() *state {
	now := time.Now().UTC()

	platformAdmin := api.User{
		ID:        uuid.NewString(),
		Email:     "admin@microcrop.io",
		FirstName: "Awa",
		LastName:  "Diop",
		Role:      api.RolePlatformAdmin,
		IsActive:  true,
		CreatedAt: now.AddDate(-1, 0, 0),
		UpdatedAt: now,
	}

	orgA := api.Organization{
		ID:           uuid.NewString(),
		Name:         "Sahel Mutual Cooperative",
		Country:      "SN",
		ContactEmail: "ops@sahelmutual.example",
		KYBStatus:    api.KYBApproved,
		IsActive:     true,
		FarmerCount:  3,
		CreatedAt:    now.AddDate(0, -8, 0),
		UpdatedAt:    now,
	}
	orgB := api.Organization{
		ID:           uuid.NewString(),
		Name:         "Rift Valley Growers",
		Country:      "KE",
		ContactEmail: "admin@riftgrowers.example",
		KYBStatus:    api.KYBPending,
		IsActive:     true,
		CreatedAt:    now.AddDate(0, -1, 0),
		UpdatedAt:    now,
	}

	orgAdmin := api.User{
		ID:             uuid.NewString(),
		Email:          "ops@sahelmutual.example",
		FirstName:      "Moussa",
		LastName:       "Ba",
		Role:           api.RoleOrgAdmin,
		OrganizationID: orgA.ID,
		IsActive:       true,
		CreatedAt:      now.AddDate(0, -8, 0),
		UpdatedAt:      now,
	}

	farmers := []api.Farmer{
		{
			ID: uuid.NewString(), OrganizationID: orgA.ID,
			FirstName: "Fatou", LastName: "Ndiaye", Phone: "+221770000001",
			Latitude: 14.79, Longitude: -16.93, FarmSizeHectares: 2.5,
			CropTypes: []string{"millet", "groundnut"}, IsActive: true,
			CreatedAt: now.AddDate(0, -7, 0), UpdatedAt: now,
		},
		{
			ID: uuid.NewString(), OrganizationID: orgA.ID,
			FirstName: "Ibrahima", LastName: "Sarr", Phone: "+221770000002",
			Latitude: 14.71, Longitude: -17.02, FarmSizeHectares: 1.2,
			CropTypes: []string{"maize"}, IsActive: true,
			CreatedAt: now.AddDate(0, -6, 0), UpdatedAt: now,
		},
		{
			ID: uuid.NewString(), OrganizationID: orgA.ID,
			FirstName: "Aminata", LastName: "Fall", Phone: "+221770000003",
			Latitude: 14.68, Longitude: -16.88, FarmSizeHectares: 3.8,
			CropTypes: []string{"rice"}, IsActive: true,
			CreatedAt: now.AddDate(0, -5, 0), UpdatedAt: now,
		},
	}

	pools := []api.Pool{
		{
			ID: uuid.NewString(), Name: "West Africa Drought Pool",
			ContractAddress: "0x6f3c9f1b2a884fd0c1de6d3b5a4f0e9c7b2d1a45",
			Currency:        "USDC", TotalLiquidity: 250000, AvailableLiquidity: 181500,
			APY: 6.4, IsActive: true, CreatedAt: now.AddDate(0, -9, 0),
		},
		{
			ID: uuid.NewString(), Name: "East Africa Flood Pool",
			ContractAddress: "0x11aa22bb33cc44dd55ee66ff77a8b9c0d1e2f344",
			Currency:        "USDC", TotalLiquidity: 90000, AvailableLiquidity: 90000,
			APY: 5.1, IsActive: true, CreatedAt: now.AddDate(0, -2, 0),
		},
	}

	policies := []api.Policy{
		{
			ID: uuid.NewString(), FarmerID: farmers[0].ID, OrganizationID: orgA.ID,
			PoolID: pools[0].ID, CropType: "millet", CoverageAmount: 800, Premium: 64,
			Status: api.PolicyActive,
			StartDate: now.AddDate(0, -3, 0), EndDate: now.AddDate(0, 3, 0),
			CreatedAt: now.AddDate(0, -3, 0),
		},
		{
			ID: uuid.NewString(), FarmerID: farmers[1].ID, OrganizationID: orgA.ID,
			PoolID: pools[0].ID, CropType: "maize", CoverageAmount: 500, Premium: 45,
			Status: api.PolicyPaidOut,
			StartDate: now.AddDate(-1, -2, 0), EndDate: now.AddDate(0, -2, 0),
			CreatedAt: now.AddDate(-1, -2, 0),
		},
	}

	settled := now.AddDate(0, -2, 12)
	payouts := []api.Payout{
		{
			ID: uuid.NewString(), PolicyID: policies[1].ID, FarmerID: farmers[1].ID,
			Amount: 500, TriggerType: "DROUGHT_INDEX", Status: "SETTLED",
			TxHash:    "0x9e107d9d372bb6826bd81d3542a419d6d0064b01",
			CreatedAt: now.AddDate(0, -2, 10), SettledAt: &settled,
		},
	}

	assessments := []api.DamageAssessment{
		{
			ID: uuid.NewString(), PolicyID: policies[1].ID, Source: "SATELLITE",
			DamageRatio: 0.82, Notes: "NDVI anomaly over three consecutive dekads",
			AssessedAt: now.AddDate(0, -2, 8), CreatedAt: now.AddDate(0, -2, 8),
		},
	}

	poolTxs := []api.PoolTransaction{
		{
			ID: uuid.NewString(), PoolID: pools[0].ID, Type: api.PoolTxDeposit,
			Amount: 250000, TxHash: "0x2fd4e1c67a2d28fced849ee1bb76e7391b93eb12",
			Status: "CONFIRMED", CreatedAt: now.AddDate(0, -9, 0),
		},
		{
			ID: uuid.NewString(), PoolID: pools[0].ID, Type: api.PoolTxPayout,
			Amount: 500, TxHash: payouts[0].TxHash,
			Status: "CONFIRMED", CreatedAt: now.AddDate(0, -2, 10),
		},
	}

	staff := []api.StaffMember{
		{
			ID: orgAdmin.ID, OrganizationID: orgA.ID, Email: orgAdmin.Email,
			FirstName: orgAdmin.FirstName, LastName: orgAdmin.LastName,
			Role: api.RoleOrgAdmin, IsActive: true, CreatedAt: orgAdmin.CreatedAt,
		},
	}

	return &state{
		users: []api.User{platformAdmin, orgAdmin},
		passwords: map[string]string{
			platformAdmin.Email: "admin123",
			orgAdmin.Email:      "operator123",
		},
		organizations: []api.Organization{orgA, orgB},
		farmers:       farmers,
		policies:      policies,
		payouts:       payouts,
		assessments:   assessments,
		pools:         pools,
		poolTxs:       poolTxs,
		staff:         staff,
		accessTokens:  map[string]string{},
		refreshTokens: map[string]string{},
	}
}
