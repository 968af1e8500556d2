package mockapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microcrop/console/internal/api"
)

// newTestBackend mounts a fresh mock backend and returns a real API client
// pointed at it, exactly the way the console wires the two together.
func newTestBackend(t *testing.T) *api.Client {
	t.Helper()
	server := httptest.NewServer(NewServer(zerolog.Nop()).Handler())
	t.Cleanup(server.Close)
	return api.New(server.URL)
}

func loginAs(t *testing.T, client *api.Client, email, password string) *api.User {
	t.Helper()
	resp, err := client.Login(context.Background(), email, password)
	require.NoError(t, err)
	client.SetAccessToken(resp.AccessToken)
	return resp.User
}

func TestLogin(t *testing.T) {
	client := newTestBackend(t)
	ctx := context.Background()

	t.Run("platform admin", func(t *testing.T) {
		resp, err := client.Login(ctx, "admin@microcrop.io", "admin123")
		require.NoError(t, err)
		assert.Equal(t, api.RolePlatformAdmin, resp.User.Role)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.EqualValues(t, 3600, resp.ExpiresIn)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(ctx, "admin@microcrop.io", "nope")
		apiErr := api.AsAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, 401, apiErr.Status)
		assert.Equal(t, "Invalid credentials", apiErr.Message)
	})
}

func TestRequireAuth(t *testing.T) {
	client := newTestBackend(t)

	_, _, err := client.ListFarmers(context.Background(), api.ListParams{})
	apiErr := api.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Authentication required", apiErr.Message)
}

func TestRefreshRotation(t *testing.T) {
	client := newTestBackend(t)
	ctx := context.Background()

	resp, err := client.Login(ctx, "ops@sahelmutual.example", "operator123")
	require.NoError(t, err)

	rotated, err := client.RefreshSession(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.AccessToken, rotated.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The presented refresh token is single-use.
	_, err = client.RefreshSession(ctx, resp.RefreshToken)
	apiErr := api.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, 401, apiErr.Status)

	// The rotated one still works.
	_, err = client.RefreshSession(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestMe(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ops@sahelmutual.example", user.Email)
	assert.Equal(t, api.RoleOrgAdmin, user.Role)
}

func TestFarmerLifecycle(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	farmers, page, err := client.ListFarmers(ctx, api.ListParams{})
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, 3, page.Total)

	created, err := client.CreateFarmer(ctx, api.FarmerInput{
		FirstName: "Mariama", LastName: "Diallo", Phone: "+221770000009",
		FarmSizeHectares: 1.7, CropTypes: []string{"sorghum"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, farmers[0].OrganizationID, created.OrganizationID)

	got, err := client.GetFarmer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mariama", got.FirstName)

	require.NoError(t, client.DeactivateFarmer(ctx, created.ID))
	got, err = client.GetFarmer(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	t.Run("search filters by name", func(t *testing.T) {
		found, page, err := client.ListFarmers(ctx, api.ListParams{Search: "fatou"})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		require.Len(t, found, 1)
		assert.Equal(t, "Fatou", found[0].FirstName)
	})

	t.Run("pagination slices", func(t *testing.T) {
		found, page, err := client.ListFarmers(ctx, api.ListParams{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, found, 2)
	})
}

func TestImportFarmers(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")

	csv := "Awa,Sy,+221770000010\nBadRow\nOmar,Kane\n"
	report, err := client.ImportFarmers(context.Background(), "farmers.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "row 2")
}

func TestKYBReview(t *testing.T) {
	client := newTestBackend(t)
	ctx := context.Background()

	loginAs(t, client, "admin@microcrop.io", "admin123")
	orgs, _, err := client.ListOrganizations(ctx, api.ListParams{Status: api.KYBPending})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	pending := orgs[0]

	t.Run("platform admin approves", func(t *testing.T) {
		org, err := client.ApproveKYB(ctx, pending.ID, "registry checks out")
		require.NoError(t, err)
		assert.Equal(t, api.KYBApproved, org.KYBStatus)
	})

	t.Run("org admin is forbidden", func(t *testing.T) {
		loginAs(t, client, "ops@sahelmutual.example", "operator123")
		_, err := client.RejectKYB(ctx, pending.ID, "not yours to reject")
		apiErr := api.AsAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, 403, apiErr.Status)
		assert.Equal(t, "FORBIDDEN", apiErr.Code)
	})
}

func TestKYBDocumentUpload(t *testing.T) {
	client := newTestBackend(t)
	ctx := context.Background()
	loginAs(t, client, "ops@sahelmutual.example", "operator123")

	doc, err := client.UploadKYBDocument(ctx, "REGISTRATION_CERTIFICATE", "cert.pdf", strings.NewReader("%PDF-1.4 stub"))
	require.NoError(t, err)
	assert.Equal(t, "cert.pdf", doc.FileName)
	assert.Equal(t, "SUBMITTED", doc.Status)

	docs, err := client.ListKYBDocuments(ctx, doc.OrganizationID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func TestPolicyLifecycle(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	farmers, _, err := client.ListFarmers(ctx, api.ListParams{})
	require.NoError(t, err)

	created, err := client.CreatePolicy(ctx, api.PolicyInput{
		FarmerID: farmers[0].ID, CropType: "millet", CoverageAmount: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, api.PolicyActive, created.Status)
	assert.InDelta(t, 80, created.Premium, 0.001)
	assert.NotEmpty(t, created.PoolID)

	cancelled, err := client.CancelPolicy(ctx, created.ID, "farmer request")
	require.NoError(t, err)
	assert.Equal(t, api.PolicyCancelled, cancelled.Status)

	t.Run("cancelling twice conflicts", func(t *testing.T) {
		_, err := client.CancelPolicy(ctx, created.ID, "again")
		apiErr := api.AsAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, 409, apiErr.Status)
	})

	t.Run("unknown farmer", func(t *testing.T) {
		_, err := client.CreatePolicy(ctx, api.PolicyInput{FarmerID: "nope", CoverageAmount: 100})
		apiErr := api.AsAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, 404, apiErr.Status)
	})
}

func TestPayoutRetry(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	payouts, _, err := client.ListPayouts(ctx, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, payouts, 1)

	// The seeded payout is settled, so a retry must conflict.
	_, err = client.RetryPayout(ctx, payouts[0].ID)
	apiErr := api.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func TestAssessments(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	payouts, _, err := client.ListPayouts(ctx, api.ListParams{})
	require.NoError(t, err)

	assessments, _, err := client.ListAssessments(ctx, payouts[0].PolicyID, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	assert.InDelta(t, 0.82, assessments[0].DamageRatio, 0.001)
	assert.Equal(t, "SATELLITE", assessments[0].Source)
}

func TestPoolLiquidity(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "admin@microcrop.io", "admin123")
	ctx := context.Background()

	pools, _, err := client.ListPools(ctx, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, pools, 2)
	pool := pools[0]

	t.Run("deposit grows liquidity", func(t *testing.T) {
		tx, err := client.Deposit(ctx, pool.ID, 10000)
		require.NoError(t, err)
		assert.Equal(t, api.PoolTxDeposit, tx.Type)
		assert.Equal(t, "CONFIRMED", tx.Status)

		after, err := client.GetPool(ctx, pool.ID)
		require.NoError(t, err)
		assert.InDelta(t, pool.TotalLiquidity+10000, after.TotalLiquidity, 0.001)
		assert.InDelta(t, pool.AvailableLiquidity+10000, after.AvailableLiquidity, 0.001)
	})

	t.Run("withdrawal beyond liquidity rejected", func(t *testing.T) {
		_, err := client.Withdraw(ctx, pool.ID, pool.TotalLiquidity*100)
		apiErr := api.AsAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, 422, apiErr.Status)
		assert.Equal(t, "INSUFFICIENT_LIQUIDITY", apiErr.Code)
	})

	t.Run("transactions recorded", func(t *testing.T) {
		txs, _, err := client.ListPoolTransactions(ctx, pool.ID, api.ListParams{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(txs), 3, "seeded transactions plus the deposit above")
	})
}

func TestInvitations(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	inv, err := client.CreateInvitation(ctx, "newstaff@sahelmutual.example", api.RoleOrgStaff)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", inv.Status)

	invs, _, err := client.ListInvitations(ctx, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, invs, 1)

	require.NoError(t, client.RevokeInvitation(ctx, inv.ID))
	invs, _, err = client.ListInvitations(ctx, api.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "REVOKED", invs[0].Status)
}

func TestAcceptInvitation(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	inv, err := client.CreateInvitation(ctx, "newstaff@sahelmutual.example", api.RoleOrgStaff)
	require.NoError(t, err)

	resp, err := client.AcceptInvitation(ctx, inv.ID, "welcome1", "Khady", "Mbaye")
	require.NoError(t, err)
	assert.Equal(t, api.RoleOrgStaff, resp.User.Role)
	assert.Equal(t, inv.OrganizationID, resp.User.OrganizationID)

	// The new account can log in with its chosen password.
	_, err = client.Login(ctx, "newstaff@sahelmutual.example", "welcome1")
	require.NoError(t, err)

	// A consumed invitation cannot be redeemed twice.
	_, err = client.AcceptInvitation(ctx, inv.ID, "again", "K", "M")
	apiErr := api.AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestStaffDeactivation(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	staff, _, err := client.ListStaff(ctx, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, staff, 1)

	require.NoError(t, client.DeactivateStaff(ctx, staff[0].ID))
	staff, _, err = client.ListStaff(ctx, api.ListParams{})
	require.NoError(t, err)
	assert.False(t, staff[0].IsActive)
}

func TestDashboards(t *testing.T) {
	client := newTestBackend(t)
	ctx := context.Background()

	t.Run("platform", func(t *testing.T) {
		loginAs(t, client, "admin@microcrop.io", "admin123")
		d, err := client.GetPlatformDashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, d.TotalOrganizations)
		assert.Equal(t, 3, d.TotalFarmers)
		assert.Equal(t, 1, d.PendingKYB)
		assert.Equal(t, 1, d.ActivePolicies)
		assert.InDelta(t, 340000, d.PoolLiquidity, 0.001)
	})

	t.Run("organization", func(t *testing.T) {
		loginAs(t, client, "ops@sahelmutual.example", "operator123")
		d, err := client.GetOrgDashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, d.TotalFarmers)
		assert.Equal(t, 1, d.ActivePolicies)
		assert.InDelta(t, 800, d.TotalCoverage, 0.001)
	})
}

func TestExports(t *testing.T) {
	client := newTestBackend(t)
	loginAs(t, client, "ops@sahelmutual.example", "operator123")
	ctx := context.Background()

	data, err := client.ExportFarmersCSV(ctx)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "id,firstName,lastName,phone,farmSizeHectares", lines[0])
	assert.Len(t, lines, 4, "header plus the three seeded farmers")

	data, err = client.ExportPoliciesCSV(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,farmerId,cropType,"))

	data, err = client.ExportPayoutsCSV(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0x9e107d9d372bb6826bd81d3542a419d6d0064b01")
}

func TestRegister(t *testing.T) {
	client := newTestBackend(t)
	ctx := context.Background()

	resp, err := client.Register(ctx, api.RegisterRequest{
		Email: "founder@newcoop.example", Password: "s3cret!",
		FirstName: "Adama", LastName: "Traore",
		OrganizationName: "New Coop", Country: "ML",
	})
	require.NoError(t, err)
	assert.Equal(t, api.RoleOrgAdmin, resp.User.Role)
	assert.NotEmpty(t, resp.User.OrganizationID)
	assert.NotEmpty(t, resp.AccessToken)

	// The new organization starts its KYB journey pending.
	client.SetAccessToken(resp.AccessToken)
	org, err := client.GetMyOrganization(ctx)
	require.NoError(t, err)
	assert.Equal(t, api.KYBPending, org.KYBStatus)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := client.Register(ctx, api.RegisterRequest{
			Email: "founder@newcoop.example", Password: "x", OrganizationName: "Again",
		})
		apiErr := api.AsAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, 409, apiErr.Status)
	})
}
