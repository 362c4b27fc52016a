package tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/database/service"
	"github.com/apnadera/backend-go/tests/testutil"
)

// ==================== PROPERTY SERVICE TESTS ====================

func TestPropertyService_CreateRequiresListingRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	buyer := testutil.CreateTestUser(t, db, models.RoleBuyer)

	_, err := svc.Create(buyer, service.CreatePropertyInput{Title: "Anything"})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestPropertyService_CreateEncodesImages(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	seller := testutil.CreateTestUser(t, db, models.RoleSeller)

	property, err := svc.Create(seller, service.CreatePropertyInput{
		Title:       "Bright Corner Apartment",
		Description: "Two bedroom apartment with morning sun in every room.",
		Type:        "apartment",
		Price:       250000,
		Address:     "4 Elm Court",
		City:        "Portland",
		State:       "OR",
		ZipCode:     "97201",
		Bedrooms:    2,
		Bathrooms:   1,
		SquareFeet:  900,
		Images: []service.ImageUpload{
			{Data: []byte("first"), MimeType: "image/png"},
			{Data: []byte("second"), MimeType: "image/jpeg"},
		},
	})
	require.NoError(t, err)
	require.Len(t, property.Images, 2)

	assert.True(t, property.Images[0].IsPrimary)
	assert.False(t, property.Images[1].IsPrimary)
	assert.True(t, strings.HasPrefix(property.Images[0].URL, "data:image/png;base64,"))
	assert.Equal(t, 0, property.Images[0].Position)
	assert.Equal(t, 1, property.Images[1].Position)
	assert.Equal(t, seller.ID, property.OwnerID)
	// A seller is not an agent; no agent reference is attached.
	assert.Nil(t, property.AgentID)
}

func TestPropertyService_CreateByAgentSetsAgent(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	agent := testutil.CreateTestUser(t, db, models.RoleAgent)

	property, err := svc.Create(agent, service.CreatePropertyInput{
		Title:       "Agent Listed Townhouse",
		Description: "Townhouse in a quiet street, listed directly by the agent.",
		Type:        "townhouse",
		Price:       420000,
		Address:     "9 Oak Row",
		City:        "Austin",
		State:       "TX",
		ZipCode:     "73301",
	})
	require.NoError(t, err)
	require.NotNil(t, property.AgentID)
	assert.Equal(t, agent.ID, *property.AgentID)
}

func TestPropertyService_GetVisibility(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	owner := testutil.CreateTestUser(t, db, models.RoleSeller)
	stranger := testutil.CreateTestUser(t, db, models.RoleBuyer)
	admin := testutil.CreateTestUser(t, db, models.RoleAdmin)

	property := testutil.CreateTestProperty(t, db, owner.ID)
	require.NoError(t, db.Model(property).Update("is_active", false).Error)

	// Anonymous and unrelated callers see a not-found.
	_, err := svc.Get(property.ID, nil)
	assert.ErrorIs(t, err, repository.ErrPropertyNotFound)
	_, err = svc.Get(property.ID, stranger)
	assert.ErrorIs(t, err, repository.ErrPropertyNotFound)

	// Owner and admin still see it, and the view counter stays put.
	found, err := svc.Get(property.ID, owner)
	require.NoError(t, err)
	assert.Zero(t, found.Views)

	_, err = svc.Get(property.ID, admin)
	require.NoError(t, err)
}

func TestPropertyService_GetCountsViews(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	owner := testutil.CreateTestUser(t, db, models.RoleSeller)
	property := testutil.CreateTestProperty(t, db, owner.ID)

	found, err := svc.Get(property.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Views)

	found, err = svc.Get(property.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Views)
}

func TestPropertyService_UpdateOwnershipAndPriceHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	owner := testutil.CreateTestUser(t, db, models.RoleSeller)
	stranger := testutil.CreateTestUser(t, db, models.RoleSeller)
	property := testutil.CreateTestProperty(t, db, owner.ID)

	newPrice := 425000.0
	_, err := svc.Update(stranger, property.ID, service.UpdatePropertyInput{Price: &newPrice})
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := svc.Update(owner, property.ID, service.UpdatePropertyInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, updated.Price)
	require.Len(t, updated.PriceHistory, 1)
	assert.Equal(t, float64(350000), updated.PriceHistory[0].Price)

	// Writing the same price again appends nothing.
	updated, err = svc.Update(owner, property.ID, service.UpdatePropertyInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Len(t, updated.PriceHistory, 1)
}

func TestPropertyService_UpdateAppendsImages(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	seller := testutil.CreateTestUser(t, db, models.RoleSeller)
	property, err := svc.Create(seller, service.CreatePropertyInput{
		Title:       "House With One Photo",
		Description: "Single photo at creation time, more arrive after the visit.",
		Type:        "house",
		Price:       300000,
		Address:     "1 Pine Way",
		City:        "Denver",
		State:       "CO",
		ZipCode:     "80014",
		Images:      []service.ImageUpload{{Data: []byte("cover"), MimeType: "image/png"}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(seller, property.ID, service.UpdatePropertyInput{
		Images: []service.ImageUpload{{Data: []byte("kitchen"), MimeType: "image/jpeg"}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Images, 2)

	// The appended image continues the position sequence and never
	// steals the primary flag.
	assert.True(t, updated.Images[0].IsPrimary)
	assert.False(t, updated.Images[1].IsPrimary)
	assert.Equal(t, 1, updated.Images[1].Position)
}

func TestPropertyService_DeleteRequiresOwnerOrAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	owner := testutil.CreateTestUser(t, db, models.RoleSeller)
	stranger := testutil.CreateTestUser(t, db, models.RoleSeller)
	admin := testutil.CreateTestUser(t, db, models.RoleAdmin)

	first := testutil.CreateTestProperty(t, db, owner.ID)
	second := testutil.CreateTestProperty(t, db, owner.ID)

	assert.ErrorIs(t, svc.Delete(stranger, first.ID), service.ErrForbidden)
	require.NoError(t, svc.Delete(owner, first.ID))
	require.NoError(t, svc.Delete(admin, second.ID))

	assert.ErrorIs(t, svc.Delete(owner, first.ID), repository.ErrPropertyNotFound)
}

func TestPropertyService_ToggleFavoriteUnknownProperty(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewFavoriteRepository(db),
		nil,
		testutil.TestLogger(),
	)

	buyer := testutil.CreateTestUser(t, db, models.RoleBuyer)

	_, err := svc.ToggleFavorite(buyer.ID, 9999)
	assert.ErrorIs(t, err, repository.ErrPropertyNotFound)
}
