package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/tests/testutil"
)

// ==================== FAVORITE REPOSITORY TESTS ====================

func TestFavoriteRepository_ToggleFlipsState(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewFavoriteRepository(db)

	owner := testutil.CreateTestUser(t, db, models.RoleSeller)
	buyer := testutil.CreateTestUser(t, db, models.RoleBuyer)
	property := testutil.CreateTestProperty(t, db, owner.ID)

	favorited, err := repo.Toggle(buyer.ID, property.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	isFavorited, err := repo.IsFavorited(buyer.ID, property.ID)
	require.NoError(t, err)
	assert.True(t, isFavorited)

	// Toggling twice returns to the original state.
	favorited, err = repo.Toggle(buyer.ID, property.ID)
	require.NoError(t, err)
	assert.False(t, favorited)

	isFavorited, err = repo.IsFavorited(buyer.ID, property.ID)
	require.NoError(t, err)
	assert.False(t, isFavorited)

	count, err := repo.CountByProperty(property.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFavoriteRepository_TogglesAreIndependentPerUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewFavoriteRepository(db)

	owner := testutil.CreateTestUser(t, db, models.RoleSeller)
	first := testutil.CreateTestUser(t, db, models.RoleBuyer)
	second := testutil.CreateTestUser(t, db, models.RoleBuyer)
	property := testutil.CreateTestProperty(t, db, owner.ID)

	_, err := repo.Toggle(first.ID, property.ID)
	require.NoError(t, err)
	_, err = repo.Toggle(second.ID, property.ID)
	require.NoError(t, err)

	count, err := repo.CountByProperty(property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// One user unfavoriting leaves the other's edge intact.
	_, err = repo.Toggle(first.ID, property.ID)
	require.NoError(t, err)

	isFavorited, err := repo.IsFavorited(second.ID, property.ID)
	require.NoError(t, err)
	assert.True(t, isFavorited)
}

func TestFavoriteRepository_ListByUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewFavoriteRepository(db)

	owner := testutil.CreateTestUser(t, db, models.RoleSeller)
	buyer := testutil.CreateTestUser(t, db, models.RoleBuyer)

	first := testutil.CreateTestProperty(t, db, owner.ID)
	second := testutil.CreateTestProperty(t, db, owner.ID)
	testutil.CreateTestProperty(t, db, owner.ID) // never favorited

	_, err := repo.Toggle(buyer.ID, first.ID)
	require.NoError(t, err)
	_, err = repo.Toggle(buyer.ID, second.ID)
	require.NoError(t, err)

	ids, err := repo.ListPropertyIDsByUser(buyer.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	properties, err := repo.ListPropertiesByUser(buyer.ID)
	require.NoError(t, err)
	require.Len(t, properties, 2)
	for _, p := range properties {
		require.NotNil(t, p.Owner)
		assert.Equal(t, owner.ID, p.Owner.ID)
	}
}
