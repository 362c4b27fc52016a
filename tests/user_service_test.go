package tests

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/apnadera/backend-go/internal/database"
	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/database/service"
	"github.com/apnadera/backend-go/tests/testutil"
)

// ==================== USER SERVICE TESTS ====================

func TestUserService_AdminDeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*testutil.MockUserRepository, *testutil.MockPropertyRepository)
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(userRepo *testutil.MockUserRepository, propertyRepo *testutil.MockPropertyRepository) {
				userRepo.On("FindByID", uint(1)).Return(&models.User{ID: 1}, nil)
				propertyRepo.On("CountByOwner", uint(1)).Return(int64(0), nil)
				userRepo.On("Delete", uint(1)).Return(nil)
			},
		},
		{
			name: "user owns properties",
			setupMocks: func(userRepo *testutil.MockUserRepository, propertyRepo *testutil.MockPropertyRepository) {
				userRepo.On("FindByID", uint(1)).Return(&models.User{ID: 1, Role: models.RoleSeller}, nil)
				propertyRepo.On("CountByOwner", uint(1)).Return(int64(3), nil)
			},
			wantErr: service.ErrUserHasProperties,
		},
		{
			name: "user not found",
			setupMocks: func(userRepo *testutil.MockUserRepository, propertyRepo *testutil.MockPropertyRepository) {
				userRepo.On("FindByID", uint(1)).Return(nil, repository.ErrUserNotFound)
			},
			wantErr: repository.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(testutil.MockUserRepository)
			propertyRepo := new(testutil.MockPropertyRepository)
			favoriteRepo := new(testutil.MockFavoriteRepository)
			tt.setupMocks(userRepo, propertyRepo)

			svc := service.NewUserService(userRepo, propertyRepo, favoriteRepo, nil, testutil.TestLogger())
			err := svc.AdminDeleteUser(1)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			userRepo.AssertExpectations(t)
			propertyRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateProfileLeavesUnsetFieldsAlone(t *testing.T) {
	userRepo := new(testutil.MockUserRepository)
	userRepo.On("FindByID", uint(1)).Return(&models.User{
		ID:    1,
		Name:  "Original Name",
		Phone: "555-0100",
		Bio:   "Original bio",
	}, nil)
	userRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)

	svc := service.NewUserService(userRepo, new(testutil.MockPropertyRepository), new(testutil.MockFavoriteRepository), nil, testutil.TestLogger())

	newName := "Updated Name"
	user, err := svc.UpdateProfile(1, service.ProfileInput{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Updated Name", user.Name)
	assert.Equal(t, "555-0100", user.Phone)
	assert.Equal(t, "Original bio", user.Bio)
}

func TestUserService_GetProfileIncludesFavoriteIDs(t *testing.T) {
	userRepo := new(testutil.MockUserRepository)
	favoriteRepo := new(testutil.MockFavoriteRepository)
	userRepo.On("FindByID", uint(1)).Return(&models.User{ID: 1}, nil)
	favoriteRepo.On("ListPropertyIDsByUser", uint(1)).Return([]uint{4, 9}, nil)

	svc := service.NewUserService(userRepo, new(testutil.MockPropertyRepository), favoriteRepo, nil, testutil.TestLogger())

	user, favorites, err := svc.GetProfile(1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, []uint{4, 9}, favorites)
}

// ==================== OWNER STATS CACHING TESTS ====================

func TestUserService_OwnerStatsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testutil.TestConfig()
	cache := database.NewRedisClientForTesting(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		cfg,
		testutil.TestLogger(),
	)

	propertyRepo := new(testutil.MockPropertyRepository)
	// The repository must be hit exactly once; the second read is served
	// from the cache.
	propertyRepo.On("OwnerStats", uint(1)).Return(&models.OwnerStats{
		TotalProperties: 2,
		TotalViews:      15,
		TotalValue:      300000,
	}, nil).Once()

	svc := service.NewUserService(new(testutil.MockUserRepository), propertyRepo, new(testutil.MockFavoriteRepository), cache, testutil.TestLogger())

	stats, err := svc.OwnerStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProperties)

	cached, err := svc.OwnerStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, stats.TotalViews, cached.TotalViews)

	propertyRepo.AssertExpectations(t)
}

func TestUserService_OwnerStatsRecomputedAfterTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testutil.TestConfig()
	cache := database.NewRedisClientForTesting(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		cfg,
		testutil.TestLogger(),
	)

	propertyRepo := new(testutil.MockPropertyRepository)
	propertyRepo.On("OwnerStats", uint(1)).Return(&models.OwnerStats{TotalProperties: 1}, nil).Twice()

	svc := service.NewUserService(new(testutil.MockUserRepository), propertyRepo, new(testutil.MockFavoriteRepository), cache, testutil.TestLogger())

	_, err := svc.OwnerStats(context.Background(), 1)
	require.NoError(t, err)

	// Advance miniredis past the TTL so the cached entry expires.
	mr.FastForward(time.Duration(cfg.StatsCacheTTL+1) * time.Second)

	_, err = svc.OwnerStats(context.Background(), 1)
	require.NoError(t, err)

	propertyRepo.AssertExpectations(t)
}

func TestRedisClient_InvalidateOwnerStats(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testutil.TestConfig()
	cache := database.NewRedisClientForTesting(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		cfg,
		testutil.TestLogger(),
	)

	ctx := context.Background()
	require.NoError(t, cache.SetOwnerStats(ctx, 1, &models.OwnerStats{TotalProperties: 5}))

	stats, err := cache.GetOwnerStats(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, stats)

	require.NoError(t, cache.InvalidateOwnerStats(ctx, 1))

	stats, err = cache.GetOwnerStats(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, stats)
}
