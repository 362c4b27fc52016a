package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/apnadera/backend-go/internal/config"
	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/database/service"
)

// ==================== SHARED HELPERS ====================

// TestLogger returns a logger that discards all output.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestConfig returns a config suitable for unit tests.
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:          "test",
		JWTSecret:       "test-secret",
		TokenExpiration: 3600,
		RateLimitWindow: 60,
		RateLimitMax:    5,
		StatsCacheTTL:   60,
		MaxImageSize:    5 * 1024 * 1024,
		MaxImageCount:   10,
	}
}

// NewTestDB opens an in-memory store with the full schema migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyImage{},
		&models.PriceChange{},
		&models.Favorite{},
	)
	require.NoError(t, err)

	return db
}

// CreateAuthServiceWithMocks wires an auth service to a mocked user repository.
func CreateAuthServiceWithMocks(userRepo repository.UserRepository) service.AuthService {
	return service.NewAuthService(userRepo, TestConfig(), TestLogger())
}

// ==================== MOCK USER REPOSITORY ====================

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) List(page, limit int) ([]models.User, int64, error) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// ==================== MOCK PROPERTY REPOSITORY ====================

// MockPropertyRepository implements repository.PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(property *models.Property) error {
	args := m.Called(property)
	return args.Error(0)
}

func (m *MockPropertyRepository) FindByID(id uint) (*models.Property, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) List(filter repository.PropertyFilter) ([]models.Property, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Property), args.Get(1).(int64), args.Error(2)
}

func (m *MockPropertyRepository) ListByOwner(ownerID uint, page, limit int) ([]models.Property, int64, error) {
	args := m.Called(ownerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Property), args.Get(1).(int64), args.Error(2)
}

func (m *MockPropertyRepository) Update(property *models.Property, priorPrice *float64) error {
	args := m.Called(property, priorPrice)
	return args.Error(0)
}

func (m *MockPropertyRepository) AddImages(propertyID uint, images []models.PropertyImage) error {
	args := m.Called(propertyID, images)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPropertyRepository) IncrementViews(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPropertyRepository) CountByOwner(ownerID uint) (int64, error) {
	args := m.Called(ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropertyRepository) OwnerStats(ownerID uint) (*models.OwnerStats, error) {
	args := m.Called(ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnerStats), args.Error(1)
}

// ==================== MOCK FAVORITE REPOSITORY ====================

// MockFavoriteRepository implements repository.FavoriteRepository for testing
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Toggle(userID, propertyID uint) (bool, error) {
	args := m.Called(userID, propertyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) IsFavorited(userID, propertyID uint) (bool, error) {
	args := m.Called(userID, propertyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) ListPropertyIDsByUser(userID uint) ([]uint, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockFavoriteRepository) ListPropertiesByUser(userID uint) ([]models.Property, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockFavoriteRepository) CountByProperty(propertyID uint) (int64, error) {
	args := m.Called(propertyID)
	return args.Get(0).(int64), args.Error(1)
}
