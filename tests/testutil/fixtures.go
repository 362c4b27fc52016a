package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/apnadera/backend-go/internal/database/models"
)

// TestPassword is the plaintext password all fixture users share.
const TestPassword = "password123"

var userSeq int

// CreateTestUser inserts a user with the given role and returns it.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	userSeq++
	user := &models.User{
		Name:     fmt.Sprintf("Test %s %d", role, userSeq),
		Email:    fmt.Sprintf("%s%d@example.com", role, userSeq),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestProperty inserts an active house listing owned by ownerID.
func CreateTestProperty(t *testing.T, db *gorm.DB, ownerID uint) *models.Property {
	t.Helper()

	property := &models.Property{
		Title:       "Charming Family House",
		Description: "A lovely three bedroom house with a big garden out back.",
		Type:        models.TypeHouse,
		Status:      models.StatusAvailable,
		Price:       350000,
		Location: models.Location{
			Address: "12 Maple Street",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62704",
		},
		Details: models.Details{
			Bedrooms:   3,
			Bathrooms:  2,
			SquareFeet: 1800,
		},
		OwnerID:  ownerID,
		IsActive: true,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}
