package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/apnadera/backend-go/internal/database/models"
)

// FavoriteRepository defines the interface for favorite-edge operations
type FavoriteRepository interface {
	Toggle(userID, propertyID uint) (favorited bool, err error)
	IsFavorited(userID, propertyID uint) (bool, error)
	ListPropertyIDsByUser(userID uint) ([]uint, error)
	ListPropertiesByUser(userID uint) ([]models.Property, error)
	CountByProperty(propertyID uint) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository instance
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Toggle flips the favorite edge between a user and a property. The edge
// is a single row, so each direction of the toggle is one statement; the
// surrounding transaction covers the existence check.
func (r *favoriteRepository) Toggle(userID, propertyID uint) (bool, error) {
	var favorited bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var edge models.Favorite
		err := tx.Where("user_id = ? AND property_id = ?", userID, propertyID).First(&edge).Error
		switch {
		case err == nil:
			favorited = false
			return tx.Where("user_id = ? AND property_id = ?", userID, propertyID).
				Delete(&models.Favorite{}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			favorited = true
			return tx.Create(&models.Favorite{UserID: userID, PropertyID: propertyID}).Error
		default:
			return err
		}
	})
	return favorited, err
}

func (r *favoriteRepository) IsFavorited(userID, propertyID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepository) ListPropertyIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("property_id", &ids).Error
	return ids, err
}

func (r *favoriteRepository) ListPropertiesByUser(userID uint) ([]models.Property, error) {
	var properties []models.Property
	err := r.db.
		Joins("JOIN favorites ON favorites.property_id = properties.id").
		Where("favorites.user_id = ?", userID).
		Preload("Owner").
		Preload("Agent").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("favorites.created_at DESC").
		Find(&properties).Error
	return properties, err
}

func (r *favoriteRepository) CountByProperty(propertyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).
		Where("property_id = ?", propertyID).
		Count(&count).Error
	return count, err
}
