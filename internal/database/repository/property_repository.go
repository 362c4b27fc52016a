package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apnadera/backend-go/internal/database/models"
)

// PropertyFilter carries the optional search/filter/sort parameters of a
// listing query. Zero values mean "not supplied". Callers are expected to
// validate enum values and bounds before the filter reaches the store.
type PropertyFilter struct {
	Page      int
	Limit     int
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	Type      string
	Status    string
	City      string
	State     string
	Bedrooms  *int
	Bathrooms *int
	Featured  bool
	SortBy    string
	SortOrder string
}

// sortColumns is the whitelist of sortable fields.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"views":      "views",
	"title":      "title",
}

// ValidSortField reports whether s may be used as a sort key.
func ValidSortField(s string) bool {
	_, ok := sortColumns[s]
	return ok
}

// Pagination describes one page of a listing result.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalProperties int64 `json:"totalProperties"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPrevPage     bool  `json:"hasPrevPage"`
}

// NewPagination computes page metadata for a result of total rows.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalProperties: total,
		HasNextPage:     page < totalPages,
		HasPrevPage:     page > 1,
	}
}

// PropertyRepository defines the interface for listing data operations
type PropertyRepository interface {
	Create(property *models.Property) error
	FindByID(id uint) (*models.Property, error)
	List(filter PropertyFilter) ([]models.Property, int64, error)
	ListByOwner(ownerID uint, page, limit int) ([]models.Property, int64, error)
	Update(property *models.Property, priorPrice *float64) error
	AddImages(propertyID uint, images []models.PropertyImage) error
	Delete(id uint) error
	IncrementViews(id uint) error
	CountByOwner(ownerID uint) (int64, error)
	OwnerStats(ownerID uint) (*models.OwnerStats, error)
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository instance
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(property *models.Property) error {
	return r.db.Create(property).Error
}

func (r *propertyRepository) FindByID(id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.
		Preload("Owner").
		Preload("Agent").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("PriceHistory", func(db *gorm.DB) *gorm.DB { return db.Order("recorded_at ASC") }).
		First(&property, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	if err := r.fillFavoriteCounts([]*models.Property{&property}); err != nil {
		return nil, err
	}
	return &property, nil
}

// List translates the filter into a conjunctive store query. Public
// listings are always restricted to active properties; the free-text
// search ORs case-insensitive substring matches across title,
// description, city, state and address.
func (r *propertyRepository) List(filter PropertyFilter) ([]models.Property, int64, error) {
	q := r.db.Model(&models.Property{}).Where("is_active = ?", true)

	if filter.Search != "" {
		s := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(city) LIKE ? OR LOWER(state) LIKE ? OR LOWER(address) LIKE ?",
			s, s, s, s, s,
		)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(filter.City)+"%")
	}
	if filter.State != "" {
		q = q.Where("LOWER(state) LIKE ?", "%"+strings.ToLower(filter.State)+"%")
	}
	if filter.Bedrooms != nil {
		q = q.Where("bedrooms >= ?", *filter.Bedrooms)
	}
	if filter.Bathrooms != nil {
		q = q.Where("bathrooms >= ?", *filter.Bathrooms)
	}
	if filter.Featured {
		q = q.Where("is_featured = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	if col, ok := sortColumns[filter.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	var properties []models.Property
	err := q.
		Preload("Owner").
		Preload("Agent").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order(sortBy + " " + sortOrder).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&properties).Error
	if err != nil {
		return nil, 0, err
	}

	refs := make([]*models.Property, len(properties))
	for i := range properties {
		refs[i] = &properties[i]
	}
	if err := r.fillFavoriteCounts(refs); err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *propertyRepository) ListByOwner(ownerID uint, page, limit int) ([]models.Property, int64, error) {
	var total int64
	if err := r.db.Model(&models.Property{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var properties []models.Property
	err := r.db.
		Where("owner_id = ?", ownerID).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&properties).Error
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// Update persists the property. When priorPrice is non-nil the price
// changed, and the previous price is appended to the history inside the
// same transaction as the update.
func (r *propertyRepository) Update(property *models.Property, priorPrice *float64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if priorPrice != nil {
			change := models.PriceChange{
				PropertyID: property.ID,
				Price:      *priorPrice,
				RecordedAt: time.Now().UTC(),
			}
			if err := tx.Create(&change).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(property).Error
	})
}

func (r *propertyRepository) AddImages(propertyID uint, images []models.PropertyImage) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].PropertyID = propertyID
	}
	return r.db.Create(&images).Error
}

// Delete removes the property and everything hanging off it: favorite
// edges, images, and price history. The cascade is explicit so the
// behavior is the same on stores without foreign-key enforcement.
func (r *propertyRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.PriceChange{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Property{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPropertyNotFound
		}
		return nil
	})
}

func (r *propertyRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.Property{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *propertyRepository) CountByOwner(ownerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Property{}).Where("owner_id = ?", ownerID).Count(&count).Error
	return count, err
}

func (r *propertyRepository) OwnerStats(ownerID uint) (*models.OwnerStats, error) {
	var stats models.OwnerStats

	err := r.db.Model(&models.Property{}).
		Select("COUNT(*) AS total_properties, COALESCE(SUM(views), 0) AS total_views, COALESCE(SUM(price), 0) AS total_value").
		Where("owner_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&models.Property{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&stats.ActiveProperties).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&models.Favorite{}).
		Joins("JOIN properties ON properties.id = favorites.property_id").
		Where("properties.owner_id = ?", ownerID).
		Count(&stats.TotalFavorites).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// fillFavoriteCounts populates the derived FavoriteCount field for a set
// of properties with a single grouped query.
func (r *propertyRepository) fillFavoriteCounts(properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}

	ids := make([]uint, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}

	type row struct {
		PropertyID uint
		Count      int64
	}
	var rows []row
	err := r.db.Model(&models.Favorite{}).
		Select("property_id, COUNT(*) AS count").
		Where("property_id IN ?", ids).
		Group("property_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, rw := range rows {
		counts[rw.PropertyID] = rw.Count
	}
	for _, p := range properties {
		p.FavoriteCount = counts[p.ID]
	}
	return nil
}

// Repository errors
var (
	ErrPropertyNotFound = errors.New("property not found")
)
