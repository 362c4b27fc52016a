package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/apnadera/backend-go/internal/database"
	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
)

// ImageUpload is a raw uploaded file as delivered by the transport layer.
type ImageUpload struct {
	Data     []byte
	MimeType string
	Caption  string
}

// CreatePropertyInput carries the validated fields of a listing creation.
type CreatePropertyInput struct {
	Title         string
	Description   string
	Type          string
	Status        string
	Price         float64
	OriginalPrice *float64
	Address       string
	City          string
	State         string
	ZipCode       string
	Latitude      *float64
	Longitude     *float64
	Bedrooms      int
	Bathrooms     int
	SquareFeet    int
	LotSize       int
	YearBuilt     int
	Parking       string
	Heating       string
	Cooling       string
	Amenities     []string
	Images        []ImageUpload
}

// UpdatePropertyInput carries optional listing updates; nil fields are
// left untouched. Images are appended, never replaced.
type UpdatePropertyInput struct {
	Title       *string
	Description *string
	Type        *string
	Status      *string
	Price       *float64
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Bedrooms    *int
	Bathrooms   *int
	SquareFeet  *int
	LotSize     *int
	YearBuilt   *int
	Parking     *string
	Heating     *string
	Cooling     *string
	IsFeatured  *bool
	IsActive    *bool
	Amenities   []string
	Images      []ImageUpload
}

// PropertyService defines the interface for listing business logic
type PropertyService interface {
	List(filter repository.PropertyFilter) ([]models.Property, repository.Pagination, error)
	Get(id uint, requester *models.User) (*models.Property, error)
	Create(owner *models.User, input CreatePropertyInput) (*models.Property, error)
	Update(requester *models.User, id uint, input UpdatePropertyInput) (*models.Property, error)
	Delete(requester *models.User, id uint) error
	ToggleFavorite(userID, propertyID uint) (bool, error)
}

type propertyService struct {
	propertyRepo repository.PropertyRepository
	favoriteRepo repository.FavoriteRepository
	statsCache   *database.RedisClient
	logger       *slog.Logger
}

// NewPropertyService creates a new property service instance. statsCache
// may be nil when Redis is unavailable.
func NewPropertyService(
	propertyRepo repository.PropertyRepository,
	favoriteRepo repository.FavoriteRepository,
	statsCache *database.RedisClient,
	logger *slog.Logger,
) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		favoriteRepo: favoriteRepo,
		statsCache:   statsCache,
		logger:       logger,
	}
}

func (s *propertyService) List(filter repository.PropertyFilter) ([]models.Property, repository.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 12
	}

	properties, total, err := s.propertyRepo.List(filter)
	if err != nil {
		s.logger.Error("❌ [PropertyService] Failed to list properties", "error", err)
		return nil, repository.Pagination{}, err
	}

	return properties, repository.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get fetches a listing by identifier. Inactive listings are visible
// only to their owner and admins; every successful fetch of an active
// listing increments its view counter.
func (s *propertyService) Get(id uint, requester *models.User) (*models.Property, error) {
	property, err := s.propertyRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if !property.IsActive {
		if requester == nil || (requester.ID != property.OwnerID && requester.Role != models.RoleAdmin) {
			return nil, repository.ErrPropertyNotFound
		}
		return property, nil
	}

	if err := s.propertyRepo.IncrementViews(id); err != nil {
		s.logger.Warn("⚠️ [PropertyService] Failed to increment views", "property_id", id, "error", err)
	} else {
		property.Views++
	}

	return property, nil
}

func (s *propertyService) Create(owner *models.User, input CreatePropertyInput) (*models.Property, error) {
	if !owner.CanManageListings() {
		return nil, ErrForbidden
	}

	status := models.StatusAvailable
	if input.Status != "" {
		status = models.PropertyStatus(input.Status)
	}

	property := &models.Property{
		Title:         input.Title,
		Description:   input.Description,
		Type:          models.PropertyType(input.Type),
		Status:        status,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Location: models.Location{
			Address:   input.Address,
			City:      input.City,
			State:     input.State,
			ZipCode:   input.ZipCode,
			Latitude:  input.Latitude,
			Longitude: input.Longitude,
		},
		Details: models.Details{
			Bedrooms:   input.Bedrooms,
			Bathrooms:  input.Bathrooms,
			SquareFeet: input.SquareFeet,
			LotSize:    input.LotSize,
			YearBuilt:  input.YearBuilt,
			Parking:    input.Parking,
			Heating:    input.Heating,
			Cooling:    input.Cooling,
		},
		Amenities: input.Amenities,
		OwnerID:   owner.ID,
		IsActive:  true,
	}

	// Agent reference is attached only when the creator actually is an agent.
	if owner.Role == models.RoleAgent {
		property.AgentID = &owner.ID
	}

	property.Images = encodeImages(input.Images, 0, true)

	if err := s.propertyRepo.Create(property); err != nil {
		s.logger.Error("❌ [PropertyService] Failed to create property", "error", err)
		return nil, err
	}

	s.invalidateStats(owner.ID)
	s.logger.Info("✅ [PropertyService] Property created", "property_id", property.ID, "owner_id", owner.ID)

	return s.propertyRepo.FindByID(property.ID)
}

func (s *propertyService) Update(requester *models.User, id uint, input UpdatePropertyInput) (*models.Property, error) {
	property, err := s.propertyRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if property.OwnerID != requester.ID && requester.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	var priorPrice *float64
	if input.Price != nil && *input.Price != property.Price {
		prior := property.Price
		priorPrice = &prior
		property.Price = *input.Price
	}

	applyUpdates(property, input)

	if err := s.propertyRepo.Update(property, priorPrice); err != nil {
		s.logger.Error("❌ [PropertyService] Failed to update property", "property_id", id, "error", err)
		return nil, err
	}

	if len(input.Images) > 0 {
		images := encodeImages(input.Images, len(property.Images), false)
		if err := s.propertyRepo.AddImages(id, images); err != nil {
			s.logger.Error("❌ [PropertyService] Failed to attach images", "property_id", id, "error", err)
			return nil, err
		}
	}

	s.invalidateStats(property.OwnerID)
	s.logger.Info("✅ [PropertyService] Property updated",
		"property_id", id,
		"price_changed", priorPrice != nil,
	)

	return s.propertyRepo.FindByID(id)
}

func (s *propertyService) Delete(requester *models.User, id uint) error {
	property, err := s.propertyRepo.FindByID(id)
	if err != nil {
		return err
	}

	if property.OwnerID != requester.ID && requester.Role != models.RoleAdmin {
		return ErrForbidden
	}

	if err := s.propertyRepo.Delete(id); err != nil {
		s.logger.Error("❌ [PropertyService] Failed to delete property", "property_id", id, "error", err)
		return err
	}

	s.invalidateStats(property.OwnerID)
	s.logger.Info("✅ [PropertyService] Property deleted", "property_id", id, "requester_id", requester.ID)
	return nil
}

func (s *propertyService) ToggleFavorite(userID, propertyID uint) (bool, error) {
	property, err := s.propertyRepo.FindByID(propertyID)
	if err != nil {
		return false, err
	}

	favorited, err := s.favoriteRepo.Toggle(userID, propertyID)
	if err != nil {
		s.logger.Error("❌ [PropertyService] Failed to toggle favorite",
			"user_id", userID,
			"property_id", propertyID,
			"error", err,
		)
		return false, err
	}

	s.invalidateStats(property.OwnerID)
	s.logger.Info("✅ [PropertyService] Favorite toggled",
		"user_id", userID,
		"property_id", propertyID,
		"favorited", favorited,
	)
	return favorited, nil
}

// encodeImages turns uploads into inline base64 data-URL attachments.
// startPos continues the position sequence of existing images; when
// markFirstPrimary is set the first attachment becomes the primary image.
func encodeImages(uploads []ImageUpload, startPos int, markFirstPrimary bool) []models.PropertyImage {
	images := make([]models.PropertyImage, 0, len(uploads))
	for i, upload := range uploads {
		caption := upload.Caption
		if caption == "" {
			caption = fmt.Sprintf("Image %d", startPos+i+1)
		}
		images = append(images, models.PropertyImage{
			ID:        uuid.New().String(),
			URL:       fmt.Sprintf("data:%s;base64,%s", upload.MimeType, base64.StdEncoding.EncodeToString(upload.Data)),
			Caption:   caption,
			IsPrimary: markFirstPrimary && i == 0,
			Position:  startPos + i,
		})
	}
	return images
}

func applyUpdates(property *models.Property, input UpdatePropertyInput) {
	if input.Title != nil {
		property.Title = *input.Title
	}
	if input.Description != nil {
		property.Description = *input.Description
	}
	if input.Type != nil {
		property.Type = models.PropertyType(*input.Type)
	}
	if input.Status != nil {
		property.Status = models.PropertyStatus(*input.Status)
	}
	if input.Address != nil {
		property.Location.Address = *input.Address
	}
	if input.City != nil {
		property.Location.City = *input.City
	}
	if input.State != nil {
		property.Location.State = *input.State
	}
	if input.ZipCode != nil {
		property.Location.ZipCode = *input.ZipCode
	}
	if input.Bedrooms != nil {
		property.Details.Bedrooms = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		property.Details.Bathrooms = *input.Bathrooms
	}
	if input.SquareFeet != nil {
		property.Details.SquareFeet = *input.SquareFeet
	}
	if input.LotSize != nil {
		property.Details.LotSize = *input.LotSize
	}
	if input.YearBuilt != nil {
		property.Details.YearBuilt = *input.YearBuilt
	}
	if input.Parking != nil {
		property.Details.Parking = *input.Parking
	}
	if input.Heating != nil {
		property.Details.Heating = *input.Heating
	}
	if input.Cooling != nil {
		property.Details.Cooling = *input.Cooling
	}
	if input.IsFeatured != nil {
		property.IsFeatured = *input.IsFeatured
	}
	if input.IsActive != nil {
		property.IsActive = *input.IsActive
	}
	if input.Amenities != nil {
		property.Amenities = input.Amenities
	}
}

func (s *propertyService) invalidateStats(ownerID uint) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.InvalidateOwnerStats(context.Background(), ownerID); err != nil {
		s.logger.Warn("⚠️ [PropertyService] Failed to invalidate stats cache", "owner_id", ownerID, "error", err)
	}
}

// Service errors
var (
	ErrForbidden = errors.New("insufficient permissions")
)
