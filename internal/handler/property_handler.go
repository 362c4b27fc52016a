package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/apnadera/backend-go/internal/config"
	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/database/service"
	"github.com/apnadera/backend-go/internal/middleware"
)

// PropertyHandler handles HTTP requests for listings
type PropertyHandler struct {
	propertyService service.PropertyService
	cfg             *config.Config
	logger          *slog.Logger
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService service.PropertyService, cfg *config.Config, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		cfg:             cfg,
		logger:          logger,
	}
}

// List handles GET /properties - filtered, sorted, paginated listings.
// Every parameter is validated before the store is touched; a single bad
// parameter fails the whole request.
func (h *PropertyHandler) List(c *gin.Context) {
	filter, details := parseListFilter(c)
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": details,
		})
		return
	}

	properties, pagination, err := h.propertyService.List(filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"pagination": pagination,
	})
}

// Search handles GET /properties/search - free-text search with the
// same OR semantics across title, description, city, state and address.
func (h *PropertyHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": []fieldError{{Field: "q", Message: "Search query is required"}},
		})
		return
	}

	page, limit, ok := parsePageParams(c, 12)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": []fieldError{{Field: "page", Message: "Page must be a positive integer and limit between 1 and 50"}},
		})
		return
	}

	properties, pagination, err := h.propertyService.List(repository.PropertyFilter{
		Page:   page,
		Limit:  limit,
		Search: q,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"pagination": pagination,
	})
}

// Get handles GET /properties/:id. Fetching an active listing counts as
// a view; inactive listings stay addressable for their owner and admins.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	property, err := h.propertyService.Get(id, middleware.CurrentUser(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// Create handles POST /properties (multipart form, seller/agent/admin)
func (h *PropertyHandler) Create(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	input, details := h.parseCreateForm(c)
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": details,
		})
		return
	}

	property, err := h.propertyService.Create(current, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, property)
}

// Update handles PUT /properties/:id (multipart form, owner/admin)
func (h *PropertyHandler) Update(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	input, details := h.parseUpdateForm(c)
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": details,
		})
		return
	}

	property, err := h.propertyService.Update(current, id, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, property)
}

// Delete handles DELETE /properties/:id (owner/admin, hard delete)
func (h *PropertyHandler) Delete(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	if err := h.propertyService.Delete(current, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property deleted successfully"})
}

// ToggleFavorite handles POST /properties/:id/favorite
func (h *PropertyHandler) ToggleFavorite(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	favorited, err := h.propertyService.ToggleFavorite(current.ID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Removed from favorites"
	if favorited {
		message = "Added to favorites"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     message,
		"isFavorited": favorited,
	})
}

// parseListFilter validates the listing query parameters and assembles
// the store filter. All violations are collected so the client sees
// every bad parameter at once.
func parseListFilter(c *gin.Context) (repository.PropertyFilter, []fieldError) {
	filter := repository.PropertyFilter{Page: 1, Limit: 12}
	var details []fieldError

	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			details = append(details, fieldError{Field: "page", Message: "Page must be a positive integer"})
		} else {
			filter.Page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 50 {
			details = append(details, fieldError{Field: "limit", Message: "Limit must be between 1 and 50"})
		} else {
			filter.Limit = v
		}
	}

	filter.Search = strings.TrimSpace(c.Query("search"))

	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			details = append(details, fieldError{Field: "minPrice", Message: "Min price must be positive"})
		} else {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			details = append(details, fieldError{Field: "maxPrice", Message: "Max price must be positive"})
		} else {
			filter.MaxPrice = &v
		}
	}

	if raw := c.Query("type"); raw != "" {
		if !models.ValidPropertyType(raw) {
			details = append(details, fieldError{Field: "type", Message: "Invalid property type"})
		} else {
			filter.Type = raw
		}
	}
	if raw := c.Query("status"); raw != "" {
		if !models.ValidPropertyStatus(raw) {
			details = append(details, fieldError{Field: "status", Message: "Invalid property status"})
		} else {
			filter.Status = raw
		}
	}

	filter.City = strings.TrimSpace(c.Query("city"))
	filter.State = strings.TrimSpace(c.Query("state"))

	if raw := c.Query("bedrooms"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			details = append(details, fieldError{Field: "bedrooms", Message: "Bedrooms must be a non-negative integer"})
		} else {
			filter.Bedrooms = &v
		}
	}
	if raw := c.Query("bathrooms"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			details = append(details, fieldError{Field: "bathrooms", Message: "Bathrooms must be a non-negative integer"})
		} else {
			filter.Bathrooms = &v
		}
	}

	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, fieldError{Field: "featured", Message: "Featured must be a boolean"})
		} else {
			filter.Featured = v
		}
	}

	if raw := c.Query("sortBy"); raw != "" {
		if !repository.ValidSortField(raw) {
			details = append(details, fieldError{Field: "sortBy", Message: "Invalid sort field"})
		} else {
			filter.SortBy = raw
		}
	}
	if raw := c.Query("sortOrder"); raw != "" {
		if raw != "asc" && raw != "desc" {
			details = append(details, fieldError{Field: "sortOrder", Message: "Sort order must be asc or desc"})
		} else {
			filter.SortOrder = raw
		}
	}

	return filter, details
}

func (h *PropertyHandler) parseCreateForm(c *gin.Context) (service.CreatePropertyInput, []fieldError) {
	var input service.CreatePropertyInput
	var details []fieldError

	input.Title = strings.TrimSpace(c.PostForm("title"))
	if len(input.Title) < 5 || len(input.Title) > 100 {
		details = append(details, fieldError{Field: "title", Message: "Title must be between 5 and 100 characters"})
	}

	input.Description = strings.TrimSpace(c.PostForm("description"))
	if len(input.Description) < 20 || len(input.Description) > 2000 {
		details = append(details, fieldError{Field: "description", Message: "Description must be between 20 and 2000 characters"})
	}

	input.Type = c.PostForm("type")
	if !models.ValidPropertyType(input.Type) {
		details = append(details, fieldError{Field: "type", Message: "Invalid property type"})
	}

	if raw := c.PostForm("status"); raw != "" {
		if !models.ValidPropertyStatus(raw) {
			details = append(details, fieldError{Field: "status", Message: "Invalid property status"})
		} else {
			input.Status = raw
		}
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		details = append(details, fieldError{Field: "price", Message: "Price must be positive"})
	} else {
		input.Price = price
	}

	input.Address = strings.TrimSpace(c.PostForm("address"))
	if input.Address == "" {
		details = append(details, fieldError{Field: "address", Message: "Address is required"})
	}
	input.City = strings.TrimSpace(c.PostForm("city"))
	if input.City == "" {
		details = append(details, fieldError{Field: "city", Message: "City is required"})
	}
	input.State = strings.TrimSpace(c.PostForm("state"))
	if input.State == "" {
		details = append(details, fieldError{Field: "state", Message: "State is required"})
	}
	input.ZipCode = strings.TrimSpace(c.PostForm("zipCode"))
	if input.ZipCode == "" {
		details = append(details, fieldError{Field: "zipCode", Message: "Zip code is required"})
	}

	if raw := c.PostForm("latitude"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < -90 || v > 90 {
			details = append(details, fieldError{Field: "latitude", Message: "Latitude must be between -90 and 90"})
		} else {
			input.Latitude = &v
		}
	}
	if raw := c.PostForm("longitude"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < -180 || v > 180 {
			details = append(details, fieldError{Field: "longitude", Message: "Longitude must be between -180 and 180"})
		} else {
			input.Longitude = &v
		}
	}

	input.Bedrooms = formInt(c, "bedrooms", &details)
	input.Bathrooms = formInt(c, "bathrooms", &details)
	input.SquareFeet = formInt(c, "squareFeet", &details)
	input.LotSize = formInt(c, "lotSize", &details)
	input.YearBuilt = formInt(c, "yearBuilt", &details)
	input.Parking = c.PostForm("parking")
	input.Heating = c.PostForm("heating")
	input.Cooling = c.PostForm("cooling")

	input.Amenities = validateAmenities(c.PostFormArray("amenities"), &details)

	input.Images = h.readImageUploads(c, &details)

	return input, details
}

func (h *PropertyHandler) parseUpdateForm(c *gin.Context) (service.UpdatePropertyInput, []fieldError) {
	var input service.UpdatePropertyInput
	var details []fieldError

	if raw, set := c.GetPostForm("title"); set {
		v := strings.TrimSpace(raw)
		if len(v) < 5 || len(v) > 100 {
			details = append(details, fieldError{Field: "title", Message: "Title must be between 5 and 100 characters"})
		} else {
			input.Title = &v
		}
	}
	if raw, set := c.GetPostForm("description"); set {
		v := strings.TrimSpace(raw)
		if len(v) < 20 || len(v) > 2000 {
			details = append(details, fieldError{Field: "description", Message: "Description must be between 20 and 2000 characters"})
		} else {
			input.Description = &v
		}
	}
	if raw, set := c.GetPostForm("type"); set {
		if !models.ValidPropertyType(raw) {
			details = append(details, fieldError{Field: "type", Message: "Invalid property type"})
		} else {
			input.Type = &raw
		}
	}
	if raw, set := c.GetPostForm("status"); set {
		if !models.ValidPropertyStatus(raw) {
			details = append(details, fieldError{Field: "status", Message: "Invalid property status"})
		} else {
			input.Status = &raw
		}
	}
	if raw, set := c.GetPostForm("price"); set {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			details = append(details, fieldError{Field: "price", Message: "Price must be positive"})
		} else {
			input.Price = &v
		}
	}

	for field, target := range map[string]**string{
		"address": &input.Address,
		"city":    &input.City,
		"state":   &input.State,
		"zipCode": &input.ZipCode,
		"parking": &input.Parking,
		"heating": &input.Heating,
		"cooling": &input.Cooling,
	} {
		if raw, set := c.GetPostForm(field); set {
			v := strings.TrimSpace(raw)
			*target = &v
		}
	}

	for field, target := range map[string]**int{
		"bedrooms":   &input.Bedrooms,
		"bathrooms":  &input.Bathrooms,
		"squareFeet": &input.SquareFeet,
		"lotSize":    &input.LotSize,
		"yearBuilt":  &input.YearBuilt,
	} {
		if raw, set := c.GetPostForm(field); set {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				details = append(details, fieldError{Field: field, Message: "Must be a non-negative integer"})
			} else {
				*target = &v
			}
		}
	}

	if raw, set := c.GetPostForm("isFeatured"); set {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, fieldError{Field: "isFeatured", Message: "Must be a boolean"})
		} else {
			input.IsFeatured = &v
		}
	}
	if raw, set := c.GetPostForm("isActive"); set {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, fieldError{Field: "isActive", Message: "Must be a boolean"})
		} else {
			input.IsActive = &v
		}
	}

	if amenities := c.PostFormArray("amenities"); len(amenities) > 0 {
		input.Amenities = validateAmenities(amenities, &details)
	}

	input.Images = h.readImageUploads(c, &details)

	return input, details
}

// readImageUploads collects uploaded files under the "images" field,
// enforcing the count, size and content-type limits from config.
func (h *PropertyHandler) readImageUploads(c *gin.Context, details *[]fieldError) []service.ImageUpload {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil
	}
	if int64(len(files)) > h.cfg.MaxImageCount {
		*details = append(*details, fieldError{Field: "images", Message: "Too many image files"})
		return nil
	}

	uploads := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.cfg.MaxImageSize {
			*details = append(*details, fieldError{Field: "images", Message: "Image file too large"})
			return nil
		}
		mimeType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(mimeType, "image/") {
			*details = append(*details, fieldError{Field: "images", Message: "Only image files are allowed"})
			return nil
		}
		data, err := readUpload(fh)
		if err != nil {
			h.logger.Error("❌ [PropertyHandler] Failed to read upload", "file", fh.Filename, "error", err)
			*details = append(*details, fieldError{Field: "images", Message: "Failed to read image file"})
			return nil
		}
		uploads = append(uploads, service.ImageUpload{Data: data, MimeType: mimeType})
	}
	return uploads
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formInt(c *gin.Context, field string, details *[]fieldError) int {
	raw := c.PostForm(field)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		*details = append(*details, fieldError{Field: field, Message: "Must be a non-negative integer"})
		return 0
	}
	return v
}

func validateAmenities(amenities []string, details *[]fieldError) []string {
	valid := make([]string, 0, len(amenities))
	for _, amenity := range amenities {
		if !models.ValidAmenity(amenity) {
			*details = append(*details, fieldError{Field: "amenities", Message: "Unknown amenity: " + amenity})
			continue
		}
		valid = append(valid, amenity)
	}
	return valid
}

// handleServiceError maps service errors to HTTP responses
func (h *PropertyHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Property not found",
			"message": "The requested property does not exist",
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Access denied",
			"message": "You can only manage your own properties",
		})
	default:
		h.logger.Error("❌ [PropertyHandler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
