package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/database/service"
	"github.com/apnadera/backend-go/internal/middleware"
)

// UserHandler handles HTTP requests for the user's own dashboard and
// for admin account management
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

type AdminUpdateUserRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=2,max=50"`
	Role       *string `json:"role" binding:"omitempty,oneof=buyer seller agent admin"`
	Phone      *string `json:"phone"`
	Bio        *string `json:"bio" binding:"omitempty,max=500"`
	Avatar     *string `json:"avatar"`
	Location   *string `json:"location"`
	IsActive   *bool   `json:"isActive"`
	IsVerified *bool   `json:"isVerified"`
}

// MyProperties handles GET /users/properties - the caller's own
// listings, active or not.
func (h *UserHandler) MyProperties(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	page, limit, ok := parsePageParams(c, 10)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return
	}

	properties, pagination, err := h.userService.ListOwnProperties(current.ID, page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"pagination": pagination,
	})
}

// MyFavorites handles GET /users/favorites
func (h *UserHandler) MyFavorites(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	properties, err := h.userService.ListFavorites(current.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

// MyStats handles GET /users/stats - aggregated totals across the
// caller's own listings.
func (h *UserHandler) MyStats(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	}

	stats, err := h.userService.OwnerStats(c.Request.Context(), current.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /users (admin only)
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit, ok := parsePageParams(c, 20)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return
	}

	users, total, err := h.userService.ListUsers(page, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": repository.NewPagination(page, limit, total),
	})
}

// GetUser handles GET /users/:id (admin only)
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/:id (admin only)
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [UserHandler] Invalid user update request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": bindingErrorDetails(err),
		})
		return
	}

	user, err := h.userService.AdminUpdateUser(id, service.AdminUserInput{
		Name:       req.Name,
		Role:       req.Role,
		Phone:      req.Phone,
		Bio:        req.Bio,
		Avatar:     req.Avatar,
		Location:   req.Location,
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id (admin only)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.userService.AdminDeleteUser(id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// handleServiceError maps service errors to HTTP responses
func (h *UserHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
	case errors.Is(err, service.ErrUserHasProperties):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "User has properties",
			"message": "Deactivate the account instead of deleting it, or remove its properties first",
		})
	default:
		h.logger.Error("❌ [UserHandler] Internal server error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
