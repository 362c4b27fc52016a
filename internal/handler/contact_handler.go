package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/mailer"
	"github.com/apnadera/backend-go/internal/worker"
)

// ContactHandler handles property inquiry requests. Mail is dispatched
// on the worker pool so delivery latency never blocks the response.
type ContactHandler struct {
	propertyRepo repository.PropertyRepository
	mailer       mailer.Mailer
	pool         *worker.Pool
	logger       *slog.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(
	propertyRepo repository.PropertyRepository,
	m mailer.Mailer,
	pool *worker.Pool,
	logger *slog.Logger,
) *ContactHandler {
	return &ContactHandler{
		propertyRepo: propertyRepo,
		mailer:       m,
		pool:         pool,
		logger:       logger,
	}
}

type ContactRequest struct {
	PropertyID uint   `json:"propertyId" binding:"required"`
	Name       string `json:"name" binding:"required,min=2,max=50"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Message    string `json:"message" binding:"required,min=10,max=1000"`
}

// SendInquiry handles POST /contact. The inquiry goes to the listing's
// agent when one is assigned, otherwise to the owner; the sender gets a
// confirmation copy.
func (h *ContactHandler) SendInquiry(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [ContactHandler] Invalid inquiry request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": bindingErrorDetails(err),
		})
		return
	}

	property, err := h.propertyRepo.FindByID(req.PropertyID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Property not found",
				"message": "The requested property does not exist",
			})
			return
		}
		h.logger.Error("❌ [ContactHandler] Failed to load property", "property_id", req.PropertyID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !property.IsActive {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Property not found",
			"message": "The requested property does not exist",
		})
		return
	}

	inquiry := mailer.Inquiry{
		PropertyID:    property.ID,
		PropertyTitle: property.Title,
		ContactName:   req.Name,
		ContactEmail:  req.Email,
		ContactPhone:  req.Phone,
		Message:       req.Message,
	}
	if property.Agent != nil {
		inquiry.RecipientName = property.Agent.Name
		inquiry.RecipientType = "agent"
		inquiry.RecipientMail = property.Agent.Email
	} else {
		inquiry.RecipientName = property.Owner.Name
		inquiry.RecipientType = "owner"
		inquiry.RecipientMail = property.Owner.Email
	}

	h.pool.SubmitWithTimeout(30*time.Second, func(ctx context.Context) {
		if err := h.mailer.SendInquiry(ctx, inquiry); err != nil {
			h.logger.Error("❌ [ContactHandler] Inquiry mail failed",
				"property_id", inquiry.PropertyID, "error", err)
			return
		}
		if err := h.mailer.SendConfirmation(ctx, inquiry); err != nil {
			h.logger.Error("❌ [ContactHandler] Confirmation mail failed",
				"property_id", inquiry.PropertyID, "error", err)
		}
	})

	h.logger.Info("✅ [ContactHandler] Inquiry accepted",
		"property_id", property.ID, "recipient", inquiry.RecipientType)

	c.JSON(http.StatusOK, gin.H{
		"message": "Your inquiry has been sent successfully",
		"contact": gin.H{
			"name": inquiry.RecipientName,
			"type": inquiry.RecipientType,
		},
	})
}
