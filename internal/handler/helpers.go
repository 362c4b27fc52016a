package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// fieldError is one entry in a ValidationError response's details array.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// bindingErrorDetails converts a gin binding error into per-field
// details so clients see which inputs were rejected.
func bindingErrorDetails(err error) []fieldError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]fieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fieldError{
				Field:   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
				Message: bindingMessage(fe),
			})
		}
		return details
	}
	return []fieldError{{Field: "body", Message: "Invalid request body"}}
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		return "Value is below the minimum of " + fe.Param()
	case "max":
		return "Value exceeds the maximum of " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "gte":
		return "Must be at least " + fe.Param()
	default:
		return "Invalid value"
	}
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parsePageParams reads page/limit query parameters with the supplied
// defaults, rejecting non-positive values.
func parsePageParams(c *gin.Context, defaultLimit int) (page, limit int, ok bool) {
	page, limit = 1, defaultLimit

	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return 0, 0, false
		}
		page = v
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 50 {
			return 0, 0, false
		}
		limit = v
	}
	return page, limit, true
}
