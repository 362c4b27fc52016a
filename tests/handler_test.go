package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apnadera/backend-go/internal/api"
	"github.com/apnadera/backend-go/internal/database/models"
	"github.com/apnadera/backend-go/internal/database/repository"
	"github.com/apnadera/backend-go/internal/database/service"
	"github.com/apnadera/backend-go/internal/handler"
	"github.com/apnadera/backend-go/internal/mailer"
	"github.com/apnadera/backend-go/internal/middleware"
	"github.com/apnadera/backend-go/internal/worker"
	"github.com/apnadera/backend-go/tests/testutil"
)

// ==================== TEST API SETUP ====================

type testAPI struct {
	router      *gin.Engine
	db          *gorm.DB
	authService service.AuthService
	pool        *worker.Pool
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	cfg := testutil.TestConfig()
	logger := testutil.TestLogger()

	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	authService := service.NewAuthService(userRepo, cfg, logger)
	propertyService := service.NewPropertyService(propertyRepo, favoriteRepo, nil, logger)
	userService := service.NewUserService(userRepo, propertyRepo, favoriteRepo, nil, logger)

	pool := worker.NewPool(logger)
	t.Cleanup(func() { pool.Shutdown(5 * time.Second) })

	router := api.SetupRouter(
		handler.NewAuthHandler(authService, userService, logger),
		handler.NewPropertyHandler(propertyService, cfg, logger),
		handler.NewUserHandler(userService, logger),
		handler.NewContactHandler(propertyRepo, mailer.NewNoopMailer(logger), pool, logger),
		handler.NewHealthHandler(db, logger),
		middleware.NewAuthMiddleware(authService, logger),
		middleware.NewNoOpRateLimiter(logger),
	)

	return &testAPI{router: router, db: db, authService: authService, pool: pool}
}

func (a *testAPI) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// tokenFor issues a token for a fixture user directly through the service.
func (a *testAPI) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := a.authService.IssueToken(user.ID)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// multipartProperty builds a create/update form with the given fields
// and optional inline image files.
func multipartProperty(t *testing.T, fields map[string]string, imageNames []string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	for _, name := range imageNames {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, name))
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake png bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func validPropertyFields() map[string]string {
	return map[string]string{
		"title":       "Spacious Suburban Home",
		"description": "Four bedrooms, a finished basement and a double garage.",
		"type":        "house",
		"price":       "450000",
		"address":     "77 Birch Lane",
		"city":        "Madison",
		"state":       "WI",
		"zipCode":     "53703",
		"bedrooms":    "4",
		"bathrooms":   "2",
		"squareFeet":  "2400",
	}
}

// ==================== AUTH ENDPOINT TESTS ====================

func TestAPI_RegisterAndLogin(t *testing.T) {
	a := setupTestAPI(t)

	w := a.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Jordan Example",
		"email":    "jordan@example.com",
		"password": "password123",
		"role":     "seller",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "seller", user["role"])
	_, exposed := user["password"]
	assert.False(t, exposed, "password hash must never appear in responses")

	// Same email again conflicts.
	w = a.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Jordan Clone",
		"email":    "jordan@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", decodeBody(t, w)["error"])

	// Login round-trip.
	w = a.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "jordan@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = a.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Wrong password.
	w = a.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "jordan@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_RegisterValidation(t *testing.T) {
	a := setupTestAPI(t)

	w := a.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "J",
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Validation failed", body["error"])
	details := body["details"].([]interface{})
	assert.Len(t, details, 3)
}

func TestAPI_AdminRoleNotSelfAssignable(t *testing.T) {
	a := setupTestAPI(t)

	w := a.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Sneaky User",
		"email":    "sneaky@example.com",
		"password": "password123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_DeactivatedAccountRejected(t *testing.T) {
	a := setupTestAPI(t)

	user := testutil.CreateTestUser(t, a.db, models.RoleBuyer)
	token := a.tokenFor(t, user)

	require.NoError(t, a.db.Model(user).Update("is_active", false).Error)

	w := a.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account is deactivated", decodeBody(t, w)["error"])

	w = a.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    user.Email,
		"password": testutil.TestPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account deactivated", decodeBody(t, w)["error"])
}

// ==================== PROPERTY ENDPOINT TESTS ====================

func TestAPI_PropertyLifecycle(t *testing.T) {
	a := setupTestAPI(t)

	seller := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	sellerToken := a.tokenFor(t, seller)

	// Create with two images.
	form, contentType := multipartProperty(t, validPropertyFields(), []string{"front.png", "back.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", form)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+sellerToken)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.Images, 2)
	assert.True(t, created.Images[0].IsPrimary)
	assert.True(t, strings.HasPrefix(created.Images[0].URL, "data:image/png;base64,"))

	// Public fetch counts a view.
	w = a.request(t, http.MethodGet, fmt.Sprintf("/api/v1/properties/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, int64(1), fetched.Views)

	// Update the price.
	form, contentType = multipartProperty(t, map[string]string{"price": "475000"}, nil)
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/v1/properties/%d", created.ID), form)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+sellerToken)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, float64(475000), updated.Price)
	require.Len(t, updated.PriceHistory, 1)
	assert.Equal(t, float64(450000), updated.PriceHistory[0].Price)

	// Delete, then the listing is gone.
	w = a.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/properties/%d", created.ID), sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.request(t, http.MethodGet, fmt.Sprintf("/api/v1/properties/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_PropertyRoleEnforcement(t *testing.T) {
	a := setupTestAPI(t)

	buyer := testutil.CreateTestUser(t, a.db, models.RoleBuyer)
	owner := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	otherSeller := testutil.CreateTestUser(t, a.db, models.RoleSeller)

	property := testutil.CreateTestProperty(t, a.db, owner.ID)

	// Buyers cannot create listings.
	form, contentType := multipartProperty(t, validPropertyFields(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties", form)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+a.tokenFor(t, buyer))
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A different seller cannot delete someone else's listing.
	w = a.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/properties/%d", property.ID), a.tokenFor(t, otherSeller), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Anonymous create is rejected before any role check.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/properties", bytes.NewReader(nil))
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_InactivePropertyVisibility(t *testing.T) {
	a := setupTestAPI(t)

	owner := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	stranger := testutil.CreateTestUser(t, a.db, models.RoleBuyer)
	property := testutil.CreateTestProperty(t, a.db, owner.ID)
	require.NoError(t, a.db.Model(property).Update("is_active", false).Error)

	path := fmt.Sprintf("/api/v1/properties/%d", property.ID)

	w := a.request(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.request(t, http.MethodGet, path, a.tokenFor(t, stranger), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.request(t, http.MethodGet, path, a.tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Inactive listings never appear in the public index.
	w = a.request(t, http.MethodGet, "/api/v1/properties", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(0), pagination["totalProperties"])
}

func TestAPI_PropertyListValidation(t *testing.T) {
	a := setupTestAPI(t)

	tests := []struct {
		name  string
		query string
	}{
		{"limit above cap", "?limit=100"},
		{"zero page", "?page=0"},
		{"negative price", "?minPrice=-5"},
		{"unknown type", "?type=castle"},
		{"unknown sort field", "?sortBy=owner_id"},
		{"bad sort order", "?sortOrder=sideways"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.request(t, http.MethodGet, "/api/v1/properties"+tt.query, "", nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, "Validation failed", body["error"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestAPI_PropertySearch(t *testing.T) {
	a := setupTestAPI(t)

	owner := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	match := testutil.CreateTestProperty(t, a.db, owner.ID)
	require.NoError(t, a.db.Model(match).Update("title", "Lakeside Cottage Retreat").Error)
	testutil.CreateTestProperty(t, a.db, owner.ID)

	w := a.request(t, http.MethodGet, "/api/v1/properties/search?q=lakeside", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	properties := body["properties"].([]interface{})
	require.Len(t, properties, 1)

	// Missing query is rejected.
	w = a.request(t, http.MethodGet, "/api/v1/properties/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_FavoriteToggle(t *testing.T) {
	a := setupTestAPI(t)

	owner := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	buyer := testutil.CreateTestUser(t, a.db, models.RoleBuyer)
	property := testutil.CreateTestProperty(t, a.db, owner.ID)
	token := a.tokenFor(t, buyer)

	path := fmt.Sprintf("/api/v1/properties/%d/favorite", property.ID)

	w := a.request(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["isFavorited"])

	w = a.request(t, http.MethodGet, "/api/v1/users/favorites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["properties"], 1)

	w = a.request(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["isFavorited"])

	// Anonymous toggles are rejected.
	w = a.request(t, http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ==================== USER / ADMIN ENDPOINT TESTS ====================

func TestAPI_OwnerStats(t *testing.T) {
	a := setupTestAPI(t)

	owner := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	testutil.CreateTestProperty(t, a.db, owner.ID)
	testutil.CreateTestProperty(t, a.db, owner.ID)

	w := a.request(t, http.MethodGet, "/api/v1/users/stats", a.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["totalProperties"])
	assert.Equal(t, float64(700000), body["totalValue"])
}

func TestAPI_AdminUserManagement(t *testing.T) {
	a := setupTestAPI(t)

	admin := testutil.CreateTestUser(t, a.db, models.RoleAdmin)
	buyer := testutil.CreateTestUser(t, a.db, models.RoleBuyer)
	seller := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	testutil.CreateTestProperty(t, a.db, seller.ID)

	adminToken := a.tokenFor(t, admin)

	// Non-admin callers are shut out of the admin surface.
	w := a.request(t, http.MethodGet, "/api/v1/users", a.tokenFor(t, buyer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.request(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Deactivate a user.
	w = a.request(t, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", buyer.ID), adminToken, gin.H{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.User
	require.NoError(t, a.db.First(&updated, buyer.ID).Error)
	assert.False(t, updated.IsActive)

	// Deleting a user who owns properties is refused.
	w = a.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", seller.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Deleting a property-less user works.
	w = a.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", buyer.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_MyProperties(t *testing.T) {
	a := setupTestAPI(t)

	owner := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	testutil.CreateTestProperty(t, a.db, owner.ID)
	inactive := testutil.CreateTestProperty(t, a.db, owner.ID)
	require.NoError(t, a.db.Model(inactive).Update("is_active", false).Error)

	// The owner dashboard includes inactive listings.
	w := a.request(t, http.MethodGet, "/api/v1/users/properties", a.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["properties"], 2)
}

// ==================== CONTACT & HEALTH ENDPOINT TESTS ====================

func TestAPI_ContactInquiry(t *testing.T) {
	a := setupTestAPI(t)

	owner := testutil.CreateTestUser(t, a.db, models.RoleSeller)
	property := testutil.CreateTestProperty(t, a.db, owner.ID)

	w := a.request(t, http.MethodPost, "/api/v1/contact", "", gin.H{
		"propertyId": property.ID,
		"name":       "Interested Buyer",
		"email":      "interested@example.com",
		"message":    "Is this property still available? I would love a viewing.",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	contact := body["contact"].(map[string]interface{})
	assert.Equal(t, "owner", contact["type"])
	assert.Equal(t, owner.Name, contact["name"])

	// Unknown property.
	w = a.request(t, http.MethodPost, "/api/v1/contact", "", gin.H{
		"propertyId": 9999,
		"name":       "Interested Buyer",
		"email":      "interested@example.com",
		"message":    "Is this property still available? I would love a viewing.",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Message too short.
	w = a.request(t, http.MethodPost, "/api/v1/contact", "", gin.H{
		"propertyId": property.ID,
		"name":       "Interested Buyer",
		"email":      "interested@example.com",
		"message":    "hi",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Health(t *testing.T) {
	a := setupTestAPI(t)

	w := a.request(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["database"])
}
