package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anggr/haev-revalidate/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestConfig() {
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
}

func runMiddleware(t *testing.T, mw gin.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c.Request = req
	mw(c)
	return w, !c.IsAborted()
}

func TestAuthMiddlewareAcceptsSignedToken(t *testing.T) {
	setTestConfig()

	token, err := generateJWT("user-1", "admin@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c.Request = req

	AuthMiddleware()(c)

	assert.False(t, c.IsAborted())
	userID, _ := c.Get("user_id")
	assert.Equal(t, "user-1", userID)
	email, _ := c.Get("user_email")
	assert.Equal(t, "admin@example.com", email)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	setTestConfig()

	w, passed := runMiddleware(t, AuthMiddleware(), "")
	assert.False(t, passed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	setTestConfig()

	w, passed := runMiddleware(t, AuthMiddleware(), "Token abc")
	assert.False(t, passed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsForgedToken(t *testing.T) {
	setTestConfig()

	w, passed := runMiddleware(t, AuthMiddleware(), "Bearer not.a.token")
	assert.False(t, passed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddlewareRequiresAdminRole(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT role, is_active FROM admin_users").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("viewer", true))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/products", nil)
	c.Set("user_id", "user-1")

	AdminMiddleware()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminMiddlewarePassesActiveAdmin(t *testing.T) {
	mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT role, is_active FROM admin_users").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "is_active"}).AddRow("admin", true))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/products", nil)
	c.Set("user_id", "user-1")

	AdminMiddleware()(c)

	assert.False(t, c.IsAborted())
	assert.NoError(t, mock.ExpectationsWereMet())
}
