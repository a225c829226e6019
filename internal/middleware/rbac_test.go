package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupanel/edupanel-api/internal/models"
	"github.com/edupanel/edupanel-api/internal/service"
)

const testSecret = "test-secret"

func newAuthService() *service.AuthService {
	return service.NewAuthService(nil, nil, nil, service.AuthConfig{
		AccessTokenSecret:  testSecret,
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})
}

func signToken(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	now := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/protected", nil)
	return c, w
}

func TestJWTMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()

	JWT(newAuthService())(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTRejectsNonBearerScheme(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()
	c.Request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	JWT(newAuthService())(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()
	c.Request.Header.Set("Authorization", "Bearer "+signToken(t, "u1", models.RoleAdmin)+"x")

	JWT(newAuthService())(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestJWTStoresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()
	c.Request.Header.Set("Authorization", "Bearer "+signToken(t, "u1", models.RoleTeacher))

	JWT(newAuthService())(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.IsAborted())
	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims := value.(*models.JWTClaims)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})

	RequireRoles(models.RoleAdmin, models.RoleTeacher)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.IsAborted())
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent})

	RequireRoles(models.RoleAdmin)(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()

	RequireRoles(models.RoleAdmin)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestRBACSelfMatchesPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()
	c.Params = gin.Params{{Key: "id", Value: "u1"}}
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent})

	RBAC("SELF")(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, c.IsAborted())
}
