package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func ownerEcho() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), JWTAuth(testSecret))
	r.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, OwnerID(c).String()) })
	r.GET("/admin", RequireRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(t *testing.T, r http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ResolvesOwner(t *testing.T) {
	owner := uuid.New()
	token, err := IssueToken(testSecret, owner, RoleOwner, time.Hour)
	require.NoError(t, err)

	w := get(t, ownerEcho(), "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, owner.String(), w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestJWTAuth_Rejections(t *testing.T) {
	expired, err := IssueToken(testSecret, uuid.New(), RoleOwner, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := IssueToken("other-secret", uuid.New(), RoleOwner, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":   "",
		"garbage":   "not-a-jwt",
		"expired":   expired,
		"wrong key": wrongKey,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, get(t, ownerEcho(), "/whoami", token).Code)
		})
	}
}

func TestJWTAuth_OwnerOverrideOnlyForAdmins(t *testing.T) {
	self, other := uuid.New(), uuid.New()

	ownerToken, err := IssueToken(testSecret, self, RoleOwner, time.Hour)
	require.NoError(t, err)
	w := get(t, ownerEcho(), "/whoami?owner_id="+other.String(), ownerToken)
	assert.Equal(t, self.String(), w.Body.String())

	adminToken, err := IssueToken(testSecret, self, RoleAdmin, time.Hour)
	require.NoError(t, err)
	w = get(t, ownerEcho(), "/whoami?owner_id="+other.String(), adminToken)
	assert.Equal(t, other.String(), w.Body.String())

	w = get(t, ownerEcho(), "/whoami?owner_id=nope", adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireRole(t *testing.T) {
	ownerToken, _ := IssueToken(testSecret, uuid.New(), RoleOwner, time.Hour)
	adminToken, _ := IssueToken(testSecret, uuid.New(), RoleAdmin, time.Hour)

	assert.Equal(t, http.StatusForbidden, get(t, ownerEcho(), "/admin", ownerToken).Code)
	assert.Equal(t, http.StatusNoContent, get(t, ownerEcho(), "/admin", adminToken).Code)
}
