package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dappmentors/backend/models"
	"github.com/dappmentors/backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func setTokenSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "test-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")
}

func signAccessToken(t *testing.T, role models.Role, status models.Status) string {
	t.Helper()
	token, err := utils.SignToken(utils.TokenKindAccess, models.User{
		ID:     bson.NewObjectID(),
		Email:  "ada@example.com",
		Role:   role,
		Status: status,
	})
	require.NoError(t, err)
	return token
}

func claimsFor(role models.Role, status models.Status) *utils.Claims {
	return &utils.Claims{
		UserID: bson.NewObjectID().Hex(),
		Email:  "ada@example.com",
		Role:   string(role),
		Status: string(status),
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setTokenSecrets(t)

	r := gin.New()
	r.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing token")
}

func TestRequireAuthInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setTokenSecrets(t)

	r := gin.New()
	r.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthPopulatesContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setTokenSecrets(t)

	var gotEmail, gotRole string
	r := gin.New()
	r.GET("/protected", RequireAuth(), func(c *gin.Context) {
		gotEmail = c.GetString(CtxEmail)
		gotRole = c.GetString(CtxRole)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	token := signAccessToken(t, models.RoleInstructor, models.StatusActive)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", gotEmail)
	assert.Equal(t, string(models.RoleInstructor), gotRole)
}

func TestAuthorizeUnauthenticatedRedirectsToLogin(t *testing.T) {
	result := Authorize(nil, Policy{
		RequiredRoles:   []models.Role{models.RoleUser},
		AllowedStatuses: []models.Status{models.StatusActive},
	}, "/dashboard/courses")

	assert.Equal(t, DecisionRedirect, result.Decision)
	assert.Equal(t, LoginPath+"?returnTo=%2Fdashboard%2Fcourses", result.RedirectTo)
}

func TestAuthorizeStatusRedirects(t *testing.T) {
	policy := Policy{
		RequiredRoles:   []models.Role{models.RoleUser, models.RoleInstructor, models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}

	cases := []struct {
		status models.Status
		want   string
	}{
		{models.StatusPending, VerifyEmailPath},
		{models.StatusInactive, AccountInactivePath},
		{models.StatusBanned, AccountSuspendedPath},
	}

	for _, tc := range cases {
		result := Authorize(claimsFor(models.RoleUser, tc.status), policy, "")
		assert.Equal(t, DecisionRedirect, result.Decision, "status %s", tc.status)
		assert.Equal(t, tc.want, result.RedirectTo, "status %s", tc.status)
	}
}

func TestAuthorizeBannedDeniedRegardlessOfRole(t *testing.T) {
	policy := Policy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}

	for _, role := range []models.Role{models.RoleUser, models.RoleInstructor, models.RoleAdmin} {
		result := Authorize(claimsFor(role, models.StatusBanned), policy, "")
		assert.NotEqual(t, DecisionAllow, result.Decision, "role %s", role)
		assert.Equal(t, AccountSuspendedPath, result.RedirectTo, "role %s", role)
	}
}

func TestAuthorizeRoleMissRedirectsToDashboard(t *testing.T) {
	result := Authorize(claimsFor(models.RoleUser, models.StatusActive), Policy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}, "")

	assert.Equal(t, DecisionRedirect, result.Decision)
	assert.Equal(t, DashboardPath, result.RedirectTo)
}

func TestAuthorizeAllow(t *testing.T) {
	result := Authorize(claimsFor(models.RoleAdmin, models.StatusActive), Policy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}, "")

	assert.Equal(t, DecisionAllow, result.Decision)
}

func TestAuthorizeMalformedClaimsDenied(t *testing.T) {
	result := Authorize(&utils.Claims{Role: "overlord", Status: "active"}, Policy{
		RequiredRoles:   []models.Role{models.RoleUser},
		AllowedStatuses: []models.Status{models.StatusActive},
	}, "")

	assert.Equal(t, DecisionDeny, result.Decision)
}

func guardedRouter(policy Policy) *gin.Engine {
	r := gin.New()
	r.GET("/admin/users", Guard(policy), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"secret": "payload"})
	})
	return r
}

func TestGuardDeniesUserOnAdminRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setTokenSecrets(t)

	r := guardedRouter(Policy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	})

	token := signAccessToken(t, models.RoleUser, models.StatusActive)
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "payload")
	assert.Contains(t, w.Body.String(), DashboardPath)
}

func TestGuardDeniesBannedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setTokenSecrets(t)

	r := guardedRouter(Policy{
		RequiredRoles:   []models.Role{models.RoleUser, models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	})

	token := signAccessToken(t, models.RoleAdmin, models.StatusBanned)
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "payload")
}

func TestGuardRedirectsBrowserNavigation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setTokenSecrets(t)

	r := guardedRouter(Policy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), LoginPath)
}

func TestGuardAllowsAndPopulatesContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setTokenSecrets(t)

	var gotRole string
	r := gin.New()
	policy := Policy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}
	r.GET("/admin/users", Guard(policy), func(c *gin.Context) {
		gotRole = c.GetString(CtxRole)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	token := signAccessToken(t, models.RoleAdmin, models.StatusActive)
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RoleAdmin), gotRole)
}
