package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dappmentors/backend/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func testUser() models.User {
	return models.User{
		ID:            bson.NewObjectID(),
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Slug:          "ada-lovelace",
		Role:          models.RoleUser,
		Status:        models.StatusActive,
		EmailVerified: true,
		TokenVersion:  3,
	}
}

func setTokenSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "test-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")
}

func TestSignVerifyRoundTrip(t *testing.T) {
	setTokenSecrets(t)
	user := testUser()

	for _, kind := range []TokenKind{TokenKindAccess, TokenKindRefresh} {
		token, err := SignToken(kind, user)
		require.NoError(t, err)

		claims, err := VerifyToken(kind, token)
		require.NoError(t, err)

		assert.Equal(t, user.ID.Hex(), claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, string(user.Role), claims.Role)
		assert.Equal(t, string(user.Status), claims.Status)
		assert.Equal(t, user.TokenVersion, claims.TokenVersion)
		assert.Equal(t, TokenIssuer, claims.Issuer)
		assert.Contains(t, claims.Audience, TokenAudience)
		require.NotNil(t, claims.ExpiresAt)
	}
}

func TestVerifyRejectsCrossKind(t *testing.T) {
	setTokenSecrets(t)
	user := testUser()

	accessToken, err := SignToken(TokenKindAccess, user)
	require.NoError(t, err)
	refreshToken, err := SignToken(TokenKindRefresh, user)
	require.NoError(t, err)

	_, err = VerifyToken(TokenKindRefresh, accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = VerifyToken(TokenKindAccess, refreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpired(t *testing.T) {
	setTokenSecrets(t)

	now := time.Now().UTC()
	claims := Claims{
		UserID: "abc",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Second)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-access-secret"))
	require.NoError(t, err)

	_, err = VerifyToken(TokenKindAccess, signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAcceptsNotYetExpired(t *testing.T) {
	setTokenSecrets(t)

	now := time.Now().UTC()
	claims := Claims{
		UserID: "abc",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Second)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-access-secret"))
	require.NoError(t, err)

	got, err := VerifyToken(TokenKindAccess, signed)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.UserID)
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	setTokenSecrets(t)
	now := time.Now().UTC()

	cases := []struct {
		name     string
		issuer   string
		audience string
	}{
		{"wrong issuer", "somebody-else", TokenAudience},
		{"wrong audience", TokenIssuer, "other-users"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := Claims{
				UserID: "abc",
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    tc.issuer,
					Audience:  jwt.ClaimStrings{tc.audience},
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				},
			}
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			signed, err := token.SignedString([]byte("test-access-secret"))
			require.NoError(t, err)

			_, err = VerifyToken(TokenKindAccess, signed)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestVerifyRejectsTampered(t *testing.T) {
	setTokenSecrets(t)

	token, err := SignToken(TokenKindAccess, testUser())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = VerifyToken(TokenKindAccess, tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRotationProducesDistinctTokens(t *testing.T) {
	setTokenSecrets(t)
	user := testUser()

	first, err := SignToken(TokenKindAccess, user)
	require.NoError(t, err)
	second, err := SignToken(TokenKindAccess, user)
	require.NoError(t, err)

	// jti differs even when signed within the same second
	assert.NotEqual(t, first, second)
}

func TestDefaultTTLs(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "")

	assert.Equal(t, 15*time.Minute, AccessTTL())
	assert.Equal(t, 7*24*time.Hour, RefreshTTL())
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSetAuthCookies(t *testing.T) {
	setTokenSecrets(t)
	c, w := newTestContext(t)

	session := MaterializeSession(testUser())
	require.NoError(t, SetAuthCookies(c, "access-value", "refresh-value", session))

	cookies := w.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}

	access := byName[AccessTokenCookie]
	require.NotNil(t, access)
	assert.Equal(t, "access-value", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int(AccessTTL().Seconds()), access.MaxAge)

	refresh := byName[RefreshTokenCookie]
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, int(RefreshTTL().Seconds()), refresh.MaxAge)

	// readable by client-side code
	sess := byName[SessionCookie]
	require.NotNil(t, sess)
	assert.False(t, sess.HttpOnly)
	assert.NotEmpty(t, sess.Value)
}

func TestClearAuthCookiesExpiresAll(t *testing.T) {
	c, w := newTestContext(t)

	ClearAuthCookies(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, ck := range cookies {
		assert.Empty(t, ck.Value)
		assert.Less(t, ck.MaxAge, 0)
	}
}

func TestAccessTokenFromRequest(t *testing.T) {
	c, _ := newTestContext(t)
	assert.Empty(t, AccessTokenFromRequest(c))

	c.Request.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", AccessTokenFromRequest(c))

	c.Request.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", AccessTokenFromRequest(c))
}
