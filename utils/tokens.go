package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dappmentors/backend/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

const (
	TokenIssuer   = "dapp-mentors"
	TokenAudience = "dapp-mentors-users"
)

const (
	AccessTokenCookie  = "access-token"
	RefreshTokenCookie = "refresh-token"
	SessionCookie      = "user-session"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type Claims struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

// kindSecret returns the signing secret for a token kind. Access and refresh
// tokens are signed with different secrets so possession of one never allows
// forging the other.
func kindSecret(kind TokenKind) []byte {
	if kind == TokenKindRefresh {
		return []byte(os.Getenv("JWT_REFRESH_SECRET"))
	}
	return []byte(os.Getenv("JWT_ACCESS_SECRET"))
}

func kindTTL(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return RefreshTTL()
	}
	return AccessTTL()
}

func SignToken(kind TokenKind, user models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:       user.ID.Hex(),
		Email:        user.Email,
		Role:         string(user.Role),
		Status:       string(user.Status),
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(kindTTL(kind))),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(kindSecret(kind))
}

// VerifyToken checks signature, issuer, audience and expiry. Callers treat
// any returned error as "unauthenticated"; ErrTokenExpired is distinguished
// for client messaging only.
func VerifyToken(kind TokenKind, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return kindSecret(kind), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func AccessTTL() time.Duration {
	minStr := os.Getenv("ACCESS_TOKEN_TTL_MINUTES")
	min, _ := strconv.Atoi(minStr)
	if min <= 0 {
		min = 15
	}
	return time.Duration(min) * time.Minute
}

func RefreshTTL() time.Duration {
	dStr := os.Getenv("REFRESH_TOKEN_TTL_DAYS")
	days, _ := strconv.Atoi(dStr)
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func cookieSecure() bool {
	return os.Getenv("COOKIE_SECURE") == "true"
}

func setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   os.Getenv("COOKIE_DOMAIN"),
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   cookieSecure(),
		SameSite: http.SameSiteStrictMode,
	})
}

// AccessTokenFromRequest resolves the caller's access token from the
// access-token cookie, falling back to a Bearer Authorization header.
func AccessTokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// SetAuthCookies sets the access/refresh pair (httpOnly) plus the readable
// user-session cookie consumed by client-side code.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, session models.SessionView) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	setCookie(c, AccessTokenCookie, accessToken, int(AccessTTL().Seconds()), true)
	setCookie(c, RefreshTokenCookie, refreshToken, int(RefreshTTL().Seconds()), true)
	setCookie(c, SessionCookie, url.QueryEscape(string(payload)), int(RefreshTTL().Seconds()), false)
	return nil
}

// ClearAuthCookies expires every auth cookie. Safe to call when none are set.
func ClearAuthCookies(c *gin.Context) {
	setCookie(c, AccessTokenCookie, "", -1, true)
	setCookie(c, RefreshTokenCookie, "", -1, true)
	setCookie(c, SessionCookie, "", -1, false)
}
