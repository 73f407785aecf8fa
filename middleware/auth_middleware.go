package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dappmentors/backend/models"
	"github.com/dappmentors/backend/utils"
	"github.com/gin-gonic/gin"
)

// Context keys populated by RequireAuth.
const (
	CtxUserID       = "userID"
	CtxEmail        = "email"
	CtxRole         = "role"
	CtxStatus       = "status"
	CtxTokenVersion = "tokenVersion"
)

// RequireAuth verifies the caller's access token and stores its claims on
// the request context. It performs no database lookups; handlers that need
// the current user record fetch it themselves.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.AccessTokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := utils.VerifyToken(utils.TokenKindAccess, token)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxStatus, claims.Status)
		c.Set(CtxTokenVersion, claims.TokenVersion)
		c.Next()
	}
}

type Decision int

const (
	DecisionAllow Decision = iota
	DecisionRedirect
	DecisionDeny
)

type GuardResult struct {
	Decision   Decision
	RedirectTo string
}

// Policy describes what a protected route requires of the caller.
type Policy struct {
	RequiredRoles   []models.Role
	AllowedStatuses []models.Status
}

// Redirect targets for browser navigations that fail authorization.
const (
	LoginPath            = "/auth/login"
	VerifyEmailPath      = "/auth/verify-email"
	AccountInactivePath  = "/account-inactive"
	AccountSuspendedPath = "/account-suspended"
	DashboardPath        = "/dashboard"
)

// Authorize evaluates token claims against a policy. It is evaluated on
// every protected navigation and never cached across requests.
func Authorize(claims *utils.Claims, policy Policy, returnTo string) GuardResult {
	if claims == nil {
		target := LoginPath
		if returnTo != "" {
			target += "?returnTo=" + url.QueryEscape(returnTo)
		}
		return GuardResult{Decision: DecisionRedirect, RedirectTo: target}
	}

	status, err := models.ParseStatus(claims.Status)
	if err != nil {
		return GuardResult{Decision: DecisionDeny}
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return GuardResult{Decision: DecisionDeny}
	}

	if len(policy.AllowedStatuses) > 0 && !containsStatus(policy.AllowedStatuses, status) {
		switch status {
		case models.StatusPending:
			return GuardResult{Decision: DecisionRedirect, RedirectTo: VerifyEmailPath}
		case models.StatusInactive:
			return GuardResult{Decision: DecisionRedirect, RedirectTo: AccountInactivePath}
		default:
			return GuardResult{Decision: DecisionRedirect, RedirectTo: AccountSuspendedPath}
		}
	}

	if len(policy.RequiredRoles) > 0 && !containsRole(policy.RequiredRoles, role) {
		return GuardResult{Decision: DecisionRedirect, RedirectTo: DashboardPath}
	}

	return GuardResult{Decision: DecisionAllow}
}

func containsRole(roles []models.Role, r models.Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.Status, s models.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Guard enforces a policy on top of RequireAuth-style token resolution.
// Browser navigations get a redirect; API callers (Accept: application/json)
// get 401/403 JSON with the redirect target as a hint.
func Guard(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var claims *utils.Claims
		if token := utils.AccessTokenFromRequest(c); token != "" {
			claims, _ = utils.VerifyToken(utils.TokenKindAccess, token)
		}

		result := Authorize(claims, policy, c.Request.URL.RequestURI())
		switch result.Decision {
		case DecisionAllow:
			if claims != nil {
				c.Set(CtxUserID, claims.UserID)
				c.Set(CtxEmail, claims.Email)
				c.Set(CtxRole, claims.Role)
				c.Set(CtxStatus, claims.Status)
				c.Set(CtxTokenVersion, claims.TokenVersion)
			}
			c.Next()
		case DecisionRedirect:
			if wantsJSON(c) {
				status := http.StatusForbidden
				if claims == nil {
					status = http.StatusUnauthorized
				}
				c.AbortWithStatusJSON(status, gin.H{"error": "not allowed", "redirect": result.RedirectTo})
				return
			}
			c.Redirect(http.StatusFound, result.RedirectTo)
			c.Abort()
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		}
	}
}

func wantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") || accept == "" || accept == "*/*"
}
