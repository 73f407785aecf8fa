package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dappmentors/backend/database"
	"github.com/dappmentors/backend/dto"
	"github.com/dappmentors/backend/models"
	"github.com/dappmentors/backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// POST /auth/signup
func Signup(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.SignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		usersCol := db.Collection("users")

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		slug := utils.GenerateSlug(body.FirstName + " " + body.LastName)
		taken, err := usersCol.CountDocuments(ctx, bson.M{"slug": slug})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if taken > 0 {
			slug = slug + "-" + bson.NewObjectID().Hex()[18:]
		}

		now := time.Now().UTC()
		user := models.User{
			ID:            bson.NewObjectID(),
			FirstName:     strings.TrimSpace(body.FirstName),
			LastName:      strings.TrimSpace(body.LastName),
			Email:         email,
			Slug:          slug,
			PasswordHash:  hash,
			Role:          models.RoleUser,
			Status:        models.StatusPending,
			EmailVerified: false,
			TokenVersion:  0,
			Gender:        body.Gender,
			AuthType:      body.AuthType,
			City:          body.City,
			Country:       body.Country,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if _, err := usersCol.InsertOne(ctx, user); err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered", "field": "email"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "account created, please verify your email",
			"data":    utils.MaterializeSession(user),
		})
	}
}

// POST /auth/login
func Login(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		usersCol := db.Collection("users")

		// Same generic error for unknown email and wrong password so
		// callers cannot probe which accounts exist.
		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		if user.Status == models.StatusBanned {
			c.JSON(http.StatusForbidden, gin.H{"error": "account suspended"})
			return
		}

		accessToken, err := utils.SignToken(utils.TokenKindAccess, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access token"})
			return
		}
		refreshToken, err := utils.SignToken(utils.TokenKindRefresh, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate refresh token"})
			return
		}

		now := time.Now().UTC()
		_, err = usersCol.UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"lastLogin": now,
				"updatedAt": now,
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		session := utils.MaterializeSession(user)
		if err := utils.SetAuthCookies(c, accessToken, refreshToken, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set session cookies"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "login successful",
			"data":    session,
		})
	}
}

// GET /auth/me
func Me(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := utils.AccessTokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := utils.VerifyToken(utils.TokenKindAccess, token)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		if claims.TokenVersion != user.TokenVersion {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": utils.MaterializeSession(user)})
	}
}

// POST /auth/refresh
func Refresh(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := db.Collection("users")

		refreshToken, err := c.Cookie(utils.RefreshTokenCookie)
		if err != nil || refreshToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
			return
		}

		claims, err := utils.VerifyToken(utils.TokenKindRefresh, refreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		userID, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}
		if user.Status == models.StatusBanned {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account suspended"})
			return
		}
		if !user.EmailVerified {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email not verified"})
			return
		}
		if claims.TokenVersion != user.TokenVersion {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		// Rotate the pair
		newAccess, err := utils.SignToken(utils.TokenKindAccess, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access token"})
			return
		}
		newRefresh, err := utils.SignToken(utils.TokenKindRefresh, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
			return
		}

		now := time.Now().UTC()
		_, err = usersCol.UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"lastActivity": now,
				"updatedAt":    now,
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		session := utils.MaterializeSession(user)
		if err := utils.SetAuthCookies(c, newAccess, newRefresh, session); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set session cookies"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":     "session refreshed",
			"user":        session,
			"accessToken": newAccess,
		})
	}
}

// POST /auth/logout
//
// Idempotent: always succeeds, even with no cookies present. When a valid
// token identifies the caller the user's token version is bumped so tokens
// issued before logout stop working server-side.
func Logout(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var claims *utils.Claims
		if token := utils.AccessTokenFromRequest(c); token != "" {
			claims, _ = utils.VerifyToken(utils.TokenKindAccess, token)
		}
		if claims == nil {
			if token, err := c.Cookie(utils.RefreshTokenCookie); err == nil && token != "" {
				claims, _ = utils.VerifyToken(utils.TokenKindRefresh, token)
			}
		}

		utils.ClearAuthCookies(c)

		// best effort revoke
		if claims != nil {
			if userID, err := bson.ObjectIDFromHex(claims.UserID); err == nil {
				_, _ = db.Collection("users").UpdateByID(ctx, userID, bson.M{
					"$inc": bson.M{"tokenVersion": 1},
					"$set": bson.M{"updatedAt": time.Now().UTC()},
				})
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// POST /auth/reset-password
func ResetPassword(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.ResetPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		usersCol := db.Collection("users")

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		pin, err := utils.GenerateResetPin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate reset PIN"})
			return
		}

		now := time.Now().UTC()
		expires := now.Add(utils.ResetPinTTL)
		_, err = usersCol.UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"resetPin":        pin,
				"resetPinExpires": expires,
				"updatedAt":       now,
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Delivery stub: a mail collaborator would send this out-of-band.
		log.Printf("password reset PIN for %s: %s (expires %s)", email, pin, expires.Format(time.RFC3339))

		c.JSON(http.StatusOK, gin.H{"message": "a reset PIN has been sent to your email, it expires in 5 minutes"})
	}
}

// POST /auth/recover-password
func RecoverPassword(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.RecoverPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if body.NewPassword != body.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		usersCol := db.Collection("users")

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		if user.ResetPin == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no reset PIN found"})
			return
		}
		if user.ResetPinExpires == nil || user.ResetPinExpires.Before(time.Now().UTC()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reset PIN expired"})
			return
		}
		if *user.ResetPin != body.ResetPin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "incorrect reset PIN"})
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		// One atomic update: new hash set, PIN cleared, old tokens revoked.
		_, err = usersCol.UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"passwordHash": hash,
				"updatedAt":    time.Now().UTC(),
			},
			"$unset": bson.M{
				"resetPin":        "",
				"resetPinExpires": "",
			},
			"$inc": bson.M{"tokenVersion": 1},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "password updated, please log in again"})
	}
}

// POST /auth/verify-email
//
// Email delivery is stubbed, so verification is keyed off the caller's
// authenticated session rather than a mailed link. Mounted behind
// RequireAuth.
func VerifyEmail(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		usersCol := db.Collection("users")

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		set := bson.M{
			"emailVerified": true,
			"updatedAt":     time.Now().UTC(),
		}
		if user.Status == models.StatusPending {
			set["status"] = models.StatusActive
		}

		if _, err := usersCol.UpdateByID(ctx, user.ID, bson.M{"$set": set}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "email verified"})
	}
}
