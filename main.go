package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dappmentors/backend/controllers"
	"github.com/dappmentors/backend/database"
	"github.com/dappmentors/backend/middleware"
	"github.com/dappmentors/backend/models"
	"github.com/dappmentors/backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongo disconnect:", err)
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}
	//seeding admin user
	if err := utils.SeedAdminUser(ctx, db.Collection("users")); err != nil {
		log.Fatal(err)
	}

	r := gin.New()
	v := utils.NewImageValidator()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit(rate.Limit(5), 10))
	{
		auth.POST("/signup", controllers.Signup(db))
		auth.POST("/login", controllers.Login(db))
		auth.GET("/me", controllers.Me(db))
		auth.POST("/refresh", controllers.Refresh(db))
		auth.POST("/logout", controllers.Logout(db))
		auth.POST("/reset-password", controllers.ResetPassword(db))
		auth.POST("/recover-password", controllers.RecoverPassword(db))
		auth.POST("/verify-email", middleware.RequireAuth(), controllers.VerifyEmail(db))
	}

	r.GET("/blogs", controllers.GetBlogs(db))
	r.GET("/blogs/slug/:slug", controllers.GetBlog(db))
	r.POST("/contacts", controllers.CreateContact(db))
	r.POST("/donations", controllers.CreateDonation(db))

	dashboard := r.Group("/dashboard")
	dashboard.Use(middleware.Guard(middleware.Policy{
		RequiredRoles:   []models.Role{models.RoleUser, models.RoleInstructor, models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}))
	{
		dashboard.POST("/password", controllers.ChangeMyPassword(db))
		dashboard.POST("/avatar", controllers.UpdateAvatar(db, v))
	}

	instructor := r.Group("/admin/blogs")
	instructor.Use(middleware.Guard(middleware.Policy{
		RequiredRoles:   []models.Role{models.RoleInstructor, models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}))
	{
		instructor.POST("", controllers.AddBlog(db))
		instructor.PATCH("/:id", controllers.UpdateBlog(db))
		instructor.DELETE("/:id", controllers.DeleteBlog(db))
	}

	admin := r.Group("/admin")
	admin.Use(middleware.Guard(middleware.Policy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		AllowedStatuses: []models.Status{models.StatusActive},
	}))
	{
		admin.GET("/users", controllers.ListUsers(db))
		admin.PATCH("/users/:id/status", controllers.UpdateUserStatus(db))
		admin.GET("/contacts", controllers.GetContacts(db))
		admin.GET("/donations", controllers.GetDonations(db))
	}

	// Start server on port 8080 (default)
	r.Run()
}
