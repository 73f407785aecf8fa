package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dappmentors/backend/database"
	"github.com/dappmentors/backend/dto"
	"github.com/dappmentors/backend/models"
	"github.com/dappmentors/backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GET /blogs
func GetBlogs(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("blogs")

		maxLimit, defaultLimit := utils.GetDefaultQueryLimits()
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), defaultLimit)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		skip := int64((page - 1) * limit)

		filter := bson.M{}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			filter["title"] = bson.M{"$regex": q, "$options": "i"}
		}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}
		published, err := utils.ParseBoolQuery(c.Query("published"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid published filter"})
			return
		}
		if published != nil {
			filter["published"] = *published
		} else {
			// Public listing only shows published posts.
			filter["published"] = true
		}

		opts := options.Find().
			SetSkip(skip).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.Blog, 0)
		for cursor.Next(ctx) {
			var blog models.Blog
			if err := cursor.Decode(&blog); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			items = append(items, blog)
		}
		if err := cursor.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		total, err := col.CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /blogs/slug/:slug
func GetBlog(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("blogs")

		slug := strings.TrimSpace(c.Param("slug"))
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no slug provided"})
			return
		}

		var blog models.Blog
		if err := col.FindOne(ctx, bson.M{"slug": slug}).Decode(&blog); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
			return
		}

		c.JSON(http.StatusOK, blog)
	}
}

// POST /admin/blogs
func AddBlog(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("blogs")

		var body dto.CreateBlogDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		authorID, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		var author models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": authorID}).Decode(&author); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}

		now := time.Now().UTC()
		doc := models.Blog{
			Title:       strings.TrimSpace(body.Title),
			Slug:        utils.GenerateSlug(body.Title),
			Description: body.Description,
			Content:     body.Content,
			Image:       body.Image,
			Category:    body.Category,
			Tags:        body.Tags,
			AuthorID:    authorID,
			AuthorName:  strings.TrimSpace(author.FirstName + " " + author.LastName),
			Published:   body.Published,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := col.InsertOne(ctx, doc)
		if err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "slug already exists", "field": "slug"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": res.InsertedID, "slug": doc.Slug})
	}
}

// PATCH /admin/blogs/:id
func UpdateBlog(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("blogs")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blog id"})
			return
		}

		var body dto.UpdateBlogDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		set := bson.M{}
		if body.Title != nil {
			v := strings.TrimSpace(*body.Title)
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
				return
			}
			set["title"] = v
			set["slug"] = utils.GenerateSlug(v)
		}
		if body.Description != nil {
			set["description"] = *body.Description
		}
		if body.Content != nil {
			v := *body.Content
			if v == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "content cannot be empty"})
				return
			}
			set["content"] = v
		}
		if body.Image != nil {
			set["image"] = *body.Image
		}
		if body.Category != nil {
			set["category"] = *body.Category
		}
		if body.Tags != nil {
			set["tags"] = *body.Tags
		}
		if body.Published != nil {
			set["published"] = *body.Published
		}

		if len(set) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no updates provided"})
			return
		}
		set["updatedAt"] = time.Now().UTC()

		res, err := col.UpdateByID(ctx, id, bson.M{"$set": set})
		if err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "slug already exists", "field": "slug"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DELETE /admin/blogs/:id
func DeleteBlog(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("blogs")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blog id"})
			return
		}

		res, err := col.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "blog not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
