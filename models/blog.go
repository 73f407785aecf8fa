package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Blog struct {
	ID bson.ObjectID `bson:"_id,omitempty" json:"id"`

	Title       string `bson:"title" json:"title"`
	Slug        string `bson:"slug" json:"slug"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Content     string `bson:"content" json:"content"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`

	Category string   `bson:"category,omitempty" json:"category,omitempty"`
	Tags     []string `bson:"tags,omitempty" json:"tags,omitempty"`

	AuthorID   bson.ObjectID `bson:"authorId" json:"authorId"`
	AuthorName string        `bson:"authorName" json:"authorName"`

	Published bool `bson:"published" json:"published"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
