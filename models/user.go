package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
	StatusBanned   Status = "banned"
)

// ParseRole is the single validation point for role strings.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ParseStatus is the single validation point for status strings.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	case StatusPending:
		return StatusPending, nil
	case StatusBanned:
		return StatusBanned, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string        `bson:"firstName" json:"firstName"`
	LastName  string        `bson:"lastName" json:"lastName"`
	Email     string        `bson:"email" json:"email"`
	Slug      string        `bson:"slug" json:"slug"`

	PasswordHash string `bson:"passwordHash" json:"-"` // never expose

	Role          Role   `bson:"role" json:"role"`
	Status        Status `bson:"status" json:"status"`
	EmailVerified bool   `bson:"emailVerified" json:"emailVerified"`

	// Bumped on logout, password change and ban; tokens minted with an
	// older version are rejected on refresh/me.
	TokenVersion int `bson:"tokenVersion" json:"-"`

	// Single-use: both fields are cleared together once a reset succeeds.
	ResetPin        *string    `bson:"resetPin,omitempty" json:"-"`
	ResetPinExpires *time.Time `bson:"resetPinExpires,omitempty" json:"-"`

	Avatar   string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Bio      string `bson:"bio,omitempty" json:"bio,omitempty"`
	Gender   string `bson:"gender,omitempty" json:"gender,omitempty"`
	AuthType string `bson:"authType,omitempty" json:"authType,omitempty"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
	Country  string `bson:"country,omitempty" json:"country,omitempty"`

	CoursesEnrolled  int `bson:"coursesEnrolled" json:"coursesEnrolled"`
	CoursesCompleted int `bson:"coursesCompleted" json:"coursesCompleted"`
	Posts            int `bson:"posts" json:"posts"`
	Comments         int `bson:"comments" json:"comments"`

	LastActivity *time.Time `bson:"lastActivity,omitempty" json:"lastActivity,omitempty"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// SessionView is the client-visible projection of a user. It is regenerated
// on every login/refresh and is never trusted by the server for
// authorization decisions.
type SessionView struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Role          Role   `json:"role"`
	Status        Status `json:"status"`
	EmailVerified bool   `json:"emailVerified"`

	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`

	CoursesEnrolled  int `json:"coursesEnrolled"`
	CoursesCompleted int `json:"coursesCompleted"`
	Posts            int `json:"posts"`
	Comments         int `json:"comments"`
}
