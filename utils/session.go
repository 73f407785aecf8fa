package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dappmentors/backend/models"
)

// ResetPinTTL is how long a password reset PIN stays valid.
const ResetPinTTL = 5 * time.Minute

// MaterializeSession projects a user record into its public session view.
// Pending accounts are presented as active for display purposes only;
// authorization always uses the stored status.
func MaterializeSession(user models.User) models.SessionView {
	status := user.Status
	if status == models.StatusPending {
		status = models.StatusActive
	}

	return models.SessionView{
		ID:               user.ID.Hex(),
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Name:             strings.TrimSpace(user.FirstName + " " + user.LastName),
		Slug:             user.Slug,
		Role:             user.Role,
		Status:           status,
		EmailVerified:    user.EmailVerified,
		Avatar:           user.Avatar,
		Bio:              user.Bio,
		CoursesEnrolled:  user.CoursesEnrolled,
		CoursesCompleted: user.CoursesCompleted,
		Posts:            user.Posts,
		Comments:         user.Comments,
	}
}

// GenerateResetPin returns a 6-digit numeric PIN.
func GenerateResetPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
