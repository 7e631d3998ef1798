package users

import (
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the user shape exposed by the service layer.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Phone       *string        `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	Profile     *ProfileDTO    `json:"profile,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ProfileDTO carries aquarium preferences.
type ProfileDTO struct {
	ExperienceLevel      enums.ExperienceLevel `json:"experience_level"`
	PreferredTankSize    *int                  `json:"preferred_tank_size,omitempty"`
	NewsletterSubscribed bool                  `json:"newsletter_subscribed"`
	MarketingEmails      bool                  `json:"marketing_emails"`
}

// UserPage is a cursor-paginated user listing.
type UserPage struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted user into its API representation.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	dto := toDTO(user)
	return &dto
}

func toDTO(user *models.User) UserDTO {
	dto := UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		Role:        user.Role,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
	if user.Profile != nil {
		dto.Profile = &ProfileDTO{
			ExperienceLevel:      user.Profile.ExperienceLevel,
			PreferredTankSize:    user.Profile.PreferredTankSize,
			NewsletterSubscribed: user.Profile.NewsletterSubscribed,
			MarketingEmails:      user.Profile.MarketingEmails,
		}
	}
	return dto
}
