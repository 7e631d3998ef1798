package models

import (
	"github.com/google/uuid"

	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
)

// UserProfile carries aquarium-keeping preferences attached one-to-one to a user.
type UserProfile struct {
	UserID               uuid.UUID             `gorm:"column:user_id;type:uuid;primaryKey"`
	ExperienceLevel      enums.ExperienceLevel `gorm:"column:experience_level;type:text;not null;default:'beginner'"`
	PreferredTankSize    *int                  `gorm:"column:preferred_tank_size"`
	NewsletterSubscribed bool                  `gorm:"column:newsletter_subscribed;not null;default:false"`
	MarketingEmails      bool                  `gorm:"column:marketing_emails;not null;default:false"`
}
