package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finley-aquatics/fishworks-backend/pkg/config"
	"github.com/finley-aquatics/fishworks-backend/pkg/db"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
	"github.com/finley-aquatics/fishworks-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes user account and profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)

	AdminList(ctx context.Context, input AdminListInput) (*UserPage, error)
	AdminCreate(ctx context.Context, input RegisterInput) (*UserDTO, error)
	AdminGet(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	AdminUpdate(ctx context.Context, userID uuid.UUID, input AdminUpdateInput) (*UserDTO, error)
	AdminDelete(ctx context.Context, actorID, userID uuid.UUID) error
}

// RegisterInput captures a new account request.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// UpdateProfileInput updates the caller's own account and preferences.
type UpdateProfileInput struct {
	FirstName            *string
	LastName             *string
	Phone                *string
	ExperienceLevel      *enums.ExperienceLevel
	PreferredTankSize    *int
	NewsletterSubscribed *bool
	MarketingEmails      *bool
}

// AdminListInput narrows the admin user listing.
type AdminListInput struct {
	Search string
	Role   string
	pagination.Params
}

// AdminUpdateInput mutates account fields an admin may touch. Role changes
// are rejected here; they go through operational tooling instead.
type AdminUpdateInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	IsActive  *bool
	Role      *enums.UserRole
}

type service struct {
	repo        Repository
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// NewService builds the users service.
func NewService(repo Repository, tx txRunner, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, passwordCfg: passwordCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = email
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup email")
		}

		user := &models.User{
			Email:        email,
			Username:     username,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(input.FirstName),
			LastName:     strings.TrimSpace(input.LastName),
			Phone:        input.Phone,
			Role:         enums.UserRoleUser,
			IsActive:     true,
		}
		if _, err := repo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		profile := &models.UserProfile{
			UserID:          user.ID,
			ExperienceLevel: enums.ExperienceLevelBeginner,
		}
		if err := repo.UpsertProfile(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
		}
		user.Profile = profile
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(created)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	dto := toDTO(user)
	return &dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ExperienceLevel != nil && !input.ExperienceLevel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid experience level")
	}

	var updated *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}

		if input.FirstName != nil {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Phone != nil {
			user.Phone = input.Phone
		}
		if err := repo.Update(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}

		profile := user.Profile
		if profile == nil {
			profile = &models.UserProfile{
				UserID:          user.ID,
				ExperienceLevel: enums.ExperienceLevelBeginner,
			}
		}
		if input.ExperienceLevel != nil {
			profile.ExperienceLevel = *input.ExperienceLevel
		}
		if input.PreferredTankSize != nil {
			profile.PreferredTankSize = input.PreferredTankSize
		}
		if input.NewsletterSubscribed != nil {
			profile.NewsletterSubscribed = *input.NewsletterSubscribed
		}
		if input.MarketingEmails != nil {
			profile.MarketingEmails = *input.MarketingEmails
		}
		if err := repo.UpsertProfile(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
		user.Profile = profile
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(updated)
	return &dto, nil
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*UserPage, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Limit)

	users, err := s.repo.List(ctx, ListFilter{
		Search: strings.TrimSpace(input.Search),
		Role:   input.Role,
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	page := &UserPage{Users: make([]UserDTO, 0, len(users))}
	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}
	for i := range users {
		page.Users = append(page.Users, toDTO(&users[i]))
	}
	if hasMore {
		last := users[len(users)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// AdminCreate provisions an account on someone's behalf. The role is always
// user; admins are promoted through operational tooling, never the API.
func (s *service) AdminCreate(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	return s.Register(ctx, input)
}

func (s *service) AdminGet(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	return s.Get(ctx, userID)
}

func (s *service) AdminUpdate(ctx context.Context, userID uuid.UUID, input AdminUpdateInput) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if input.Role != nil && *input.Role != user.Role {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role changes are not supported through this endpoint")
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	dto := toDTO(user)
	return &dto, nil
}

func (s *service) AdminDelete(ctx context.Context, actorID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if actorID == userID {
		return pkgerrors.New(pkgerrors.CodeValidation, "you cannot delete your own account")
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}
