package users

import (
	"context"
	"testing"
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/config"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUsersRepo struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
	deleted []uuid.UUID
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		byID:    map[uuid.UUID]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) Update(ctx context.Context, user *models.User) error {
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *stubUsersRepo) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	if user, ok := s.byID[profile.UserID]; ok {
		user.Profile = profile
	}
	return nil
}

func (s *stubUsersRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := s.byID[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubUsersRepo) List(ctx context.Context, filter ListFilter) ([]models.User, error) {
	out := make([]models.User, 0, len(s.byID))
	for _, user := range s.byID {
		out = append(out, *user)
	}
	return out, nil
}

func TestRegisterCreatesUserWithProfile(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc, err := NewService(repo, stubTxRunner{}, testPasswordConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	dto, err := svc.Register(context.Background(), RegisterInput{
		Email:     "Keeper@Example.com",
		Password:  "supersecret",
		FirstName: "Avery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if dto.Email != "keeper@example.com" {
		t.Fatalf("email not normalized: %q", dto.Email)
	}
	if dto.Role != enums.UserRoleUser {
		t.Fatalf("expected user role, got %s", dto.Role)
	}
	if dto.Profile == nil || dto.Profile.ExperienceLevel != enums.ExperienceLevelBeginner {
		t.Fatal("default profile missing")
	}

	stored := repo.byEmail["keeper@example.com"]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "supersecret" {
		t.Fatal("password not hashed")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc, _ := NewService(repo, stubTxRunner{}, testPasswordConfig())

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "keeper@example.com",
		Password: "supersecret",
	}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "keeper@example.com",
		Password: "differentpass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc, _ := NewService(repo, stubTxRunner{}, testPasswordConfig())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "keeper@example.com",
		Password: "short",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminCreateForcesUserRole(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc, _ := NewService(repo, stubTxRunner{}, testPasswordConfig())

	dto, err := svc.AdminCreate(context.Background(), RegisterInput{
		Email:    "staffpick@example.com",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if dto.Role != enums.UserRoleUser {
		t.Fatalf("expected user role, got %s", dto.Role)
	}
}

func TestAdminUpdateRejectsRoleChange(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc, _ := NewService(repo, stubTxRunner{}, testPasswordConfig())

	user := &models.User{ID: uuid.New(), Email: "a@b.com", Role: enums.UserRoleUser}
	repo.byID[user.ID] = user

	admin := enums.UserRoleAdmin
	_, err := svc.AdminUpdate(context.Background(), user.ID, AdminUpdateInput{Role: &admin})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Passing the unchanged role is fine.
	same := enums.UserRoleUser
	if _, err := svc.AdminUpdate(context.Background(), user.ID, AdminUpdateInput{Role: &same}); err != nil {
		t.Fatalf("unchanged role should be accepted: %v", err)
	}
}

func TestAdminDeleteRejectsSelf(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc, _ := NewService(repo, stubTxRunner{}, testPasswordConfig())

	adminID := uuid.New()
	repo.byID[adminID] = &models.User{ID: adminID, Role: enums.UserRoleAdmin}

	err := svc.AdminDelete(context.Background(), adminID, adminID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	target := uuid.New()
	repo.byID[target] = &models.User{ID: target}
	if err := svc.AdminDelete(context.Background(), adminID, target); err != nil {
		t.Fatalf("delete other user: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != target {
		t.Fatal("target not deleted")
	}
}

func TestUpdateProfilePatchesFields(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc, _ := NewService(repo, stubTxRunner{}, testPasswordConfig())

	userID := uuid.New()
	repo.byID[userID] = &models.User{
		ID:    userID,
		Email: "keeper@example.com",
		Profile: &models.UserProfile{
			UserID:          userID,
			ExperienceLevel: enums.ExperienceLevelBeginner,
		},
	}

	level := enums.ExperienceLevelAdvanced
	tank := 55
	subscribed := true
	dto, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileInput{
		ExperienceLevel:      &level,
		PreferredTankSize:    &tank,
		NewsletterSubscribed: &subscribed,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if dto.Profile.ExperienceLevel != enums.ExperienceLevelAdvanced {
		t.Fatalf("experience level not updated: %s", dto.Profile.ExperienceLevel)
	}
	if dto.Profile.PreferredTankSize == nil || *dto.Profile.PreferredTankSize != 55 {
		t.Fatal("tank size not updated")
	}
	if !dto.Profile.NewsletterSubscribed {
		t.Fatal("newsletter flag not updated")
	}
}
