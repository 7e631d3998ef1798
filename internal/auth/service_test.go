package auth

import (
	"context"
	"testing"
	"time"

	"github.com/finley-aquatics/fishworks-backend/internal/users"
	pkgAuth "github.com/finley-aquatics/fishworks-backend/pkg/auth"
	"github.com/finley-aquatics/fishworks-backend/pkg/config"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user      *models.User
	touchedAt *time.Time
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.touchedAt = &at
	return nil
}

type stubRegistrar struct {
	created *users.UserDTO
	err     error
}

func (s *stubRegistrar) Register(ctx context.Context, input users.RegisterInput) (*users.UserDTO, error) {
	return s.created, s.err
}

type stubSessionManager struct {
	refreshToken string
	lastAccessID string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.lastAccessID = accessID
	return s.refreshToken, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "fishworks",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubUserRepo, *stubSessionManager) {
	t.Helper()
	repo := &stubUserRepo{user: user}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Registrar:      &stubRegistrar{},
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessionMgr
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestServiceLoginIssuesTokenPair(t *testing.T) {
	password := "tank-keeper-1"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "keeper@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}

	svc, repo, sessionMgr := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Keeper@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleUser {
		t.Fatalf("expected user role claim, got %s", claims.Role)
	}
	if claims.ID != sessionMgr.lastAccessID {
		t.Fatalf("jti %s does not match stored session %s", claims.ID, sessionMgr.lastAccessID)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}
	if repo.touchedAt == nil {
		t.Fatal("last login not recorded")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatal("login response missing user")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "keeper@example.com",
		PasswordHash: mustHashPassword(t, "correct-password"),
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}

	svc, _, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "tank-keeper-1"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "keeper@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.UserRoleUser,
		IsActive:     false,
	}

	svc, _, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc, _, _ := buildTestService(t, nil)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceRegisterReturnsTokens(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Email:    "newkeeper@example.com",
		Role:     enums.UserRoleUser,
		IsActive: true,
	}
	repo := &stubUserRepo{user: user}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Registrar:      &stubRegistrar{created: &users.UserDTO{ID: user.ID, Email: user.Email, Role: enums.UserRoleUser}},
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    user.Email,
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair after signup")
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatal("register response missing user")
	}
}
