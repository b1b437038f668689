package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type accountStore struct {
	repository.UserRepository
	byID    map[uuid.UUID]*entity.User
	deleted []uuid.UUID
}

func (s *accountStore) Create(_ context.Context, user *entity.User) error {
	s.byID[user.ID] = user
	return nil
}

func (s *accountStore) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s.byID[id], nil
}

func (s *accountStore) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *accountStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *accountStore) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type tokenStore struct {
	repository.AuthTokenRepository
	issued  []*entity.AuthToken
	revoked []string
}

func (s *tokenStore) Create(_ context.Context, token *entity.AuthToken) error {
	s.issued = append(s.issued, token)
	return nil
}

func (s *tokenStore) Revoke(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *tokenStore) RevokeAllForUser(context.Context, uuid.UUID) error { return nil }

func newAuthFixture() (*repository.Repository, *utils.Config) {
	repo := &repository.Repository{
		User:      &accountStore{byID: map[uuid.UUID]*entity.User{}},
		AuthToken: &tokenStore{},
	}
	config := &utils.Config{Auth: utils.AuthConfig{TokenExpiryHours: 1, BcryptCost: 4}}
	return repo, config
}

func TestAuthService_RegisterLoginLogout(t *testing.T) {
	repo, config := newAuthFixture()
	svc := NewAuthService(repo, config, zap.NewNop())
	ctx := context.Background()
	client := ClientInfo{UserAgent: "go-test", IPAddress: "127.0.0.1"}

	reg, err := svc.Register(ctx, &request.RegisterRequest{
		Username: "viewer3", Email: "Viewer3@Cinema.com", Password: "viewer123",
	}, client)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Role != entity.RoleViewer {
		t.Errorf("role = %q, want viewer", reg.Role)
	}

	if _, err := svc.Register(ctx, &request.RegisterRequest{
		Username: "viewer3", Email: "other@cinema.com", Password: "viewer123",
	}, client); err == nil || !strings.Contains(err.Error(), "already taken") {
		t.Errorf("duplicate username: got %v", err)
	}

	login, err := svc.Login(ctx, &request.LoginRequest{Username: "viewer3@cinema.com", Password: "viewer123"}, client)
	if err != nil {
		t.Fatalf("Login by email: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned no token")
	}

	if _, err := svc.Login(ctx, &request.LoginRequest{Username: "viewer3", Password: "wrong-pass"}, client); err == nil ||
		!strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("wrong password: got %v", err)
	}

	if err := svc.Logout(ctx, login.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	tokens := repo.AuthToken.(*tokenStore)
	if len(tokens.revoked) != 1 || tokens.revoked[0] != login.Token {
		t.Errorf("revoked = %v", tokens.revoked)
	}

	now := time.Now()
	repo.User.(*accountStore).byID[uuid.MustParse(reg.UserID)].DeletedAt = &now
	if _, err := svc.Login(ctx, &request.LoginRequest{Username: "viewer3", Password: "viewer123"}, client); err == nil ||
		!strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("soft-deleted login: got %v", err)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	repo, config := newAuthFixture()
	svc := NewUserService(repo, config, zap.NewNop())
	ctx := context.Background()
	admin := uuid.New()

	if err := svc.DeleteUser(ctx, admin, admin.String()); err == nil {
		t.Error("admin deleted their own account")
	}
	if err := svc.DeleteUser(ctx, admin, "42"); err == nil || !strings.Contains(err.Error(), "invalid") {
		t.Errorf("bad id: got %v", err)
	}

	target := uuid.New()
	if err := svc.DeleteUser(ctx, admin, target.String()); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted := repo.User.(*accountStore).deleted; len(deleted) != 1 || deleted[0] != target {
		t.Errorf("deleted = %v", deleted)
	}
}
