package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"farmasys/internal/config"
	"farmasys/internal/dto"
	"farmasys/internal/model"
	"farmasys/internal/repository"
)

type stubUserRepo struct {
	byUsername map[string]*model.User // key: slug + "/" + username
	byID       map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byUsername: make(map[string]*model.User),
		byID:       make(map[uuid.UUID]*model.User),
	}
}

func (r *stubUserRepo) add(slug string, u *model.User) {
	r.byUsername[slug+"/"+u.Username] = u
	r.byID[u.ID] = u
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, errors.New("nao encontrado")
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, slug, username string) (*model.User, error) {
	u, ok := r.byUsername[slug+"/"+username]
	if !ok {
		return nil, errors.New("nao encontrado")
	}
	return u, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func authTestService(t *testing.T) (AuthService, *stubUserRepo, *model.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-forte"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		Username:     "ana@farmacia.test",
		Name:         "Ana",
		PasswordHash: string(hash),
		Role:         "farmaceutico",
		Active:       true,
	}
	repo := newStubUserRepo()
	repo.add("farmacia-centro", user)

	cfg := &config.Config{JWTSecret: "unit-secret", JWTExpirationHours: 8, JWTRefreshHours: 24}
	return NewAuthService(repo, cfg), repo, user
}

func parseClaims(t *testing.T, tokenStr string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return []byte("unit-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	return token.Claims.(jwt.MapClaims)
}

func TestLoginIssuesTenantScopedToken(t *testing.T) {
	svc, _, user := authTestService(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Tenant: "farmacia-centro", Username: "ana@farmacia.test", Password: "senha-forte",
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "farmaceutico", resp.User.Role)

	claims := parseClaims(t, resp.AccessToken)
	assert.Equal(t, user.ID.String(), claims["user_id"])
	assert.Equal(t, user.TenantID.String(), claims["tenant_id"])
	assert.Equal(t, "farmaceutico", claims["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := authTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{
		Tenant: "farmacia-centro", Username: "ana@farmacia.test", Password: "errada",
	})
	assert.EqualError(t, err, "credenciais invalidas")

	_, err = svc.Login(ctx, dto.LoginRequest{
		Tenant: "farmacia-centro", Username: "ninguem@farmacia.test", Password: "senha-forte",
	})
	assert.EqualError(t, err, "credenciais invalidas")

	// Same user, wrong pharmacy
	_, err = svc.Login(ctx, dto.LoginRequest{
		Tenant: "outra-farmacia", Username: "ana@farmacia.test", Password: "senha-forte",
	})
	assert.EqualError(t, err, "credenciais invalidas")
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	svc, _, user := authTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{
		Tenant: "farmacia-centro", Username: "ana@farmacia.test", Password: "senha-forte",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	claims := parseClaims(t, refreshed.AccessToken)
	assert.Equal(t, user.ID.String(), claims["user_id"])
}

func TestRefreshRejectsGarbageAndInactive(t *testing.T) {
	svc, repo, user := authTestService(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "nao-e-um-jwt")
	assert.Error(t, err)

	login, err := svc.Login(ctx, dto.LoginRequest{
		Tenant: "farmacia-centro", Username: "ana@farmacia.test", Password: "senha-forte",
	})
	require.NoError(t, err)

	repo.byID[user.ID].Active = false
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.EqualError(t, err, "usuario nao encontrado ou inativo")
}
