package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/derslik/derslik-api/internal/models"
	appErrors "github.com/derslik/derslik-api/pkg/errors"
)

type authRepoStub struct {
	user   *models.User
	tokens map[string]*models.RefreshToken
}

func newAuthRepoStub(user *models.User) *authRepoStub {
	return &authRepoStub{user: user, tokens: map[string]*models.RefreshToken{}}
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	copy := *s.user
	return &copy, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	copy := *s.user
	return &copy, nil
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	s.user.LastLogin = &ts
	return nil
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.user.PasswordHash = passwordHash
	s.user.UpdatedAt = updatedAt
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	for _, token := range s.tokens {
		if token.UserID == userID && !token.Revoked {
			token.Revoked = true
			token.RevokedAt = &now
		}
	}
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	copy := *token
	s.tokens[token.Token] = &copy
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *stored
	return &copy, nil
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range s.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "derslik-test",
	}
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "teacher@derslik.app",
		PasswordHash: string(hash),
		FullName:     "Derya Oz",
		Active:       true,
	}
}

func TestAuthLoginSuccess(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@derslik.app",
		Password: "correct-password",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.NotNil(t, repo.user.LastLogin)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "teacher@derslik.app", claims.Email)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(activeUser(t)), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@derslik.app",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errorCode(t, err))
}

func TestAuthLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(activeUser(t)), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@derslik.app",
		Password: "correct-password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errorCode(t, err))
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := NewAuthService(newAuthRepoStub(user), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "teacher@derslik.app",
		Password: "correct-password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, errorCode(t, err))
}

func TestAuthSingleSessionRevokesPreviousTokens(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	cfg := testAuthConfig()
	cfg.SingleSession = true
	svc := NewAuthService(repo, nil, nil, cfg)

	first, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "correct-password"})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "correct-password"})
	require.NoError(t, err)

	assert.True(t, repo.tokens[first.RefreshToken].Revoked)
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "correct-password"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	// the old token cannot be replayed
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(t, err))
}

func TestAuthRefreshExpiredToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	cfg := testAuthConfig()
	cfg.RefreshTokenExpiry = -time.Hour
	svc := NewAuthService(repo, nil, nil, cfg)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "correct-password"})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(t, err))
}

func TestAuthLogoutRejectsForeignToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "correct-password"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, errorCode(t, err))

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "user-1"))
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)
}

func TestAuthChangePasswordRevokesSessions(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "correct-password"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "correct-password",
		NewPassword: "brand-new-password",
	})
	require.NoError(t, err)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "brand-new-password"})
	require.NoError(t, err)
}

func TestAuthValidateTokenRejectsForeignSignature(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(activeUser(t)), nil, nil, testAuthConfig())

	other := testAuthConfig()
	other.AccessTokenSecret = "different-secret"
	otherSvc := NewAuthService(newAuthRepoStub(activeUser(t)), nil, nil, other)

	login, err := otherSvc.Login(context.Background(), models.LoginRequest{Email: "teacher@derslik.app", Password: "correct-password"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(t, err))
}
