package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinedu/clined-api/internal/models"
	appErrors "github.com/clinedu/clined-api/pkg/errors"
)

type userRepoStub struct {
	user      *models.User
	err       error
	lastLogin *time.Time
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	s.lastLogin = &at
	return nil
}

func newAuthFixture(t *testing.T, password string) (*AuthService, *userRepoStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{user: &models.User{
		ID:           "user-1",
		Email:        "admin@clined.test",
		PasswordHash: string(hash),
		FullName:     "Site Admin",
		Role:         models.RoleSchoolAdmin,
		Active:       true,
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "clined-test",
	})
	return svc, repo
}

func TestAuthLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@clined.test", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "user-1", res.User.ID)
	assert.NotNil(t, repo.lastLogin)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleSchoolAdmin, claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, "correct horse")

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@clined.test", Password: "battery staple"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")
	repo.err = sql.ErrNoRows

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@clined.test", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t, "correct horse")
	repo.user.Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@clined.test", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t, "correct horse")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
