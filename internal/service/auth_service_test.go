package service

import (
	"context"
	"testing"
	"time"

	"collab-notepad-be/internal/config"
	"collab-notepad-be/internal/dto"
	"collab-notepad-be/internal/pkg/apperrors"
	"collab-notepad-be/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJwtSecret = "unit-test-secret"

func newAuthServiceForTest() (IAuthService, *fakeUnitOfWork) {
	uow := newFakeUnitOfWork()
	tokenRepo := memory.NewRefreshTokenRepository(time.Hour)
	svc := NewAuthService(&fakeFactory{uow: uow}, tokenRepo, config.JWTConfig{
		Secret:            testJwtSecret,
		AccessTTLMinutes:  15,
		RefreshTTLMinutes: 60,
	})
	return svc, uow
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)

	token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJwtSecret), nil
	})
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, reg.Id.String(), claims["user_id"])
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice2@example.com",
		Password: "battery staple",
	})

	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token is single-use.
	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	svc, _ := newAuthServiceForTest()
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
