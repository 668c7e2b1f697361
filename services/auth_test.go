package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/services/repositories"
	"github.com/jigworks/jig_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		jwtSvc:   &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "test-secret"},
		userRepo: repositories.NewUserRepository(db),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	reg, err := svc.Register(dto.RegisterRequest{
		Email:    "author@example.com",
		Username: "author1",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.UserID)
	assert.Equal(t, "author1", reg.Username)

	res, err := svc.Login(dto.LoginRequest{
		EmailOrUsername: "author@example.com",
		Password:        "Str0ng!pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, reg.UserID, res.UserID)

	// The access token resolves back to the user.
	userID, err := svc.jwtSvc.VerifyJWTToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, userID)

	// Username works as the login identifier too.
	_, err = svc.Login(dto.LoginRequest{
		EmailOrUsername: "author1",
		Password:        "Str0ng!pass",
	})
	require.NoError(t, err)
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	req := dto.RegisterRequest{
		Email:    "author@example.com",
		Username: "author1",
		Password: "Str0ng!pass",
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newTestAuthService(db)

	_, err := svc.Register(dto.RegisterRequest{
		Email:    "author@example.com",
		Username: "author1",
		Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	for _, req := range []dto.LoginRequest{
		{EmailOrUsername: "author@example.com", Password: "wrong"},
		{EmailOrUsername: "nobody@example.com", Password: "Str0ng!pass"},
	} {
		_, err := svc.Login(req)
		require.Error(t, err)

		appErr, ok := shared.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	}
}
