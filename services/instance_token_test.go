package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceTokenRoundtrip(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.Mint(dto.InstanceClaims{
		InstanceID: "inst-1",
		Code:       12345,
		JigID:      "jig-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "inst-1", claims.InstanceID)
	assert.Equal(t, 12345, claims.Code)
	assert.Equal(t, "jig-1", claims.JigID)
}

func TestInstanceTokenExpired(t *testing.T) {
	svc := &InstanceTokenService{ttl: -time.Minute, secretKey: "test-secret"}

	token, err := svc.Mint(dto.InstanceClaims{InstanceID: "inst-1", Code: 1, JigID: "jig-1"})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, "Instance token expired", appErr.Message)
}

func TestInstanceTokenWrongSecret(t *testing.T) {
	minter := &InstanceTokenService{ttl: time.Hour, secretKey: "secret-a"}
	verifier := &InstanceTokenService{ttl: time.Hour, secretKey: "secret-b"}

	token, err := minter.Mint(dto.InstanceClaims{InstanceID: "inst-1", Code: 1, JigID: "jig-1"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestInstanceTokenGarbage(t *testing.T) {
	svc := newTestTokenService()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(token)
		require.Error(t, err, "token %q should not verify", token)

		appErr, ok := shared.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	}
}
