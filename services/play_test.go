package services

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/model"
	"github.com/jigworks/jig_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCode(t *testing.T, svc *PlayService, jigID string, code int, expiresAt time.Time) {
	t.Helper()

	row := &model.JigCode{
		Code:      code,
		JigID:     jigID,
		OwnerID:   "owner-1",
		Settings:  []byte(`{"direction":"ltr","scoring":true}`),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	inserted, err := svc.codeRepo.InsertIfAbsent(row)
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestRedeemCreatesInstance(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	res, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345), PlayersName: "Dana"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, jig.ID, res.JigID)
	assert.JSONEq(t, `{"direction":"ltr","scoring":true}`, string(res.Settings))

	var instances []model.JigCodeInstance
	require.NoError(t, db.Find(&instances).Error)
	require.Len(t, instances, 1)
	assert.Equal(t, 12345, instances[0].Code)
	assert.Equal(t, "Dana", instances[0].PlayersName)

	claims, err := svc.tokenSvc.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, instances[0].ID, claims.InstanceID)
	assert.Equal(t, 12345, claims.Code)
	assert.Equal(t, jig.ID, claims.JigID)
}

func TestRedeemUnknownCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)

	_, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(654321)})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestRedeemMissingCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 0, time.Now().Add(time.Hour))

	// An absent code must not fall through to code zero.
	_, err := svc.Redeem(dto.RedeemCodeRequest{PlayersName: "Dana"})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)

	var n int64
	require.NoError(t, db.Model(&model.JigCodeInstance{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRedeemExpiredCode(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(-time.Minute))

	_, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345)})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusGone, appErr.StatusCode)

	var n int64
	require.NoError(t, db.Model(&model.JigCodeInstance{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRedeemYieldsDistinctInstances(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	first, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345), PlayersName: "A"})
	require.NoError(t, err)
	second, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345), PlayersName: "B"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)

	var n int64
	require.NoError(t, db.Model(&model.JigCodeInstance{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestCompleteRecordsSessionAndBumpsPlayCount(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	redeemed, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345), PlayersName: "Dana"})
	require.NoError(t, err)

	err = svc.Complete(dto.CompleteInstanceRequest{
		Token:   redeemed.Token,
		Session: validSession(),
	})
	require.NoError(t, err)

	// Instance is gone, the session exists, and the play count moved.
	var instances int64
	require.NoError(t, db.Model(&model.JigCodeInstance{}).Count(&instances).Error)
	assert.Zero(t, instances)

	var sessions []model.JigCodeSession
	require.NoError(t, db.Find(&sessions).Error)
	require.Len(t, sessions, 1)
	assert.Equal(t, 12345, sessions[0].Code)
	assert.Equal(t, "Dana", sessions[0].PlayersName)

	var payload dto.SessionPayload
	require.NoError(t, json.Unmarshal(sessions[0].Payload, &payload))
	require.Len(t, payload.Modules, 1)

	var got model.Jig
	require.NoError(t, db.Where("id = ?", jig.ID).First(&got).Error)
	assert.Equal(t, int64(1), got.PlayCount)
}

func TestCompleteTwiceConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	redeemed, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345)})
	require.NoError(t, err)

	req := dto.CompleteInstanceRequest{Token: redeemed.Token, Session: validSession()}
	require.NoError(t, svc.Complete(req))

	err = svc.Complete(req)
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)

	// The losing attempt leaves no trace.
	var sessions int64
	require.NoError(t, db.Model(&model.JigCodeSession{}).Count(&sessions).Error)
	assert.Equal(t, int64(1), sessions)

	var got model.Jig
	require.NoError(t, db.Where("id = ?", jig.ID).First(&got).Error)
	assert.Equal(t, int64(1), got.PlayCount)
}

func TestCompleteSweptInstanceConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	redeemed, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345)})
	require.NoError(t, err)

	// The sweeper removed the row before the learner finished.
	require.NoError(t, db.Where("1 = 1").Delete(&model.JigCodeInstance{}).Error)

	err = svc.Complete(dto.CompleteInstanceRequest{Token: redeemed.Token, Session: validSession()})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
}

func TestCompleteInvalidToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)

	err := svc.Complete(dto.CompleteInstanceRequest{Token: "not-a-token", Session: validSession()})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestCompleteExpiredToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	// Mint with a TTL already in the past.
	expiredTokenSvc := &InstanceTokenService{ttl: -time.Minute, secretKey: svc.tokenSvc.secretKey}
	svc.tokenSvc = expiredTokenSvc

	redeemed, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345)})
	require.NoError(t, err)

	err = svc.Complete(dto.CompleteInstanceRequest{Token: redeemed.Token, Session: validSession()})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestCompleteOversizedPayload(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	redeemed, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345)})
	require.NoError(t, err)

	huge := `{"pairing": {"stable_module_id": "m1", "rounds": [{"blob": "` +
		strings.Repeat("x", dto.MaxSessionPayloadBytes) + `"}]}}`

	err = svc.Complete(dto.CompleteInstanceRequest{
		Token:   redeemed.Token,
		Session: dto.SessionPayload{Modules: []json.RawMessage{json.RawMessage(huge)}},
	})
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)

	// The instance survives a rejected report.
	var n int64
	require.NoError(t, db.Model(&model.JigCodeInstance{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCompletePlayersNameFallsBackToInstance(t *testing.T) {
	db := newTestDB(t)
	svc := newTestPlayService(db)
	jig := seedPublishedJig(t, db, "owner-1")
	seedCode(t, svc, jig.ID, 12345, time.Now().Add(time.Hour))

	redeemed, err := svc.Redeem(dto.RedeemCodeRequest{Code: codeValue(12345), PlayersName: "Dana"})
	require.NoError(t, err)

	require.NoError(t, svc.Complete(dto.CompleteInstanceRequest{
		Token:   redeemed.Token,
		Session: validSession(),
	}))

	var session model.JigCodeSession
	require.NoError(t, db.First(&session).Error)
	assert.Equal(t, "Dana", session.PlayersName)
}
