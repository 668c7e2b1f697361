package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeValueAcceptsNumberAndString(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{`12345`, 12345},
		{`"12345"`, 12345},
		{`"000042"`, 42},
		{`0`, 0},
		{`999999`, 999999},
	}

	for _, tc := range cases {
		var v CodeValue
		require.NoError(t, json.Unmarshal([]byte(tc.in), &v), "input %s", tc.in)
		assert.Equal(t, tc.want, int(v), "input %s", tc.in)
	}
}

func TestCodeValueRejectsInvalid(t *testing.T) {
	for _, in := range []string{`-1`, `1000000`, `"nope"`, `3.5`, `true`, `null`, `"  "`} {
		var v CodeValue
		assert.Error(t, json.Unmarshal([]byte(in), &v), "input %s should fail", in)
	}
}

func TestRedeemCodeRequestUnmarshal(t *testing.T) {
	var req RedeemCodeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"code": "007042", "players_name": "Dana"}`), &req))
	require.NotNil(t, req.Code)
	assert.Equal(t, 7042, int(*req.Code))
	assert.Equal(t, "Dana", req.PlayersName)
	require.NoError(t, req.Validate())
}

func TestRedeemCodeRequestRequiresCode(t *testing.T) {
	var req RedeemCodeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"players_name": "Dana"}`), &req))
	assert.Nil(t, req.Code)
	assert.Error(t, req.Validate())

	// Zero is a real code when it is actually present.
	req = RedeemCodeRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"code": "000000"}`), &req))
	require.NotNil(t, req.Code)
	assert.Equal(t, 0, int(*req.Code))
	require.NoError(t, req.Validate())
}

func TestSessionPayloadValidate(t *testing.T) {
	valid := SessionPayload{Modules: []json.RawMessage{
		json.RawMessage(`{"pairing": {"stable_module_id": "m1", "rounds": [{"score": 3}]}}`),
		json.RawMessage(`{"quiz": {"stable_module_id": "m2", "rounds": []}}`),
	}}
	require.NoError(t, valid.Validate())
}

func TestSessionPayloadRejectsMalformed(t *testing.T) {
	cases := map[string]SessionPayload{
		"no modules": {},
		"not an object": {Modules: []json.RawMessage{
			json.RawMessage(`[1, 2, 3]`),
		}},
		"two kinds in one entry": {Modules: []json.RawMessage{
			json.RawMessage(`{"pairing": {"stable_module_id": "m1", "rounds": []}, "quiz": {"stable_module_id": "m2", "rounds": []}}`),
		}},
		"missing stable_module_id": {Modules: []json.RawMessage{
			json.RawMessage(`{"pairing": {"rounds": []}}`),
		}},
		"missing rounds": {Modules: []json.RawMessage{
			json.RawMessage(`{"pairing": {"stable_module_id": "m1"}}`),
		}},
	}

	for name, payload := range cases {
		assert.Error(t, payload.Validate(), name)
	}
}

func TestCreateCodeRequestValidation(t *testing.T) {
	req := CreateCodeRequest{
		JigID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		Settings: PlayerSettings{
			Direction: "ltr",
		},
	}
	require.NoError(t, req.Validate())

	req.Settings.Direction = "sideways"
	assert.Error(t, req.Validate())

	req.Settings.Direction = "rtl"
	req.JigID = "not-a-uuid"
	assert.Error(t, req.Validate())
}

func TestCompleteInstanceRequestValidation(t *testing.T) {
	req := CompleteInstanceRequest{
		Token: "some.jwt.token",
		Session: SessionPayload{Modules: []json.RawMessage{
			json.RawMessage(`{"pairing": {"stable_module_id": "m1", "rounds": []}}`),
		}},
	}
	require.NoError(t, req.Validate())

	req.Token = ""
	assert.Error(t, req.Validate())

	req.Token = "some.jwt.token"
	req.Session.Modules = nil
	assert.Error(t, req.Validate())
}
