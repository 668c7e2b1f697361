package dto

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// InstanceClaims are the decoded claims of an instance bearer token.
type InstanceClaims struct {
	InstanceID string `json:"instance_id"`
	Code       int    `json:"code"`
	JigID      string `json:"jig_id"`
}
