package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/shared"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alphabatem/common/context"
)

// InstanceTokenService mints and verifies the short-lived bearer tokens a
// learner holds for the duration of one attempt. The token carries no user
// identity; it is the sole capability to complete its instance.
type InstanceTokenService struct {
	context.DefaultService

	ttl       time.Duration
	secretKey string
}

type instanceClaims struct {
	InstanceID string `json:"instance_id"`
	Code       int    `json:"code"`
	JigID      string `json:"jig_id"`
	jwt.RegisteredClaims
}

const INSTANCE_TOKEN_SVC = "instance_token_svc"

func (svc InstanceTokenService) Id() string {
	return INSTANCE_TOKEN_SVC
}

func (svc *InstanceTokenService) Configure(ctx *context.Context) error {
	svc.ttl = 6 * time.Hour
	if hoursStr := os.Getenv("INSTANCE_TTL_HOURS"); hoursStr != "" {
		if hours, err := strconv.Atoi(hoursStr); err == nil && hours > 0 {
			svc.ttl = time.Duration(hours) * time.Hour
		}
	}

	svc.secretKey = os.Getenv("INSTANCE_TOKEN_SECRET")
	return svc.DefaultService.Configure(ctx)
}

func (svc *InstanceTokenService) Start() error {
	if svc.secretKey == "" {
		return errors.New("INSTANCE_TOKEN_SECRET is not set")
	}
	return nil
}

func (svc *InstanceTokenService) TTL() time.Duration {
	return svc.ttl
}

func (svc *InstanceTokenService) Mint(claims dto.InstanceClaims) (string, error) {
	now := time.Now()
	tokenClaims := &instanceClaims{
		InstanceID: claims.InstanceID,
		Code:       claims.Code,
		JigID:      claims.JigID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(svc.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "jig-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)

	tokenString, err := token.SignedString([]byte(svc.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign instance token: %v", err)
	}

	return tokenString, nil
}

// Verify checks signature and expiry and returns the instance claims. It
// does not check that the instance row still exists; the completion
// transaction's delete is the revocation check.
func (svc *InstanceTokenService) Verify(tokenString string) (*dto.InstanceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &instanceClaims{}, svc.getKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.NewUnauthorizedError(err, "Instance token expired")
		}
		return nil, shared.NewUnauthorizedError(err, "Invalid instance token")
	}
	if !token.Valid {
		return nil, shared.NewUnauthorizedError(errors.New("token invalid"), "Invalid instance token")
	}

	claims, ok := token.Claims.(*instanceClaims)
	if !ok || claims.InstanceID == "" {
		return nil, shared.NewUnauthorizedError(errors.New("missing instance claims"), "Invalid instance token")
	}

	return &dto.InstanceClaims{
		InstanceID: claims.InstanceID,
		Code:       claims.Code,
		JigID:      claims.JigID,
	}, nil
}

func (svc *InstanceTokenService) getKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return []byte(svc.secretKey), nil
}
