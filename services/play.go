package services

import (
	goContext "context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/model"
	"github.com/jigworks/jig_api/services/repositories"
	"github.com/jigworks/jig_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PlayService owns the anonymous learner lifecycle: redeeming a code into
// a play instance and applying the completion report.
type PlayService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
	tokenSvc *InstanceTokenService

	codeRepo     *repositories.CodeRepository
	instanceRepo *repositories.InstanceRepository
	sessionRepo  *repositories.SessionRepository
	jigRepo      *repositories.JigRepository
}

const PLAY_SVC = "play_svc"

// Redeemed settings are cached briefly so classroom bursts on one code
// stay off the database. Completion never reads this cache.
const codeCacheTTL = 60 * time.Second

type codeCacheEntry struct {
	JigID     string          `json:"jig_id"`
	Settings  json.RawMessage `json:"settings"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (svc PlayService) Id() string {
	return PLAY_SVC
}

func (svc *PlayService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *PlayService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.tokenSvc = svc.Service(INSTANCE_TOKEN_SVC).(*InstanceTokenService)

	db := svc.sqlSvc.Db()
	svc.codeRepo = repositories.NewCodeRepository(db)
	svc.instanceRepo = repositories.NewInstanceRepository(db)
	svc.sessionRepo = repositories.NewSessionRepository(db)
	svc.jigRepo = repositories.NewJigRepository(db)
	return nil
}

// Redeem turns a code into a fresh play instance and its bearer token.
// Redemption is anonymous; every call yields a new instance, so several
// learners can hold the same code concurrently.
func (svc *PlayService) Redeem(req dto.RedeemCodeRequest) (*dto.RedeemCodeResponse, error) {
	if req.Code == nil {
		return nil, shared.NewBadRequestError(errors.New("code missing"), "Code is required")
	}
	code := int(*req.Code)

	entry, err := svc.lookupCode(code)
	if err != nil {
		return nil, err
	}

	if !time.Now().Before(entry.ExpiresAt) {
		return nil, shared.NewGoneError(errors.New("code expired"), "Code expired")
	}

	instance, err := svc.instanceRepo.Create(&model.JigCodeInstance{
		Code:        code,
		JigID:       entry.JigID,
		PlayersName: req.PlayersName,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create play instance")
	}

	token, err := svc.tokenSvc.Mint(dto.InstanceClaims{
		InstanceID: instance.ID,
		Code:       code,
		JigID:      entry.JigID,
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to mint instance token")
	}

	jigInstancesRedeemedTotal.Inc()

	return &dto.RedeemCodeResponse{
		Token:    token,
		JigID:    entry.JigID,
		Settings: entry.Settings,
	}, nil
}

// Complete applies a learner's completion report in one transaction. The
// delete of the instance row is both the exactly-once guard and the
// authorization: losers of a concurrent race see AlreadyCompleted, and a
// retry after a committed completion is idempotent in effect.
func (svc *PlayService) Complete(req dto.CompleteInstanceRequest) error {
	claims, err := svc.tokenSvc.Verify(req.Token)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(req.Session)
	if err != nil {
		return shared.NewBadRequestError(err, "Malformed session payload")
	}
	if len(payload) > dto.MaxSessionPayloadBytes {
		return shared.NewBadRequestError(errors.New("payload too large"), "Session payload exceeds size limit")
	}

	err = svc.sqlSvc.Db().Transaction(func(tx *gorm.DB) error {
		instance, deleted, err := svc.instanceRepo.DeleteReturning(tx, claims.InstanceID)
		if err != nil {
			return shared.NewInternalError(err, "Failed to retire instance")
		}
		if !deleted {
			return shared.NewConflictError(errors.New("instance already completed"), "Already completed")
		}

		playersName := req.PlayersName
		if playersName == "" {
			playersName = instance.PlayersName
		}

		if _, err := svc.sessionRepo.CreateTx(tx, &model.JigCodeSession{
			Code:        claims.Code,
			PlayersName: playersName,
			Payload:     payload,
			CompletedAt: time.Now(),
		}); err != nil {
			return shared.NewInternalError(err, "Failed to record session")
		}

		if err := svc.jigRepo.IncrementPlayCountTx(tx, claims.JigID); err != nil {
			return shared.NewInternalError(err, "Failed to bump play count")
		}

		return nil
	})
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok && appErr.StatusCode == 409 {
			jigCompletionConflictsTotal.Inc()
		}
		return err
	}

	jigSessionsCompletedTotal.Inc()
	return nil
}

// lookupCode reads through the short redis cache onto the code store.
func (svc *PlayService) lookupCode(code int) (*codeCacheEntry, error) {
	ctx := goContext.Background()
	cacheKey := "jig_code:" + shared.FormatCode(code)

	var cached codeCacheEntry
	if err := svc.redisSvc.GetJSON(ctx, cacheKey, &cached); err == nil && cached.JigID != "" {
		return &cached, nil
	}

	row, err := svc.codeRepo.Lookup(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Code not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load code")
	}

	entry := &codeCacheEntry{
		JigID:     row.JigID,
		Settings:  row.Settings,
		ExpiresAt: row.ExpiresAt,
	}

	if err := svc.redisSvc.Set(ctx, cacheKey, entry, codeCacheTTL); err != nil {
		log.WithError(err).Debug("Failed to cache code lookup")
	}

	return entry, nil
}
