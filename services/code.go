package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/model"
	"github.com/jigworks/jig_api/services/repositories"
	"github.com/jigworks/jig_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CodeService mints codes for published jigs and serves the owner-side
// read paths (list codes, rename, list sessions).
type CodeService struct {
	context.DefaultService

	sqlSvc *PostgresService

	codeRepo    *repositories.CodeRepository
	jigRepo     *repositories.JigRepository
	sessionRepo *repositories.SessionRepository

	codeTTL     time.Duration
	maxAttempts int
	probeWindow int

	// draw picks a candidate offset in [0, n). Uniform random in
	// production; tests pin it to steer the allocator onto collisions.
	draw func(n int) int
}

const CODE_SVC = "code_svc"

const (
	defaultCodeTTLDays  = 21
	defaultMaxAttempts  = 8
	defaultProbeWindow  = 64
	defaultListLimit    = 20
	maxListLimit        = 100
	codeSpaceCandidates = shared.CodeMax - shared.CodeMin + 1
)

func (svc CodeService) Id() string {
	return CODE_SVC
}

func (svc *CodeService) Configure(ctx *context.Context) error {
	svc.codeTTL = defaultCodeTTLDays * 24 * time.Hour
	if daysStr := os.Getenv("CODE_TTL_DAYS"); daysStr != "" {
		if days, err := strconv.Atoi(daysStr); err == nil && days > 0 {
			svc.codeTTL = time.Duration(days) * 24 * time.Hour
		}
	}

	svc.maxAttempts = defaultMaxAttempts
	svc.probeWindow = defaultProbeWindow
	svc.draw = rand.IntN
	return svc.DefaultService.Configure(ctx)
}

func (svc *CodeService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.codeRepo = repositories.NewCodeRepository(svc.sqlSvc.Db())
	svc.jigRepo = repositories.NewJigRepository(svc.sqlSvc.Db())
	svc.sessionRepo = repositories.NewSessionRepository(svc.sqlSvc.Db())
	return nil
}

// CreateCode allocates a fresh unique code for a published jig. Random
// draw with insert-if-absent; collisions retry, then a bounded linear
// probe, then Exhausted. No counter row, so allocations never serialize
// except on the rare identical candidate.
func (svc *CodeService) CreateCode(ownerID string, isAdmin bool, req dto.CreateCodeRequest) (*dto.CodeResponse, error) {
	jig, err := svc.jigRepo.Get(req.JigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Jig not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load jig")
	}
	if jig.LiveVersionID == nil {
		return nil, shared.NewNotFoundError(errors.New("jig has no live version"), "Jig is not published")
	}
	if jig.OwnerID != ownerID && !isAdmin {
		return nil, shared.NewForbiddenError(errors.New("caller does not own jig"), "Forbidden")
	}

	settings, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to snapshot settings")
	}

	now := time.Now()
	row := &model.JigCode{
		JigID:     jig.ID,
		OwnerID:   jig.OwnerID,
		Name:      req.Name,
		Settings:  settings,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.codeTTL),
	}

	candidate := shared.CodeMin + svc.draw(codeSpaceCandidates)
	for attempt := 0; attempt < svc.maxAttempts; attempt++ {
		row.Code = candidate
		inserted, err := svc.codeRepo.InsertIfAbsent(row)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to insert code")
		}
		if inserted {
			jigCodesCreatedTotal.Inc()
			return svc.toCodeResponse(row, 0), nil
		}

		jigCodeCollisionsTotal.Inc()
		candidate = shared.CodeMin + svc.draw(codeSpaceCandidates)
	}

	// Random draws keep colliding; the space may be dense here. Walk a
	// bounded window from the last candidate before giving up.
	for i := 1; i <= svc.probeWindow; i++ {
		row.Code = shared.CodeMin + (candidate-shared.CodeMin+i)%codeSpaceCandidates
		inserted, err := svc.codeRepo.InsertIfAbsent(row)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to insert code")
		}
		if inserted {
			jigCodesCreatedTotal.Inc()
			return svc.toCodeResponse(row, 0), nil
		}
		jigCodeCollisionsTotal.Inc()
	}

	jigCodeExhaustedTotal.Inc()
	active, countErr := svc.codeRepo.CountActive(now)
	if countErr != nil {
		log.WithError(countErr).Warn("Failed to count active codes")
	}
	log.WithFields(log.Fields{"jig_id": jig.ID, "active_codes": active}).Error("Code space exhausted")
	return nil, shared.NewServiceUnavailableError(errors.New("code space exhausted"), "No codes available, try again later")
}

func (svc *CodeService) ListCodes(ownerID string, page, limit int) (*dto.CodeListResponse, error) {
	page, limit = normalizePaging(page, limit)

	rows, total, err := svc.codeRepo.ListByOwner(ownerID, page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list codes")
	}

	codes := make([]dto.CodeResponse, len(rows))
	for i := range rows {
		count, err := svc.sessionRepo.CountByCode(rows[i].Code)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to count sessions")
		}
		codes[i] = *svc.toCodeResponse(&rows[i], count)
	}

	return &dto.CodeListResponse{
		Codes: codes,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func (svc *CodeService) UpdateCodeName(ownerID string, isAdmin bool, code int, name string) error {
	row, err := svc.authorizeCodeAccess(ownerID, isAdmin, code)
	if err != nil {
		return err
	}

	if err := svc.codeRepo.UpdateName(row.Code, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(err, "Code not found")
		}
		return shared.NewInternalError(err, "Failed to rename code")
	}
	return nil
}

func (svc *CodeService) ListSessions(ownerID string, isAdmin bool, code int, page, limit int) (*dto.SessionListResponse, error) {
	if _, err := svc.authorizeCodeAccess(ownerID, isAdmin, code); err != nil {
		return nil, err
	}

	page, limit = normalizePaging(page, limit)

	rows, total, err := svc.sessionRepo.ListByCode(code, page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list sessions")
	}

	sessions := make([]dto.SessionResponse, len(rows))
	for i, row := range rows {
		sessions[i] = dto.SessionResponse{
			ID:          row.ID,
			Code:        shared.FormatCode(row.Code),
			PlayersName: row.PlayersName,
			Payload:     row.Payload,
			CompletedAt: row.CompletedAt,
		}
	}

	return &dto.SessionListResponse{
		Sessions: sessions,
		Page:     page,
		Limit:    limit,
		Total:    total,
	}, nil
}

func (svc *CodeService) GetJig(ownerID string, isAdmin bool, jigID string) (*dto.JigResponse, error) {
	jig, err := svc.jigRepo.Get(jigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Jig not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load jig")
	}
	if jig.OwnerID != ownerID && !isAdmin {
		return nil, shared.NewForbiddenError(errors.New("caller does not own jig"), "Forbidden")
	}

	return &dto.JigResponse{
		ID:            jig.ID,
		Title:         jig.Title,
		LiveVersionID: jig.LiveVersionID,
		PlayCount:     jig.PlayCount,
		Settings:      jig.Settings,
		CreatedAt:     jig.CreatedAt,
		UpdatedAt:     jig.UpdatedAt,
	}, nil
}

func (svc *CodeService) authorizeCodeAccess(ownerID string, isAdmin bool, code int) (*model.JigCode, error) {
	row, err := svc.codeRepo.Lookup(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Code not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load code")
	}
	if row.OwnerID != ownerID && !isAdmin {
		return nil, shared.NewForbiddenError(fmt.Errorf("code %d not owned by caller", code), "Forbidden")
	}
	return row, nil
}

func (svc *CodeService) toCodeResponse(row *model.JigCode, sessionCount int64) *dto.CodeResponse {
	return &dto.CodeResponse{
		Index:        row.Code,
		Code:         shared.FormatCode(row.Code),
		JigID:        row.JigID,
		Name:         row.Name,
		Settings:     row.Settings,
		CreatedAt:    row.CreatedAt,
		ExpiresAt:    row.ExpiresAt,
		SessionCount: sessionCount,
	}
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return page, limit
}
