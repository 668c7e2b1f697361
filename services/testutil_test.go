package services

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jigworks/jig_api/dto"
	"github.com/jigworks/jig_api/model"
	"github.com/jigworks/jig_api/services/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps concurrent writers off sqlite's busy errors.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Jig{},
		&model.JigVersion{},
		&model.JigCode{},
		&model.JigCodeInstance{},
		&model.JigCodeSession{},
	))

	return db
}

func newTestCodeService(db *gorm.DB) *CodeService {
	return &CodeService{
		codeRepo:    repositories.NewCodeRepository(db),
		jigRepo:     repositories.NewJigRepository(db),
		sessionRepo: repositories.NewSessionRepository(db),
		codeTTL:     defaultCodeTTLDays * 24 * time.Hour,
		maxAttempts: defaultMaxAttempts,
		probeWindow: defaultProbeWindow,
		draw:        rand.IntN,
	}
}

func codeValue(n int) *dto.CodeValue {
	v := dto.CodeValue(n)
	return &v
}

func newTestTokenService() *InstanceTokenService {
	return &InstanceTokenService{
		ttl:       time.Hour,
		secretKey: "test-secret",
	}
}

func newTestPlayService(db *gorm.DB) *PlayService {
	return &PlayService{
		sqlSvc:       &PostgresService{db: db},
		redisSvc:     &RedisService{},
		tokenSvc:     newTestTokenService(),
		codeRepo:     repositories.NewCodeRepository(db),
		instanceRepo: repositories.NewInstanceRepository(db),
		sessionRepo:  repositories.NewSessionRepository(db),
		jigRepo:      repositories.NewJigRepository(db),
	}
}

func seedPublishedJig(t *testing.T, db *gorm.DB, ownerID string) *model.Jig {
	t.Helper()

	jigID := uuid.NewString()
	versionID := uuid.NewString()

	version := &model.JigVersion{
		ID:        versionID,
		JigID:     jigID,
		Modules:   json.RawMessage(`[{"pairing": {"stable_module_id": "m1", "rounds": [{"pairs": 4}]}}]`),
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(version).Error)

	jig := &model.Jig{
		ID:            jigID,
		OwnerID:       ownerID,
		Title:         "Fractions Warm-Up",
		LiveVersionID: &versionID,
		Settings:      json.RawMessage(`{"direction":"ltr"}`),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(jig).Error)

	return jig
}

func seedUnpublishedJig(t *testing.T, db *gorm.DB, ownerID string) *model.Jig {
	t.Helper()

	jig := &model.Jig{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     "Draft Jig",
		Settings:  json.RawMessage(`{}`),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(jig).Error)

	return jig
}

func testSettings() dto.PlayerSettings {
	return dto.PlayerSettings{
		Direction: "ltr",
		Scoring:   true,
	}
}

func validSession() dto.SessionPayload {
	return dto.SessionPayload{
		Modules: []json.RawMessage{
			json.RawMessage(`{"pairing": {"stable_module_id": "m1", "rounds": [{"score": 5, "mistakes": 1}]}}`),
		},
	}
}
