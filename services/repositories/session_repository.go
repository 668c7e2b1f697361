package repositories

import (
	"github.com/google/uuid"
	"github.com/jigworks/jig_api/model"
	"gorm.io/gorm"
)

// SessionRepository persists completed attempts. Rows are append-only.
type SessionRepository struct {
	BaseRepository
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// CreateTx inserts the session row inside the completion transaction.
func (ds *SessionRepository) CreateTx(tx *gorm.DB, session *model.JigCodeSession) (*model.JigCodeSession, error) {
	id, _ := uuid.NewV7()
	session.ID = id.String()
	if err := tx.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (ds *SessionRepository) ListByCode(code int, page, limit int) ([]model.JigCodeSession, int64, error) {
	var total int64
	if err := ds.db.Model(&model.JigCodeSession{}).Where("code = ?", code).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var sessions []model.JigCodeSession
	err := ds.db.Where("code = ?", code).
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (ds *SessionRepository) CountByCode(code int) (int64, error) {
	var n int64
	err := ds.db.Model(&model.JigCodeSession{}).Where("code = ?", code).Count(&n).Error
	return n, err
}
