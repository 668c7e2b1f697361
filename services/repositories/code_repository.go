package repositories

import (
	"time"

	"github.com/jigworks/jig_api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CodeRepository is the single source of truth for code uniqueness. Every
// field except Name is immutable once a row is inserted.
type CodeRepository struct {
	BaseRepository
}

func NewCodeRepository(db *gorm.DB) *CodeRepository {
	return &CodeRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// InsertIfAbsent inserts the row unless its code is already taken. Returns
// false on conflict; the unique-index conflict resolution is what
// serializes concurrent allocations of the same candidate.
func (ds *CodeRepository) InsertIfAbsent(row *model.JigCode) (bool, error) {
	res := ds.db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (ds *CodeRepository) Lookup(code int) (*model.JigCode, error) {
	var row model.JigCode
	if err := ds.db.Where("code = ?", code).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByOwner returns the owner's codes newest first, ties broken by code
// ascending.
func (ds *CodeRepository) ListByOwner(ownerID string, page, limit int) ([]model.JigCode, int64, error) {
	var total int64
	if err := ds.db.Model(&model.JigCode{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var rows []model.JigCode
	err := ds.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC, code ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// UpdateName is the only permitted mutation of a code row.
func (ds *CodeRepository) UpdateName(code int, name string) error {
	res := ds.db.Model(&model.JigCode{}).Where("code = ?", code).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountActive reports how much of the code space is occupied by
// non-expired rows; the allocator logs it when it gives up.
func (ds *CodeRepository) CountActive(now time.Time) (int64, error) {
	var n int64
	err := ds.db.Model(&model.JigCode{}).Where("expires_at > ?", now).Count(&n).Error
	return n, err
}
