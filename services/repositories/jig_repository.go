package repositories

import (
	"github.com/jigworks/jig_api/model"
	"gorm.io/gorm"
)

// JigRepository exposes the slice of the jig table this subsystem touches:
// existence/live-version checks, ownership, and the play counter.
type JigRepository struct {
	BaseRepository
}

func NewJigRepository(db *gorm.DB) *JigRepository {
	return &JigRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *JigRepository) Get(jigID string) (*model.Jig, error) {
	var jig model.Jig
	if err := ds.db.Where("id = ?", jigID).First(&jig).Error; err != nil {
		return nil, err
	}
	return &jig, nil
}

// IncrementPlayCountTx bumps the monotone play counter inside the
// completion transaction; the row lock serializes per-jig increments.
func (ds *JigRepository) IncrementPlayCountTx(tx *gorm.DB, jigID string) error {
	res := tx.Model(&model.Jig{}).
		Where("id = ?", jigID).
		Update("play_count", gorm.Expr("play_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
