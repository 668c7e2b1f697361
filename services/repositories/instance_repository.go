package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/jigworks/jig_api/model"
	"gorm.io/gorm"
)

// InstanceRepository handles in-flight attempt rows. Instances exist only
// between redemption and completion.
type InstanceRepository struct {
	BaseRepository
}

func NewInstanceRepository(db *gorm.DB) *InstanceRepository {
	return &InstanceRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *InstanceRepository) Create(instance *model.JigCodeInstance) (*model.JigCodeInstance, error) {
	id, _ := uuid.NewV7()
	instance.ID = id.String()
	if err := ds.db.Create(instance).Error; err != nil {
		return nil, err
	}
	return instance, nil
}

// DeleteReturning removes the instance within tx and reports whether a row
// was actually deleted. The deleted row's fields are loaded into instance.
// A zero RowsAffected means a concurrent completion (or the sweeper) got
// there first; the row lock on the delete serializes racers.
func (ds *InstanceRepository) DeleteReturning(tx *gorm.DB, instanceID string) (*model.JigCodeInstance, bool, error) {
	var instance model.JigCodeInstance
	if err := tx.Where("id = ?", instanceID).First(&instance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	res := tx.Where("id = ?", instanceID).Delete(&model.JigCodeInstance{})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &instance, true, nil
}

// DeleteOlderThan sweeps abandoned instances; it never emits completions.
func (ds *InstanceRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res := ds.db.Where("created_at < ?", cutoff).Delete(&model.JigCodeInstance{})
	return res.RowsAffected, res.Error
}
