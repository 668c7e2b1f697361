package repositories

import (
	"github.com/google/uuid"
	"github.com/jigworks/jig_api/model"
	"gorm.io/gorm"
)

// UserRepository handles author account rows.
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *UserRepository) Create(user *model.User) (*model.User, error) {
	id, _ := uuid.NewV7()
	user.ID = id.String()
	if err := ds.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ds *UserRepository) GetByID(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetByEmailOrUsername(value string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ? OR username = ?", value, value).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) ExistsByEmailOrUsername(email, username string) (bool, error) {
	var n int64
	if err := ds.db.Model(&model.User{}).Where("email = ? OR username = ?", email, username).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (ds *UserRepository) UpdateLastLogin(user *model.User) error {
	return ds.db.Model(user).Update("last_login", user.LastLogin).Error
}
