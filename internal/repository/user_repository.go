package repository

import (
	"context"

	"gorm.io/gorm"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

type UserRepository interface {
	GetByIDs(ctx context.Context, ids []uint, opts ...utils.DBOption) ([]models.UserEntity, error)
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.UserEntity, error)
	CreateUser(ctx context.Context, user *models.UserEntity, opts ...utils.DBOption) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint, opts ...utils.DBOption) ([]models.UserEntity, error) {
	var users []models.UserEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Where("id IN ?", ids).Find(&users)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.UserEntity, error) {
	var user models.UserEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.First(&user, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}

		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.UserEntity, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(user).Error
}
