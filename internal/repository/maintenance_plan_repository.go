package repository

import (
	"context"

	"gorm.io/gorm"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

type MaintenancePlanRepository interface {
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.MaintenancePlanEntity, error)
	GetList(ctx context.Context, opts ...utils.DBOption) ([]models.MaintenancePlanEntity, error)
}

type maintenancePlanRepository struct {
	db *gorm.DB
}

func NewMaintenancePlanRepository(db *gorm.DB) MaintenancePlanRepository {
	return &maintenancePlanRepository{db: db}
}

func (r *maintenancePlanRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.MaintenancePlanEntity, error) {
	var plan models.MaintenancePlanEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Materials").Preload("Tools").First(&plan, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &plan, nil
}

func (r *maintenancePlanRepository) GetList(ctx context.Context, opts ...utils.DBOption) ([]models.MaintenancePlanEntity, error) {
	var plans []models.MaintenancePlanEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Materials").Preload("Tools").Order("name ASC").Find(&plans)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return plans, nil
}
