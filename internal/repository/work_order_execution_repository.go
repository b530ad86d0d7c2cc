package repository

import (
	"context"

	"gorm.io/gorm"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

type WorkOrderExecutionRepository interface {
	Create(ctx context.Context, execution *models.WorkOrderExecutionEntity, opts ...utils.DBOption) error
	Update(ctx context.Context, execution *models.WorkOrderExecutionEntity, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.WorkOrderExecutionEntity, error)
	GetList(ctx context.Context, param models.ExecutionQueryParam, opts ...utils.DBOption) ([]models.WorkOrderExecutionEntity, error)
}

type workOrderExecutionRepository struct {
	db *gorm.DB
}

func NewWorkOrderExecutionRepository(db *gorm.DB) WorkOrderExecutionRepository {
	return &workOrderExecutionRepository{db: db}
}

func (r *workOrderExecutionRepository) Create(ctx context.Context, execution *models.WorkOrderExecutionEntity, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(execution).Error
}

// Update writes the full row. Transitions mutate pointer fields back to nil
// in no case, but JSON columns and status must always overwrite.
func (r *workOrderExecutionRepository) Update(ctx context.Context, execution *models.WorkOrderExecutionEntity, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Save(execution).Error
}

func (r *workOrderExecutionRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.WorkOrderExecutionEntity, error) {
	var execution models.WorkOrderExecutionEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("WorkOrder").First(&execution, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &execution, nil
}

func (r *workOrderExecutionRepository) GetList(ctx context.Context, param models.ExecutionQueryParam, opts ...utils.DBOption) ([]models.WorkOrderExecutionEntity, error) {
	var executions []models.WorkOrderExecutionEntity

	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	db = db.Model(&models.WorkOrderExecutionEntity{})

	if len(param.IDs) > 0 {
		db = db.Where("id IN ?", param.IDs)
	}
	if len(param.WorkOrderIDs) > 0 {
		db = db.Where("work_order_id IN ?", param.WorkOrderIDs)
	}
	if len(param.Statuses) > 0 {
		db = db.Where("status IN ?", param.Statuses)
	}
	if param.Limit != nil {
		db = db.Limit(*param.Limit)
	}

	result := db.Order("created_at DESC").Find(&executions)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return executions, nil
}
