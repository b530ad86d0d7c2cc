package repository

import (
	"context"

	"gorm.io/gorm"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

type WorkOrderRepository interface {
	Create(ctx context.Context, workOrder *models.WorkOrderEntity, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.WorkOrderEntity, error)
	GetList(ctx context.Context, param models.WorkOrderQueryParam, opts ...utils.DBOption) ([]models.WorkOrderEntity, error)
}

type workOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

func (r *workOrderRepository) Create(ctx context.Context, workOrder *models.WorkOrderEntity, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(workOrder).Error
}

func (r *workOrderRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.WorkOrderEntity, error) {
	var workOrder models.WorkOrderEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.Preload("Plan.Materials").Preload("Plan.Tools").Preload("Location").First(&workOrder, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &workOrder, nil
}

func (r *workOrderRepository) GetList(ctx context.Context, param models.WorkOrderQueryParam, opts ...utils.DBOption) ([]models.WorkOrderEntity, error) {
	var workOrders []models.WorkOrderEntity

	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	db = db.Model(&models.WorkOrderEntity{})

	if len(param.IDs) > 0 {
		db = db.Where("id IN ?", param.IDs)
	}
	if len(param.Codes) > 0 {
		db = db.Where("code IN ?", param.Codes)
	}
	if len(param.LocationIDs) > 0 {
		db = db.Where("location_id IN ?", param.LocationIDs)
	}
	if len(param.PlanIDs) > 0 {
		db = db.Where("plan_id IN ?", param.PlanIDs)
	}
	if param.Limit != nil {
		db = db.Limit(*param.Limit)
	}

	result := db.Preload("Location").Order("created_at DESC").Find(&workOrders)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return workOrders, nil
}
