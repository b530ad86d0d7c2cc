package workorders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"golang-maintenance-work-order/internal/config"
	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/repository"
	"golang-maintenance-work-order/internal/utils"
)

// WorkOrderService creates maintenance work orders and seeds their execution
// from the originating plan: planned materials, planned tools, and the
// default crew are snapshotted at creation so the execution engine never
// needs the plan again.
type WorkOrderService interface {
	Create(ctx context.Context, req *models.CreateWorkOrderRequest) (*models.WorkOrderEntity, *models.WorkOrderExecutionEntity, error)
	GetList(ctx context.Context, param models.WorkOrderQueryParam) ([]models.WorkOrderEntity, error)
	GetPlans(ctx context.Context) ([]models.MaintenancePlanEntity, error)
}

type workOrderService struct {
	cfg                 *config.Config
	log                 *logrus.Logger
	workOrderRepository repository.WorkOrderRepository
	executionRepository repository.WorkOrderExecutionRepository
	planRepository      repository.MaintenancePlanRepository
	unitOfWork          repository.UnitOfWork
}

func NewWorkOrderService(
	cfg *config.Config,
	log *logrus.Logger,
	workOrderRepository repository.WorkOrderRepository,
	executionRepository repository.WorkOrderExecutionRepository,
	planRepository repository.MaintenancePlanRepository,
	unitOfWork repository.UnitOfWork,
) WorkOrderService {
	return &workOrderService{
		cfg:                 cfg,
		log:                 log,
		workOrderRepository: workOrderRepository,
		executionRepository: executionRepository,
		planRepository:      planRepository,
		unitOfWork:          unitOfWork,
	}
}

func (s *workOrderService) Create(ctx context.Context, req *models.CreateWorkOrderRequest) (*models.WorkOrderEntity, *models.WorkOrderExecutionEntity, error) {
	priority := models.WorkOrderPriority(req.Priority)
	if priority == "" {
		priority = models.PriorityMedium
	}

	workOrder := &models.WorkOrderEntity{
		Code:        newWorkOrderCode(),
		Title:       req.Title,
		Description: req.Description,
		PlanID:      req.PlanID,
		LocationID:  req.LocationID,
		Priority:    priority,
		RequestedBy: utils.ToPointer(req.RequestedBy),
	}

	execution := &models.WorkOrderExecutionEntity{
		Status: models.ExecutionStatusPlanned,
	}
	// A work order created with a confirmed date originates already
	// SCHEDULED instead of waiting for a dispatcher transition.
	if req.ScheduledAt != nil {
		execution.Status = models.ExecutionStatusScheduled
		execution.ScheduledAt = req.ScheduledAt
	}

	if req.PlanID != nil {
		plan, err := s.planRepository.GetByID(ctx, *req.PlanID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load maintenance plan: %w", err)
		}
		if plan == nil {
			return nil, nil, fmt.Errorf("maintenance plan %d not found", *req.PlanID)
		}
		if err := seedFromPlan(execution, plan); err != nil {
			return nil, nil, fmt.Errorf("failed to seed execution from plan: %w", err)
		}
	}

	err := s.unitOfWork.Run(func(opts ...utils.DBOption) error {
		if errInner := s.workOrderRepository.Create(ctx, workOrder, opts...); errInner != nil {
			return errInner
		}
		execution.WorkOrderID = workOrder.ID
		return s.executionRepository.Create(ctx, execution, opts...)
	})
	if err != nil {
		s.log.WithError(err).Error("Failed to create work order")
		return nil, nil, fmt.Errorf("failed to create work order: %w", err)
	}

	return workOrder, execution, nil
}

func (s *workOrderService) GetList(ctx context.Context, param models.WorkOrderQueryParam) ([]models.WorkOrderEntity, error) {
	return s.workOrderRepository.GetList(ctx, param)
}

func (s *workOrderService) GetPlans(ctx context.Context) ([]models.MaintenancePlanEntity, error) {
	return s.planRepository.GetList(ctx)
}

func seedFromPlan(execution *models.WorkOrderExecutionEntity, plan *models.MaintenancePlanEntity) error {
	materials := make([]models.PlannedMaterial, 0, len(plan.Materials))
	for _, material := range plan.Materials {
		materials = append(materials, material.ToSnapshot())
	}
	tools := make([]models.PlannedTool, 0, len(plan.Tools))
	for _, tool := range plan.Tools {
		tools = append(tools, tool.ToSnapshot())
	}

	if err := execution.SetPlannedMaterials(materials); err != nil {
		return err
	}
	if err := execution.SetPlannedTools(tools); err != nil {
		return err
	}
	execution.TeamIDs = append([]int64(nil), plan.DefaultTeamIDs...)
	return nil
}

func newWorkOrderCode() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "OS-" + id[:10]
}
