package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"golang-maintenance-work-order/internal/config"
	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/repository"
	"golang-maintenance-work-order/internal/services/notifier"
	"golang-maintenance-work-order/internal/utils"
	"golang-maintenance-work-order/pkg/lock"
	"golang-maintenance-work-order/pkg/redis"
)

// ExecutionService is the single entry point for mutating a work-order
// execution. Every transition is serialized per execution id, validated,
// applied, and persisted atomically; the stored row is the source of truth.
type ExecutionService interface {
	Transition(ctx context.Context, id uint, req *models.TransitionRequest) (*models.ExecutionResponse, error)
	Get(ctx context.Context, id uint) (*models.ExecutionResponse, error)
	GetList(ctx context.Context, param models.ExecutionQueryParam) ([]models.WorkOrderExecutionEntity, error)
	Approve(ctx context.Context, id uint, req *models.ApprovalRequest) (*models.ExecutionResponse, error)
}

type executionService struct {
	cfg                 *config.Config
	log                 *logrus.Logger
	executionRepository repository.WorkOrderExecutionRepository
	locationRepository  repository.LocationRepository
	userRepository      repository.UserRepository
	unitOfWork          repository.UnitOfWork
	redisClient         *redis.Client
	notifier            notifier.Notifier
	locks               *lock.Keyed
	now                 func() time.Time
}

func NewExecutionService(
	cfg *config.Config,
	log *logrus.Logger,
	executionRepository repository.WorkOrderExecutionRepository,
	locationRepository repository.LocationRepository,
	userRepository repository.UserRepository,
	unitOfWork repository.UnitOfWork,
	redisClient *redis.Client,
	transitionNotifier notifier.Notifier,
) ExecutionService {
	return &executionService{
		cfg:                 cfg,
		log:                 log,
		executionRepository: executionRepository,
		locationRepository:  locationRepository,
		userRepository:      userRepository,
		unitOfWork:          unitOfWork,
		redisClient:         redisClient,
		notifier:            transitionNotifier,
		locks:               lock.NewKeyed(),
		now:                 time.Now,
	}
}

func (s *executionService) Transition(ctx context.Context, id uint, req *models.TransitionRequest) (*models.ExecutionResponse, error) {
	action := models.ExecutionAction(req.Action)

	unlock := s.locks.Lock(id)
	defer unlock()

	var (
		updated    *models.WorkOrderExecutionEntity
		fromStatus models.ExecutionStatus
	)

	err := s.unitOfWork.Run(func(opts ...utils.DBOption) error {
		lockOpts := append(append([]utils.DBOption{}, opts...), utils.WithLockForUpdate())
		entity, err := s.executionRepository.GetByID(ctx, id, lockOpts...)
		if err != nil {
			return err
		}
		if entity == nil {
			return NewNotFound(id)
		}
		fromStatus = entity.Status

		// Roster lookups only for actions the table permits from this state;
		// an illegal action must surface as an invalid transition, not as a
		// validation failure, and without burning a user query.
		if _, ok := Target(entity.Status, action); ok {
			if err := s.verifyRosterUsers(ctx, action, req, opts...); err != nil {
				return err
			}
		}

		machine, err := NewMachine(entity, s.cfg.Maintenance.MinConsumptionQty, s.now)
		if err != nil {
			return err
		}
		if err := machine.Apply(action, req); err != nil {
			return err
		}

		if err := s.executionRepository.Update(ctx, entity, opts...); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"execution_id": id,
			"action":       action,
		}).Warn("Transition rejected")
		return nil, err
	}

	payload := models.ExecutionEventPayload{
		ExecutionID: updated.ID,
		WorkOrderID: updated.WorkOrderID,
		Action:      action,
		FromStatus:  fromStatus,
		ToStatus:    updated.Status,
		ActorID:     req.ActorID,
		At:          s.now(),
	}
	if updated.WorkOrder != nil {
		payload.WorkOrderCode = updated.WorkOrder.Code
	}
	if updated.Status == models.ExecutionStatusFinished {
		if clock, err := ClockFromEntity(updated); err != nil {
			s.log.WithError(err).WithField("execution_id", updated.ID).Error("Failed to decode clock events")
		} else {
			payload.ElapsedMinutes = clock.ElapsedMinutes()
		}
	}

	s.publishEvent(ctx, payload)
	s.notifier.NotifyTransition(payload, updated)

	return s.toResponse(ctx, updated), nil
}

func (s *executionService) Get(ctx context.Context, id uint) (*models.ExecutionResponse, error) {
	entity, err := s.executionRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, NewNotFound(id)
	}
	return s.toResponse(ctx, entity), nil
}

func (s *executionService) GetList(ctx context.Context, param models.ExecutionQueryParam) ([]models.WorkOrderExecutionEntity, error) {
	return s.executionRepository.GetList(ctx, param)
}

// Approve attaches the post-completion approval annotation. It is the only
// mutation permitted on a FINISHED execution and fires once.
func (s *executionService) Approve(ctx context.Context, id uint, req *models.ApprovalRequest) (*models.ExecutionResponse, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var updated *models.WorkOrderExecutionEntity

	err := s.unitOfWork.Run(func(opts ...utils.DBOption) error {
		lockOpts := append(append([]utils.DBOption{}, opts...), utils.WithLockForUpdate())
		entity, err := s.executionRepository.GetByID(ctx, id, lockOpts...)
		if err != nil {
			return err
		}
		if entity == nil {
			return NewNotFound(id)
		}
		if entity.Status != models.ExecutionStatusFinished {
			return NewInvalidTransition(entity.Status, "approve")
		}
		if entity.ApprovedBy != nil {
			return NewAlreadyApproved(id)
		}

		now := s.now()
		entity.ApprovedBy = &req.ApproverID
		entity.ApprovedAt = &now
		entity.ApprovalNotes = req.Notes

		if err := s.executionRepository.Update(ctx, entity, opts...); err != nil {
			return err
		}
		updated = entity
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("execution_id", id).Warn("Approval rejected")
		return nil, err
	}

	return s.toResponse(ctx, updated), nil
}

// verifyRosterUsers rejects schedule/start payloads that reference users the
// roster table does not know. Runs inside the transaction so the check and the
// snapshot commit together.
func (s *executionService) verifyRosterUsers(ctx context.Context, action models.ExecutionAction, req *models.TransitionRequest, opts ...utils.DBOption) error {
	if action != models.ActionSchedule && action != models.ActionStart {
		return nil
	}

	seen := make(map[uint]struct{})
	var ids []uint
	for _, id := range req.TeamIDs {
		userID := uint(id)
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		ids = append(ids, userID)
	}
	if req.ResponsibleID != nil && *req.ResponsibleID != 0 {
		if _, ok := seen[*req.ResponsibleID]; !ok {
			ids = append(ids, *req.ResponsibleID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.userRepository.GetByIDs(ctx, ids, opts...)
	if err != nil {
		return err
	}
	known := make(map[uint]struct{}, len(users))
	for _, user := range users {
		known[user.ID] = struct{}{}
	}

	var issues []models.ValidationIssue
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			issues = append(issues, models.ValidationIssue{
				Field:   "team_ids",
				Message: fmt.Sprintf("user %d does not exist", id),
			})
		}
	}
	if len(issues) > 0 {
		return NewValidationFailed(issues)
	}
	return nil
}

func (s *executionService) publishEvent(ctx context.Context, payload models.ExecutionEventPayload) {
	if s.redisClient == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).Error("Failed to marshal execution event payload")
		return
	}
	if err := s.redisClient.XAdd(ctx, &goRedis.XAddArgs{
		Stream: models.RedisStreamExecutionEvents,
		Values: map[string]interface{}{"payload": string(raw)},
	}).Err(); err != nil {
		s.log.WithError(err).WithField("execution_id", payload.ExecutionID).Error("Failed to publish execution event")
	}
}

func (s *executionService) toResponse(ctx context.Context, entity *models.WorkOrderExecutionEntity) *models.ExecutionResponse {
	response := &models.ExecutionResponse{
		Execution:      entity,
		AllowedActions: AllowedActions(entity.Status),
	}

	if clock, err := ClockFromEntity(entity); err != nil {
		s.log.WithError(err).WithField("execution_id", entity.ID).Error("Failed to decode clock events")
	} else if clock.Running() {
		response.ElapsedMinutes = clock.ElapsedMinutesAt(s.now())
	} else {
		response.ElapsedMinutes = clock.ElapsedMinutes()
	}

	if entity.WorkOrder != nil && entity.WorkOrder.LocationID != nil {
		label, err := s.locationRepository.ResolveLabel(ctx, *entity.WorkOrder.LocationID)
		if err != nil {
			s.log.WithError(err).WithField("execution_id", entity.ID).Error("Failed to resolve location label")
		} else {
			response.LocationLabel = label
		}
	}

	return response
}
