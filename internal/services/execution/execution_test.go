package execution

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-maintenance-work-order/internal/config"
	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/repository"
	"golang-maintenance-work-order/internal/utils"
)

type fakeExecutionRepository struct {
	entities map[uint]*models.WorkOrderExecutionEntity
	updates  int
}

func (f *fakeExecutionRepository) Create(_ context.Context, execution *models.WorkOrderExecutionEntity, _ ...utils.DBOption) error {
	f.entities[execution.ID] = execution
	return nil
}

func (f *fakeExecutionRepository) Update(_ context.Context, execution *models.WorkOrderExecutionEntity, _ ...utils.DBOption) error {
	f.entities[execution.ID] = execution
	f.updates++
	return nil
}

func (f *fakeExecutionRepository) GetByID(_ context.Context, id uint, _ ...utils.DBOption) (*models.WorkOrderExecutionEntity, error) {
	return f.entities[id], nil
}

func (f *fakeExecutionRepository) GetList(_ context.Context, _ models.ExecutionQueryParam, _ ...utils.DBOption) ([]models.WorkOrderExecutionEntity, error) {
	var out []models.WorkOrderExecutionEntity
	for _, entity := range f.entities {
		out = append(out, *entity)
	}
	return out, nil
}

type fakeLocationRepository struct {
	label string
}

func (f *fakeLocationRepository) GetByID(context.Context, uint, ...utils.DBOption) (*models.LocationEntity, error) {
	return nil, nil
}

func (f *fakeLocationRepository) ResolveLabel(context.Context, uint, ...utils.DBOption) (string, error) {
	return f.label, nil
}

type fakeUserRepository struct {
	knownIDs map[uint]struct{}
}

func (f *fakeUserRepository) GetByIDs(_ context.Context, ids []uint, _ ...utils.DBOption) ([]models.UserEntity, error) {
	var users []models.UserEntity
	for _, id := range ids {
		if f.knownIDs != nil {
			if _, ok := f.knownIDs[id]; !ok {
				continue
			}
		}
		users = append(users, models.UserEntity{ID: id})
	}
	return users, nil
}

func (f *fakeUserRepository) GetByID(_ context.Context, id uint, _ ...utils.DBOption) (*models.UserEntity, error) {
	if f.knownIDs != nil {
		if _, ok := f.knownIDs[id]; !ok {
			return nil, nil
		}
	}
	return &models.UserEntity{ID: id}, nil
}

func (f *fakeUserRepository) CreateUser(context.Context, *models.UserEntity, ...utils.DBOption) error {
	return nil
}

type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

type recordingNotifier struct {
	payloads []models.ExecutionEventPayload
}

func (n *recordingNotifier) NotifyTransition(payload models.ExecutionEventPayload, _ *models.WorkOrderExecutionEntity) {
	n.payloads = append(n.payloads, payload)
}

func newTestService(t *testing.T, repo *fakeExecutionRepository, notifier *recordingNotifier, at time.Time) ExecutionService {
	return newTestServiceWithUsers(t, repo, notifier, at, nil)
}

func newTestServiceWithUsers(t *testing.T, repo *fakeExecutionRepository, notifier *recordingNotifier, at time.Time, knownUserIDs map[uint]struct{}) ExecutionService {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		Maintenance: config.MaintenanceConfig{MinConsumptionQty: DefaultMinConsumptionQty},
	}

	var locationRepo repository.LocationRepository = &fakeLocationRepository{label: "Plant A / Line 2"}
	userRepo := &fakeUserRepository{knownIDs: knownUserIDs}
	service := NewExecutionService(cfg, logger, repo, locationRepo, userRepo, fakeUnitOfWork{}, nil, notifier)
	service.(*executionService).now = fixedNow(at)
	return service
}

func TestServiceTransitionPersistsAndNotifies(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{
		1: {
			ID:          1,
			WorkOrderID: 10,
			Status:      models.ExecutionStatusScheduled,
			WorkOrder:   &models.WorkOrderEntity{ID: 10, Code: "OS-AB12CD34EF", Title: "Pump overhaul"},
		},
	}}
	transitionNotifier := &recordingNotifier{}
	service := newTestService(t, repo, transitionNotifier, base)

	response, err := service.Transition(context.Background(), 1, startRequest())
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusInProgress, response.Execution.Status)
	assert.Equal(t, []models.ExecutionAction{
		models.ActionPause, models.ActionFinalize, models.ActionCancel,
	}, response.AllowedActions)
	assert.Equal(t, 1, repo.updates)

	require.Len(t, transitionNotifier.payloads, 1)
	payload := transitionNotifier.payloads[0]
	assert.Equal(t, models.ExecutionStatusScheduled, payload.FromStatus)
	assert.Equal(t, models.ExecutionStatusInProgress, payload.ToStatus)
	assert.Equal(t, "OS-AB12CD34EF", payload.WorkOrderCode)
}

func TestServiceTransitionNotFound(t *testing.T) {
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{}}
	service := newTestService(t, repo, &recordingNotifier{}, time.Now())

	_, err := service.Transition(context.Background(), 99, startRequest())
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, ErrorCode(err))
	assert.Zero(t, repo.updates)
}

func TestServiceTransitionRejectionPersistsNothing(t *testing.T) {
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{
		1: {ID: 1, Status: models.ExecutionStatusPlanned},
	}}
	transitionNotifier := &recordingNotifier{}
	service := newTestService(t, repo, transitionNotifier, time.Now())

	_, err := service.Transition(context.Background(), 1, startRequest())
	require.Error(t, err)
	assert.Equal(t, CodeInvalidTransition, ErrorCode(err))
	assert.Zero(t, repo.updates)
	assert.Empty(t, transitionNotifier.payloads)
}

func TestServiceTransitionRejectsUnknownCrewMembers(t *testing.T) {
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{
		1: {ID: 1, Status: models.ExecutionStatusScheduled},
	}}
	service := newTestServiceWithUsers(t, repo, &recordingNotifier{}, time.Now(), map[uint]struct{}{2: {}})

	_, err := service.Transition(context.Background(), 1, startRequest())
	require.Error(t, err)
	assert.Equal(t, CodeValidationFailed, ErrorCode(err))

	issues := ValidationIssues(err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "3")
	assert.Zero(t, repo.updates)
}

func TestServiceIllegalActionWinsOverCrewCheck(t *testing.T) {
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{
		1: {ID: 1, Status: models.ExecutionStatusFinished},
	}}
	// Only user 2 exists; the start payload also references user 3. The
	// terminal state must still be reported as an invalid transition, not as
	// a crew validation failure.
	service := newTestServiceWithUsers(t, repo, &recordingNotifier{}, time.Now(), map[uint]struct{}{2: {}})

	_, err := service.Transition(context.Background(), 1, startRequest())
	require.Error(t, err)
	assert.Equal(t, CodeInvalidTransition, ErrorCode(err))
	assert.Zero(t, repo.updates)
}

func TestServiceFinalizePublishesElapsedMinutes(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusInProgress}
	require.NoError(t, entity.SetClockEvents([]models.ClockEvent{
		{Type: models.ClockEventStart, At: base},
	}))
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{1: entity}}
	transitionNotifier := &recordingNotifier{}
	service := newTestService(t, repo, transitionNotifier, base.Add(45*time.Minute))

	_, err := service.Transition(context.Background(), 1, finalizeRequest())
	require.NoError(t, err)

	require.Len(t, transitionNotifier.payloads, 1)
	assert.Equal(t, 45, transitionNotifier.payloads[0].ElapsedMinutes)

	// A repeated finalize against the stored row is a single-fire violation.
	_, err = service.Transition(context.Background(), 1, finalizeRequest())
	require.Error(t, err)
	assert.Equal(t, CodeAlreadyCommitted, ErrorCode(err))
}

func TestServiceApproveOnce(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{
		1: {ID: 1, Status: models.ExecutionStatusFinished},
	}}
	service := newTestService(t, repo, &recordingNotifier{}, base)

	response, err := service.Approve(context.Background(), 1, &models.ApprovalRequest{
		ApproverID: 7,
		Notes:      "verified on site",
	})
	require.NoError(t, err)
	require.NotNil(t, response.Execution.ApprovedBy)
	assert.Equal(t, uint(7), *response.Execution.ApprovedBy)
	require.NotNil(t, response.Execution.ApprovedAt)
	assert.Equal(t, base, *response.Execution.ApprovedAt)

	_, err = service.Approve(context.Background(), 1, &models.ApprovalRequest{ApproverID: 8})
	require.Error(t, err)
	assert.Equal(t, CodeAlreadyApproved, ErrorCode(err))
}

func TestServiceApproveRequiresFinished(t *testing.T) {
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{
		1: {ID: 1, Status: models.ExecutionStatusInProgress},
	}}
	service := newTestService(t, repo, &recordingNotifier{}, time.Now())

	_, err := service.Approve(context.Background(), 1, &models.ApprovalRequest{ApproverID: 7})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidTransition, ErrorCode(err))
}

func TestServiceGetResolvesLocationLabel(t *testing.T) {
	locationID := uint(4)
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{
		1: {
			ID:          1,
			WorkOrderID: 10,
			Status:      models.ExecutionStatusPlanned,
			WorkOrder:   &models.WorkOrderEntity{ID: 10, LocationID: &locationID},
		},
	}}
	service := newTestService(t, repo, &recordingNotifier{}, time.Now())

	response, err := service.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Plant A / Line 2", response.LocationLabel)
}

func TestServiceGetElapsedWhileRunning(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusInProgress}
	require.NoError(t, entity.SetClockEvents([]models.ClockEvent{
		{Type: models.ClockEventStart, At: base},
	}))
	repo := &fakeExecutionRepository{entities: map[uint]*models.WorkOrderExecutionEntity{1: entity}}
	service := newTestService(t, repo, &recordingNotifier{}, base.Add(25*time.Minute))

	response, err := service.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 25, response.ElapsedMinutes)
}
