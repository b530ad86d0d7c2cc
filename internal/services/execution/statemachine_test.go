package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

func fixedNow(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestMachine(t *testing.T, entity *models.WorkOrderExecutionEntity, at time.Time) *Machine {
	t.Helper()
	machine, err := NewMachine(entity, DefaultMinConsumptionQty, fixedNow(at))
	require.NoError(t, err)
	return machine
}

func startRequest() *models.TransitionRequest {
	return &models.TransitionRequest{
		Action:        string(models.ActionStart),
		ActorID:       2,
		ResponsibleID: utils.ToPointer(uint(2)),
		TeamIDs:       []int64{2, 3},
	}
}

func finalizeRequest() *models.TransitionRequest {
	return &models.TransitionRequest{
		Action:              string(models.ActionFinalize),
		ActorID:             2,
		ResultDescription:   "pump rebuilt and tested",
		ActivitiesPerformed: "replaced bearings, flushed lines",
		QualityRating:       utils.ToPointer(4),
	}
}

func TestTargetTable(t *testing.T) {
	tests := []struct {
		from    models.ExecutionStatus
		action  models.ExecutionAction
		want    models.ExecutionStatus
		allowed bool
	}{
		{models.ExecutionStatusPlanned, models.ActionSchedule, models.ExecutionStatusScheduled, true},
		{models.ExecutionStatusPlanned, models.ActionCancel, models.ExecutionStatusCancelled, true},
		{models.ExecutionStatusPlanned, models.ActionStart, "", false},
		{models.ExecutionStatusScheduled, models.ActionStart, models.ExecutionStatusInProgress, true},
		{models.ExecutionStatusScheduled, models.ActionFinalize, "", false},
		{models.ExecutionStatusInProgress, models.ActionPause, models.ExecutionStatusPaused, true},
		{models.ExecutionStatusInProgress, models.ActionFinalize, models.ExecutionStatusFinished, true},
		{models.ExecutionStatusPaused, models.ActionResume, models.ExecutionStatusInProgress, true},
		{models.ExecutionStatusPaused, models.ActionFinalize, models.ExecutionStatusFinished, true},
		{models.ExecutionStatusPaused, models.ActionStart, "", false},
		{models.ExecutionStatusFinished, models.ActionCancel, "", false},
		{models.ExecutionStatusCancelled, models.ActionSchedule, "", false},
	}

	for _, tt := range tests {
		got, ok := Target(tt.from, tt.action)
		assert.Equal(t, tt.allowed, ok, "%s + %s", tt.from, tt.action)
		if tt.allowed {
			assert.Equal(t, tt.want, got, "%s + %s", tt.from, tt.action)
		}
	}
}

func TestAllowedActionsTerminalStatesEmpty(t *testing.T) {
	assert.Nil(t, AllowedActions(models.ExecutionStatusFinished))
	assert.Nil(t, AllowedActions(models.ExecutionStatusCancelled))
	assert.Equal(t,
		[]models.ExecutionAction{models.ActionSchedule, models.ActionCancel},
		AllowedActions(models.ExecutionStatusPlanned),
	)
}

func TestMachineFullLifecycle(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusPlanned}
	require.NoError(t, entity.SetPlannedMaterials([]models.PlannedMaterial{
		{MaterialID: "MAT-OIL", Quantity: 2, Unit: "L"},
	}))

	// schedule
	machine := newTestMachine(t, entity, base)
	err := machine.Apply(models.ActionSchedule, &models.TransitionRequest{
		ActorID:       5,
		ResponsibleID: utils.ToPointer(uint(2)),
		ScheduledAt:   utils.ToPointer(base.Add(24 * time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusScheduled, entity.Status)
	require.NotNil(t, entity.ScheduledAt)
	assert.Equal(t, base.Add(24*time.Hour), *entity.ScheduledAt)

	// start
	startAt := base.Add(24 * time.Hour)
	machine = newTestMachine(t, entity, startAt)
	require.NoError(t, machine.Apply(models.ActionStart, startRequest()))
	assert.Equal(t, models.ExecutionStatusInProgress, entity.Status)
	assert.Equal(t, []int64{2, 3}, []int64(entity.TeamIDs))
	require.NotNil(t, entity.RealStartedAt)
	assert.Equal(t, startAt, *entity.RealStartedAt)
	require.NotNil(t, entity.PerformedBy)
	assert.Equal(t, uint(2), *entity.PerformedBy)

	// pause
	machine = newTestMachine(t, entity, startAt.Add(30*time.Minute))
	require.NoError(t, machine.Apply(models.ActionPause, &models.TransitionRequest{
		ActorID: 2,
		Reason:  "waiting for parts",
	}))
	assert.Equal(t, models.ExecutionStatusPaused, entity.Status)

	// resume
	machine = newTestMachine(t, entity, startAt.Add(90*time.Minute))
	require.NoError(t, machine.Apply(models.ActionResume, &models.TransitionRequest{ActorID: 2}))
	assert.Equal(t, models.ExecutionStatusInProgress, entity.Status)

	// finalize
	finishAt := startAt.Add(105 * time.Minute)
	machine = newTestMachine(t, entity, finishAt)
	req := finalizeRequest()
	req.ConsumedMaterials = []models.MaterialConsumptionRequest{
		{MaterialID: "MAT-OIL", Quantity: 1.5},
	}
	require.NoError(t, machine.Apply(models.ActionFinalize, req))

	assert.Equal(t, models.ExecutionStatusFinished, entity.Status)
	require.NotNil(t, entity.RealFinishedAt)
	assert.Equal(t, finishAt, *entity.RealFinishedAt)
	require.NotNil(t, entity.FinalizedBy)
	assert.Equal(t, uint(2), *entity.FinalizedBy)

	record, err := entity.DecodeConsumption()
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Len(t, record.Materials, 1)
	assert.Equal(t, "L", record.Materials[0].Unit)

	clock, err := ClockFromEntity(entity)
	require.NoError(t, err)
	assert.Equal(t, 45, clock.ElapsedMinutes(), "pause window must not count as working time")
}

func TestMachineRejectsIllegalAction(t *testing.T) {
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusPlanned}
	machine := newTestMachine(t, entity, time.Now())

	err := machine.Apply(models.ActionStart, startRequest())
	require.Error(t, err)
	assert.Equal(t, CodeInvalidTransition, ErrorCode(err))
	assert.Equal(t, models.ExecutionStatusPlanned, entity.Status, "entity must stay as loaded")
}

func TestMachineValidationFailureLeavesEntityUntouched(t *testing.T) {
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusInProgress}
	machine := newTestMachine(t, entity, time.Now())

	err := machine.Apply(models.ActionFinalize, &models.TransitionRequest{ActorID: 2})
	require.Error(t, err)
	assert.Equal(t, CodeValidationFailed, ErrorCode(err))

	issues := ValidationIssues(err)
	assert.NotEmpty(t, issues)
	assert.Equal(t, models.ExecutionStatusInProgress, entity.Status)
	assert.Empty(t, entity.Consumption)
}

func TestMachineFinalizeTwiceReportsAlreadyCommitted(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusInProgress}

	machine := newTestMachine(t, entity, base)
	require.NoError(t, machine.Apply(models.ActionFinalize, finalizeRequest()))
	assert.Equal(t, models.ExecutionStatusFinished, entity.Status)

	// A second request against the stored row must surface the single-fire
	// violation, not a generic illegal-transition error.
	machine = newTestMachine(t, entity, base.Add(time.Minute))
	err := machine.Apply(models.ActionFinalize, finalizeRequest())
	require.Error(t, err)
	assert.Equal(t, CodeAlreadyCommitted, ErrorCode(err))
}

func TestMachineCancelWritesNoConsumption(t *testing.T) {
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusInProgress}
	machine := newTestMachine(t, entity, time.Now())

	err := machine.Apply(models.ActionCancel, &models.TransitionRequest{
		ActorID: 2,
		Reason:  "machine already replaced",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCancelled, entity.Status)
	assert.Equal(t, "machine already replaced", entity.CancelReason)
	assert.Empty(t, entity.Consumption)
	assert.Nil(t, entity.RealFinishedAt, "real_finished_at is set only by finalize")
}

func TestMachineClockRegressionRejected(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusInProgress}
	require.NoError(t, entity.SetClockEvents([]models.ClockEvent{
		{Type: models.ClockEventStart, At: base},
	}))

	machine := newTestMachine(t, entity, base.Add(-time.Hour))
	err := machine.Apply(models.ActionPause, &models.TransitionRequest{
		ActorID: 2,
		Reason:  "shift change",
	})
	require.Error(t, err)
	assert.Equal(t, CodeClockRegression, ErrorCode(err))
	assert.Equal(t, models.ExecutionStatusInProgress, entity.Status)
}
