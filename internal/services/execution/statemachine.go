package execution

import (
	"time"

	"golang-maintenance-work-order/internal/models"
)

// transitions is the single transition table. Both the engine and the API
// layer (via AllowedActions) consult it, so the two can never drift.
var transitions = map[models.ExecutionStatus]map[models.ExecutionAction]models.ExecutionStatus{
	models.ExecutionStatusPlanned: {
		models.ActionSchedule: models.ExecutionStatusScheduled,
		models.ActionCancel:   models.ExecutionStatusCancelled,
	},
	models.ExecutionStatusScheduled: {
		models.ActionStart:  models.ExecutionStatusInProgress,
		models.ActionCancel: models.ExecutionStatusCancelled,
	},
	models.ExecutionStatusInProgress: {
		models.ActionPause:    models.ExecutionStatusPaused,
		models.ActionFinalize: models.ExecutionStatusFinished,
		models.ActionCancel:   models.ExecutionStatusCancelled,
	},
	models.ExecutionStatusPaused: {
		models.ActionResume:   models.ExecutionStatusInProgress,
		models.ActionFinalize: models.ExecutionStatusFinished,
		models.ActionCancel:   models.ExecutionStatusCancelled,
	},
}

// actionOrder keeps AllowedActions output deterministic.
var actionOrder = []models.ExecutionAction{
	models.ActionSchedule,
	models.ActionStart,
	models.ActionPause,
	models.ActionResume,
	models.ActionFinalize,
	models.ActionCancel,
}

// Target resolves the destination state for an action, if the transition
// table permits it from the given state.
func Target(from models.ExecutionStatus, action models.ExecutionAction) (models.ExecutionStatus, bool) {
	allowed, ok := transitions[from]
	if !ok {
		return "", false
	}
	target, ok := allowed[action]
	return target, ok
}

// AllowedActions lists the actions the transition table permits from the
// given state. Terminal states return nil.
func AllowedActions(from models.ExecutionStatus) []models.ExecutionAction {
	allowed, ok := transitions[from]
	if !ok {
		return nil
	}
	actions := make([]models.ExecutionAction, 0, len(allowed))
	for _, action := range actionOrder {
		if _, ok := allowed[action]; ok {
			actions = append(actions, action)
		}
	}
	return actions
}

// Machine applies lifecycle actions to one execution. It is built fresh from
// the loaded row for every request; a failed Apply leaves nothing to persist,
// so the committed state is never partially changed.
type Machine struct {
	entity *models.WorkOrderExecutionEntity
	clock  *Clock
	ledger *Ledger
	now    func() time.Time
}

func NewMachine(entity *models.WorkOrderExecutionEntity, minConsumptionQty float64, now func() time.Time) (*Machine, error) {
	clock, err := ClockFromEntity(entity)
	if err != nil {
		return nil, err
	}
	ledger, err := LedgerFromEntity(entity, minConsumptionQty)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{
		entity: entity,
		clock:  clock,
		ledger: ledger,
		now:    now,
	}, nil
}

func (m *Machine) Entity() *models.WorkOrderExecutionEntity {
	return m.entity
}

func (m *Machine) Clock() *Clock {
	return m.clock
}

// Apply validates and performs one transition. On any error the entity is
// left as loaded and the error describes exactly why the request failed.
func (m *Machine) Apply(action models.ExecutionAction, req *models.TransitionRequest) error {
	// A repeated finalize is a single-fire violation, not a plain illegal
	// transition; callers need to tell the two apart.
	if action == models.ActionFinalize && m.ledger.Committed() {
		return NewAlreadyCommitted(m.entity.ID)
	}

	target, ok := Target(m.entity.Status, action)
	if !ok {
		return NewInvalidTransition(m.entity.Status, action)
	}

	if issues := ValidateTransition(action, m.entity, req); len(issues) > 0 {
		return NewValidationFailed(issues)
	}

	now := m.now()

	var err error
	switch action {
	case models.ActionSchedule:
		err = m.applySchedule(req, now)
	case models.ActionStart:
		err = m.applyStart(req, now)
	case models.ActionPause:
		err = m.applyPause(req, now)
	case models.ActionResume:
		err = m.applyResume(req, now)
	case models.ActionFinalize:
		err = m.applyFinalize(req, now)
	case models.ActionCancel:
		err = m.applyCancel(req)
	default:
		return NewInvalidTransition(m.entity.Status, action)
	}
	if err != nil {
		return err
	}

	m.entity.Status = target
	return m.entity.SetClockEvents(m.clock.Events())
}

func (m *Machine) applySchedule(req *models.TransitionRequest, now time.Time) error {
	scheduledAt := now
	if req.ScheduledAt != nil {
		scheduledAt = *req.ScheduledAt
	}
	m.entity.ScheduledAt = &scheduledAt
	m.entity.ResponsibleID = req.ResponsibleID
	if len(req.TeamIDs) > 0 {
		m.entity.TeamIDs = NewRoster(req.TeamIDs, req.ResponsibleID).MemberIDs()
	}
	return nil
}

func (m *Machine) applyStart(req *models.TransitionRequest, now time.Time) error {
	if err := m.clock.Append(models.ClockEventStart, now, req.Note); err != nil {
		return err
	}
	roster := NewRoster(req.TeamIDs, req.ResponsibleID)
	m.entity.TeamIDs = roster.MemberIDs()
	m.entity.ResponsibleID = req.ResponsibleID
	m.entity.RealStartedAt = &now
	m.entity.PerformedBy = &req.ActorID
	return nil
}

func (m *Machine) applyPause(req *models.TransitionRequest, now time.Time) error {
	return m.clock.Append(models.ClockEventPause, now, req.Reason)
}

func (m *Machine) applyResume(req *models.TransitionRequest, now time.Time) error {
	return m.clock.Append(models.ClockEventResume, now, req.Note)
}

func (m *Machine) applyFinalize(req *models.TransitionRequest, now time.Time) error {
	record, err := m.ledger.Commit(req.ConsumedMaterials, req.ToolConditions, req.ExtraCost, now)
	if err != nil {
		return err
	}
	if err := m.clock.Append(models.ClockEventFinish, now, ""); err != nil {
		return err
	}
	if err := m.entity.SetConsumption(record); err != nil {
		return err
	}

	m.entity.RealFinishedAt = &now
	m.entity.ExtraCost = req.ExtraCost
	m.entity.ResultDescription = req.ResultDescription
	m.entity.ActivitiesPerformed = req.ActivitiesPerformed
	m.entity.ProblemsFound = req.ProblemsFound
	m.entity.Recommendations = req.Recommendations
	m.entity.NextMaintenanceDate = req.NextMaintenanceDate
	m.entity.QualityRating = req.QualityRating
	m.entity.QualityNotes = req.QualityNotes
	m.entity.FinalizedBy = &req.ActorID
	if len(req.AttachmentIDs) > 0 {
		m.entity.AttachmentIDs = append([]string(nil), req.AttachmentIDs...)
	}
	return nil
}

func (m *Machine) applyCancel(req *models.TransitionRequest) error {
	// No ledger commit: a cancelled execution has no consumption record.
	m.entity.CancelReason = req.Reason
	return nil
}
