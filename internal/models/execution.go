package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ExecutionStatus string

const (
	ExecutionStatusPlanned    ExecutionStatus = "PLANNED"
	ExecutionStatusScheduled  ExecutionStatus = "SCHEDULED"
	ExecutionStatusInProgress ExecutionStatus = "IN_PROGRESS"
	ExecutionStatusPaused     ExecutionStatus = "PAUSED"
	ExecutionStatusFinished   ExecutionStatus = "FINISHED"
	ExecutionStatusCancelled  ExecutionStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is permitted.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusFinished || s == ExecutionStatusCancelled
}

type ExecutionAction string

const (
	ActionSchedule ExecutionAction = "schedule"
	ActionStart    ExecutionAction = "start"
	ActionPause    ExecutionAction = "pause"
	ActionResume   ExecutionAction = "resume"
	ActionFinalize ExecutionAction = "finalize"
	ActionCancel   ExecutionAction = "cancel"
)

type ClockEventType string

const (
	ClockEventStart  ClockEventType = "START"
	ClockEventPause  ClockEventType = "PAUSE"
	ClockEventResume ClockEventType = "RESUME"
	ClockEventFinish ClockEventType = "FINISH"
)

// ClockEvent is one entry of the append-only execution time log.
type ClockEvent struct {
	Type ClockEventType `json:"type"`
	At   time.Time      `json:"at"`
	Note string         `json:"note,omitempty"`
}

type ToolCondition string

const (
	ToolConditionGood    ToolCondition = "GOOD"
	ToolConditionFair    ToolCondition = "FAIR"
	ToolConditionPoor    ToolCondition = "POOR"
	ToolConditionDamaged ToolCondition = "DAMAGED"
)

func (c ToolCondition) Valid() bool {
	switch c {
	case ToolConditionGood, ToolConditionFair, ToolConditionPoor, ToolConditionDamaged:
		return true
	}
	return false
}

// PlannedMaterial is one line of the planned-resource snapshot taken from the
// maintenance plan. The snapshot is immutable once execution starts.
type PlannedMaterial struct {
	MaterialID string  `json:"material_id"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
}

type PlannedTool struct {
	ToolID string `json:"tool_id"`
	Name   string `json:"name,omitempty"`
}

// MaterialConsumption is one reconciled consumption line. Unplanned marks a
// material that was consumed without appearing in the planned snapshot.
type MaterialConsumption struct {
	MaterialID string  `json:"material_id"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit,omitempty"`
	Unplanned  bool    `json:"unplanned,omitempty"`
	Note       string  `json:"note,omitempty"`
}

type ToolUsage struct {
	ToolID    string        `json:"tool_id"`
	Condition ToolCondition `json:"condition"`
	Note      string        `json:"note,omitempty"`
}

// ConsumptionRecord is the immutable outcome of ResourceLedger.Commit,
// written exactly once when the execution finalizes.
type ConsumptionRecord struct {
	Materials   []MaterialConsumption `json:"materials"`
	Tools       []ToolUsage           `json:"tools"`
	ExtraCost   float64               `json:"extra_cost,omitempty"`
	CommittedAt time.Time             `json:"committed_at"`
}

type WorkOrderExecutionEntity struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	WorkOrderID uint            `gorm:"not null;index" json:"work_order_id"`
	Status      ExecutionStatus `gorm:"type:varchar(20);not null;default:PLANNED" json:"status"`

	ScheduledAt    *time.Time     `json:"scheduled_at"`
	RealStartedAt  *time.Time     `json:"real_started_at"`
	RealFinishedAt *time.Time     `json:"real_finished_at"`
	ClockEvents    datatypes.JSON `gorm:"type:jsonb" json:"clock_events"`

	TeamIDs       pq.Int64Array `gorm:"type:bigint[]" json:"team_ids"`
	ResponsibleID *uint         `json:"responsible_id"`

	PlannedMaterials datatypes.JSON `gorm:"type:jsonb" json:"planned_materials"`
	PlannedTools     datatypes.JSON `gorm:"type:jsonb" json:"planned_tools"`

	// Populated only at finalization.
	Consumption datatypes.JSON `gorm:"type:jsonb" json:"consumption"`
	ExtraCost   float64        `json:"extra_cost"`

	ResultDescription   string     `gorm:"type:text" json:"result_description"`
	ActivitiesPerformed string     `gorm:"type:text" json:"activities_performed"`
	ProblemsFound       string     `gorm:"type:text" json:"problems_found"`
	Recommendations     string     `gorm:"type:text" json:"recommendations"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
	QualityRating       *int       `json:"quality_rating"`
	QualityNotes        string     `gorm:"type:text" json:"quality_notes"`

	CancelReason  string         `gorm:"type:text" json:"cancel_reason"`
	AttachmentIDs pq.StringArray `gorm:"type:text[]" json:"attachment_ids"`

	PerformedBy   *uint      `json:"performed_by"`
	FinalizedBy   *uint      `json:"finalized_by"`
	ApprovedBy    *uint      `json:"approved_by"`
	ApprovedAt    *time.Time `json:"approved_at"`
	ApprovalNotes string     `gorm:"type:text" json:"approval_notes"`

	WorkOrder *WorkOrderEntity `gorm:"foreignKey:WorkOrderID" json:"work_order,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkOrderExecutionEntity) TableName() string {
	return "work_order_executions"
}

func (e *WorkOrderExecutionEntity) DecodeClockEvents() ([]ClockEvent, error) {
	if len(e.ClockEvents) == 0 {
		return nil, nil
	}
	var events []ClockEvent
	if err := json.Unmarshal(e.ClockEvents, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (e *WorkOrderExecutionEntity) SetClockEvents(events []ClockEvent) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return err
	}
	e.ClockEvents = datatypes.JSON(raw)
	return nil
}

func (e *WorkOrderExecutionEntity) DecodePlannedMaterials() ([]PlannedMaterial, error) {
	if len(e.PlannedMaterials) == 0 {
		return nil, nil
	}
	var materials []PlannedMaterial
	if err := json.Unmarshal(e.PlannedMaterials, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

func (e *WorkOrderExecutionEntity) SetPlannedMaterials(materials []PlannedMaterial) error {
	raw, err := json.Marshal(materials)
	if err != nil {
		return err
	}
	e.PlannedMaterials = datatypes.JSON(raw)
	return nil
}

func (e *WorkOrderExecutionEntity) DecodePlannedTools() ([]PlannedTool, error) {
	if len(e.PlannedTools) == 0 {
		return nil, nil
	}
	var tools []PlannedTool
	if err := json.Unmarshal(e.PlannedTools, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

func (e *WorkOrderExecutionEntity) SetPlannedTools(tools []PlannedTool) error {
	raw, err := json.Marshal(tools)
	if err != nil {
		return err
	}
	e.PlannedTools = datatypes.JSON(raw)
	return nil
}

func (e *WorkOrderExecutionEntity) DecodeConsumption() (*ConsumptionRecord, error) {
	if len(e.Consumption) == 0 {
		return nil, nil
	}
	var record ConsumptionRecord
	if err := json.Unmarshal(e.Consumption, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (e *WorkOrderExecutionEntity) SetConsumption(record *ConsumptionRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	e.Consumption = datatypes.JSON(raw)
	return nil
}

type ExecutionQueryParam struct {
	IDs          []uint            `json:"ids"`
	WorkOrderIDs []uint            `json:"work_order_ids"`
	Statuses     []ExecutionStatus `json:"statuses"`
	Limit        *int              `json:"limit"`
}
