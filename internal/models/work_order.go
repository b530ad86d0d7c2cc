package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type WorkOrderPriority string

const (
	PriorityLow      WorkOrderPriority = "low"
	PriorityMedium   WorkOrderPriority = "medium"
	PriorityHigh     WorkOrderPriority = "high"
	PriorityCritical WorkOrderPriority = "critical"
)

// WorkOrderEntity is the maintenance job ("OS"). Lifecycle state lives on the
// execution, not here.
type WorkOrderEntity struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Code        string            `gorm:"type:varchar(50);unique;not null" json:"code"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	PlanID      *uint             `gorm:"index" json:"plan_id"`
	LocationID  *uint             `gorm:"index" json:"location_id"`
	Priority    WorkOrderPriority `gorm:"type:varchar(20);not null;default:medium" json:"priority"`
	RequestedBy *uint             `json:"requested_by"`

	Plan     *MaintenancePlanEntity `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Location *LocationEntity        `gorm:"foreignKey:LocationID" json:"location,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (WorkOrderEntity) TableName() string {
	return "work_orders"
}

// MaintenancePlanEntity is the task/plan template that seeds planned
// resources and the default crew when a work order is scheduled.
type MaintenancePlanEntity struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Name           string        `gorm:"not null" json:"name"`
	Description    string        `gorm:"type:text" json:"description"`
	FrequencyDays  int           `json:"frequency_days"`
	DefaultTeamIDs pq.Int64Array `gorm:"type:bigint[]" json:"default_team_ids"`

	Materials []PlannedMaterialEntity `gorm:"foreignKey:PlanID" json:"materials,omitempty"`
	Tools     []PlannedToolEntity     `gorm:"foreignKey:PlanID" json:"tools,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MaintenancePlanEntity) TableName() string {
	return "maintenance_plans"
}

type PlannedMaterialEntity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlanID     uint      `gorm:"not null;index" json:"plan_id"`
	MaterialID string    `gorm:"type:varchar(50);not null" json:"material_id"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	Unit       string    `gorm:"type:varchar(20);not null" json:"unit"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PlannedMaterialEntity) TableName() string {
	return "maintenance_plan_materials"
}

func (m PlannedMaterialEntity) ToSnapshot() PlannedMaterial {
	return PlannedMaterial{
		MaterialID: m.MaterialID,
		Quantity:   m.Quantity,
		Unit:       m.Unit,
	}
}

type PlannedToolEntity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlanID    uint      `gorm:"not null;index" json:"plan_id"`
	ToolID    string    `gorm:"type:varchar(50);not null" json:"tool_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PlannedToolEntity) TableName() string {
	return "maintenance_plan_tools"
}

func (t PlannedToolEntity) ToSnapshot() PlannedTool {
	return PlannedTool{
		ToolID: t.ToolID,
		Name:   t.Name,
	}
}

type WorkOrderQueryParam struct {
	IDs         []uint   `json:"ids"`
	Codes       []string `json:"codes"`
	LocationIDs []uint   `json:"location_ids"`
	PlanIDs     []uint   `json:"plan_ids"`
	Limit       *int     `json:"limit"`
}
