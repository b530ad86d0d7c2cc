package models

import "time"

// MaterialConsumptionRequest is one consumed-material line as reported by the
// field technician at finalization. Quantity carries no binding rule: a zero
// or negligible quantity is a valid report that the ledger drops rather than
// records, and a negative one is rejected by the transition gate.
type MaterialConsumptionRequest struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity"`
	Note       string  `json:"note"`
}

type ToolConditionRequest struct {
	ToolID    string `json:"tool_id" binding:"required"`
	Condition string `json:"condition"`
	Note      string `json:"note"`
}

// TransitionRequest carries the payload for every lifecycle action. Which
// fields are required depends on the action; the ValidationGate enforces the
// per-action contract.
type TransitionRequest struct {
	Action  string `json:"action" binding:"required"`
	ActorID uint   `json:"actor_id" binding:"required"`

	// schedule / start
	ResponsibleID *uint      `json:"responsible_id"`
	TeamIDs       []int64    `json:"team_ids"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	Note          string     `json:"note"`

	// pause / cancel
	Reason string `json:"reason"`

	// finalize
	ResultDescription   string                       `json:"result_description"`
	ActivitiesPerformed string                       `json:"activities_performed"`
	ProblemsFound       string                       `json:"problems_found"`
	Recommendations     string                       `json:"recommendations"`
	NextMaintenanceDate *time.Time                   `json:"next_maintenance_date"`
	QualityRating       *int                         `json:"quality_rating"`
	QualityNotes        string                       `json:"quality_notes"`
	ConsumedMaterials   []MaterialConsumptionRequest `json:"consumed_materials" binding:"omitempty,dive"`
	ToolConditions      []ToolConditionRequest       `json:"tool_conditions" binding:"omitempty,dive"`
	ExtraCost           float64                      `json:"extra_cost"`
	AttachmentIDs       []string                     `json:"attachment_ids"`
}

type ApprovalRequest struct {
	ApproverID uint   `json:"approver_id" binding:"required"`
	Notes      string `json:"notes"`
}

type CreateWorkOrderRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	PlanID      *uint      `json:"plan_id"`
	LocationID  *uint      `json:"location_id"`
	Priority    string     `json:"priority"`
	RequestedBy uint       `json:"requested_by" binding:"required"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// ExecutionResponse is the read model returned by the API: the entity plus
// the derived fields every screen needs (elapsed time, next legal actions,
// location label).
type ExecutionResponse struct {
	Execution      *WorkOrderExecutionEntity `json:"execution"`
	ElapsedMinutes int                       `json:"elapsed_minutes"`
	AllowedActions []ExecutionAction         `json:"allowed_actions"`
	LocationLabel  string                    `json:"location_label,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details []ValidationIssue `json:"details,omitempty"`
}

// ValidationIssue is the wire form of one ValidationGate failure.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
