package models

import "time"

const (
	RedisStreamExecutionEvents = "maintenance:execution:events"
)

// ExecutionEventPayload is published to the execution event stream after a
// transition commits. Consumers (dashboards, notifiers) treat it as
// informational; the database row stays the single source of truth.
type ExecutionEventPayload struct {
	ExecutionID   uint            `json:"execution_id"`
	WorkOrderID   uint            `json:"work_order_id"`
	WorkOrderCode string          `json:"work_order_code,omitempty"`
	Action        ExecutionAction `json:"action"`
	FromStatus    ExecutionStatus `json:"from_status"`
	ToStatus      ExecutionStatus `json:"to_status"`
	ActorID       uint            `json:"actor_id"`
	At            time.Time       `json:"at"`
	// Set only when the transition closed the clock (finalize).
	ElapsedMinutes int `json:"elapsed_minutes,omitempty"`
}
