package execution

import (
	"fmt"
	"strings"

	"golang-maintenance-work-order/internal/models"
)

// ValidateTransition is the precondition gate run before every transition.
// It is pure: it inspects the current entity and the payload and returns the
// complete list of violations so a caller can surface every problem at once.
// An empty list means the transition may be applied.
func ValidateTransition(
	action models.ExecutionAction,
	entity *models.WorkOrderExecutionEntity,
	req *models.TransitionRequest,
) []models.ValidationIssue {
	var issues []models.ValidationIssue

	if req == nil {
		return []models.ValidationIssue{{Field: "payload", Message: "transition payload is required"}}
	}
	if req.ActorID == 0 {
		issues = append(issues, models.ValidationIssue{Field: "actor_id", Message: "acting user is required"})
	}

	switch action {
	case models.ActionSchedule:
		issues = append(issues, validateSchedule(req)...)
	case models.ActionStart:
		issues = append(issues, validateStart(req)...)
	case models.ActionPause:
		if blank(req.Reason) {
			issues = append(issues, models.ValidationIssue{Field: "reason", Message: "pause reason is required"})
		}
	case models.ActionResume:
		// No payload requirements beyond the actor.
	case models.ActionFinalize:
		issues = append(issues, validateFinalize(req)...)
	case models.ActionCancel:
		if blank(req.Reason) {
			issues = append(issues, models.ValidationIssue{Field: "reason", Message: "cancellation reason is required"})
		}
	}

	return issues
}

func validateSchedule(req *models.TransitionRequest) []models.ValidationIssue {
	var issues []models.ValidationIssue
	if req.ResponsibleID == nil || *req.ResponsibleID == 0 {
		issues = append(issues, models.ValidationIssue{Field: "responsible_id", Message: "responsible party is required"})
	}
	return issues
}

func validateStart(req *models.TransitionRequest) []models.ValidationIssue {
	var issues []models.ValidationIssue

	roster := NewRoster(req.TeamIDs, req.ResponsibleID)
	if roster.Empty() {
		issues = append(issues, models.ValidationIssue{Field: "team_ids", Message: "at least one crew member is required"})
	}
	if req.ResponsibleID == nil || *req.ResponsibleID == 0 {
		issues = append(issues, models.ValidationIssue{Field: "responsible_id", Message: "responsible party is required"})
	} else if !roster.Empty() && !roster.ResponsibleIsMember() {
		issues = append(issues, models.ValidationIssue{
			Field:   "responsible_id",
			Message: "responsible party must be a member of the team",
		})
	}

	return issues
}

func validateFinalize(req *models.TransitionRequest) []models.ValidationIssue {
	var issues []models.ValidationIssue

	if blank(req.ResultDescription) {
		issues = append(issues, models.ValidationIssue{Field: "result_description", Message: "result description is required"})
	}
	if blank(req.ActivitiesPerformed) {
		issues = append(issues, models.ValidationIssue{Field: "activities_performed", Message: "activities-performed description is required"})
	}
	if req.QualityRating == nil {
		issues = append(issues, models.ValidationIssue{Field: "quality_rating", Message: "quality rating is required"})
	} else if *req.QualityRating < 1 || *req.QualityRating > 5 {
		issues = append(issues, models.ValidationIssue{
			Field:   "quality_rating",
			Message: fmt.Sprintf("quality rating must be between 1 and 5, got %d", *req.QualityRating),
		})
	}
	if req.ExtraCost < 0 {
		issues = append(issues, models.ValidationIssue{Field: "extra_cost", Message: "extra cost cannot be negative"})
	}

	for i, material := range req.ConsumedMaterials {
		if blank(material.MaterialID) {
			issues = append(issues, models.ValidationIssue{
				Field:   fmt.Sprintf("consumed_materials[%d].material_id", i),
				Message: "material id is required",
			})
		}
		if material.Quantity < 0 {
			issues = append(issues, models.ValidationIssue{
				Field:   fmt.Sprintf("consumed_materials[%d].quantity", i),
				Message: "consumed quantity cannot be negative",
			})
		}
	}

	for i, tool := range req.ToolConditions {
		if blank(tool.ToolID) {
			issues = append(issues, models.ValidationIssue{
				Field:   fmt.Sprintf("tool_conditions[%d].tool_id", i),
				Message: "tool id is required",
			})
		}
		if tool.Condition != "" && !models.ToolCondition(tool.Condition).Valid() {
			issues = append(issues, models.ValidationIssue{
				Field:   fmt.Sprintf("tool_conditions[%d].condition", i),
				Message: fmt.Sprintf("unknown tool condition %q", tool.Condition),
			})
		}
	}

	return issues
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
