package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

func TestValidateTransition(t *testing.T) {
	entity := &models.WorkOrderExecutionEntity{ID: 1, Status: models.ExecutionStatusInProgress}

	tests := []struct {
		name       string
		action     models.ExecutionAction
		req        *models.TransitionRequest
		wantFields []string
	}{
		{
			name:   "schedule requires responsible",
			action: models.ActionSchedule,
			req: &models.TransitionRequest{
				ActorID: 1,
			},
			wantFields: []string{"responsible_id"},
		},
		{
			name:   "start requires crew and member responsible",
			action: models.ActionStart,
			req: &models.TransitionRequest{
				ActorID:       1,
				ResponsibleID: utils.ToPointer(uint(9)),
				TeamIDs:       []int64{2, 3},
			},
			wantFields: []string{"responsible_id"},
		},
		{
			name:   "start with empty crew",
			action: models.ActionStart,
			req: &models.TransitionRequest{
				ActorID: 1,
			},
			wantFields: []string{"team_ids", "responsible_id"},
		},
		{
			name:   "start valid",
			action: models.ActionStart,
			req: &models.TransitionRequest{
				ActorID:       1,
				ResponsibleID: utils.ToPointer(uint(2)),
				TeamIDs:       []int64{2, 3},
			},
		},
		{
			name:       "pause requires reason",
			action:     models.ActionPause,
			req:        &models.TransitionRequest{ActorID: 1, Reason: "   "},
			wantFields: []string{"reason"},
		},
		{
			name:   "resume needs only actor",
			action: models.ActionResume,
			req:    &models.TransitionRequest{ActorID: 1},
		},
		{
			name:       "cancel requires reason",
			action:     models.ActionCancel,
			req:        &models.TransitionRequest{ActorID: 1},
			wantFields: []string{"reason"},
		},
		{
			name:   "finalize missing everything",
			action: models.ActionFinalize,
			req:    &models.TransitionRequest{ActorID: 1},
			wantFields: []string{
				"result_description",
				"activities_performed",
				"quality_rating",
			},
		},
		{
			name:   "finalize rating out of range",
			action: models.ActionFinalize,
			req: &models.TransitionRequest{
				ActorID:             1,
				ResultDescription:   "pump rebuilt",
				ActivitiesPerformed: "replaced bearings",
				QualityRating:       utils.ToPointer(6),
			},
			wantFields: []string{"quality_rating"},
		},
		{
			name:   "finalize negative quantities and unknown condition",
			action: models.ActionFinalize,
			req: &models.TransitionRequest{
				ActorID:             1,
				ResultDescription:   "pump rebuilt",
				ActivitiesPerformed: "replaced bearings",
				QualityRating:       utils.ToPointer(4),
				ExtraCost:           -5,
				ConsumedMaterials: []models.MaterialConsumptionRequest{
					{MaterialID: "MAT-OIL", Quantity: -1},
				},
				ToolConditions: []models.ToolConditionRequest{
					{ToolID: "TOOL-WRENCH", Condition: "BROKEN"},
				},
			},
			wantFields: []string{
				"extra_cost",
				"consumed_materials[0].quantity",
				"tool_conditions[0].condition",
			},
		},
		{
			name:   "finalize valid",
			action: models.ActionFinalize,
			req: &models.TransitionRequest{
				ActorID:             1,
				ResultDescription:   "pump rebuilt",
				ActivitiesPerformed: "replaced bearings",
				QualityRating:       utils.ToPointer(4),
			},
		},
		{
			name:       "missing actor",
			action:     models.ActionResume,
			req:        &models.TransitionRequest{},
			wantFields: []string{"actor_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateTransition(tt.action, entity, tt.req)

			var fields []string
			for _, issue := range issues {
				fields = append(fields, issue.Field)
			}
			if len(tt.wantFields) == 0 {
				assert.Empty(t, issues)
				return
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestValidateTransitionNilPayload(t *testing.T) {
	issues := ValidateTransition(models.ActionStart, &models.WorkOrderExecutionEntity{}, nil)
	assert.Len(t, issues, 1)
	assert.Equal(t, "payload", issues[0].Field)
}
