package execution

import (
	"time"

	"golang-maintenance-work-order/internal/models"
)

// DefaultMinConsumptionQty is the minimum quantity a consumed-material entry
// must report to be recorded. Entries below the threshold are dropped: a
// material that was planned but not used is omitted from the consumption
// record rather than written with a zero quantity.
const DefaultMinConsumptionQty = 0.01

// Ledger reconciles reported consumption against the planned-resource
// snapshot of one execution. Commit fires exactly once.
type Ledger struct {
	plannedMaterials []models.PlannedMaterial
	plannedTools     []models.PlannedTool
	minQty           float64
	committed        bool
	executionID      uint
}

func NewLedger(executionID uint, materials []models.PlannedMaterial, tools []models.PlannedTool, minQty float64) *Ledger {
	if minQty <= 0 {
		minQty = DefaultMinConsumptionQty
	}
	return &Ledger{
		plannedMaterials: append([]models.PlannedMaterial(nil), materials...),
		plannedTools:     append([]models.PlannedTool(nil), tools...),
		minQty:           minQty,
		executionID:      executionID,
	}
}

func LedgerFromEntity(entity *models.WorkOrderExecutionEntity, minQty float64) (*Ledger, error) {
	materials, err := entity.DecodePlannedMaterials()
	if err != nil {
		return nil, err
	}
	tools, err := entity.DecodePlannedTools()
	if err != nil {
		return nil, err
	}
	ledger := NewLedger(entity.ID, materials, tools, minQty)
	ledger.committed = len(entity.Consumption) > 0
	return ledger, nil
}

func (l *Ledger) Committed() bool {
	return l.committed
}

func (l *Ledger) PlannedMaterials() []models.PlannedMaterial {
	return append([]models.PlannedMaterial(nil), l.plannedMaterials...)
}

func (l *Ledger) PlannedTools() []models.PlannedTool {
	return append([]models.PlannedTool(nil), l.plannedTools...)
}

// Commit reconciles the reported consumption and returns the immutable
// record. Reported materials not present in the planned snapshot are still
// accepted but flagged as unplanned. Planned tools with no reported condition
// default to GOOD.
func (l *Ledger) Commit(
	consumed []models.MaterialConsumptionRequest,
	toolConditions []models.ToolConditionRequest,
	extraCost float64,
	at time.Time,
) (*models.ConsumptionRecord, error) {
	if l.committed {
		return nil, NewAlreadyCommitted(l.executionID)
	}

	record := &models.ConsumptionRecord{
		ExtraCost:   extraCost,
		CommittedAt: at,
	}

	for _, entry := range consumed {
		if entry.Quantity < l.minQty {
			continue
		}
		planned, found := l.findPlannedMaterial(entry.MaterialID)
		consumption := models.MaterialConsumption{
			MaterialID: entry.MaterialID,
			Quantity:   entry.Quantity,
			Note:       entry.Note,
			Unplanned:  !found,
		}
		if found {
			consumption.Unit = planned.Unit
		}
		record.Materials = append(record.Materials, consumption)
	}

	reported := make(map[string]models.ToolConditionRequest, len(toolConditions))
	for _, entry := range toolConditions {
		reported[entry.ToolID] = entry
	}

	for _, tool := range l.plannedTools {
		usage := models.ToolUsage{
			ToolID:    tool.ToolID,
			Condition: models.ToolConditionGood,
		}
		if entry, ok := reported[tool.ToolID]; ok {
			if entry.Condition != "" {
				usage.Condition = models.ToolCondition(entry.Condition)
			}
			usage.Note = entry.Note
			delete(reported, tool.ToolID)
		}
		record.Tools = append(record.Tools, usage)
	}

	// Conditions reported for tools outside the planned snapshot are kept:
	// field crews do grab unplanned tooling.
	for _, entry := range toolConditions {
		if _, pending := reported[entry.ToolID]; !pending {
			continue
		}
		condition := models.ToolCondition(entry.Condition)
		if condition == "" {
			condition = models.ToolConditionGood
		}
		record.Tools = append(record.Tools, models.ToolUsage{
			ToolID:    entry.ToolID,
			Condition: condition,
			Note:      entry.Note,
		})
	}

	l.committed = true
	return record, nil
}

func (l *Ledger) findPlannedMaterial(materialID string) (models.PlannedMaterial, bool) {
	for _, material := range l.plannedMaterials {
		if material.MaterialID == materialID {
			return material, true
		}
	}
	return models.PlannedMaterial{}, false
}
