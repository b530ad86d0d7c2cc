package execution

import (
	"fmt"
	"time"

	"github.com/goliatone/go-errors"

	"golang-maintenance-work-order/internal/models"
)

// Text codes carried by every engine error. The HTTP layer maps them to
// status codes; operators see them verbatim.
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeAlreadyCommitted  = "ALREADY_COMMITTED"
	CodeClockRegression   = "CLOCK_REGRESSION"
	CodeNotFound          = "EXECUTION_NOT_FOUND"
	CodeAlreadyApproved   = "ALREADY_APPROVED"
)

const metadataIssuesKey = "issues"

func NewInvalidTransition(current models.ExecutionStatus, action models.ExecutionAction) error {
	return errors.New(
		fmt.Sprintf("action %q is not allowed in state %q", action, current),
		errors.CategoryConflict,
	).WithTextCode(CodeInvalidTransition).
		WithMetadata(map[string]any{
			"current_state":    string(current),
			"requested_action": string(action),
		})
}

func NewValidationFailed(issues []models.ValidationIssue) error {
	return errors.New(
		fmt.Sprintf("transition validation failed with %d issue(s)", len(issues)),
		errors.CategoryValidation,
	).WithTextCode(CodeValidationFailed).
		WithMetadata(map[string]any{
			metadataIssuesKey: issues,
		})
}

func NewAlreadyCommitted(executionID uint) error {
	return errors.New(
		"consumption record has already been committed",
		errors.CategoryConflict,
	).WithTextCode(CodeAlreadyCommitted).
		WithMetadata(map[string]any{
			"execution_id": executionID,
		})
}

func NewClockRegression(last, next time.Time) error {
	return errors.New(
		"clock event is earlier than the last recorded event",
		errors.CategoryConflict,
	).WithTextCode(CodeClockRegression).
		WithMetadata(map[string]any{
			"last_event_at": last,
			"next_event_at": next,
		})
}

func NewNotFound(executionID uint) error {
	return errors.New(
		fmt.Sprintf("execution %d not found", executionID),
		errors.CategoryBadInput,
	).WithTextCode(CodeNotFound).
		WithMetadata(map[string]any{
			"execution_id": executionID,
		})
}

func NewAlreadyApproved(executionID uint) error {
	return errors.New(
		"execution has already been approved",
		errors.CategoryConflict,
	).WithTextCode(CodeAlreadyApproved).
		WithMetadata(map[string]any{
			"execution_id": executionID,
		})
}

// ErrorCode extracts the engine text code from an error chain, or "".
func ErrorCode(err error) string {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

// ValidationIssues returns the issue list carried by a VALIDATION_FAILED
// error, or nil for any other error.
func ValidationIssues(err error) []models.ValidationIssue {
	var rich *errors.Error
	if !errors.As(err, &rich) || rich.TextCode != CodeValidationFailed {
		return nil
	}
	issues, ok := rich.Metadata[metadataIssuesKey].([]models.ValidationIssue)
	if !ok {
		return nil
	}
	return issues
}
