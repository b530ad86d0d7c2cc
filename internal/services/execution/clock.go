package execution

import (
	"time"

	"golang-maintenance-work-order/internal/models"
)

// Clock tracks the append-only {START, PAUSE, RESUME, FINISH} event log of
// one execution. Elapsed time is recomputed from the log on every query so it
// can never drift from the recorded events.
type Clock struct {
	events []models.ClockEvent
}

func NewClock(events []models.ClockEvent) *Clock {
	return &Clock{events: append([]models.ClockEvent(nil), events...)}
}

func ClockFromEntity(entity *models.WorkOrderExecutionEntity) (*Clock, error) {
	events, err := entity.DecodeClockEvents()
	if err != nil {
		return nil, err
	}
	return NewClock(events), nil
}

// Append records an event. Events must not run backward: a timestamp earlier
// than the last recorded event is rejected.
func (c *Clock) Append(eventType models.ClockEventType, at time.Time, note string) error {
	if last, ok := c.last(); ok && at.Before(last.At) {
		return NewClockRegression(last.At, at)
	}
	c.events = append(c.events, models.ClockEvent{
		Type: eventType,
		At:   at,
		Note: note,
	})
	return nil
}

func (c *Clock) Events() []models.ClockEvent {
	return append([]models.ClockEvent(nil), c.events...)
}

// Running reports whether an interval is currently open.
func (c *Clock) Running() bool {
	last, ok := c.last()
	if !ok {
		return false
	}
	return last.Type == models.ClockEventStart || last.Type == models.ClockEventResume
}

// ElapsedMinutes sums the closed intervals between each START/RESUME and the
// next PAUSE/FINISH. A currently-open interval is excluded.
func (c *Clock) ElapsedMinutes() int {
	return c.elapsedMinutes(nil)
}

// ElapsedMinutesAt additionally counts a currently-open interval up to the
// given instant. Used for display while the execution is running.
func (c *Clock) ElapsedMinutesAt(now time.Time) int {
	return c.elapsedMinutes(&now)
}

func (c *Clock) elapsedMinutes(now *time.Time) int {
	var elapsed time.Duration
	var openedAt *time.Time

	for _, event := range c.events {
		switch event.Type {
		case models.ClockEventStart, models.ClockEventResume:
			if openedAt == nil {
				at := event.At
				openedAt = &at
			}
		case models.ClockEventPause, models.ClockEventFinish:
			if openedAt != nil {
				elapsed += event.At.Sub(*openedAt)
				openedAt = nil
			}
		}
	}

	if openedAt != nil && now != nil && now.After(*openedAt) {
		elapsed += now.Sub(*openedAt)
	}

	return int(elapsed.Minutes())
}

func (c *Clock) last() (models.ClockEvent, bool) {
	if len(c.events) == 0 {
		return models.ClockEvent{}, false
	}
	return c.events[len(c.events)-1], true
}
