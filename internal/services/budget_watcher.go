package services

import (
	"encoding/json"
	"fmt"
	"log"

	"pocketlog/internal/metrics"
	"pocketlog/internal/models"

	amqp "github.com/streadway/amqp"
)

// BudgetWatcher consumes spending.created events and reports months that went over budget.
type BudgetWatcher struct {
	goals *GoalService
}

func NewBudgetWatcher(goals *GoalService) *BudgetWatcher {
	return &BudgetWatcher{goals: goals}
}

// HandleDelivery is the rabbitmq consumer callback. Undecodable messages return an error and are dropped.
func (w *BudgetWatcher) HandleDelivery(msg amqp.Delivery) error {
	var event SpendingCreatedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to decode spending.created event: %w", err)
	}
	_, err := w.Check(event)
	return err
}

// Check returns the budget status of the event's month, or nil when that month has no goal.
func (w *BudgetWatcher) Check(event SpendingCreatedEvent) (*models.BudgetStatus, error) {
	date, err := models.ParseDate(event.Date)
	if err != nil {
		return nil, fmt.Errorf("spending.created event %d has bad date %q: %w", event.SpendingID, event.Date, err)
	}

	status, err := w.goals.BudgetStatus(event.KakaoID, date)
	if err != nil {
		return nil, err
	}
	if status.Target.IsZero() {
		return nil, nil
	}
	if status.Exceeded {
		metrics.BudgetExceeded.Inc()
		log.Printf("Budget exceeded: user %d spent %s of %s in %s", event.KakaoID, status.Spent, status.Target, status.Month)
	}
	return status, nil
}
