package services

import (
	"log"

	"github.com/shopspring/decimal"
)

// EventPublisher sends domain events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// SpendingCreatedEvent is published after a ledger entry is stored.
type SpendingCreatedEvent struct {
	SpendingID uint            `json:"spendingId"`
	KakaoID    int64           `json:"kakaoId"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
}

// UserRegisteredEvent is published when a login creates a new user.
type UserRegisteredEvent struct {
	KakaoID  int64  `json:"kakaoId"`
	Nickname string `json:"nickname"`
}

// publishEvent never fails the caller; a missing publisher or a broker error is only logged.
func publishEvent(p EventPublisher, routingKey string, payload interface{}) {
	if p == nil {
		log.Printf("Event publisher is not configured. Skipping %s event.", routingKey)
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
