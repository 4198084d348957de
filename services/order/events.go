package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicName              = "order"
	orderCreatedName       = TopicName + ".created"
	orderStatusChangedName = TopicName + ".statusChanged"
)

type OrderCreated struct {
	SessionID   string
	Email       string
	TotalAmount decimal.Decimal
	Currency    string
}

func (e OrderCreated) GetEventTypeName() string {
	return orderCreatedName
}

func (e OrderCreated) GetAggregateName() string {
	return e.SessionID
}

// OrderStatusChanged carries the moment of change, so a transition that happens twice is published twice.
type OrderStatusChanged struct {
	SessionID string
	OldStatus Status
	NewStatus Status
	ChangedAt time.Time
}

func (e OrderStatusChanged) GetEventTypeName() string {
	return orderStatusChangedName
}

func (e OrderStatusChanged) GetAggregateName() string {
	return e.SessionID
}
