package models

import (
	"fmt"
	"strings"

	"github.com/Renal37/fuel-orders/internal/utils"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// forwardTransitions lists the only status change offered from each status.
// CANCELLED is set by the backend and has no forward transition.
var forwardTransitions = map[OrderStatus]OrderStatus{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusCompleted,
}

var knownStatuses = map[OrderStatus]struct{}{
	StatusPending:   {},
	StatusConfirmed: {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Next returns the legal forward status, ok is false for terminal statuses.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := forwardTransitions[s]
	return next, ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s OrderStatus) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(value)))

	if !status.IsKnown() {
		return "", fmt.Errorf("unknown order status %q", value)
	}

	return status, nil
}

// Order is a fuel delivery request as reported by the backend.
type Order struct {
	ID                  string          `json:"id"`
	TailNumber          string          `json:"tailNumber"`
	AirportIcao         string          `json:"airportIcao"`
	RequestedFuelVolume float64         `json:"requestedFuelVolume"`
	DeliveryWindowStart utils.Timestamp `json:"deliveryWindowStart"`
	DeliveryWindowEnd   utils.Timestamp `json:"deliveryWindowEnd"`
	Status              OrderStatus     `json:"status"`
	CreatedAt           utils.Timestamp `json:"createdAt"`
}

// NewOrder is an order submission before the backend assigns id, status and creation time.
type NewOrder struct {
	TailNumber          string          `json:"tailNumber"`
	AirportIcao         string          `json:"airportIcao"`
	RequestedFuelVolume float64         `json:"requestedFuelVolume"`
	DeliveryWindowStart utils.Timestamp `json:"deliveryWindowStart"`
	DeliveryWindowEnd   utils.Timestamp `json:"deliveryWindowEnd"`
}

// AdvanceIntent is a proposed forward status change waiting for confirmation.
type AdvanceIntent struct {
	OrderID string      `json:"orderId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

func (i AdvanceIntent) Prompt() string {
	return fmt.Sprintf("Are you sure you want to mark this order as %s?", i.To)
}
