package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionAdvance AuditAction = "ADVANCE"
)

type AuditOutcome string

const (
	AuditOutcomeSucceeded AuditOutcome = "SUCCEEDED"
	AuditOutcomeFailed    AuditOutcome = "FAILED"
	AuditOutcomeCancelled AuditOutcome = "CANCELLED"
)

// AuditEntry records one mutating action issued through the console.
type AuditEntry struct {
	ID         string       `json:"id"`
	OrderID    string       `json:"orderId,omitempty"`
	Action     AuditAction  `json:"action"`
	FromStatus OrderStatus  `json:"fromStatus,omitempty"`
	ToStatus   OrderStatus  `json:"toStatus,omitempty"`
	Actor      string       `json:"actor"`
	Outcome    AuditOutcome `json:"outcome"`
	Message    string       `json:"message,omitempty"`
	RecordedAt time.Time    `json:"recordedAt"`
}
