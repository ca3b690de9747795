package models

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_auth.go . AuthService
type AuthService interface {
	Register(ctx context.Context, registration Registration) error

	Login(ctx context.Context, credentials Credentials) (*Session, error)
}

//go:generate mockgen -destination=mocks/mock_jwt.go . JWTService
type JWTService interface {
	Decode(token string) *Session
}

//go:generate mockgen -destination=mocks/mock_order.go . OrderService
type OrderService interface {
	CreateOrder(ctx context.Context, session *Session, order NewOrder) (*Order, error)

	ListOrders(ctx context.Context, session *Session, filter OrderFilter, page PageRequest) (*Page[Order], error)

	AdvanceStatus(ctx context.Context, session *Session, intent AdvanceIntent, confirmer Confirmer) (*Order, error)
}

//go:generate mockgen -destination=mocks/mock_audit.go . AuditService
type AuditService interface {
	History(ctx context.Context, orderID string) ([]AuditEntry, error)
}

// AuthBackend and OrderBackend are the remote fuel order API.
//
//go:generate mockgen -destination=mocks/mock_backend.go . AuthBackend,OrderBackend
type AuthBackend interface {
	Register(ctx context.Context, registration Registration) error

	Login(ctx context.Context, credentials Credentials) (string, error)
}

type OrderBackend interface {
	CreateOrder(ctx context.Context, token string, order NewOrder) (*Order, error)

	ListOrders(ctx context.Context, token string, filter OrderFilter, page PageRequest) (*Page[Order], error)

	UpdateStatus(ctx context.Context, token, orderID string, status OrderStatus) (*Order, error)
}

// Confirmer is the explicit user gate between proposing and committing a status change.
type Confirmer interface {
	Confirm(ctx context.Context, intent AdvanceIntent) (bool, error)
}

type ConfirmFunc func(ctx context.Context, intent AdvanceIntent) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, intent AdvanceIntent) (bool, error) {
	return f(ctx, intent)
}
