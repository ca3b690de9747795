package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/metrics"
	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/Renal37/fuel-orders/internal/utils"
	"go.uber.org/zap"
)

// MinFuelVolume is the exclusive lower bound of a requested volume, in gallons.
const MinFuelVolume = 1000

// OrderService applies the order lifecycle rules before calling the fuel order API.
type OrderService struct {
	backend  models.OrderBackend
	auditor  auditRecorder
	inflight *inflightGuard
	now      func() time.Time
}

type auditRecorder interface {
	Record(entry models.AuditEntry)
}

// NewOrderService creates an OrderService. auditor may be nil.
func NewOrderService(backend models.OrderBackend, auditor auditRecorder) *OrderService {
	return &OrderService{
		backend:  backend,
		auditor:  auditor,
		inflight: newInflightGuard(),
		now:      time.Now,
	}
}

// NormalizeSubmission trims the tail number and upper-cases the airport code.
func NormalizeSubmission(order models.NewOrder) models.NewOrder {
	order.TailNumber = strings.TrimSpace(order.TailNumber)
	order.AirportIcao = strings.ToUpper(strings.TrimSpace(order.AirportIcao))
	return order
}

// ValidateSubmission checks every rule of a new order and reports all failed fields.
func ValidateSubmission(order models.NewOrder) error {
	verr := &ValidationError{}

	if strings.TrimSpace(order.TailNumber) == "" {
		verr.add("tailNumber", "is required")
	}

	if strings.TrimSpace(order.AirportIcao) == "" {
		verr.add("airportIcao", "is required")
	}

	if !(order.RequestedFuelVolume > MinFuelVolume) {
		verr.add("requestedFuelVolume", fmt.Sprintf("must be greater than %d", MinFuelVolume))
	}

	start, end := order.DeliveryWindowStart.Time, order.DeliveryWindowEnd.Time
	if start.IsZero() || end.IsZero() || !end.After(start) {
		verr.add("deliveryWindowEnd", "must be after delivery window start")
	}

	return verr.errOrNil()
}

// ValidateWindowStart rejects a delivery window that starts before the current
// minute. Datetime inputs have minute precision.
func ValidateWindowStart(start utils.Timestamp, now time.Time) error {
	if start.Before(now.Truncate(time.Minute)) {
		return &ValidationError{Fields: []FieldError{{Field: "deliveryWindowStart", Message: "must not be in the past"}}}
	}
	return nil
}

// ProposeAdvance returns the only legal status change of an order.
func ProposeAdvance(orderID string, current models.OrderStatus) (models.AdvanceIntent, error) {
	if strings.TrimSpace(orderID) == "" {
		return models.AdvanceIntent{}, &ValidationError{Fields: []FieldError{{Field: "id", Message: "is required"}}}
	}

	next, ok := current.Next()
	if !ok {
		return models.AdvanceIntent{}, fmt.Errorf("%w: %s", ErrNoForwardTransition, current)
	}

	return models.AdvanceIntent{OrderID: orderID, From: current, To: next}, nil
}

func (o *OrderService) CreateOrder(ctx context.Context, session *models.Session, order models.NewOrder) (*models.Order, error) {
	now := o.now()

	if err := RequireSession(session, now, models.RoleAircraftOperator); err != nil {
		return nil, err
	}

	order = NormalizeSubmission(order)

	if err := ValidateSubmission(order); err != nil {
		return nil, err
	}

	// A start without an offset is wall-clock time of the submitter, whose zone
	// is unknown here. Front ends that know it check it with ValidateWindowStart.
	if order.DeliveryWindowStart.HasZone() {
		if err := ValidateWindowStart(order.DeliveryWindowStart, now); err != nil {
			return nil, err
		}
	}

	release, err := o.inflight.acquire("create:" + actorOf(session))
	if err != nil {
		return nil, err
	}
	defer release()

	created, err := o.backend.CreateOrder(ctx, session.Token, order)
	if err != nil {
		if ctx.Err() == nil {
			o.record(session, models.AuditEntry{
				Action:   models.AuditActionCreate,
				ToStatus: models.StatusPending,
				Outcome:  models.AuditOutcomeFailed,
				Message:  err.Error(),
			})
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.IncOrdersCreated()
	o.record(session, models.AuditEntry{
		OrderID:  created.ID,
		Action:   models.AuditActionCreate,
		ToStatus: created.Status,
		Outcome:  models.AuditOutcomeSucceeded,
	})

	logger.Log.Info("order created",
		zap.String("orderID", created.ID),
		zap.String("airport", created.AirportIcao),
		zap.String("actor", session.Subject),
	)

	return created, nil
}

func (o *OrderService) ListOrders(ctx context.Context, session *models.Session, filter models.OrderFilter, page models.PageRequest) (*models.Page[models.Order], error) {
	if err := RequireSession(session, o.now(), models.RoleOperationsManager); err != nil {
		return nil, err
	}

	filter.TailNumber = strings.TrimSpace(filter.TailNumber)

	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}

	if err := ValidatePageRequest(page); err != nil {
		return nil, err
	}

	result, err := o.backend.ListOrders(ctx, session.Token, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return result, nil
}

// AdvanceStatus commits intent after confirmer agreed to it. A declined
// confirmation returns ErrAdvanceCancelled without calling the API.
func (o *OrderService) AdvanceStatus(ctx context.Context, session *models.Session, intent models.AdvanceIntent, confirmer models.Confirmer) (*models.Order, error) {
	if err := RequireSession(session, o.now(), models.RoleOperationsManager); err != nil {
		return nil, err
	}

	proposed, err := ProposeAdvance(intent.OrderID, intent.From)
	if err != nil {
		return nil, err
	}

	if proposed.To != intent.To {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "to",
			Message: fmt.Sprintf("must be %s when the order is %s", proposed.To, proposed.From),
		}}}
	}

	release, err := o.inflight.acquire("advance:" + proposed.OrderID)
	if err != nil {
		return nil, err
	}
	defer release()

	entry := models.AuditEntry{
		OrderID:    proposed.OrderID,
		Action:     models.AuditActionAdvance,
		FromStatus: proposed.From,
		ToStatus:   proposed.To,
	}

	confirmed := false
	if confirmer != nil {
		confirmed, err = confirmer.Confirm(ctx, proposed)
		if err != nil {
			return nil, fmt.Errorf("failed to confirm status change: %w", err)
		}
	}

	if !confirmed {
		entry.Outcome = models.AuditOutcomeCancelled
		o.record(session, entry)
		return nil, ErrAdvanceCancelled
	}

	updated, err := o.backend.UpdateStatus(ctx, session.Token, proposed.OrderID, proposed.To)
	if err != nil {
		if ctx.Err() == nil {
			entry.Outcome = models.AuditOutcomeFailed
			entry.Message = err.Error()
			o.record(session, entry)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	metrics.IncStatusAdvance(string(proposed.To))
	entry.Outcome = models.AuditOutcomeSucceeded
	o.record(session, entry)

	logger.Log.Info("order status advanced",
		zap.String("orderID", proposed.OrderID),
		zap.String("from", string(proposed.From)),
		zap.String("to", string(proposed.To)),
		zap.String("actor", session.Subject),
	)

	return updated, nil
}

func (o *OrderService) record(session *models.Session, entry models.AuditEntry) {
	if o.auditor == nil {
		return
	}

	entry.Actor = session.Subject
	entry.RecordedAt = o.now()
	o.auditor.Record(entry)
}

func actorOf(session *models.Session) string {
	if session.Subject != "" {
		return session.Subject
	}
	return session.Token
}
