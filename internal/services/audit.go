package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/metrics"
	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const auditWriteTimeout = 5 * time.Second

// AuditService keeps the trail of order actions issued through the console.
type AuditService struct {
	storage AuditStorage
	queue   *JobQueueService
}

type AuditStorage interface {
	SaveAuditEntry(ctx context.Context, entry models.AuditEntry) error
	FindAuditEntries(ctx context.Context, orderID string) ([]models.AuditEntry, error)
}

// NewAuditService writes entries to storage through queue. A nil storage
// disables the trail.
func NewAuditService(storage AuditStorage, queue *JobQueueService) *AuditService {
	return &AuditService{storage: storage, queue: queue}
}

// Record persists entry in the background. It never blocks: when the queue is
// full the entry is dropped.
func (a *AuditService) Record(entry models.AuditEntry) {
	if a.storage == nil || a.queue == nil {
		return
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	err := a.queue.Enqueue(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, auditWriteTimeout)
		defer cancel()

		if err := a.storage.SaveAuditEntry(ctx, entry); err != nil {
			logger.Log.Error("failed to save audit entry",
				zap.String("id", entry.ID),
				zap.String("orderID", entry.OrderID),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		metrics.IncAuditDropped()
		logger.Log.Warn("audit entry dropped",
			zap.String("orderID", entry.OrderID),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}

func (a *AuditService) History(ctx context.Context, orderID string) ([]models.AuditEntry, error) {
	if a.storage == nil {
		return nil, ErrAuditDisabled
	}

	entries, err := a.storage.FindAuditEntries(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit entries: %w", err)
	}

	if entries == nil {
		entries = []models.AuditEntry{}
	}

	return entries, nil
}
