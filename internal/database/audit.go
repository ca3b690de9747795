package database

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const auditTable = "order_audit"

var auditColumns = []string{
	"id::text",
	"order_id",
	"action",
	"from_status",
	"to_status",
	"actor",
	"outcome",
	"message",
	"recorded_at",
}

func insertAuditEntryQuery(sb sq.StatementBuilderType, entry models.AuditEntry) (string, []interface{}, error) {
	return sb.
		Insert(auditTable).
		Columns("id", "order_id", "action", "from_status", "to_status", "actor", "outcome", "message", "recorded_at").
		Values(
			entry.ID,
			entry.OrderID,
			string(entry.Action),
			string(entry.FromStatus),
			string(entry.ToStatus),
			entry.Actor,
			string(entry.Outcome),
			entry.Message,
			entry.RecordedAt,
		).
		ToSql()
}

func selectAuditEntriesQuery(sb sq.StatementBuilderType, orderID string) (string, []interface{}, error) {
	return sb.
		Select(auditColumns...).
		From(auditTable).
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("recorded_at ASC", "id ASC").
		ToSql()
}

// SaveAuditEntry stores entry. An entry whose id is already stored is not an error.
func (d *Database) SaveAuditEntry(ctx context.Context, entry models.AuditEntry) error {
	query, args, err := insertAuditEntryQuery(d.sb, entry)
	if err != nil {
		return fmt.Errorf("failed to build audit insert: %w", err)
	}

	if _, err := d.db.Exec(ctx, query, args...); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			logger.Log.Debug("audit entry already recorded", zap.String("id", entry.ID))
			return nil
		}
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// FindAuditEntries returns the entries of an order, oldest first.
func (d *Database) FindAuditEntries(ctx context.Context, orderID string) ([]models.AuditEntry, error) {
	query, args, err := selectAuditEntriesQuery(d.sb, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to build audit select: %w", err)
	}

	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0)

	for rows.Next() {
		var entry models.AuditEntry

		err := rows.Scan(
			&entry.ID,
			&entry.OrderID,
			&entry.Action,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Actor,
			&entry.Outcome,
			&entry.Message,
			&entry.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}

	return entries, nil
}
