package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"warenbuchung/internal/core/id"
	"warenbuchung/internal/domain/gate"
	"warenbuchung/internal/domain/movement"
	"warenbuchung/pkg/logger"
)

// Compile-time check that MovementRepo satisfies the gate's store.
var _ gate.Store = (*MovementRepo)(nil)

var movementCols = []string{
	"id", "version", "created_at", "updated_at", "created_by",
	"server_id", "dirty", "last_synced",
	"direction", "capture_type",
	"product_id", "product_name", "sku",
	"quantity", "unit_price", "total_price",
	"reference", "notes", "supplier", "location",
}

// MovementRepo stores movement records in the local database.
type MovementRepo struct {
	txManager *TxManager
	journal   *Journal
}

// NewMovementRepo creates a movement repository. The journal is
// optional.
func NewMovementRepo(txManager *TxManager, journal *Journal) *MovementRepo {
	return &MovementRepo{txManager: txManager, journal: journal}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func movementValues(rec *movement.Record) map[string]any {
	return map[string]any{
		"id":           rec.ID.String(),
		"version":      rec.Version,
		"created_at":   rec.CreatedAt,
		"updated_at":   rec.UpdatedAt,
		"created_by":   rec.CreatedBy,
		"server_id":    rec.ServerID,
		"dirty":        rec.Dirty,
		"last_synced":  rec.LastSynced,
		"direction":    string(rec.Direction),
		"capture_type": string(rec.CaptureType),
		"product_id":   rec.ProductID,
		"product_name": rec.ProductName,
		"sku":          rec.SKU,
		"quantity":     rec.Quantity.String(),
		"unit_price":   rec.UnitPrice.String(),
		"total_price":  rec.TotalPrice.String(),
		"reference":    rec.Reference,
		"notes":        rec.Notes,
		"supplier":     rec.Supplier,
		"location":     rec.Location,
	}
}

// SaveMovement upserts a record. A record confirmed remotely adopts the
// local row that already mirrors its server id, so repeated cache
// refreshes stay idempotent.
func (r *MovementRepo) SaveMovement(ctx context.Context, rec *movement.Record) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)

		if rec.ServerID != nil {
			var existing string
			err := querier.QueryRowContext(ctx,
				`SELECT id FROM movements WHERE direction = ? AND server_id = ?`,
				string(rec.Direction), *rec.ServerID).Scan(&existing)
			switch {
			case err == nil:
				localID, perr := id.Parse(existing)
				if perr == nil {
					rec.ID = localID
				}
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("lookup by server id: %w", err)
			}
		}
		if id.IsNil(rec.ID) {
			rec.ID = id.New()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = rec.CreatedAt
		}

		q := builder().
			Insert("movements").
			SetMap(movementValues(rec)).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				version = excluded.version,
				updated_at = excluded.updated_at,
				server_id = excluded.server_id,
				dirty = excluded.dirty,
				last_synced = excluded.last_synced,
				quantity = excluded.quantity,
				unit_price = excluded.unit_price,
				total_price = excluded.total_price,
				reference = excluded.reference,
				notes = excluded.notes,
				supplier = excluded.supplier,
				location = excluded.location`)

		sqlStr, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build movement upsert: %w", err)
		}
		if _, err := querier.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("upsert movement: %w", err)
		}

		r.journalLog(ctx, JournalCreate, rec.ID.String(), rec)
		return nil
	})
}

// ListMovements returns records for a scope. The reference filter is a
// tolerant superset: legacy records carry the reference only inside the
// notes envelope, and the caller refines by parsed reference.
func (r *MovementRepo) ListMovements(ctx context.Context, q gate.ListQuery) ([]movement.Record, error) {
	sel := builder().
		Select(movementCols...).
		From("movements").
		Where(squirrel.Eq{"direction": string(q.Direction)}).
		OrderBy("created_at ASC")

	if q.CaptureType != "" {
		sel = sel.Where(squirrel.Eq{"capture_type": string(q.CaptureType)})
	}
	if q.Reference != "" {
		sel = sel.Where(squirrel.Or{
			squirrel.Eq{"reference": q.Reference},
			squirrel.Like{"notes": "%" + q.Reference + "%"},
		})
	}

	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement select: %w", err)
	}

	var records []movement.Record
	querier := r.txManager.GetQuerier(ctx)
	if err := sqlscan.Select(ctx, querier, &records, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return records, nil
}

// DeleteMovementByServerID removes the local mirror of a remotely
// deleted record. Server ids are scoped per direction.
func (r *MovementRepo) DeleteMovementByServerID(ctx context.Context, direction movement.Direction, serverID int64) error {
	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.ExecContext(ctx,
		`DELETE FROM movements WHERE direction = ? AND server_id = ?`,
		string(direction), serverID)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		r.journalLog(ctx, JournalDelete, fmt.Sprintf("server:%d", serverID), nil)
	}
	return nil
}

// ListDirty returns locally originated records awaiting replay, oldest
// first.
func (r *MovementRepo) ListDirty(ctx context.Context, limit int) ([]movement.Record, error) {
	sel := builder().
		Select(movementCols...).
		From("movements").
		Where(squirrel.Eq{"dirty": true}).
		OrderBy("created_at ASC")
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}

	sqlStr, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dirty select: %w", err)
	}

	var records []movement.Record
	querier := r.txManager.GetQuerier(ctx)
	if err := sqlscan.Select(ctx, querier, &records, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("select dirty movements: %w", err)
	}
	return records, nil
}

// MarkSynced stamps a record with its confirmed server id.
func (r *MovementRepo) MarkSynced(ctx context.Context, localID id.ID, serverID int64, at time.Time) error {
	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.ExecContext(ctx,
		`UPDATE movements SET server_id = ?, dirty = 0, last_synced = ? WHERE id = ?`,
		serverID, at, localID.String())
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	r.journalLog(ctx, JournalSync, localID.String(), map[string]any{"serverId": serverID})
	return nil
}

func (r *MovementRepo) journalLog(ctx context.Context, action JournalAction, entityID string, payload any) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Log(ctx, action, entityID, payload); err != nil {
		logger.Warn(ctx, "journal write failed", "error", err, "action", string(action))
	}
}
