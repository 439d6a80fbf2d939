// Package staging holds user-entered, not-yet-committed quantities per
// aggregated item and mediates their commit or discard.
package staging

import (
	"context"
	"sync"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/core/types"
	"warenbuchung/internal/core/units"
	"warenbuchung/internal/domain/aggregate"
	"warenbuchung/internal/domain/movement"
	"warenbuchung/pkg/logger"
)

// Mode controls what happens to a staged row after a successful commit.
type Mode int

const (
	// RemoveOnCommit drops the row; the next re-aggregation restores it
	// with its new total.
	RemoveOnCommit Mode = iota

	// KeepRow resets the staged quantity to zero and appends the booking
	// in place (running per-product rows, e.g. project materials).
	KeepRow
)

// Item is a staged row: an aggregated view plus the editable quantity.
// QuantityInput is independent of the historical total and defaults to
// zero.
type Item struct {
	aggregate.Item

	QuantityInput types.Quantity `json:"quantityInput"`

	// StorageBacked marks rows loaded from an already-persisted record;
	// discarding such a row deletes the underlying record.
	StorageBacked bool   `json:"storageBacked,omitempty"`
	ServerID      *int64 `json:"serverId,omitempty"`
}

// Gate is the persistence boundary staged commits go through.
type Gate interface {
	CreateMovement(ctx context.Context, rec *movement.Record) (*movement.Record, error)
	DeleteMovement(ctx context.Context, serverID int64) error
}

// DraftFunc builds the movement record draft for a commit. The scope
// configuration supplies capture type, reference and envelope fields;
// the area fills in quantity and the entered-unit annotation.
type DraftFunc func(item *Item, entered types.Quantity) (*movement.Record, movement.Envelope)

// Config parameterizes a staging area for one grouping scope.
type Config struct {
	Units *units.Table

	// Floor is the lower clamp for staged quantities (0 for most scopes,
	// 1 for legacy single-item flows).
	Floor types.Quantity

	Mode  Mode
	Draft DraftFunc
}

// Area is the staging collection for one scope. All operations are
// serialized by the internal mutex; per-key saving flags prevent
// duplicate submissions for the same row.
type Area struct {
	mu     sync.Mutex
	cfg    Config
	gate   Gate
	items  map[string]*Item
	order  []string
	saving map[string]bool

	// reload refreshes the staged set from authoritative storage after a
	// storage-backed discard.
	reload func(ctx context.Context) error
}

// NewArea creates an empty staging area.
func NewArea(cfg Config, gate Gate, reload func(ctx context.Context) error) *Area {
	if cfg.Units == nil {
		cfg.Units = units.Default()
	}
	return &Area{
		cfg:    cfg,
		gate:   gate,
		items:  make(map[string]*Item),
		order:  make([]string, 0),
		saving: make(map[string]bool),
		reload: reload,
	}
}

// SetMode switches the post-commit behavior.
func (a *Area) SetMode(mode Mode) {
	a.mu.Lock()
	a.cfg.Mode = mode
	a.mu.Unlock()
}

// SetFloor changes the lower clamp for staged quantities.
func (a *Area) SetFloor(floor types.Quantity) {
	a.mu.Lock()
	a.cfg.Floor = floor
	a.mu.Unlock()
}

// Replace swaps the staged set for freshly loaded rows, preserving
// staged quantities of rows that survived the reload.
func (a *Area) Replace(items []*Item) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.items
	a.items = make(map[string]*Item, len(items))
	a.order = a.order[:0]
	for _, item := range items {
		if old, ok := prev[item.Key]; ok && item.QuantityInput.IsZero() {
			item.QuantityInput = old.QuantityInput
		}
		a.items[item.Key] = item
		a.order = append(a.order, item.Key)
	}
}

// Add stages a new row. Existing keys are left untouched.
func (a *Area) Add(item *Item) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.items[item.Key]; ok {
		return
	}
	a.items[item.Key] = item
	a.order = append(a.order, item.Key)
}

// Items returns staged rows in insertion order.
func (a *Area) Items() []*Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Item, 0, len(a.order))
	for _, key := range a.order {
		if item, ok := a.items[key]; ok {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out
}

// Saving reports whether a commit or discard is in flight for the key.
func (a *Area) Saving(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saving[key]
}

// AdjustQuantity shifts the staged quantity by delta unit steps (0.1
// for Paket, 1 otherwise), applying the unit's rounding rule and
// clamping at the configured floor.
func (a *Area) AdjustQuantity(key string, delta int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.items[key]
	if !ok {
		return
	}

	step := a.cfg.Units.Step(item.Unit)
	next := item.QuantityInput.Add(step.Mul(types.NewQuantityFromInt(int64(delta))))
	item.QuantityInput = a.clamp(item.Unit, next)
}

// SetQuantity parses user-typed text (comma or period decimals) and
// applies the same clamping and rounding as AdjustQuantity.
func (a *Area) SetQuantity(key string, rawText string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.items[key]
	if !ok {
		return
	}
	item.QuantityInput = a.clamp(item.Unit, types.ParseQuantityInput(rawText))
}

func (a *Area) clamp(unit string, qty types.Quantity) types.Quantity {
	qty = a.cfg.Units.Round(unit, qty)
	if qty.LessThan(a.cfg.Floor) {
		return a.cfg.Floor
	}
	return qty
}

// Commit persists the staged quantity through the gate. Guarded: the
// quantity must be positive (validation failure, no I/O) and no other
// commit may be in flight for the same key.
func (a *Area) Commit(ctx context.Context, key string) (*movement.Record, error) {
	a.mu.Lock()
	item, ok := a.items[key]
	if !ok {
		a.mu.Unlock()
		return nil, apperror.NewNotFound("staged item", key)
	}
	if a.saving[key] {
		a.mu.Unlock()
		return nil, apperror.NewIdempotencyConflict(key)
	}
	if !item.QuantityInput.IsPositive() {
		a.mu.Unlock()
		return nil, apperror.NewValidation("quantity must be greater than zero").
			WithDetail("field", "quantityInput").
			WithDetail("key", key)
	}

	a.saving[key] = true
	entered := item.QuantityInput
	snapshot := *item
	a.mu.Unlock()

	defer a.clearSaving(key)

	rec, env := a.cfg.Draft(&snapshot, entered)
	if !units.Is(snapshot.Unit, units.Stueck) && snapshot.Unit != "" {
		env.EnteredQuantity = &entered
		env.EnteredUnit = snapshot.Unit
	}
	rec.Notes = env.Encode()
	rec.Quantity = a.cfg.Units.ToBase(snapshot.Unit, entered)

	saved, err := a.gate.CreateMovement(ctx, rec)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if current, ok := a.items[key]; ok {
		if a.cfg.Mode == KeepRow {
			current.QuantityInput = types.Zero()
			booking := aggregate.Booking{
				RecordID:  saved.ID,
				ServerID:  saved.ServerID,
				Quantity:  entered,
				Unit:      current.Unit,
				Timestamp: saved.CreatedAt,
			}
			current.History = append(current.History, booking)
			current.LastBooking = &booking
			current.Quantity = current.Quantity.Add(entered)
			current.Placeholder = false
		} else {
			a.remove(key)
		}
	}
	a.mu.Unlock()

	logger.Info(ctx, "staged quantity committed",
		"key", key,
		"quantity", entered.String(),
		"unit", snapshot.Unit)

	return saved, nil
}

// Discard removes a staged row without persisting its quantity. A
// storage-backed row also deletes the underlying persisted record and
// re-runs the authoritative reload; the row is only removed after the
// delete is confirmed.
func (a *Area) Discard(ctx context.Context, key string) error {
	a.mu.Lock()
	item, ok := a.items[key]
	if !ok {
		a.mu.Unlock()
		return apperror.NewNotFound("staged item", key)
	}
	if a.saving[key] {
		a.mu.Unlock()
		return apperror.NewIdempotencyConflict(key)
	}

	if !item.StorageBacked || item.ServerID == nil {
		a.remove(key)
		a.mu.Unlock()
		return nil
	}

	a.saving[key] = true
	serverID := *item.ServerID
	a.mu.Unlock()

	defer a.clearSaving(key)

	if err := a.gate.DeleteMovement(ctx, serverID); err != nil {
		// Failed delete leaves the staged view unchanged.
		return err
	}

	a.mu.Lock()
	a.remove(key)
	a.mu.Unlock()

	if a.reload != nil {
		if err := a.reload(ctx); err != nil {
			logger.Warn(ctx, "reload after discard failed", "error", err, "key", key)
		}
	}

	return nil
}

// remove must be called with a.mu held.
func (a *Area) remove(key string) {
	delete(a.items, key)
	for i, k := range a.order {
		if k == key {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

func (a *Area) clearSaving(key string) {
	a.mu.Lock()
	delete(a.saving, key)
	a.mu.Unlock()
}
