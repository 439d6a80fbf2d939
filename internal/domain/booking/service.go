// Package booking orchestrates the movement reconciliation flow: load
// records through the connectivity gate, fold them into aggregated
// views, and manage per-scope staging areas. The goods-in and goods-out
// flows are the same engine under different scope configurations.
package booking

import (
	"context"
	"fmt"
	"sync"

	"warenbuchung/internal/core/types"
	"warenbuchung/internal/core/units"
	"warenbuchung/internal/domain/aggregate"
	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/domain/gate"
	"warenbuchung/internal/domain/movement"
	"warenbuchung/internal/domain/staging"
	"warenbuchung/pkg/logger"
)

// Scope identifies one grouping context: a capture type plus its
// reference (order number, project key, or transfer pair).
type Scope struct {
	Direction   movement.Direction   `json:"direction"`
	CaptureType movement.CaptureType `json:"erfassungstyp"`
	Reference   string               `json:"referenz,omitempty"`
}

func (s Scope) key() string {
	return fmt.Sprintf("%s|%s|%s", s.Direction, s.CaptureType, s.Reference)
}

// Meta carries the scope-level entry fields applied to every commit in
// that scope (locations, supplier, remark, reason).
type Meta struct {
	Location    string `json:"lagerort,omitempty"`
	From        string `json:"von,omitempty"`
	To          string `json:"nach,omitempty"`
	Supplier    string `json:"lieferant,omitempty"`
	SupplierID  string `json:"lieferantennummer,omitempty"`
	Remark      string `json:"bemerkung,omitempty"`
	Reason      string `json:"grund,omitempty"`
	ProjectName string `json:"projekt,omitempty"`

	// KeepRows switches the staging area to running per-product rows.
	KeepRows bool `json:"keepRows,omitempty"`

	// FloorIsOne raises the staged-quantity floor to 1 (legacy
	// single-item flows).
	FloorIsOne bool `json:"floorIsOne,omitempty"`
}

// AssignmentSource supplies expected-but-not-yet-booked items for order
// and project scopes.
type AssignmentSource interface {
	OrderAssignments(ctx context.Context, orderRef string) ([]catalog.Assignment, error)
	ProjectAssignments(ctx context.Context, projectKey string) ([]catalog.Assignment, error)
}

type areaState struct {
	area *staging.Area
	meta Meta
}

// scopedGate binds the gate to one direction so staged rows can delete
// their backing record without knowing which remote collection it
// lives in.
type scopedGate struct {
	gate      *gate.Gate
	direction movement.Direction
}

func (s scopedGate) CreateMovement(ctx context.Context, rec *movement.Record) (*movement.Record, error) {
	return s.gate.CreateMovement(ctx, rec)
}

func (s scopedGate) DeleteMovement(ctx context.Context, serverID int64) error {
	return s.gate.DeleteMovement(ctx, s.direction, serverID)
}

// Service is the per-direction reconciliation facade. Instantiate once;
// both directions share it.
type Service struct {
	gate        *gate.Gate
	engine      *aggregate.Engine
	resolver    *catalog.Resolver
	assignments AssignmentSource
	units       *units.Table

	mu    sync.Mutex
	areas map[string]*areaState
}

// NewService wires the reconciliation flow.
func NewService(g *gate.Gate, engine *aggregate.Engine, resolver *catalog.Resolver, assignments AssignmentSource, table *units.Table) *Service {
	return &Service{
		gate:        g,
		engine:      engine,
		resolver:    resolver,
		assignments: assignments,
		units:       table,
		areas:       make(map[string]*areaState),
	}
}

// Aggregated loads and folds the records for a scope. Read-your-writes
// holds: commits re-load through this path after persisting.
func (s *Service) Aggregated(ctx context.Context, scope Scope) ([]*aggregate.Item, error) {
	records, err := s.gate.ListMovements(ctx, gate.ListQuery{
		Direction:   scope.Direction,
		CaptureType: scope.CaptureType,
		Reference:   scope.Reference,
	})
	if err != nil {
		return nil, err
	}

	scoped := filterByReference(records, scope.Reference)
	assignments := s.loadAssignments(ctx, scope)

	return aggregate.Values(s.engine.Fold(scoped, assignments)), nil
}

// filterByReference keeps records whose reference matches, checking the
// structured field first and the notes envelope for legacy records.
func filterByReference(records []movement.Record, reference string) []movement.Record {
	if reference == "" {
		return records
	}
	out := make([]movement.Record, 0, len(records))
	for _, rec := range records {
		if rec.Reference == reference {
			out = append(out, rec)
			continue
		}
		env := movement.ParseEnvelope(rec.Notes)
		if env.Referenz == reference || env.Bestellungsnummer == reference || env.Projektnummer == reference {
			out = append(out, rec)
		}
	}
	return out
}

// loadAssignments fetches expected items for order/project scopes.
// Failures degrade to no placeholders rather than failing the view.
func (s *Service) loadAssignments(ctx context.Context, scope Scope) []catalog.Assignment {
	if s.assignments == nil || scope.Reference == "" {
		return nil
	}

	var (
		assignments []catalog.Assignment
		err         error
	)
	switch scope.CaptureType {
	case movement.CaptureOrder:
		assignments, err = s.assignments.OrderAssignments(ctx, scope.Reference)
	case movement.CaptureProjectSite, movement.CaptureProject:
		assignments, err = s.assignments.ProjectAssignments(ctx, scope.Reference)
	default:
		return nil
	}
	if err != nil {
		logger.Warn(ctx, "loading assignments failed", "error", err, "reference", scope.Reference)
		return nil
	}
	return assignments
}

// Area returns the staging area for a scope, creating it on first use.
func (s *Service) Area(scope Scope) *staging.Area {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.areaLocked(scope).area
}

// SetMeta updates the scope-level entry fields used by future commits,
// along with the staging mode and floor they imply.
func (s *Service) SetMeta(scope Scope, meta Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.areaLocked(scope)
	st.meta = meta

	mode := staging.RemoveOnCommit
	if meta.KeepRows {
		mode = staging.KeepRow
	}
	st.area.SetMode(mode)

	floor := types.Zero()
	if meta.FloorIsOne {
		floor = types.NewQuantityFromInt(1)
	}
	st.area.SetFloor(floor)
}

func (s *Service) areaLocked(scope Scope) *areaState {
	key := scope.key()
	if st, ok := s.areas[key]; ok {
		return st
	}

	st := &areaState{}
	cfg := staging.Config{
		Units: s.units,
		Floor: types.Zero(),
		Draft: s.draftFunc(scope, st),
	}
	st.area = staging.NewArea(cfg, scopedGate{gate: s.gate, direction: scope.Direction}, func(ctx context.Context) error {
		return s.LoadStaging(ctx, scope)
	})
	s.areas[key] = st
	return st
}

// draftFunc builds commit drafts from the scope and its current meta.
func (s *Service) draftFunc(scope Scope, st *areaState) staging.DraftFunc {
	return func(item *staging.Item, entered types.Quantity) (*movement.Record, movement.Envelope) {
		s.mu.Lock()
		meta := st.meta
		s.mu.Unlock()

		rec := movement.NewRecord(scope.Direction, scope.CaptureType)
		rec.ProductID = item.ProductID
		rec.ProductName = item.Name
		rec.SKU = item.SKU
		rec.Reference = scope.Reference
		rec.Supplier = meta.Supplier
		rec.Location = meta.Location

		if item.ProductID != nil {
			if p, ok := s.resolver.ByID(*item.ProductID); ok {
				rec.UnitPrice = p.Price
			}
		}

		env := movement.Envelope{
			Lagerort:          meta.Location,
			Lieferant:         meta.Supplier,
			Lieferantennummer: meta.SupplierID,
			Bemerkung:         meta.Remark,
			Grund:             meta.Reason,
			Projekt:           meta.ProjectName,
			Von:               meta.From,
			Nach:              meta.To,
		}

		if scope.Direction == movement.DirectionIn {
			env.Erfassungstyp = string(scope.CaptureType)
			switch scope.CaptureType {
			case movement.CaptureOrder:
				env.Bestellungsnummer = scope.Reference
			case movement.CaptureProjectSite:
				env.Projektnummer = scope.Reference
			}
		} else {
			env.Referenz = scope.Reference
			if scope.CaptureType == movement.CaptureProject {
				env.Projektnummer = scope.Reference
			}
		}

		return rec, env
	}
}

// LoadStaging refreshes a scope's staging area from the aggregated
// view. Rows whose latest booking is a confirmed remote record become
// storage-backed; discarding them deletes that record.
func (s *Service) LoadStaging(ctx context.Context, scope Scope) error {
	items, err := s.Aggregated(ctx, scope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	st := s.areaLocked(scope)
	keepRows := st.meta.KeepRows
	s.mu.Unlock()

	staged := make([]*staging.Item, 0, len(items))
	for _, item := range items {
		si := &staging.Item{Item: *item, QuantityInput: types.Zero()}
		if !keepRows && item.LastBooking != nil && item.LastBooking.ServerID != nil {
			si.StorageBacked = true
			si.ServerID = item.LastBooking.ServerID
		}
		staged = append(staged, si)
	}

	st.area.Replace(staged)
	return nil
}

// Stage adds a resolved product as a fresh staged row (not yet backed
// by any persisted record).
func (s *Service) Stage(ctx context.Context, scope Scope, code string) (*staging.Item, error) {
	product, err := s.resolver.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	pid := product.ID
	item := &staging.Item{
		Item: aggregate.Item{
			Key:       aggregate.Key(&pid, product.SKU, product.Name),
			ProductID: &pid,
			Name:      product.Name,
			SKU:       product.SKU,
			Unit:      product.BaseUnit(),
			ItemType:  product.ItemType,
			Quantity:  types.Zero(),
		},
		QuantityInput: types.Zero(),
	}
	s.Area(scope).Add(item)
	return item, nil
}

// Commit persists one staged row and re-aggregates the scope so the
// caller observes its own write.
func (s *Service) Commit(ctx context.Context, scope Scope, key string) (*movement.Record, error) {
	area := s.Area(scope)
	saved, err := area.Commit(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	keepRows := s.areaLocked(scope).meta.KeepRows
	s.mu.Unlock()
	if !keepRows {
		if lerr := s.LoadStaging(ctx, scope); lerr != nil {
			logger.Warn(ctx, "re-aggregation after commit failed", "error", lerr)
		}
	}
	return saved, nil
}

// Discard drops one staged row, deleting the underlying record for
// storage-backed rows.
func (s *Service) Discard(ctx context.Context, scope Scope, key string) error {
	return s.Area(scope).Discard(ctx, key)
}
