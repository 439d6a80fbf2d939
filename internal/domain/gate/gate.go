// Package gate decides, per read or write, whether the remote system is
// reachable and authenticated, and routes to local durable storage when
// it is not. A movement is durably recorded exactly once from the
// user's perspective.
package gate

import (
	"context"
	"sync/atomic"
	"time"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/core/id"
	"warenbuchung/internal/domain/movement"
	"warenbuchung/pkg/logger"
)

// ListQuery selects movements for one grouping scope.
type ListQuery struct {
	Direction   movement.Direction
	CaptureType movement.CaptureType
	Reference   string
}

// Remote is the remote movement endpoint set. Goods-in and goods-out
// are separate remote collections, so deletes carry the direction.
type Remote interface {
	CreateMovement(ctx context.Context, rec *movement.Record) (*movement.Record, error)
	ListMovements(ctx context.Context, q ListQuery) ([]movement.Record, error)
	DeleteMovement(ctx context.Context, direction movement.Direction, serverID int64) error

	// Ping is the connectivity probe (a cheap authenticated request).
	Ping(ctx context.Context) error
}

// Store is the local durable movement cache.
type Store interface {
	SaveMovement(ctx context.Context, rec *movement.Record) error
	ListMovements(ctx context.Context, q ListQuery) ([]movement.Record, error)
	DeleteMovementByServerID(ctx context.Context, direction movement.Direction, serverID int64) error
	ListDirty(ctx context.Context, limit int) ([]movement.Record, error)
	MarkSynced(ctx context.Context, localID id.ID, serverID int64, at time.Time) error
}

// Session reports the authentication state consulted before any remote
// attempt.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
}

// Gate routes movement reads and writes between remote and local
// storage based on authentication and a sticky connectivity flag.
type Gate struct {
	remote  Remote
	store   Store
	session Session

	online  atomic.Bool
	probing atomic.Bool
}

// New creates a gate that assumes connectivity until a remote call
// fails.
func New(remote Remote, store Store, session Session) *Gate {
	g := &Gate{remote: remote, store: store, session: session}
	g.online.Store(true)
	return g
}

// Online reports the last known connectivity state.
func (g *Gate) Online() bool {
	return g.online.Load()
}

func (g *Gate) setOnline(ctx context.Context, online bool) {
	if g.online.Swap(online) != online {
		logger.Info(ctx, "connectivity state changed", "online", online)
	}
}

func (g *Gate) remoteEligible(ctx context.Context) bool {
	return g.online.Load() && g.session.IsAuthenticated(ctx)
}

// CreateMovement persists a movement. Remote when authenticated and
// online, mirrored into the local cache on success; any generic remote
// failure falls back to a dirty local write. A stock-insufficiency
// rejection is the one failure that must not fall back: allowing the
// write would silently create an inconsistent stock position.
func (g *Gate) CreateMovement(ctx context.Context, rec *movement.Record) (*movement.Record, error) {
	if err := rec.Validate(ctx); err != nil {
		return nil, err
	}

	if g.remoteEligible(ctx) {
		saved, err := g.remote.CreateMovement(ctx, rec)
		if err == nil {
			saved.LastSynced = ptrTime(time.Now().UTC())
			saved.Dirty = false
			if serr := g.store.SaveMovement(ctx, saved); serr != nil {
				logger.Warn(ctx, "mirroring confirmed movement failed", "error", serr, "id", saved.ID)
			}
			return saved, nil
		}
		if apperror.IsInsufficientStock(err) {
			return nil, err
		}
		logger.Warn(ctx, "remote write failed, falling back to local", "error", err, "id", rec.ID)
		g.setOnline(ctx, false)
	}

	rec.MarkDirty()
	if err := g.store.SaveMovement(ctx, rec); err != nil {
		return nil, apperror.NewInternal(err).WithDetail("operation", "local save")
	}
	return rec, nil
}

// ListMovements prefers a remote fetch with cache refresh; on failure
// it serves the local cache and flips the connectivity flag to offline
// (sticky until a probe succeeds). Reads never surface transient
// errors.
func (g *Gate) ListMovements(ctx context.Context, q ListQuery) ([]movement.Record, error) {
	if g.remoteEligible(ctx) {
		records, err := g.remote.ListMovements(ctx, q)
		if err == nil {
			for i := range records {
				if serr := g.store.SaveMovement(ctx, &records[i]); serr != nil {
					logger.Warn(ctx, "cache refresh failed", "error", serr)
					break
				}
			}
			return records, nil
		}
		logger.Warn(ctx, "remote list failed, serving local cache", "error", err)
		g.setOnline(ctx, false)
	}

	return g.store.ListMovements(ctx, q)
}

// DeleteMovement removes a persisted record remotely and from the local
// cache. Deletes require a live session; causes are distinguished so
// the caller can surface a specific message per cause.
func (g *Gate) DeleteMovement(ctx context.Context, direction movement.Direction, serverID int64) error {
	if !g.session.IsAuthenticated(ctx) {
		return apperror.NewUnauthorized("session expired, sign in to delete bookings")
	}
	if !g.online.Load() {
		return apperror.NewOffline("delete booking")
	}

	if err := g.remote.DeleteMovement(ctx, direction, serverID); err != nil {
		// Not-found and unauthorized pass through with their causes; the
		// staged view stays unchanged on any failure.
		return err
	}

	if err := g.store.DeleteMovementByServerID(ctx, direction, serverID); err != nil {
		logger.Warn(ctx, "local delete after remote delete failed", "error", err, "server_id", serverID)
	}
	return nil
}

// Probe re-checks connectivity. Only one probe runs at a time; an
// in-flight probe makes this call a no-op.
func (g *Gate) Probe(ctx context.Context) {
	if !g.probing.CompareAndSwap(false, true) {
		return
	}
	defer g.probing.Store(false)

	err := g.remote.Ping(ctx)
	g.setOnline(ctx, err == nil)
}

// RunProber re-attempts the connectivity check at a fixed interval
// while the last known state is offline. Returns when ctx is done.
func (g *Gate) RunProber(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !g.online.Load() {
				g.Probe(ctx)
			}
		}
	}
}

// SyncDirty replays locally originated records against the remote
// system. Stock-insufficiency rejections are non-retryable and are
// skipped with a warning; other failures stop the pass and flip the
// gate offline.
func (g *Gate) SyncDirty(ctx context.Context, batchSize int) error {
	if !g.remoteEligible(ctx) {
		return nil
	}

	dirty, err := g.store.ListDirty(ctx, batchSize)
	if err != nil {
		return err
	}

	for i := range dirty {
		rec := dirty[i]
		saved, err := g.remote.CreateMovement(ctx, &rec)
		if err != nil {
			if apperror.IsInsufficientStock(err) {
				logger.Warn(ctx, "dirty record rejected for insufficient stock, not retrying",
					"id", rec.ID, "error", err)
				continue
			}
			g.setOnline(ctx, false)
			return err
		}
		if saved.ServerID == nil {
			continue
		}
		if err := g.store.MarkSynced(ctx, rec.ID, *saved.ServerID, time.Now().UTC()); err != nil {
			return err
		}
		logger.Info(ctx, "dirty record synced", "id", rec.ID, "server_id", *saved.ServerID)
	}

	return nil
}

// RunSyncer replays dirty records whenever the gate is online. Returns
// when ctx is done.
func (g *Gate) RunSyncer(ctx context.Context, interval time.Duration, batchSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.SyncDirty(ctx, batchSize); err != nil {
				logger.Warn(ctx, "sync pass failed", "error", err)
			}
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
