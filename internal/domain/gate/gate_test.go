package gate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/core/id"
	"warenbuchung/internal/domain/movement"
)

type fakeRemote struct {
	mu      sync.Mutex
	created []movement.Record
	deleted []int64

	createErr error
	listErr   error
	deleteErr error
	pingErr   error
	listOut   []movement.Record

	pings int
}

func (f *fakeRemote) CreateMovement(ctx context.Context, rec *movement.Record) (*movement.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, *rec)
	out := *rec
	serverID := int64(len(f.created))
	out.ServerID = &serverID
	return &out, nil
}

func (f *fakeRemote) ListMovements(ctx context.Context, q ListQuery) ([]movement.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeRemote) DeleteMovement(ctx context.Context, direction movement.Direction, serverID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, serverID)
	return nil
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

type fakeStore struct {
	saved   []movement.Record
	deleted []int64
	synced  []id.ID
	dirty   []movement.Record

	saveErr error
}

func (f *fakeStore) SaveMovement(ctx context.Context, rec *movement.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *rec)
	return nil
}

func (f *fakeStore) ListMovements(ctx context.Context, q ListQuery) ([]movement.Record, error) {
	return f.saved, nil
}

func (f *fakeStore) DeleteMovementByServerID(ctx context.Context, direction movement.Direction, serverID int64) error {
	f.deleted = append(f.deleted, serverID)
	return nil
}

func (f *fakeStore) ListDirty(ctx context.Context, limit int) ([]movement.Record, error) {
	return f.dirty, nil
}

func (f *fakeStore) MarkSynced(ctx context.Context, localID id.ID, serverID int64, at time.Time) error {
	f.synced = append(f.synced, localID)
	return nil
}

type fakeSession struct{ authed bool }

func (f *fakeSession) IsAuthenticated(ctx context.Context) bool { return f.authed }

func validRecord() *movement.Record {
	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureNoOrder)
	rec.ProductName = "Dichtband"
	rec.Quantity = decimal.NewFromInt(3)
	return rec
}

func TestCreateMovementRemoteMirrorsLocally(t *testing.T) {
	remote := &fakeRemote{}
	store := &fakeStore{}
	g := New(remote, store, &fakeSession{authed: true})

	saved, err := g.CreateMovement(context.Background(), validRecord())
	require.NoError(t, err)
	require.NotNil(t, saved.ServerID)
	assert.False(t, saved.Dirty)
	require.NotNil(t, saved.LastSynced)

	require.Len(t, store.saved, 1)
	assert.True(t, g.Online())
}

func TestCreateMovementFallsBackToDirtyLocalWrite(t *testing.T) {
	remote := &fakeRemote{createErr: apperror.NewInternal(nil)}
	store := &fakeStore{}
	g := New(remote, store, &fakeSession{authed: true})

	saved, err := g.CreateMovement(context.Background(), validRecord())
	require.NoError(t, err)
	assert.True(t, saved.Dirty)
	assert.Nil(t, saved.ServerID)

	// Exactly one local write, and the gate flips offline.
	require.Len(t, store.saved, 1)
	assert.False(t, g.Online())
}

func TestCreateMovementInsufficientStockDoesNotFallBack(t *testing.T) {
	remote := &fakeRemote{
		createErr: apperror.NewBusinessRule(apperror.CodeInsufficientStock, "Insufficient stock quantity"),
	}
	store := &fakeStore{}
	g := New(remote, store, &fakeSession{authed: true})

	_, err := g.CreateMovement(context.Background(), validRecord())
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The rejection must not produce a local record, and the gate stays
	// online: the remote system answered.
	assert.Empty(t, store.saved)
	assert.True(t, g.Online())
}

func TestCreateMovementUnauthenticatedWritesLocally(t *testing.T) {
	remote := &fakeRemote{}
	store := &fakeStore{}
	g := New(remote, store, &fakeSession{authed: false})

	saved, err := g.CreateMovement(context.Background(), validRecord())
	require.NoError(t, err)
	assert.True(t, saved.Dirty)
	assert.Empty(t, remote.created)
	require.Len(t, store.saved, 1)
}

func TestCreateMovementValidatesBeforeAnyIO(t *testing.T) {
	remote := &fakeRemote{}
	store := &fakeStore{}
	g := New(remote, store, &fakeSession{authed: true})

	rec := movement.NewRecord(movement.DirectionIn, movement.CaptureNoOrder)
	_, err := g.CreateMovement(context.Background(), rec)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, remote.created)
	assert.Empty(t, store.saved)
}

func TestListMovementsServesCacheOnFailureAndSticksOffline(t *testing.T) {
	cached := *validRecord()
	remote := &fakeRemote{listErr: apperror.NewInternal(nil)}
	store := &fakeStore{saved: []movement.Record{cached}}
	g := New(remote, store, &fakeSession{authed: true})

	records, err := g.ListMovements(context.Background(), ListQuery{Direction: movement.DirectionIn})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, g.Online())

	// Subsequent reads skip the remote entirely until a probe succeeds.
	remote.listErr = nil
	remote.listOut = []movement.Record{cached, cached}
	records, err = g.ListMovements(context.Background(), ListQuery{Direction: movement.DirectionIn})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListMovementsRefreshesCache(t *testing.T) {
	rec := *validRecord()
	remote := &fakeRemote{listOut: []movement.Record{rec}}
	store := &fakeStore{}
	g := New(remote, store, &fakeSession{authed: true})

	records, err := g.ListMovements(context.Background(), ListQuery{Direction: movement.DirectionIn})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Len(t, store.saved, 1)
}

func TestDeleteMovementCauses(t *testing.T) {
	t.Run("expired session", func(t *testing.T) {
		g := New(&fakeRemote{}, &fakeStore{}, &fakeSession{authed: false})
		err := g.DeleteMovement(context.Background(), movement.DirectionIn, 5)
		assert.True(t, apperror.IsUnauthorized(err))
	})

	t.Run("offline", func(t *testing.T) {
		g := New(&fakeRemote{}, &fakeStore{}, &fakeSession{authed: true})
		g.setOnline(context.Background(), false)
		err := g.DeleteMovement(context.Background(), movement.DirectionIn, 5)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeOffline, appErr.Code)
	})

	t.Run("remote cause passes through", func(t *testing.T) {
		remote := &fakeRemote{deleteErr: apperror.NewNotFound("resource", "/warenausgaenge/5")}
		store := &fakeStore{}
		g := New(remote, store, &fakeSession{authed: true})
		err := g.DeleteMovement(context.Background(), movement.DirectionOut, 5)
		assert.True(t, apperror.IsNotFound(err))
		assert.Empty(t, store.deleted)
	})

	t.Run("success removes local mirror", func(t *testing.T) {
		remote := &fakeRemote{}
		store := &fakeStore{}
		g := New(remote, store, &fakeSession{authed: true})
		require.NoError(t, g.DeleteMovement(context.Background(), movement.DirectionOut, 5))
		assert.Equal(t, []int64{5}, remote.deleted)
		assert.Equal(t, []int64{5}, store.deleted)
	})
}

func TestProbeRestoresOnline(t *testing.T) {
	remote := &fakeRemote{pingErr: apperror.NewOffline("ping")}
	g := New(remote, &fakeStore{}, &fakeSession{authed: true})

	g.Probe(context.Background())
	assert.False(t, g.Online())

	remote.pingErr = nil
	g.Probe(context.Background())
	assert.True(t, g.Online())
}

func TestSyncDirtySkipsInsufficientStock(t *testing.T) {
	blocked := *validRecord()
	blocked.MarkDirty()
	ok := *validRecord()
	ok.MarkDirty()

	remote := &fakeRemote{}
	store := &fakeStore{dirty: []movement.Record{blocked, ok}}
	g := New(remote, store, &fakeSession{authed: true})

	// Stock rejections skip the record but do not abort the pass.
	remote.createErr = apperror.NewBusinessRule(apperror.CodeInsufficientStock, "Insufficient stock quantity")
	require.NoError(t, g.SyncDirty(context.Background(), 0))
	assert.Empty(t, store.synced)

	remote.createErr = nil
	require.NoError(t, g.SyncDirty(context.Background(), 0))
	assert.Len(t, store.synced, 2)
	assert.True(t, g.Online())
}

func TestSyncDirtyStopsAndFlipsOfflineOnGenericFailure(t *testing.T) {
	rec := *validRecord()
	rec.MarkDirty()

	remote := &fakeRemote{createErr: apperror.NewInternal(nil)}
	store := &fakeStore{dirty: []movement.Record{rec}}
	g := New(remote, store, &fakeSession{authed: true})

	err := g.SyncDirty(context.Background(), 0)
	require.Error(t, err)
	assert.False(t, g.Online())
	assert.Empty(t, store.synced)
}

func TestSyncDirtyNoOpWhenOfflineOrSignedOut(t *testing.T) {
	rec := *validRecord()
	rec.MarkDirty()
	store := &fakeStore{dirty: []movement.Record{rec}}
	remote := &fakeRemote{}

	g := New(remote, store, &fakeSession{authed: false})
	require.NoError(t, g.SyncDirty(context.Background(), 0))
	assert.Empty(t, remote.created)
}
