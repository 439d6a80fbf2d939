package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warenbuchung/internal/core/apperror"
	"warenbuchung/internal/core/units"
)

type fakeRemoteCatalog struct {
	products []Product
	fetchErr error

	created   []Product
	createErr error
	fetches   int
}

func (f *fakeRemoteCatalog) FetchProducts(ctx context.Context) ([]Product, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.products, nil
}

func (f *fakeRemoteCatalog) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *p
	created.ID = int64(100 + len(f.created))
	f.created = append(f.created, created)
	return &created, nil
}

type fakeProductStore struct {
	saved [][]Product
}

func (f *fakeProductStore) SaveProducts(ctx context.Context, products []Product) error {
	f.saved = append(f.saved, products)
	return nil
}

func (f *fakeProductStore) ListProducts(ctx context.Context) ([]Product, error) {
	return nil, nil
}

func TestResolveFromPrimedCache(t *testing.T) {
	remote := &fakeRemoteCatalog{}
	r := NewResolver(remote, nil)
	r.Prime([]Product{{ID: 1, Name: "Dichtband", SKU: "DB-3"}})

	p, err := r.Resolve(context.Background(), "db-3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	// Name matching is case-insensitive too.
	p, err = r.Resolve(context.Background(), "DICHTBAND")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	// Cache hits never touch the remote.
	assert.Zero(t, remote.fetches)
}

func TestResolveRefreshesOnCacheMiss(t *testing.T) {
	remote := &fakeRemoteCatalog{products: []Product{{ID: 2, Name: "Schrauben", SKU: "SCH-9"}}}
	store := &fakeProductStore{}
	r := NewResolver(remote, store)

	p, err := r.Resolve(context.Background(), "SCH-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)
	assert.Equal(t, 1, remote.fetches)

	// The refreshed list lands in the offline cache.
	require.Len(t, store.saved, 1)

	// A second resolve hits the now-primed cache.
	_, err = r.Resolve(context.Background(), "Schrauben")
	require.NoError(t, err)
	assert.Equal(t, 1, remote.fetches)
}

func TestResolveUnknownCode(t *testing.T) {
	r := NewResolver(&fakeRemoteCatalog{}, nil)

	_, err := r.Resolve(context.Background(), "gibt-es-nicht")
	assert.True(t, apperror.IsNotFound(err))
}

func TestResolveEmptyCode(t *testing.T) {
	r := NewResolver(&fakeRemoteCatalog{}, nil)

	_, err := r.Resolve(context.Background(), "   ")
	assert.True(t, apperror.IsValidation(err))
}

func TestResolveRemoteFailurePropagates(t *testing.T) {
	remote := &fakeRemoteCatalog{fetchErr: apperror.NewOffline("fetch products")}
	r := NewResolver(remote, nil)

	_, err := r.Resolve(context.Background(), "DB-3")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeOffline, appErr.Code)
}

func TestCreateUnknownAppliesDefaults(t *testing.T) {
	remote := &fakeRemoteCatalog{}
	store := &fakeProductStore{}
	r := NewResolver(remote, store)

	created, err := r.CreateUnknown(context.Background(), Product{Name: "Neuteil"})
	require.NoError(t, err)
	assert.Equal(t, units.Stueck, created.Unit)
	assert.Equal(t, ItemMaterial, created.ItemType)
	assert.True(t, created.AutoCreated)
	assert.NotZero(t, created.ID)

	// Resolvable for the rest of the session.
	p, err := r.Resolve(context.Background(), "Neuteil")
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
	require.Len(t, store.saved, 1)
}

func TestCreateUnknownRequiresName(t *testing.T) {
	r := NewResolver(&fakeRemoteCatalog{}, nil)

	_, err := r.CreateUnknown(context.Background(), Product{Name: "  "})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateUnknownRemoteFailureLeavesCacheUntouched(t *testing.T) {
	remote := &fakeRemoteCatalog{createErr: apperror.NewOffline("create product")}
	r := NewResolver(remote, nil)

	_, err := r.CreateUnknown(context.Background(), Product{Name: "Neuteil"})
	require.Error(t, err)

	_, ok := r.lookup("Neuteil")
	assert.False(t, ok)
}
