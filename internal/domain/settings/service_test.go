package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warenbuchung/internal/core/apperror"
)

type fakeSettingsRemote struct {
	reasons        []Reason
	justifications []Justification
	err            error
}

func (f *fakeSettingsRemote) FetchReasons(ctx context.Context) ([]Reason, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reasons, nil
}

func (f *fakeSettingsRemote) FetchJustifications(ctx context.Context) ([]Justification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.justifications, nil
}

func TestActiveReasonsFiltersAndOrders(t *testing.T) {
	remote := &fakeSettingsRemote{reasons: []Reason{
		{ID: 1, Name: "Defekt", IsActive: true, OrderIndex: 2},
		{ID: 2, Name: "Veraltet", IsActive: false, OrderIndex: 0},
		{ID: 3, Name: "Verbrauch", IsActive: true, OrderIndex: 1},
	}}
	s := NewService(remote)

	got, err := s.ActiveReasons(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Verbrauch", got[0].Name)
	assert.Equal(t, "Defekt", got[1].Name)
}

func TestActiveJustificationsFiltersAndOrders(t *testing.T) {
	remote := &fakeSettingsRemote{justifications: []Justification{
		{ID: 1, Text: "Baustellenbedarf", IsActive: true, OrderIndex: 5},
		{ID: 2, Text: "Ersatzlieferung", IsActive: true, OrderIndex: 1},
		{ID: 3, Text: "Alt", IsActive: false, OrderIndex: 0},
	}}
	s := NewService(remote)

	got, err := s.ActiveJustifications(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ersatzlieferung", got[0].Text)
	assert.Equal(t, "Baustellenbedarf", got[1].Text)
}

func TestSettingsRemoteFailurePropagates(t *testing.T) {
	remote := &fakeSettingsRemote{err: apperror.NewOffline("fetch settings")}
	s := NewService(remote)

	_, err := s.ActiveReasons(context.Background())
	require.Error(t, err)
	_, err = s.ActiveJustifications(context.Background())
	require.Error(t, err)
}
