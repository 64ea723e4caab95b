package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
)

func TestSeedGhats_EmptyStore(t *testing.T) {
	store := repository.NewMemoryStore(0)

	inserted, err := SeedGhats(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, inserted)

	ghats, err := store.ListGhats(context.Background())
	require.NoError(t, err)
	require.Len(t, ghats, 3)
	assert.Equal(t, []string{"RK", "TV", "LK"}, []string{ghats[0].ShortCode, ghats[1].ShortCode, ghats[2].ShortCode})
	for _, g := range ghats {
		require.NotEmpty(t, g.TimeSlots)
		for _, s := range g.TimeSlots {
			assert.Zero(t, s.CurrentRegistrations)
			assert.Positive(t, s.MaxCapacity)
		}
	}
}

func TestSeedGhats_Idempotent(t *testing.T) {
	store := repository.NewMemoryStore(0)
	ctx := context.Background()

	_, err := SeedGhats(ctx, store, zap.NewNop())
	require.NoError(t, err)
	svc := newTestService(store)
	_, err = svc.Register(ctx, RegistrationRequest{
		FullName: "Ravi", MobileNumber: "9000000000", NumberOfPeople: 3,
		Date: "2027-08-14", Ghat: "RK", TimeSlot: "6 AM - 9 AM",
	})
	require.NoError(t, err)
	before, err := store.ListGhats(ctx)
	require.NoError(t, err)

	inserted, err := SeedGhats(ctx, store, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, inserted)

	after, err := store.ListGhats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 3, after[0].TimeSlots[0].CurrentRegistrations, "existing counts untouched")
}

func TestSeedGhats_TwiceOnEmptyStoreMatchesOnce(t *testing.T) {
	once := repository.NewMemoryStore(0)
	twice := repository.NewMemoryStore(0)
	ctx := context.Background()

	_, err := SeedGhats(ctx, once, zap.NewNop())
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = SeedGhats(ctx, twice, zap.NewNop())
		require.NoError(t, err)
	}

	want, err := once.ListGhats(ctx)
	require.NoError(t, err)
	got, err := twice.ListGhats(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSeedGhats_SkipsPartialCatalog(t *testing.T) {
	store := repository.NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.InsertGhats(ctx, []model.Ghat{{ID: "custom", Name: "Custom", ShortCode: "CU"}}))

	inserted, err := SeedGhats(ctx, store, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, inserted)
	n, _ := store.CountGhats(ctx)
	assert.Equal(t, 1, n)
}

type brokenCounter struct {
	*repository.MemoryStore
}

func (brokenCounter) CountGhats(context.Context) (int, error) { return 0, errors.New("unavailable") }

func TestSeedGhats_CountFailure(t *testing.T) {
	store := repository.NewMemoryStore(0)

	inserted, err := SeedGhats(context.Background(), brokenCounter{store}, zap.NewNop())
	require.Error(t, err)
	assert.False(t, inserted)
	n, _ := store.CountGhats(context.Background())
	assert.Zero(t, n)
}
