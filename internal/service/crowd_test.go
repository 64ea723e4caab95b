package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
)

func TestSlotCrowd(t *testing.T) {
	cases := []struct {
		current, max int
		label        string
		bookable     bool
	}{
		{0, 100, CrowdLow, true},
		{69, 100, CrowdLow, true},
		{70, 100, CrowdModerate, true},
		{94, 100, CrowdModerate, true},
		{95, 100, CrowdHigh, false},
		{100, 100, CrowdHigh, false},
		{0, 0, CrowdHigh, false},
	}
	for _, tc := range cases {
		label, ok := SlotCrowd(tc.current, tc.max)
		assert.Equal(t, tc.label, label, "%d/%d", tc.current, tc.max)
		assert.Equal(t, tc.bookable, ok, "%d/%d", tc.current, tc.max)
	}
}

func TestDensity(t *testing.T) {
	d, status := Density(0, 0)
	assert.Zero(t, d)
	assert.Equal(t, DensityLow, status)

	_, status = Density(40, 100)
	assert.Equal(t, DensityLow, status)
	_, status = Density(41, 100)
	assert.Equal(t, DensityModerate, status)
	_, status = Density(75, 100)
	assert.Equal(t, DensityModerate, status)
	d, status = Density(76, 100)
	assert.Equal(t, DensityHigh, status)
	assert.InDelta(t, 76.0, d, 1e-9)
}

func TestCrowdService(t *testing.T) {
	store := repository.NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, store.InsertGhats(ctx, []model.Ghat{
		{ID: "a", Name: "A", ShortCode: "AA", TimeSlots: []model.TimeSlot{
			{ID: "a1", Label: "x", MaxCapacity: 100, CurrentRegistrations: 96},
			{ID: "a2", Label: "y", MaxCapacity: 100, CurrentRegistrations: 10},
		}},
		{ID: "b", Name: "B", ShortCode: "BB"},
	}))
	svc := NewCrowdService(store)
	svc.Now = func() time.Time { return time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) }

	views, err := svc.Ghats(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "AA", views[0].ShortName)
	assert.Equal(t, CrowdHigh, views[0].TimeSlots[0].Crowd)
	assert.False(t, views[0].TimeSlots[0].Bookable)
	assert.Equal(t, 4, views[0].TimeSlots[0].Remaining)
	assert.Equal(t, CrowdLow, views[0].TimeSlots[1].Crowd)
	assert.Empty(t, views[1].TimeSlots)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 106, sum.TotalPilgrims)
	assert.Equal(t, DensityModerate, sum.Ghats[0].Status)
	assert.InDelta(t, 53.0, sum.Ghats[0].Density, 1e-9)
	assert.Equal(t, DensityLow, sum.Ghats[1].Status)
	assert.Equal(t, svc.Now(), sum.GeneratedAt)
}
