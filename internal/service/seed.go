package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
)

// Catalog returns the fixed ghat catalog with every slot empty.
func Catalog() []model.Ghat {
	return []model.Ghat{
		{
			ID:        "ram-kund-ghat",
			Name:      "Ram Kund",
			ShortCode: "RK",
			ImageURL:  "/images/ghats/ram-kund.jpg",
			ImageHint: "river ghat",
			TimeSlots: []model.TimeSlot{
				{ID: "rk-1", Label: "6 AM - 9 AM", MaxCapacity: 5000},
				{ID: "rk-2", Label: "9 AM - 12 PM", MaxCapacity: 5000},
				{ID: "rk-3", Label: "3 PM - 6 PM", MaxCapacity: 4000},
			},
		},
		{
			ID:        "tapovan-ghat",
			Name:      "Tapovan Ghat",
			ShortCode: "TV",
			ImageURL:  "/images/ghats/tapovan.jpg",
			ImageHint: "river bank",
			TimeSlots: []model.TimeSlot{
				{ID: "tp-1", Label: "7 AM - 10 AM", MaxCapacity: 3000},
				{ID: "tp-2", Label: "10 AM - 1 PM", MaxCapacity: 3000},
			},
		},
		{
			ID:        "laxman-kund-ghat",
			Name:      "Laxman Kund",
			ShortCode: "LK",
			ImageURL:  "/images/ghats/laxman-kund.jpg",
			ImageHint: "temple steps",
			TimeSlots: []model.TimeSlot{
				{ID: "lk-1", Label: "6:30 AM - 9:30 AM", MaxCapacity: 2500},
				{ID: "lk-2", Label: "9:30 AM - 12:30 PM", MaxCapacity: 2500},
				{ID: "lk-3", Label: "4 PM - 7 PM", MaxCapacity: 2000},
			},
		},
	}
}

// SeedGhats inserts the catalog when the ghat collection is empty and does
// nothing otherwise.  It reports whether it inserted.  Failures are logged
// and returned but never retried.
func SeedGhats(ctx context.Context, store repository.GhatStore, log *zap.Logger) (bool, error) {
	n, err := store.CountGhats(ctx)
	if err != nil {
		log.Error("seed: count ghats failed", zap.Error(err))
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	catalog := Catalog()
	if err := store.InsertGhats(ctx, catalog); err != nil {
		log.Error("seed: insert catalog failed", zap.Error(err))
		return false, err
	}
	log.Info("seed: ghat catalog inserted", zap.Int("ghats", len(catalog)))
	return true, nil
}
