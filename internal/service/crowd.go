package service

import (
	"context"
	"time"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
)

// Crowd labels used on the booking page.
const (
	CrowdLow      = "Low"
	CrowdModerate = "Moderate"
	CrowdHigh     = "High"
)

// Density levels used on the crowd intelligence dashboard.
const (
	DensityLow      = "LOW"
	DensityModerate = "MODERATE"
	DensityHigh     = "HIGH"
)

// SlotCrowd labels a slot by fill ratio.  High slots (95% and up) are not
// offered for booking.  The label is advisory only; the reservation
// transaction makes the real decision.
func SlotCrowd(current, max int) (label string, bookable bool) {
	if max <= 0 {
		return CrowdHigh, false
	}
	pct := float64(current) / float64(max) * 100
	switch {
	case pct >= 95:
		return CrowdHigh, false
	case pct >= 70:
		return CrowdModerate, true
	}
	return CrowdLow, true
}

// Density returns the fill percentage and dashboard level.  Zero capacity
// counts as LOW.
func Density(count, capacity int) (float64, string) {
	if capacity <= 0 {
		return 0, DensityLow
	}
	d := float64(count) / float64(capacity) * 100
	switch {
	case d > 75:
		return d, DensityHigh
	case d > 40:
		return d, DensityModerate
	}
	return d, DensityLow
}

// SlotView is a time slot annotated for the booking page.
type SlotView struct {
	model.TimeSlot
	Remaining int    `json:"remaining"`
	Crowd     string `json:"crowd"`
	Bookable  bool   `json:"bookable"`
}

// GhatView is a ghat annotated for the booking page.
type GhatView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ShortName string     `json:"shortName"`
	ImageURL  string     `json:"imageUrl"`
	ImageHint string     `json:"imageHint"`
	Crowd     string     `json:"crowd"`
	Bookable  bool       `json:"bookable"`
	TimeSlots []SlotView `json:"timeSlots"`
}

// GhatDensity is one block of the crowd heatmap.
type GhatDensity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Density  float64 `json:"density"`
	Status   string  `json:"status"`
}

// CrowdSummary is the crowd intelligence dashboard payload.
type CrowdSummary struct {
	Ghats         []GhatDensity `json:"ghats"`
	TotalPilgrims int           `json:"totalPilgrims"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}

// CrowdService derives dashboards from the ghat collection.
type CrowdService struct {
	Store repository.GhatStore
	Now   func() time.Time
}

// NewCrowdService returns a CrowdService reading from store.
func NewCrowdService(store repository.GhatStore) *CrowdService {
	return &CrowdService{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

func totals(g model.Ghat) (count, capacity int) {
	for _, s := range g.TimeSlots {
		count += s.CurrentRegistrations
		capacity += s.MaxCapacity
	}
	return count, capacity
}

// Ghats lists the catalog with live counts and crowd labels.
func (s *CrowdService) Ghats(ctx context.Context) ([]GhatView, error) {
	ghats, err := s.Store.ListGhats(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GhatView, 0, len(ghats))
	for _, g := range ghats {
		count, capacity := totals(g)
		crowd, bookable := SlotCrowd(count, capacity)
		v := GhatView{
			ID: g.ID, Name: g.Name, ShortName: g.ShortCode,
			ImageURL: g.ImageURL, ImageHint: g.ImageHint,
			Crowd: crowd, Bookable: bookable,
			TimeSlots: make([]SlotView, 0, len(g.TimeSlots)),
		}
		for _, slot := range g.TimeSlots {
			label, ok := SlotCrowd(slot.CurrentRegistrations, slot.MaxCapacity)
			v.TimeSlots = append(v.TimeSlots, SlotView{TimeSlot: slot, Remaining: slot.Remaining(), Crowd: label, Bookable: ok})
		}
		out = append(out, v)
	}
	return out, nil
}

// Summary builds the per-ghat density heatmap and the pilgrim total.
func (s *CrowdService) Summary(ctx context.Context) (*CrowdSummary, error) {
	ghats, err := s.Store.ListGhats(ctx)
	if err != nil {
		return nil, err
	}
	sum := &CrowdSummary{Ghats: make([]GhatDensity, 0, len(ghats)), GeneratedAt: s.Now()}
	for _, g := range ghats {
		count, capacity := totals(g)
		d, status := Density(count, capacity)
		sum.Ghats = append(sum.Ghats, GhatDensity{ID: g.ID, Name: g.Name, Count: count, Capacity: capacity, Density: d, Status: status})
		sum.TotalPilgrims += count
	}
	return sum, nil
}
