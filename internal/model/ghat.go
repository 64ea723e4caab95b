package model

// Ghat is a named riverside bathing location.  It is the unit of capacity
// partitioning: every booking targets exactly one of its time slots.
//
// Fields:
//  ID        – stable document key (e.g. "ram-kund-ghat").
//  Name      – display name shown to pilgrims.
//  ShortCode – two letter code embedded in ticket ids.
//  ImageURL  – catalog image.
//  ImageHint – short description of the image.
//  TimeSlots – ordered slot list, stored inline with the ghat document.
//  Version   – bumped by the store on every committed write.
type Ghat struct {
	ID        string     `json:"id"`        // ghats.id
	Name      string     `json:"name"`      // ghats.name
	ShortCode string     `json:"shortName"` // ghats.short_code
	ImageURL  string     `json:"imageUrl"`  // ghats.image_url
	ImageHint string     `json:"imageHint"` // ghats.image_hint
	TimeSlots []TimeSlot `json:"timeSlots"` // ghats.time_slots (JSON document)
	Version   int64      `json:"-"`         // ghats.version
}

// TimeSlot is a bounded time window within a ghat with its own capacity
// counter.  CurrentRegistrations never exceeds MaxCapacity once committed.
type TimeSlot struct {
	ID                   string `json:"id"`
	Label                string `json:"time"`
	MaxCapacity          int    `json:"maxCapacity"`
	CurrentRegistrations int    `json:"currentRegistrations"`
}

// Remaining returns how many more pilgrims the slot can take.
func (s TimeSlot) Remaining() int {
	if s.CurrentRegistrations >= s.MaxCapacity {
		return 0
	}
	return s.MaxCapacity - s.CurrentRegistrations
}

// SlotByLabel returns the index of the slot whose label equals label, or -1.
func (g *Ghat) SlotByLabel(label string) int {
	for i := range g.TimeSlots {
		if g.TimeSlots[i].Label == label {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate the slot list freely.
func (g Ghat) Clone() Ghat {
	out := g
	out.TimeSlots = make([]TimeSlot, len(g.TimeSlots))
	copy(out.TimeSlots, g.TimeSlots)
	return out
}
