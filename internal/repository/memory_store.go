package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

// MemoryStore is an in-process Store with the same optimistic transaction
// semantics as the MySQL store: reads take a snapshot and remember each
// ghat's version, and the commit fails with ErrTxConflict when any of
// those versions moved.  It backs STORE_DRIVER=memory and the tests.
type MemoryStore struct {
	mu            sync.RWMutex
	ghats         map[string]model.Ghat // keyed by ghat id
	order         []string              // insertion order of ghat ids
	registrations map[string]model.Registration
	byTicket      map[string]string // ticket id -> registration doc id
	missing       []model.MissingPersonReport
	emergencies   []model.HealthEmergency
	maxAttempts   int
}

// NewMemoryStore returns an empty store.  maxAttempts bounds RunTx retries;
// values below one fall back to DefaultMaxAttempts.
func NewMemoryStore(maxAttempts int) *MemoryStore {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &MemoryStore{
		ghats:         map[string]model.Ghat{},
		registrations: map[string]model.Registration{},
		byTicket:      map[string]string{},
		maxAttempts:   maxAttempts,
	}
}

// memTx buffers writes until commit.
type memTx struct {
	s     *MemoryStore
	reads map[string]int64 // ghat id -> version seen
	ghats map[string]model.Ghat
	regs  []model.Registration
}

func (t *memTx) GhatByShortCode(_ context.Context, shortCode string) (*model.Ghat, error) {
	for _, g := range t.ghats {
		if g.ShortCode == shortCode {
			c := g.Clone()
			return &c, nil
		}
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	for _, id := range t.s.order {
		g := t.s.ghats[id]
		if g.ShortCode != shortCode {
			continue
		}
		if _, ok := t.reads[g.ID]; !ok {
			t.reads[g.ID] = g.Version
		}
		c := g.Clone()
		return &c, nil
	}
	return nil, ErrNotFound
}

func (t *memTx) PutGhat(_ context.Context, g *model.Ghat) error {
	if _, ok := t.reads[g.ID]; !ok {
		return fmt.Errorf("ghat %s written without being read in this transaction", g.ID)
	}
	t.ghats[g.ID] = g.Clone()
	return nil
}

func (t *memTx) CreateRegistration(_ context.Context, r *model.Registration) error {
	if r.DocID == "" {
		r.DocID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	t.regs = append(t.regs, *r)
	return nil
}

// commit validates every version read by the transaction and applies the
// buffered writes under the store lock.
func (t *memTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for id, v := range t.reads {
		if cur, ok := t.s.ghats[id]; !ok || cur.Version != v {
			return ErrTxConflict
		}
	}
	for id, g := range t.ghats {
		g.Version = t.s.ghats[id].Version + 1
		t.s.ghats[id] = g
	}
	for _, r := range t.regs {
		t.s.registrations[r.DocID] = r
		t.s.byTicket[r.TicketID] = r.DocID
	}
	return nil
}

// RunTx executes fn against a fresh buffered transaction, retrying on
// version conflicts.  Nothing is applied when fn returns an error.
func (s *MemoryStore) RunTx(ctx context.Context, fn TxFunc) error {
	return retryTx(ctx, s.maxAttempts, func(ctx context.Context) error {
		tx := &memTx{s: s, reads: map[string]int64{}, ghats: map[string]model.Ghat{}}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return tx.commit()
	})
}

func (s *MemoryStore) ListGhats(_ context.Context) ([]model.Ghat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Ghat, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.ghats[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) CountGhats(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ghats), nil
}

// InsertGhats adds the whole batch or nothing.
func (s *MemoryStore) InsertGhats(_ context.Context, ghats []model.Ghat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	for _, g := range ghats {
		if _, ok := s.ghats[g.ID]; ok || seen[g.ID] {
			return fmt.Errorf("ghat %s: %w", g.ID, ErrConflict)
		}
		seen[g.ID] = true
	}
	for _, g := range ghats {
		c := g.Clone()
		c.Version = 1
		s.ghats[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return nil
}

func (s *MemoryStore) RegistrationByTicket(_ context.Context, ticketID string) (*model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docID, ok := s.byTicket[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	r := s.registrations[docID]
	return &r, nil
}

// Registrations returns every committed registration ordered by creation.
func (s *MemoryStore) Registrations() []model.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Registration, 0, len(s.registrations))
	for _, r := range s.registrations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) CreateMissingPerson(_ context.Context, r *model.MissingPersonReport) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.missing = append(s.missing, *r)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListMissingPersons(_ context.Context, limit int) ([]model.MissingPersonReport, error) {
	limit = clampLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.MissingPersonReport, 0, limit)
	for i := len(s.missing) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.missing[i])
	}
	return out, nil
}

func (s *MemoryStore) UpdateMissingPersonStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.missing {
		if s.missing[i].ID == id {
			s.missing[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CreateEmergency(_ context.Context, e *model.HealthEmergency) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.emergencies = append(s.emergencies, *e)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListEmergencies(_ context.Context, limit int) ([]model.HealthEmergency, error) {
	limit = clampLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.HealthEmergency, 0, limit)
	for i := len(s.emergencies) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.emergencies[i])
	}
	return out, nil
}

func (s *MemoryStore) UpdateEmergencyStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.emergencies {
		if s.emergencies[i].ID == id {
			s.emergencies[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

var _ Store = (*MemoryStore)(nil)
