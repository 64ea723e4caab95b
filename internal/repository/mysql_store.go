package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

// MySQLStore keeps ghats as documents: the slot list lives in a JSON column
// and is rewritten as a whole on every booking.  Concurrency control is
// optimistic through the version column, so a booking that read a stale
// ghat fails its UPDATE and is retried from the first read.
type MySQLStore struct {
	db          *sql.DB
	maxAttempts int
}

// NewMySQLStore returns a store bound to db.  maxAttempts bounds RunTx
// retries; values below one fall back to DefaultMaxAttempts.
func NewMySQLStore(db *sql.DB, maxAttempts int) *MySQLStore {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &MySQLStore{db: db, maxAttempts: maxAttempts}
}

const (
	selectGhatByCode   = `SELECT id, name, short_code, image_url, image_hint, time_slots, version FROM ghats WHERE short_code = ?`
	selectGhats        = `SELECT id, name, short_code, image_url, image_hint, time_slots, version FROM ghats ORDER BY position`
	updateGhatSlots    = `UPDATE ghats SET time_slots = ?, version = version + 1 WHERE id = ? AND version = ?`
	insertRegistration = `INSERT INTO registrations (id, ticket_id, full_name, mobile_number, number_of_people, visit_date, ghat_id, ghat_name, ghat_short_code, time_slot, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// mysqlTx implements Tx on top of a *sql.Tx.
type mysqlTx struct {
	tx    *sql.Tx
	reads map[string]int64 // ghat id -> version seen
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGhat(row scanner) (*model.Ghat, error) {
	var g model.Ghat
	var slots []byte
	if err := row.Scan(&g.ID, &g.Name, &g.ShortCode, &g.ImageURL, &g.ImageHint, &slots, &g.Version); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(slots, &g.TimeSlots); err != nil {
		return nil, fmt.Errorf("decode time_slots of %s: %w", g.ID, err)
	}
	return &g, nil
}

func (t *mysqlTx) GhatByShortCode(ctx context.Context, shortCode string) (*model.Ghat, error) {
	g, err := scanGhat(t.tx.QueryRowContext(ctx, selectGhatByCode, shortCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify(err)
	}
	// a second read of the same ghat inside this transaction sees our own
	// update, whose version is one ahead of the snapshot we validate against
	if _, ok := t.reads[g.ID]; !ok {
		t.reads[g.ID] = g.Version
	}
	return g, nil
}

func (t *mysqlTx) PutGhat(ctx context.Context, g *model.Ghat) error {
	seen, ok := t.reads[g.ID]
	if !ok {
		return fmt.Errorf("ghat %s written without being read in this transaction", g.ID)
	}
	slots, err := json.Marshal(g.TimeSlots)
	if err != nil {
		return fmt.Errorf("encode time_slots: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, updateGhatSlots, slots, g.ID, seen)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTxConflict
	}
	t.reads[g.ID] = seen + 1
	return nil
}

func (t *mysqlTx) CreateRegistration(ctx context.Context, r *model.Registration) error {
	if r.DocID == "" {
		r.DocID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx, insertRegistration,
		r.DocID, r.TicketID, r.FullName, r.MobileNumber, r.NumberOfPeople,
		r.VisitDate.UTC().Format("2006-01-02"), r.GhatID, r.GhatName, r.GhatShortCode, r.TimeSlot,
		r.CreatedAt.UTC().Format("2006-01-02 15:04:05.000"),
	)
	return classify(err)
}

// classify maps InnoDB deadlock and lock wait timeouts to ErrTxConflict so
// RunTx retries them like a version mismatch.
func classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && (me.Number == 1213 || me.Number == 1205) {
		return fmt.Errorf("%s: %w", me.Message, ErrTxConflict)
	}
	return err
}

// RunTx opens a transaction per attempt, commits when fn succeeds and rolls
// back otherwise.  Version conflicts and deadlocks cause a fresh attempt.
func (s *MySQLStore) RunTx(ctx context.Context, fn TxFunc) error {
	return retryTx(ctx, s.maxAttempts, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()
		if err := fn(ctx, &mysqlTx{tx: tx, reads: map[string]int64{}}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return classify(err)
		}
		committed = true
		return nil
	})
}

func (s *MySQLStore) ListGhats(ctx context.Context) ([]model.Ghat, error) {
	rows, err := s.db.QueryContext(ctx, selectGhats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Ghat
	for rows.Next() {
		g, err := scanGhat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (s *MySQLStore) CountGhats(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ghats`).Scan(&n)
	return n, err
}

// InsertGhats writes the batch in one multi-row INSERT so it lands whole or
// not at all.
func (s *MySQLStore) InsertGhats(ctx context.Context, ghats []model.Ghat) error {
	if len(ghats) == 0 {
		return nil
	}
	query := `INSERT INTO ghats (id, name, short_code, image_url, image_hint, time_slots, version, position) VALUES `
	args := make([]interface{}, 0, len(ghats)*7)
	for i, g := range ghats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, 1, ?)"
		slots, err := json.Marshal(g.TimeSlots)
		if err != nil {
			return fmt.Errorf("encode time_slots of %s: %w", g.ID, err)
		}
		args = append(args, g.ID, g.Name, g.ShortCode, g.ImageURL, g.ImageHint, slots, i)
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return fmt.Errorf("%s: %w", me.Message, ErrConflict)
	}
	return err
}

func (s *MySQLStore) RegistrationByTicket(ctx context.Context, ticketID string) (*model.Registration, error) {
	const q = `SELECT id, ticket_id, full_name, mobile_number, number_of_people, visit_date, ghat_id, ghat_name, ghat_short_code, time_slot, created_at
			   FROM registrations WHERE ticket_id = ? ORDER BY created_at DESC LIMIT 1`
	var r model.Registration
	err := s.db.QueryRowContext(ctx, q, ticketID).Scan(
		&r.DocID, &r.TicketID, &r.FullName, &r.MobileNumber, &r.NumberOfPeople, &r.VisitDate,
		&r.GhatID, &r.GhatName, &r.GhatShortCode, &r.TimeSlot, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MySQLStore) CreateMissingPerson(ctx context.Context, r *model.MissingPersonReport) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO missing_persons (id, case_id, missing_person_name, missing_person_mobile, reporter_contact, last_seen_ghat, detailed_location, description, photo_url, status, created_at)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, r.ID, r.CaseID, r.MissingPersonName, r.MissingPersonMobile, r.ReporterContact,
		r.LastSeenGhat, r.DetailedLocation, r.Description, r.PhotoURL, r.Status, r.CreatedAt.UTC().Format("2006-01-02 15:04:05.000"))
	return err
}

func (s *MySQLStore) ListMissingPersons(ctx context.Context, limit int) ([]model.MissingPersonReport, error) {
	const q = `SELECT id, case_id, missing_person_name, missing_person_mobile, reporter_contact, last_seen_ghat, detailed_location, description, photo_url, status, created_at
			   FROM missing_persons ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.MissingPersonReport{}
	for rows.Next() {
		var r model.MissingPersonReport
		if err := rows.Scan(&r.ID, &r.CaseID, &r.MissingPersonName, &r.MissingPersonMobile, &r.ReporterContact,
			&r.LastSeenGhat, &r.DetailedLocation, &r.Description, &r.PhotoURL, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *MySQLStore) UpdateMissingPersonStatus(ctx context.Context, id, status string) error {
	return s.updateStatus(ctx, "missing_persons", id, status)
}

func (s *MySQLStore) CreateEmergency(ctx context.Context, e *model.HealthEmergency) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO emergency_alerts (id, issue_type, location, details, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, e.ID, e.IssueType, e.Location, e.Details, e.Status, e.CreatedAt.UTC().Format("2006-01-02 15:04:05.000"))
	return err
}

func (s *MySQLStore) ListEmergencies(ctx context.Context, limit int) ([]model.HealthEmergency, error) {
	const q = `SELECT id, issue_type, location, details, status, created_at FROM emergency_alerts ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HealthEmergency{}
	for rows.Next() {
		var e model.HealthEmergency
		if err := rows.Scan(&e.ID, &e.IssueType, &e.Location, &e.Details, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *MySQLStore) UpdateEmergencyStatus(ctx context.Context, id, status string) error {
	return s.updateStatus(ctx, "emergency_alerts", id, status)
}

// updateStatus sets the status column of one row; table is never user input.
func (s *MySQLStore) updateStatus(ctx context.Context, table, id, status string) error {
	if strings.ContainsAny(table, " ;`") {
		return fmt.Errorf("invalid table %q", table)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

var _ Store = (*MySQLStore)(nil)
