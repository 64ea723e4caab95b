package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

var ghatColumns = []string{"id", "name", "short_code", "image_url", "image_hint", "time_slots", "version"}

func newMock(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLStore(db, 2), mock
}

func ghatRow(version int64, current int) *sqlmock.Rows {
	slots := `[{"id":"tg-1","time":"6 AM - 9 AM","maxCapacity":100,"currentRegistrations":` +
		strconv.Itoa(current) + `}]`
	return sqlmock.NewRows(ghatColumns).
		AddRow("test-ghat", "Test Ghat", "TG", "", "", []byte(slots), version)
}

// book is a minimal transaction body: read, add one registration, bump
// the first slot by n.
func book(n int) TxFunc {
	return func(ctx context.Context, tx Tx) error {
		g, err := tx.GhatByShortCode(ctx, "TG")
		if err != nil {
			return err
		}
		if err := tx.CreateRegistration(ctx, &model.Registration{
			TicketID: "KM-27-TG-AAAA", FullName: "Asha", NumberOfPeople: n,
			VisitDate: time.Date(2027, 8, 14, 0, 0, 0, 0, time.UTC), GhatID: g.ID, TimeSlot: g.TimeSlots[0].Label,
		}); err != nil {
			return err
		}
		g.TimeSlots[0].CurrentRegistrations += n
		return tx.PutGhat(ctx, g)
	}
}

func TestMySQLStore_RunTxCommits(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectGhatByCode)).WithArgs("TG").WillReturnRows(ghatRow(3, 98))
	mock.ExpectExec(regexp.QuoteMeta(insertRegistration)).
		WithArgs(sqlmock.AnyArg(), "KM-27-TG-AAAA", "Asha", sqlmock.AnyArg(), sqlmock.AnyArg(), "2027-08-14",
			"test-ghat", sqlmock.AnyArg(), sqlmock.AnyArg(), "6 AM - 9 AM", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateGhatSlots)).
		WithArgs(sqlmock.AnyArg(), "test-ghat", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.RunTx(context.Background(), book(2)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_RunTxRetriesStaleVersion(t *testing.T) {
	store, mock := newMock(t)

	// first attempt loses the version race
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectGhatByCode)).WithArgs("TG").WillReturnRows(ghatRow(3, 10))
	mock.ExpectExec(regexp.QuoteMeta(insertRegistration)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateGhatSlots)).
		WithArgs(sqlmock.AnyArg(), "test-ghat", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	// second attempt reads the new version and wins
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectGhatByCode)).WithArgs("TG").WillReturnRows(ghatRow(4, 12))
	mock.ExpectExec(regexp.QuoteMeta(insertRegistration)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateGhatSlots)).
		WithArgs(sqlmock.AnyArg(), "test-ghat", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.RunTx(context.Background(), book(1)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_RunTxGivesUp(t *testing.T) {
	store, mock := newMock(t)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(selectGhatByCode)).WithArgs("TG").WillReturnRows(ghatRow(3, 10))
		mock.ExpectExec(regexp.QuoteMeta(insertRegistration)).
			WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
		mock.ExpectRollback()
	}

	err := store.RunTx(context.Background(), book(1))
	assert.ErrorIs(t, err, ErrTxConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_RunTxBodyErrorRollsBack(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectGhatByCode)).WithArgs("ZZ").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.RunTx(context.Background(), func(ctx context.Context, tx Tx) error {
		_, err := tx.GhatByShortCode(ctx, "ZZ")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_PutGhatRequiresRead(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.RunTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.PutGhat(ctx, &model.Ghat{ID: "test-ghat"})
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTxConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_ListGhats(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectGhats)).WillReturnRows(ghatRow(7, 42))

	ghats, err := store.ListGhats(context.Background())
	require.NoError(t, err)
	require.Len(t, ghats, 1)
	assert.Equal(t, int64(7), ghats[0].Version)
	assert.Equal(t, "6 AM - 9 AM", ghats[0].TimeSlots[0].Label)
	assert.Equal(t, 42, ghats[0].TimeSlots[0].CurrentRegistrations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_InsertGhats(t *testing.T) {
	store, mock := newMock(t)
	ghats := []model.Ghat{
		{ID: "a", Name: "A", ShortCode: "AA"},
		{ID: "b", Name: "B", ShortCode: "BB"},
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ghats (id, name, short_code, image_url, image_hint, time_slots, version, position) VALUES (?, ?, ?, ?, ?, ?, 1, ?),(?, ?, ?, ?, ?, ?, 1, ?)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, store.InsertGhats(context.Background(), ghats))

	mock.ExpectExec("INSERT INTO ghats").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.ErrorIs(t, store.InsertGhats(context.Background(), ghats), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_CountGhats(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM ghats")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))

	n, err := store.CountGhats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMySQLStore_RegistrationByTicketNotFound(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE ticket_id = ?")).
		WithArgs("KM-27-RK-ZZZZ").
		WillReturnError(sql.ErrNoRows)

	_, err := store.RegistrationByTicket(context.Background(), "KM-27-RK-ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMySQLStore_UpdateStatus(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE missing_persons SET status = ? WHERE id = ?")).
		WithArgs("Found", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.UpdateMissingPersonStatus(context.Background(), "r1", "Found"))

	// unchanged row: status already set
	mock.ExpectExec(regexp.QuoteMeta("UPDATE emergency_alerts SET status = ? WHERE id = ?")).
		WithArgs("On-site", "e1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM emergency_alerts WHERE id = ?")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	require.NoError(t, store.UpdateEmergencyStatus(context.Background(), "e1", "On-site"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE emergency_alerts SET status = ? WHERE id = ?")).
		WithArgs("On-site", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM emergency_alerts WHERE id = ?")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, store.UpdateEmergencyStatus(context.Background(), "missing", "On-site"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_ListMissingPersonsClampsLimit(t *testing.T) {
	store, mock := newMock(t)
	cols := []string{"id", "case_id", "missing_person_name", "missing_person_mobile", "reporter_contact",
		"last_seen_ghat", "detailed_location", "description", "photo_url", "status", "created_at"}
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM missing_persons ORDER BY created_at DESC LIMIT ?")).
		WithArgs(int64(50)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("r1", "MP-ABC123", "Kamla", "", "9876543210", "Ram Kund", "", "yellow saree", "", "Pending", now))

	list, err := store.ListMissingPersons(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MP-ABC123", list[0].CaseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
