package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEntryMock(t *testing.T) (*EntryRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEntryRepo(db), mock
}

func TestEntryCreate(t *testing.T) {
	repo, mock := setupEntryMock(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO vault_entries").
		WithArgs(uint64(1), "Gmail", "a@x.com", "aa", "bb", "cc").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT created_at, updated_at FROM vault_entries").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	e := &Entry{OwnerID: 1, Label: "Gmail", Username: "a@x.com", EncIV: "aa", EncContent: "bb", EncTag: "cc"}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, uint64(7), e.ID)
	assert.Equal(t, now, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryCreateDuplicate(t *testing.T) {
	repo, mock := setupEntryMock(t)

	mock.ExpectExec("INSERT INTO vault_entries").
		WithArgs(uint64(1), "Gmail", "a@x.com", "aa", "bb", "cc").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	e := &Entry{OwnerID: 1, Label: "Gmail", Username: "a@x.com", EncIV: "aa", EncContent: "bb", EncTag: "cc"}
	err := repo.Create(context.Background(), e)
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryGetByIDAndOwnerScoping(t *testing.T) {
	repo, mock := setupEntryMock(t)

	// Entry 7 exists but belongs to owner 1; owner 2's lookup sees no rows.
	mock.ExpectQuery("SELECT id, owner_id, label, username, enc_iv, enc_content, enc_tag").
		WithArgs(uint64(7), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "label", "username", "enc_iv", "enc_content", "enc_tag", "created_at", "updated_at"}))

	_, err := repo.GetByIDAndOwner(context.Background(), 7, 2)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryGetByIDAndOwner(t *testing.T) {
	repo, mock := setupEntryMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "label", "username", "enc_iv", "enc_content", "enc_tag", "created_at", "updated_at"}).
		AddRow(7, 1, "Gmail", "a@x.com", "aa", "bb", "cc", now, now)
	mock.ExpectQuery("SELECT id, owner_id, label, username, enc_iv, enc_content, enc_tag").
		WithArgs(uint64(7), uint64(1)).
		WillReturnRows(rows)

	e, err := repo.GetByIDAndOwner(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "Gmail", e.Label)
	assert.Equal(t, "bb", e.EncContent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryListByOwner(t *testing.T) {
	repo, mock := setupEntryMock(t)
	older := time.Now().UTC().Add(-time.Hour)
	newer := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "label", "username", "created_at", "updated_at"}).
		AddRow(8, 1, "GitHub", "a@x.com", newer, newer).
		AddRow(7, 1, "Gmail", "a@x.com", older, older)
	mock.ExpectQuery("SELECT id, owner_id, label, username, created_at, updated_at").
		WithArgs(uint64(1)).
		WillReturnRows(rows)

	items, err := repo.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "GitHub", items[0].Label)
	assert.Equal(t, "Gmail", items[1].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryUpdateSecretNotOwned(t *testing.T) {
	repo, mock := setupEntryMock(t)

	mock.ExpectExec("UPDATE vault_entries").
		WithArgs("iv2", "ct2", "tag2", uint64(7), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSecret(context.Background(), 7, 2, "iv2", "ct2", "tag2")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryUpdateSecret(t *testing.T) {
	repo, mock := setupEntryMock(t)

	mock.ExpectExec("UPDATE vault_entries").
		WithArgs("iv2", "ct2", "tag2", uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSecret(context.Background(), 7, 1, "iv2", "ct2", "tag2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryDeleteByIDAndOwner(t *testing.T) {
	repo, mock := setupEntryMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "label", "username", "enc_iv", "enc_content", "enc_tag", "created_at", "updated_at"}).
		AddRow(7, 1, "Gmail", "a@x.com", "aa", "bb", "cc", now, now)
	mock.ExpectQuery("SELECT id, owner_id, label, username, enc_iv, enc_content, enc_tag").
		WithArgs(uint64(7), uint64(1)).
		WillReturnRows(rows)
	mock.ExpectExec("DELETE FROM vault_entries").
		WithArgs(uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e, err := repo.DeleteByIDAndOwner(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "Gmail", e.Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryDeleteMissing(t *testing.T) {
	repo, mock := setupEntryMock(t)

	mock.ExpectQuery("SELECT id, owner_id, label, username, enc_iv, enc_content, enc_tag").
		WithArgs(uint64(99), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "label", "username", "enc_iv", "enc_content", "enc_tag", "created_at", "updated_at"}))

	_, err := repo.DeleteByIDAndOwner(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryCreateOtherDBError(t *testing.T) {
	repo, mock := setupEntryMock(t)

	dbErr := errors.New("connection refused")
	mock.ExpectExec("INSERT INTO vault_entries").
		WithArgs(uint64(1), "Gmail", "a@x.com", "aa", "bb", "cc").
		WillReturnError(dbErr)

	e := &Entry{OwnerID: 1, Label: "Gmail", Username: "a@x.com", EncIV: "aa", EncContent: "bb", EncTag: "cc"}
	err := repo.Create(context.Background(), e)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrDuplicateEntry)
}
