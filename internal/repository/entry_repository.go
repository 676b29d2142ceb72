package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Entry mirrors the 'vault_entries' table. EncIV, EncContent and EncTag hold
// the hex-encoded AES-GCM triple; the plaintext secret never touches this
// layer. Each entry belongs to exactly one owner and the triple
// (owner_id, label, username) is unique.
type Entry struct {
	ID         uint64
	OwnerID    uint64
	Label      string
	Username   string
	EncIV      string
	EncContent string
	EncTag     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EntryRepo encapsulates all database queries for vault entries. It is the
// sole writer of the table.
type EntryRepo struct{ DB *sql.DB }

func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{DB: db} }

// Create inserts a new entry and populates its ID and timestamps. The
// unique index enforces (owner_id, label, username) atomically; a violation
// surfaces as ErrDuplicateEntry. There is no read-before-write: the insert
// itself is the conflict check.
func (r *EntryRepo) Create(ctx context.Context, e *Entry) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO vault_entries (owner_id, label, username, enc_iv, enc_content, enc_tag) VALUES (?,?,?,?,?,?)",
		e.OwnerID, e.Label, e.Username, e.EncIV, e.EncContent, e.EncTag)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEntry
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)

	// Follow-up select to pick up the DB-generated timestamps.
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM vault_entries WHERE id = ?",
		e.ID).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// ListByOwner returns all of an owner's entries, newest first. Only
// metadata columns are selected; encrypted material stays out of listings.
func (r *EntryRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*Entry, error) {
	const q = `SELECT id, owner_id, label, username, created_at, updated_at
	           FROM vault_entries WHERE owner_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e := new(Entry)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Label, &e.Username, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndOwner fetches a full entry, encrypted payload included, but only
// when it belongs to the given owner. A foreign or missing id both return
// ErrEntryNotFound.
func (r *EntryRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Entry, error) {
	const q = `SELECT id, owner_id, label, username, enc_iv, enc_content, enc_tag, created_at, updated_at
	           FROM vault_entries WHERE id = ? AND owner_id = ?`
	var e Entry
	err := r.DB.QueryRowContext(ctx, q, id, ownerID).Scan(
		&e.ID, &e.OwnerID, &e.Label, &e.Username,
		&e.EncIV, &e.EncContent, &e.EncTag, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// UpdateSecret replaces the whole encrypted triple in one scoped update.
// The caller provides a freshly generated IV/content/tag; the previous IV is
// never reused. Zero affected rows means not found (or not owned).
func (r *EntryRepo) UpdateSecret(ctx context.Context, id, ownerID uint64, iv, content, tag string) error {
	const q = `UPDATE vault_entries
	           SET enc_iv = ?, enc_content = ?, enc_tag = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.DB.ExecContext(ctx, q, iv, content, tag, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes an entry scoped to its owner and returns the
// removed entry's metadata so the handler can echo it back.
func (r *EntryRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Entry, error) {
	e, err := r.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM vault_entries WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrEntryNotFound
	}
	return e, nil
}
