// Package repository contains data access logic separated from HTTP
// handlers. Sentinel errors defined here let handlers translate storage
// outcomes into API responses without ever leaking raw driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEntryNotFound is returned when a vault entry does not exist or belongs
// to a different owner. The two cases are deliberately indistinguishable:
// every lookup combines id and owner in a single predicate, so a foreign
// entry produces the same "no rows" result as a nonexistent one.
var ErrEntryNotFound = errors.New("entry not found")

// ErrDuplicateEntry is returned when an insert violates the
// (owner_id, label, username) unique index. Handlers translate it into an
// HTTP 409 response.
var ErrDuplicateEntry = errors.New("entry with this label and username already exists")

// ErrEmailExists is returned when a registration collides with the unique
// email index.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062) raised by a unique index.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
