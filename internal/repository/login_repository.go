package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/gym-booking/internal/model"
)

// LoginRepo reads and writes the `logins` table.  Writes that belong to a
// provisioning unit take the caller's transaction.
type LoginRepo struct{ db Pool }

func NewLoginRepo(db Pool) *LoginRepo { return &LoginRepo{db: db} }

// excludeID 0 matches no row, so the same query serves create (no
// exclusion) and update (exclude the login being edited).
const qEmailTaken = `SELECT id FROM logins WHERE email = ? AND id <> ? LIMIT 1`

const qInsertLogin = `INSERT INTO logins (email, password, username, role) VALUES (?, ?, ?, ?)`

const qUpdateLogin = `UPDATE logins SET email = ?, password = ?, username = ? WHERE id = ?`

const qUpdateLoginKeepPassword = `UPDATE logins SET email = ?, username = ? WHERE id = ?`

const qLoginColumns = `SELECT id, email, password, username, role, accessKey FROM logins`

// EmailTaken reports whether email belongs to a login other than excludeID.
func (r *LoginRepo) EmailTaken(ctx context.Context, q DBTX, email string, excludeID uint64) (bool, error) {
	var id uint64
	err := q.QueryRowContext(ctx, qEmailTaken, email, excludeID).Scan(&id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	}
	return false, persist("check email", err)
}

// CreateTx inserts a login with a digest that is already computed.  A
// unique-key violation on email is reported as ErrDuplicateEmail.
func (r *LoginRepo) CreateTx(ctx context.Context, tx *sql.Tx, email, digest, username string, role model.Role) (uint64, error) {
	res, err := tx.ExecContext(ctx, qInsertLogin, email, digest, username, string(role))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, persist("insert login", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persist("insert login", err)
	}
	return uint64(id), nil
}

// UpdateTx rewrites email, username and (when digest is non-empty) the
// password digest.  Role is never touched.
func (r *LoginRepo) UpdateTx(ctx context.Context, tx *sql.Tx, id uint64, email, digest, username string) error {
	var err error
	if digest == "" {
		_, err = tx.ExecContext(ctx, qUpdateLoginKeepPassword, email, username, id)
	} else {
		_, err = tx.ExecContext(ctx, qUpdateLogin, email, digest, username, id)
	}
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return persist("update login", err)
	}
	return nil
}

// DeleteTx removes a login row.
func (r *LoginRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM logins WHERE id = ?", id); err != nil {
		return persist("delete login", err)
	}
	return nil
}

// GetByEmail fetches a login by trimmed email.
func (r *LoginRepo) GetByEmail(ctx context.Context, email string) (model.Login, error) {
	return r.getOne(ctx, " WHERE email = ? LIMIT 1", strings.TrimSpace(email))
}

// GetByID fetches a login by id.
func (r *LoginRepo) GetByID(ctx context.Context, id uint64) (model.Login, error) {
	return r.getOne(ctx, " WHERE id = ? LIMIT 1", id)
}

// GetByAccessKey fetches the login currently holding session key key.
func (r *LoginRepo) GetByAccessKey(ctx context.Context, key string) (model.Login, error) {
	return r.getOne(ctx, " WHERE accessKey = ? LIMIT 1", key)
}

func (r *LoginRepo) getOne(ctx context.Context, where string, arg any) (model.Login, error) {
	var l model.Login
	var role string
	err := r.db.QueryRowContext(ctx, qLoginColumns+where, arg).
		Scan(&l.ID, &l.Email, &l.Password, &l.Username, &role, &l.AccessKey)
	if errors.Is(err, sql.ErrNoRows) {
		return l, ErrNotFound
	}
	if err != nil {
		return l, persist("get login", err)
	}
	l.Role = model.Role(role)
	return l, nil
}

// SetAccessKey stores (or, with nil, clears) the session key of login id.
func (r *LoginRepo) SetAccessKey(ctx context.Context, id uint64, key *string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE logins SET accessKey = ? WHERE id = ?", nullableKey(key), id)
	if err != nil {
		return persist("set access key", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableKey(key *string) any {
	if key == nil {
		return nil
	}
	return *key
}
