package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/gym-booking/internal/model"
)

// AddressRepo resolves and reads rows of the shared `addresses` table.
type AddressRepo struct {
	db Pool
}

// NewAddressRepo returns an AddressRepo bound to the given pool.
func NewAddressRepo(db Pool) *AddressRepo { return &AddressRepo{db: db} }

// An empty lineTwo matches both NULL and '' so rows written by older
// clients are still reused.
const qFindAddress = `SELECT id FROM addresses
WHERE lineOne = ? AND (lineTwo = ? OR (? = '' AND lineTwo IS NULL))
AND suburb = ? AND postcode = ? AND state = ? AND country = ?
LIMIT 1`

const qInsertAddress = `INSERT INTO addresses (lineOne, lineTwo, suburb, postcode, state, country) VALUES (?, ?, ?, ?, ?, ?)`

const qAddressColumns = `SELECT id, lineOne, lineTwo, suburb, postcode, state, country FROM addresses`

const qAddressRefs = `SELECT
(SELECT COUNT(*) FROM admins WHERE addressId = ?) +
(SELECT COUNT(*) FROM trainers WHERE addressId = ?) +
(SELECT COUNT(*) FROM members WHERE addressId = ?)`

// Resolve returns the id of the address row equal to in, inserting one when
// none exists yet.  When a required field is missing it returns nil without
// touching the store: a profile may be created without an address.
func (r *AddressRepo) Resolve(ctx context.Context, q DBTX, in model.AddressInput) (*uint64, error) {
	if !in.Complete() {
		return nil, nil
	}
	in = trimAddress(in)

	var id uint64
	err := q.QueryRowContext(ctx, qFindAddress,
		in.LineOne, in.LineTwo, in.LineTwo, in.Suburb, in.Postcode, in.State, in.Country,
	).Scan(&id)
	switch {
	case err == nil:
		return &id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, persist("find address", err)
	}

	res, err := q.ExecContext(ctx, qInsertAddress,
		in.LineOne, nullIfEmpty(in.LineTwo), in.Suburb, in.Postcode, in.State, in.Country)
	if err != nil {
		return nil, persist("insert address", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return nil, persist("insert address", err)
	}
	id = uint64(newID)
	return &id, nil
}

// ResolveNow resolves in on the pool without an enclosing transaction.
func (r *AddressRepo) ResolveNow(ctx context.Context, in model.AddressInput) (*uint64, error) {
	return r.Resolve(ctx, r.db, in)
}

// GetByID fetches one address.  sql.ErrNoRows becomes ErrNotFound.
func (r *AddressRepo) GetByID(ctx context.Context, id uint64) (model.Address, error) {
	var a model.Address
	err := r.db.QueryRowContext(ctx, qAddressColumns+" WHERE id = ?", id).
		Scan(&a.ID, &a.LineOne, &a.LineTwo, &a.Suburb, &a.Postcode, &a.State, &a.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, persist("get address", err)
}

// List returns every address ordered by id.
func (r *AddressRepo) List(ctx context.Context) ([]model.Address, error) {
	rows, err := r.db.QueryContext(ctx, qAddressColumns+" ORDER BY id")
	if err != nil {
		return nil, persist("list addresses", err)
	}
	defer rows.Close()

	out := []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.LineOne, &a.LineTwo, &a.Suburb, &a.Postcode, &a.State, &a.Country); err != nil {
			return nil, persist("scan address", err)
		}
		out = append(out, a)
	}
	return out, persist("list addresses", rows.Err())
}

// References counts the profiles of any role that point at address id.
func (r *AddressRepo) References(ctx context.Context, q DBTX, id uint64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, qAddressRefs, id, id, id).Scan(&n); err != nil {
		return 0, persist("count address references", err)
	}
	return n, nil
}

// Delete removes an address nobody references.  A referenced address yields
// ErrConflict and an unknown id ErrNotFound.
func (r *AddressRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		n, err := r.References(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM addresses WHERE id = ?", id)
		if err != nil {
			return persist("delete address", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// deleteIfOrphanTx deletes address id when no profile references it any
// more.  Shared addresses stay in place.
func (r *AddressRepo) deleteIfOrphanTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	n, err := r.References(ctx, tx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM addresses WHERE id = ?", id); err != nil {
		return persist("delete address", err)
	}
	return nil
}

func trimAddress(in model.AddressInput) model.AddressInput {
	return model.AddressInput{
		LineOne:  strings.TrimSpace(in.LineOne),
		LineTwo:  strings.TrimSpace(in.LineTwo),
		Suburb:   strings.TrimSpace(in.Suburb),
		Postcode: strings.TrimSpace(in.Postcode),
		State:    strings.TrimSpace(in.State),
		Country:  strings.TrimSpace(in.Country),
	}
}
