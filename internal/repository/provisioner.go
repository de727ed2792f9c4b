package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/gym-booking/internal/model"
)

// RoleProfile is what a role-specific profile table exposes to the
// provisioner: its table, its role and its own columns (everything except
// id, loginId and addressId) with matching values.
type RoleProfile interface {
	Table() string
	Role() model.Role
	Fields() []string
	Values() []any
	ProfileID() uint64
}

// ProfileRow ties a profile value type to its pointer, which also knows
// how to scan a full row (id, loginId, addressId, then Fields order).
type ProfileRow[T any] interface {
	*T
	RoleProfile
	Targets() []any
}

// PasswordHasher turns a plaintext password into a stored digest.
type PasswordHasher func(plain string) (string, error)

type provisionerQueries struct {
	insert     string
	update     string
	setAddress string
	selectAll  string
	loginOf    string
	refsOf     string
	idByLogin  string
	detail     string
	deleteByID string
}

// Provisioner creates, updates and deletes a login together with its
// address and role profile as one atomic unit.  One instance serves one
// role; T is model.Admin, model.Trainer or model.Member.
type Provisioner[T any, P ProfileRow[T]] struct {
	db        Pool
	logins    *LoginRepo
	addresses *AddressRepo
	hash      PasswordHasher
	role      model.Role
	q         provisionerQueries
}

// NewProvisioner builds a provisioner for the profile type T.
func NewProvisioner[T any, P ProfileRow[T]](db Pool, logins *LoginRepo, addresses *AddressRepo, hash PasswordHasher) *Provisioner[T, P] {
	var zero T
	row := P(&zero)
	return &Provisioner[T, P]{
		db:        db,
		logins:    logins,
		addresses: addresses,
		hash:      hash,
		role:      row.Role(),
		q:         buildProvisionerQueries(row.Table(), row.Fields()),
	}
}

func buildProvisionerQueries(table string, fields []string) provisionerQueries {
	insertCols := append([]string{"loginId", "addressId"}, fields...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(insertCols)), ", ")
	sets := make([]string, len(fields))
	for i, f := range fields {
		sets[i] = f + " = ?"
	}
	cols := append([]string{"id", "loginId", "addressId"}, fields...)
	prefixed := make([]string, len(cols))
	for i, c := range cols {
		prefixed[i] = "p." + c
	}

	return provisionerQueries{
		insert:     fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(insertCols, ", "), placeholders),
		update:     fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", ")),
		setAddress: fmt.Sprintf("UPDATE %s SET addressId = ? WHERE id = ?", table),
		selectAll:  fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table),
		loginOf:    fmt.Sprintf("SELECT loginId FROM %s WHERE id = ?", table),
		refsOf:     fmt.Sprintf("SELECT loginId, addressId FROM %s WHERE id = ?", table),
		idByLogin:  fmt.Sprintf("SELECT id FROM %s WHERE loginId = ?", table),
		deleteByID: fmt.Sprintf("DELETE FROM %s WHERE id = ?", table),
		detail: fmt.Sprintf(`SELECT %s, l.email, l.username, l.role,
a.id, a.lineOne, a.lineTwo, a.suburb, a.postcode, a.state, a.country
FROM %s p
INNER JOIN logins l ON l.id = p.loginId
LEFT JOIN addresses a ON a.id = p.addressId`, strings.Join(prefixed, ", "), table),
	}
}

// Role is the role every login created by p receives.
func (p *Provisioner[T, P]) Role() model.Role { return p.role }

// Create inserts a login, resolves the address and inserts the profile in
// one transaction, returning the new profile id.  An email that is already
// in use yields ErrDuplicateEmail and nothing is written.
func (p *Provisioner[T, P]) Create(ctx context.Context, cred model.Credential, profile T, addr model.AddressInput) (uint64, error) {
	var profileID uint64
	err := withTx(ctx, p.db, func(tx *sql.Tx) error {
		taken, err := p.logins.EmailTaken(ctx, tx, cred.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}

		digest, err := p.hash(cred.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		loginID, err := p.logins.CreateTx(ctx, tx, cred.Email, digest, cred.Username, p.role)
		if err != nil {
			return err
		}

		addressID, err := p.addresses.Resolve(ctx, tx, addr)
		if err != nil {
			return err
		}

		args := append([]any{loginID, nullableID(addressID)}, P(&profile).Values()...)
		res, err := tx.ExecContext(ctx, p.q.insert, args...)
		if err != nil {
			return persist("insert "+string(p.role)+" profile", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return persist("insert "+string(p.role)+" profile", err)
		}
		profileID = uint64(id)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return profileID, nil
}

// Update rewrites the login and profile behind profile id.  The address is
// only re-resolved when addr is non-nil; the previous address row is left
// in place because other profiles may share it.  It returns the number of
// profile rows matched.
func (p *Provisioner[T, P]) Update(ctx context.Context, id uint64, cred model.Credential, profile T, addr *model.AddressInput) (int64, error) {
	// Unknown ids are rejected before a transaction is opened.
	if _, err := p.loginID(ctx, p.db, id); err != nil {
		return 0, err
	}

	var affected int64
	err := withTx(ctx, p.db, func(tx *sql.Tx) error {
		loginID, err := p.loginID(ctx, tx, id)
		if err != nil {
			return err
		}

		taken, err := p.logins.EmailTaken(ctx, tx, cred.Email, loginID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}

		digest := cred.Password
		if digest != "" && !cred.PasswordHashed {
			if digest, err = p.hash(cred.Password); err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
		}
		if err := p.logins.UpdateTx(ctx, tx, loginID, cred.Email, digest, cred.Username); err != nil {
			return err
		}

		if addr != nil {
			addressID, err := p.addresses.Resolve(ctx, tx, *addr)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, p.q.setAddress, nullableID(addressID), id); err != nil {
				return persist("set "+string(p.role)+" address", err)
			}
		}

		args := append(P(&profile).Values(), id)
		res, err := tx.ExecContext(ctx, p.q.update, args...)
		if err != nil {
			return persist("update "+string(p.role)+" profile", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return persist("update "+string(p.role)+" profile", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Delete removes the profile, then its login, then its address when no
// other profile still references that address.
func (p *Provisioner[T, P]) Delete(ctx context.Context, id uint64) (int64, error) {
	var (
		loginID   uint64
		addressID sql.NullInt64
	)
	err := p.db.QueryRowContext(ctx, p.q.refsOf, id).Scan(&loginID, &addressID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, persist("get "+string(p.role)+" profile", err)
	}

	var affected int64
	err = withTx(ctx, p.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, p.q.deleteByID, id)
		if err != nil {
			return persist("delete "+string(p.role)+" profile", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return persist("delete "+string(p.role)+" profile", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		if err := p.logins.DeleteTx(ctx, tx, loginID); err != nil {
			return err
		}
		if addressID.Valid {
			return p.addresses.deleteIfOrphanTx(ctx, tx, uint64(addressID.Int64))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Get fetches one profile by id.
func (p *Provisioner[T, P]) Get(ctx context.Context, id uint64) (T, error) {
	var out T
	err := p.db.QueryRowContext(ctx, p.q.selectAll+" WHERE id = ?", id).Scan(P(&out).Targets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return out, ErrNotFound
	}
	return out, persist("get "+string(p.role)+" profile", err)
}

// List returns every profile of this role ordered by id.
func (p *Provisioner[T, P]) List(ctx context.Context) ([]T, error) {
	rows, err := p.db.QueryContext(ctx, p.q.selectAll+" ORDER BY id")
	if err != nil {
		return nil, persist("list "+string(p.role)+" profiles", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err := rows.Scan(P(&v).Targets()...); err != nil {
			return nil, persist("scan "+string(p.role)+" profile", err)
		}
		out = append(out, v)
	}
	return out, persist("list "+string(p.role)+" profiles", rows.Err())
}

// LoginIDOf returns the login behind profile id.
func (p *Provisioner[T, P]) LoginIDOf(ctx context.Context, id uint64) (uint64, error) {
	return p.loginID(ctx, p.db, id)
}

// IDByLoginID returns the profile id owned by loginID.
func (p *Provisioner[T, P]) IDByLoginID(ctx context.Context, loginID uint64) (uint64, error) {
	var id uint64
	err := p.db.QueryRowContext(ctx, p.q.idByLogin, loginID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, persist("get "+string(p.role)+" by login", err)
}

// Detail joins profile id with its login and address.
func (p *Provisioner[T, P]) Detail(ctx context.Context, id uint64) (model.ProfileDetail[T], error) {
	return p.detailWhere(ctx, " WHERE p.id = ?", id)
}

// DetailByLoginID is Detail keyed by the owning login.
func (p *Provisioner[T, P]) DetailByLoginID(ctx context.Context, loginID uint64) (model.ProfileDetail[T], error) {
	return p.detailWhere(ctx, " WHERE p.loginId = ?", loginID)
}

func (p *Provisioner[T, P]) detailWhere(ctx context.Context, where string, arg uint64) (model.ProfileDetail[T], error) {
	var (
		d    model.ProfileDetail[T]
		role string
		aID  sql.NullInt64
		a    [6]sql.NullString
	)
	targets := append(P(&d.Profile).Targets(), &d.Email, &d.Username, &role,
		&aID, &a[0], &a[1], &a[2], &a[3], &a[4], &a[5])
	err := p.db.QueryRowContext(ctx, p.q.detail+where, arg).Scan(targets...)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	if err != nil {
		return d, persist("get "+string(p.role)+" detail", err)
	}
	d.Role = model.Role(role)
	if aID.Valid {
		d.Address = &model.Address{
			ID:       uint64(aID.Int64),
			LineOne:  a[0].String,
			Suburb:   a[2].String,
			Postcode: a[3].String,
			State:    a[4].String,
			Country:  a[5].String,
		}
		if a[1].Valid {
			lineTwo := a[1].String
			d.Address.LineTwo = &lineTwo
		}
	}
	return d, nil
}

func (p *Provisioner[T, P]) loginID(ctx context.Context, q DBTX, id uint64) (uint64, error) {
	var loginID uint64
	err := q.QueryRowContext(ctx, p.q.loginOf, id).Scan(&loginID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, persist("get "+string(p.role)+" login", err)
	}
	return loginID, nil
}
