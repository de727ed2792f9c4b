package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-booking/internal/model"
)

var errBoom = errors.New("connection reset")

// newMock returns a sqlmock-backed pool that matches statements verbatim
// (whitespace-insensitive) and fails the test on unmet expectations.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func fakeHash(plain string) (string, error) { return "hashed:" + plain, nil }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func newMemberProvisioner(db *sql.DB) *Provisioner[model.Member, *model.Member] {
	return NewProvisioner[model.Member](db, NewLoginRepo(db), NewAddressRepo(db), fakeHash)
}

func sampleMember() model.Member {
	return model.Member{
		ProfileBase: model.ProfileBase{FirstName: "Alice", LastName: "Smith", Phone: "0400000000"},
		Age:         intPtr(30),
		Gender:      strPtr("Female"),
	}
}

func sampleAddress() model.AddressInput {
	return model.AddressInput{LineOne: "1 Main St", Suburb: "Springfield", Postcode: "4000", State: "QLD", Country: "AU"}
}

func noRows() *sqlmock.Rows { return sqlmock.NewRows([]string{"id"}) }

func idRow(id int64) *sqlmock.Rows { return sqlmock.NewRows([]string{"id"}).AddRow(id) }
