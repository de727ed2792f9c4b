//go:build integration

package repository

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/iliyamo/gym-booking/internal/database"
	"github.com/iliyamo/gym-booking/internal/model"
)

// startMySQL runs a throwaway MySQL, applies the embedded migrations and
// returns a pool on it.
func startMySQL(ctx context.Context, t *testing.T) *sql.DB {
	t.Helper()
	c, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("gym"),
		tcmysql.WithUsername("gym"),
		tcmysql.WithPassword("gym"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	dsn := database.DSN("gym", "gym", host, port.Port(), "gym")
	log := logrus.New()
	log.SetOutput(io.Discard)
	require.NoError(t, database.Migrate(dsn, log))

	db, err := database.Open(dsn, database.Pool{MaxOpen: 5})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestIntegrationProvisioningAndBooking(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()
	db := startMySQL(ctx, t)

	logins := NewLoginRepo(db)
	addresses := NewAddressRepo(db)
	members := NewProvisioner[model.Member](db, logins, addresses, fakeHash)
	trainers := NewProvisioner[model.Trainer](db, logins, addresses, fakeHash)
	bookings := NewBookingRepo(db)
	activities := NewActivityRepo(db)

	cred := func(email, user string) model.Credential {
		return model.Credential{Email: email, Password: "secret123", Username: user}
	}

	alice, err := members.Create(ctx, cred("alice@x.com", "alice"), sampleMember(), sampleAddress())
	require.NoError(t, err)
	bob, err := members.Create(ctx, cred("bob@x.com", "bob"), sampleMember(), sampleAddress())
	require.NoError(t, err)

	// The same email cannot back two logins, and nothing is left behind.
	_, err = members.Create(ctx, cred("alice@x.com", "alice2"), sampleMember(), model.AddressInput{})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// Emails and addresses compare byte for byte.
	carol, err := members.Create(ctx, cred("Alice@x.com", "carol"), sampleMember(), model.AddressInput{})
	require.NoError(t, err)
	shouted := sampleAddress()
	shouted.Suburb = strings.ToUpper(shouted.Suburb)
	dave, err := members.Create(ctx, cred("dave@x.com", "dave"), sampleMember(), shouted)
	require.NoError(t, err)
	dd, err := members.Detail(ctx, dave)
	require.NoError(t, err)
	require.NotNil(t, dd.Profile.AddressID)
	_, err = members.Delete(ctx, carol)
	require.NoError(t, err)

	tom, err := trainers.Create(ctx, cred("tom@x.com", "tom"),
		model.Trainer{ProfileBase: model.ProfileBase{FirstName: "Tom", LastName: "Lee", Phone: "0411"}},
		model.AddressInput{})
	require.NoError(t, err)

	// Alice and Bob resolved the same address row.
	da, err := members.Detail(ctx, alice)
	require.NoError(t, err)
	db2, err := members.Detail(ctx, bob)
	require.NoError(t, err)
	require.NotNil(t, da.Profile.AddressID)
	assert.Equal(t, *da.Profile.AddressID, *db2.Profile.AddressID)
	assert.NotEqual(t, *da.Profile.AddressID, *dd.Profile.AddressID)

	boxing, err := activities.Create(ctx, model.Activity{Name: strPtr("Boxing"), DurationMinutes: 60})
	require.NoError(t, err)

	slot := model.Slot{MemberID: alice, TrainerID: tom, ActivityID: boxing, DateTime: "2024-01-01 10:00:00"}
	d, err := bookings.Create(ctx, slot)
	require.NoError(t, err)
	require.Equal(t, Accepted, d.Outcome)
	first := d.BookingID

	d, err = bookings.Create(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: RejectedDuplicate, BookingID: first}, d)

	// Tom is busy at 10:00 whoever the member is.
	busy := slot
	busy.MemberID = bob
	d, err = bookings.Create(ctx, busy)
	require.NoError(t, err)
	assert.Equal(t, RejectedConflict, d.Outcome)

	later := busy
	later.DateTime = "2024-01-01 11:00:00"
	d, err = bookings.Create(ctx, later)
	require.NoError(t, err)
	require.Equal(t, Accepted, d.Outcome)
	second := d.BookingID

	// Moving the second booking onto the first is a no-op, not a conflict.
	d, err = bookings.Update(ctx, second, slot)
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: SkippedNoOp, BookingID: first}, d)

	day, err := bookings.DetailsByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, day, 2)

	// Deleting Alice keeps the address Bob still uses.
	require.NoError(t, bookings.Delete(ctx, first))
	_, err = members.Delete(ctx, alice)
	require.NoError(t, err)
	_, err = addresses.GetByID(ctx, *db2.Profile.AddressID)
	require.NoError(t, err)
	assert.ErrorIs(t, addresses.Delete(ctx, *db2.Profile.AddressID), ErrConflict)

	_, err = logins.GetByEmail(ctx, "alice@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
