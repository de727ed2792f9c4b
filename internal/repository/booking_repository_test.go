package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-booking/internal/model"
)

const slotTime = "2024-01-01 10:00:00"

func bookingRow(id, member, trainer, activity uint64, at string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "memberId", "trainerId", "activityId", "dateTime"}).
		AddRow(id, member, trainer, activity, at)
}

func TestProposeFreeSlotIsAccepted(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectQuery(qSlotConflict).WithArgs(1, 2, slotTime, 0).WillReturnRows(noRows())

	d, err := repo.Propose(context.Background(), db, model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime}, 0)
	require.NoError(t, err)
	assert.Equal(t, Accepted, d.Outcome)
}

func TestCreateAcceptedInsertsBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(qSlotConflict).WithArgs(1, 2, slotTime, 0).WillReturnRows(noRows())
	mock.ExpectExec(qInsertBooking).WithArgs(1, 2, 5, slotTime).WillReturnResult(sqlmock.NewResult(40, 1))
	mock.ExpectCommit()

	d, err := repo.Create(context.Background(), model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime})
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: Accepted, BookingID: 40}, d)
}

func TestCreateBusyMemberIsConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	// Member 1 already trains with trainer 2 at this slot.
	mock.ExpectBegin()
	mock.ExpectQuery(qSlotConflict).WithArgs(1, 3, slotTime, 0).WillReturnRows(idRow(40))
	mock.ExpectQuery(qSlotDuplicate).WithArgs(1, 3, 9, slotTime, 0).WillReturnRows(noRows())
	mock.ExpectCommit()

	d, err := repo.Create(context.Background(), model.Slot{MemberID: 1, TrainerID: 3, ActivityID: 9, DateTime: slotTime})
	require.NoError(t, err)
	assert.Equal(t, RejectedConflict, d.Outcome)
	assert.Zero(t, d.BookingID)
}

func TestCreateSameBookingAgainIsDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(qSlotConflict).WithArgs(1, 2, slotTime, 0).WillReturnRows(idRow(40))
	mock.ExpectQuery(qSlotDuplicate).WithArgs(1, 2, 5, slotTime, 0).WillReturnRows(idRow(40))
	mock.ExpectCommit()

	d, err := repo.Create(context.Background(), model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime})
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: RejectedDuplicate, BookingID: 40}, d)
}

func TestCreateRacingInsertIsConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(qSlotConflict).WillReturnRows(noRows())
	mock.ExpectExec(qInsertBooking).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_bookings_member_slot'"})
	mock.ExpectCommit()

	d, err := repo.Create(context.Background(), model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime})
	require.NoError(t, err)
	assert.Equal(t, RejectedConflict, d.Outcome)
}

func TestCreateStoreFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(qSlotConflict).WillReturnError(errBoom)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime})
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "check booking conflict", pe.Op)
}

func TestUpdateOntoIdenticalBookingIsNoOp(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	// Booking 7 is moved to the slot already held by identical booking 9.
	target := model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime}

	mock.ExpectBegin()
	mock.ExpectQuery(qBookingColumns+" WHERE id = ?").WithArgs(7).
		WillReturnRows(bookingRow(7, 1, 2, 5, "2024-01-01 09:00:00"))
	mock.ExpectQuery(qSlotConflict).WithArgs(1, 2, slotTime, 7).WillReturnRows(idRow(9))
	mock.ExpectQuery(qSlotDuplicate).WithArgs(1, 2, 5, slotTime, 7).WillReturnRows(idRow(9))
	mock.ExpectCommit()

	d, err := repo.Update(context.Background(), 7, target)
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: SkippedNoOp, BookingID: 9}, d)
}

func TestUpdateToOwnStateIsNoOp(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(qBookingColumns+" WHERE id = ?").WithArgs(7).
		WillReturnRows(bookingRow(7, 1, 2, 5, slotTime))
	mock.ExpectCommit()

	d, err := repo.Update(context.Background(), 7, model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime})
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: SkippedNoOp, BookingID: 7}, d)
}

func TestUpdateIgnoresItsOwnSlot(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	// Changing only the activity keeps the same member/trainer/slot.
	mock.ExpectBegin()
	mock.ExpectQuery(qBookingColumns+" WHERE id = ?").WithArgs(7).
		WillReturnRows(bookingRow(7, 1, 2, 5, slotTime))
	mock.ExpectQuery(qSlotConflict).WithArgs(1, 2, slotTime, 7).WillReturnRows(noRows())
	mock.ExpectExec(qUpdateBooking).WithArgs(1, 2, 6, slotTime, 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	d, err := repo.Update(context.Background(), 7, model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 6, DateTime: slotTime})
	require.NoError(t, err)
	assert.Equal(t, Decision{Outcome: Accepted, BookingID: 7}, d)
}

func TestUpdateBusyTrainerIsConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(qBookingColumns+" WHERE id = ?").WithArgs(7).
		WillReturnRows(bookingRow(7, 1, 2, 5, "2024-01-01 09:00:00"))
	mock.ExpectQuery(qSlotConflict).WithArgs(1, 2, slotTime, 7).WillReturnRows(idRow(11))
	mock.ExpectQuery(qSlotDuplicate).WithArgs(1, 2, 5, slotTime, 7).WillReturnRows(noRows())
	mock.ExpectCommit()

	d, err := repo.Update(context.Background(), 7, model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime})
	require.NoError(t, err)
	assert.Equal(t, RejectedConflict, d.Outcome)
}

func TestUpdateUnknownBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(qBookingColumns + " WHERE id = ?").WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id", "memberId", "trainerId", "activityId", "dateTime"}))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 404, model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: slotTime})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBooking(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectExec("DELETE FROM bookings WHERE id = ?").WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bookings WHERE id = ?").WithArgs(8).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.ErrorIs(t, repo.Delete(context.Background(), 8), ErrNotFound)
}

func TestDetailsByDateScansJoinedRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	cols := []string{"id", "memberId", "trainerId", "activityId", "dateTime",
		"mf", "ml", "me", "mp", "tf", "tl", "te", "tp", "name", "durationMinutes"}
	mock.ExpectQuery(qBookingDetail+" WHERE DATE(b.dateTime) = ? ORDER BY b.dateTime, b.id").
		WithArgs("2024-01-01").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(40, 1, 2, 5, slotTime, "Alice", "Smith", "a@x.com", "0400", "Tom", "Lee", "t@x.com", "0411", "Boxing", 60))

	out, err := repo.DetailsByDate(context.Background(), "2024-01-01")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Tom", out[0].TrainerFirstName)
	assert.Equal(t, uint32(60), out[0].DurationMinutes)
	require.NotNil(t, out[0].ActivityName)
	assert.Equal(t, "Boxing", *out[0].ActivityName)
}
